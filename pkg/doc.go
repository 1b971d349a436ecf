// Package pkg provides the core libraries for seqgen diagram generation.
//
// # Overview
//
// Seqgen turns a small line-oriented DSL into draw.io sequence diagrams.
// The layout is computed in a single deterministic pass, so the same source
// always produces the same file and diagrams can be regenerated from code
// review to code review without spurious diffs. The pkg directory is
// organized into four main areas:
//
//  1. [seq] - The statement AST and its parser
//  2. [layout] - The single-pass layout engine
//  3. [drawio] - draw.io (mxGraph) document construction and XML output
//  4. [pipeline] - Orchestration (parse → layout → render) with caching
//
// # Architecture
//
// The typical data flow through seqgen:
//
//	DSL source
//	         ↓
//	    [seq/parse] package (statements)
//	         ↓
//	    [layout] package (geometry on a Document)
//	         ↓
//	    [drawio] package (mxGraph XML)
//	         ↓
//	    .drawio output
//
// # Quick Start
//
// Render a diagram source to draw.io XML:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/seqgen/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil)
//	result, err := runner.Execute(context.Background(), pipeline.Options{
//	    Source: "participant a\nparticipant b\nactivate a\na ->+ b: hello\nb -->- a: world\ndeactivate a\n",
//	})
//	// result.XML holds the finished document
//
// # Main Packages
//
// ## Core Domain Logic
//
// [seq] - Statement types shared by the parser and the layout engine, plus
// the [seq/parse] subpackage that reads the DSL.
//
// [layout] - A stateful visitor that walks the statement list once, top to
// bottom, advancing a vertical cursor and emitting geometry through the
// Document interface. All spacing rules live here.
//
// [drawio] - The Document implementation: styles, cell IDs, and deterministic
// mxGraph XML serialization.
//
// ## Infrastructure
//
// [cache] - Content-addressed render cache with file-based and null backends.
//
// [pipeline] - The Runner used by both the CLI and the HTTP server, wiring
// parsing, layout, rendering, caching, and observability hooks together.
//
// [observability] - Optional hooks for metrics and tracing backends.
//
// [errors] - Structured error codes shared across the module.
package pkg
