// Package pipeline provides the core diagram pipeline for seqgen.
//
// This package implements the complete parse → layout → render pipeline that
// can be used by CLI and server components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read the DSL source into a statement list
//  2. Layout: Compute absolute geometry for every statement
//  3. Render: Serialize the draw.io document to XML
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, logger)
//	opts := pipeline.Options{
//	    Source:   src,
//	    PageName: "Page-1",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	xml := result.XML
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/seqgen/pkg/errors"
	"github.com/matzehuels/seqgen/pkg/layout"
	"github.com/matzehuels/seqgen/pkg/seq"
)

// DefaultPageName is the diagram page name used when none is configured.
const DefaultPageName = "Page-1"

// Options contains all configuration for the diagram pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Source is the DSL text to render.
	Source string `json:"source"`

	// PageName names the diagram page inside the output file.
	PageName string `json:"page_name,omitempty"`

	// IDPrefix pins the draw.io cell ID prefix; empty selects a random one
	// (or the SEQGEN_ID_PREFIX environment variable).
	IDPrefix string `json:"id_prefix,omitempty"`

	// LifelineWidth and LifelineSpacing override the participant defaults.
	LifelineWidth   float64 `json:"lifeline_width,omitempty"`
	LifelineSpacing float64 `json:"lifeline_spacing,omitempty"`

	// Refresh bypasses the render cache.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Source == "" {
		return errors.New(errors.ErrCodeInvalidInput, "source is required")
	}
	o.SetDefaults()
	o.validated = true
	return nil
}

// SetDefaults applies defaults without requiring a source, for callers that
// run individual stages on an existing statement list.
func (o *Options) SetDefaults() {
	if o.PageName == "" {
		o.PageName = DefaultPageName
	}
	if o.LifelineWidth == 0 {
		o.LifelineWidth = layout.DefaultLifelineWidth
	}
	if o.LifelineSpacing == 0 {
		o.LifelineSpacing = layout.DefaultLifelineSpacing
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Statements is the parsed statement list. Empty on a cache hit.
	Statements []seq.Stmt

	// XML is the rendered draw.io document.
	XML []byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether XML was served from the render cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	StatementCount   int
	ParticipantCount int
	ParseTime        time.Duration
	LayoutTime       time.Duration
	RenderTime       time.Duration
}

func countParticipants(stmts []seq.Stmt) int {
	n := 0
	for _, st := range stmts {
		switch s := st.(type) {
		case *seq.Participant:
			n++
		case *seq.Frame:
			n += countParticipants(s.Inner)
			for _, sec := range s.Sections {
				n += countParticipants(sec.Inner)
			}
		}
	}
	return n
}
