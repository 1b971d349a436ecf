package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/seqgen/pkg/cache"
	"github.com/matzehuels/seqgen/pkg/drawio"
	"github.com/matzehuels/seqgen/pkg/layout"
	"github.com/matzehuels/seqgen/pkg/observability"
	"github.com/matzehuels/seqgen/pkg/seq"
	"github.com/matzehuels/seqgen/pkg/seq/parse"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// Execute runs the complete parse → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := r.logger(opts)

	key := cache.RenderKey(opts.Source, opts.PageName, opts.IDPrefix, opts.LifelineWidth, opts.LifelineSpacing)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			logger.Debug("render cache hit", "key", key)
			observability.Cache().OnCacheHit(ctx, "render")
			return &Result{XML: data, CacheHit: true}, nil
		}
		observability.Cache().OnCacheMiss(ctx, "render")
	}

	result := &Result{}

	parseStart := time.Now()
	observability.Pipeline().OnParseStart(ctx)
	stmts, err := r.Parse(opts.Source)
	observability.Pipeline().OnParseComplete(ctx, len(stmts), time.Since(parseStart), err)
	if err != nil {
		return nil, err
	}
	result.Statements = stmts
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.StatementCount = len(stmts)
	result.Stats.ParticipantCount = countParticipants(stmts)

	logger.Info("parsed source",
		"statements", result.Stats.StatementCount,
		"participants", result.Stats.ParticipantCount,
		"duration", result.Stats.ParseTime)

	layoutStart := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, len(stmts))
	file, err := r.BuildDocument(stmts, opts)
	observability.Pipeline().OnLayoutComplete(ctx, time.Since(layoutStart), err)
	if err != nil {
		return nil, err
	}
	result.Stats.LayoutTime = time.Since(layoutStart)

	logger.Info("computed layout", "duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.PageName)
	result.XML, err = file.XML()
	observability.Pipeline().OnRenderComplete(ctx, opts.PageName, len(result.XML), time.Since(renderStart), err)
	if err != nil {
		return nil, err
	}
	result.Stats.RenderTime = time.Since(renderStart)

	logger.Info("rendered document",
		"bytes", len(result.XML),
		"duration", result.Stats.RenderTime)

	// Rendered documents are content-addressed, so entries never go stale.
	if err := r.Cache.Set(ctx, key, result.XML, 0); err == nil {
		observability.Cache().OnCacheSet(ctx, "render", len(result.XML))
	}

	return result, nil
}

// Parse reads DSL source into a statement list.
func (r *Runner) Parse(source string) ([]seq.Stmt, error) {
	return parse.ParseString(source)
}

// BuildDocument lays the statements out into a fresh draw.io document.
func (r *Runner) BuildDocument(stmts []seq.Stmt, opts Options) (*drawio.File, error) {
	opts.SetDefaults()

	file := drawio.NewFile(opts.IDPrefix)
	page := file.NewPage(opts.PageName)

	l := layout.New(page, layout.Options{
		LifelineWidth:   opts.LifelineWidth,
		LifelineSpacing: opts.LifelineSpacing,
	})
	if err := l.Layout(stmts); err != nil {
		return nil, err
	}
	return file, nil
}

// Check parses and lays out the source without rendering, returning the
// statements for inspection. It never touches the cache.
func (r *Runner) Check(source string, opts Options) ([]seq.Stmt, error) {
	opts.Source = source
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	stmts, err := r.Parse(source)
	if err != nil {
		return nil, err
	}
	if _, err := r.BuildDocument(stmts, opts); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
