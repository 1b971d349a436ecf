package cli

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/seqgen/pkg/errors"
	"github.com/matzehuels/seqgen/pkg/pipeline"
)

// maxRenderBody caps the request body size for render requests.
const maxRenderBody = 1 << 20 // 1 MiB

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr       string
	configPath string
	noCache    bool
}

// serveCommand creates the serve command exposing rendering over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: ":8080"}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve diagram rendering over HTTP",
		Long: `Serve starts an HTTP server that renders diagram sources on demand.

Endpoints:
  POST /render   Render the request body (diagram source) to draw.io XML.
                 Query parameters: page, prefix, width, spacing, refresh.
  GET  /healthz  Liveness probe.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default: seqgen.toml in working directory)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	runner := c.newRunner(cfg, opts.noCache)

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           c.routes(runner, cfg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", opts.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return ctx.Err()
}

// routes builds the HTTP router for the render service.
func (c *CLI) routes(runner *pipeline.Runner, cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(c.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	r.Post("/render", c.handleRender(runner, cfg))

	return r
}

// requestLogger logs each request with its duration at debug level.
func (c *CLI) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		c.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (c *CLI) handleRender(runner *pipeline.Runner, cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRenderBody))
		if err != nil {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}

		popts := pipeline.Options{
			Source:          string(body),
			PageName:        cfg.PageName,
			IDPrefix:        cfg.IDPrefix,
			LifelineWidth:   cfg.LifelineWidth,
			LifelineSpacing: cfg.LifelineSpacing,
		}
		applyQuery(&popts, r)

		result, err := runner.Execute(r.Context(), popts)
		if err != nil {
			http.Error(w, err.Error(), renderStatus(err))
			return
		}

		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		if result.CacheHit {
			w.Header().Set("X-Cache", "hit")
		}
		_, _ = w.Write(result.XML)
	}
}

// applyQuery overrides pipeline options from render query parameters.
func applyQuery(popts *pipeline.Options, r *http.Request) {
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		popts.PageName = v
	}
	if v := q.Get("prefix"); v != "" {
		popts.IDPrefix = v
	}
	if v := q.Get("width"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			popts.LifelineWidth = f
		}
	}
	if v := q.Get("spacing"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			popts.LifelineSpacing = f
		}
	}
	if v := q.Get("refresh"); v == "1" || v == "true" {
		popts.Refresh = true
	}
}

// renderStatus maps pipeline errors to HTTP status codes. Diagram errors
// are client errors; anything unrecognized is a server error.
func renderStatus(err error) int {
	switch errors.GetCode(err) {
	case "":
		return http.StatusInternalServerError
	case errors.ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}
