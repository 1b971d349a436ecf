// Package cli implements the seqgen command-line interface.
//
// This package provides commands for generating draw.io sequence diagrams
// from DSL files, validating diagram sources, serving the renderer over HTTP,
// and managing the render cache. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - generate: Render a .seq file into a .drawio file
//   - check: Parse and lay out a source without writing output
//   - serve: Expose rendering over HTTP
//   - cache: Manage the render cache
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/seqgen/pkg/buildinfo"
	"github.com/matzehuels/seqgen/pkg/cache"
	"github.com/matzehuels/seqgen/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "seqgen"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "seqgen",
		Short:         "Seqgen renders sequence diagrams for draw.io",
		Long:          `Seqgen is a CLI tool that turns a small text DSL into draw.io sequence diagrams with deterministic layout, so diagrams can live next to the code and be regenerated on every change.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(cfg Config, noCache bool) *pipeline.Runner {
	return pipeline.NewRunner(newCache(cfg, noCache), c.Logger)
}

func newCache(cfg Config, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir := cfg.CacheDir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache()
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return fc
}

// cacheDir returns the cache directory using XDG standard (~/.cache/seqgen/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
