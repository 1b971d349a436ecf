package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/seqgen/pkg/errors"
	"github.com/matzehuels/seqgen/pkg/pipeline"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	output     string  // output file path ("" derives from input, "-" is stdout)
	pageName   string  // diagram page name
	idPrefix   string  // cell ID prefix for deterministic output
	width      float64 // horizontal space reserved per lifeline
	spacing    float64 // horizontal gap between lifelines
	configPath string  // explicit seqgen.toml path
	noCache    bool    // skip the render cache entirely
	refresh    bool    // recompute even when a cached result exists
}

// generateCommand creates the generate command for rendering diagrams.
func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate [file]",
		Short: "Render a sequence diagram to a draw.io file",
		Long: `Generate parses a sequence diagram source file, computes the layout,
and writes a draw.io XML file. Use "-" as the file argument to read
from stdin. The output path defaults to the input path with a .drawio
extension, or stdout when reading from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input with .drawio extension)")
	cmd.Flags().StringVar(&opts.pageName, "page", "", "diagram page name")
	cmd.Flags().StringVar(&opts.idPrefix, "id-prefix", "", "cell ID prefix (default: random, or SEQGEN_ID_PREFIX)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "horizontal space per lifeline")
	cmd.Flags().Float64Var(&opts.spacing, "spacing", 0, "horizontal gap between lifelines")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default: seqgen.toml in working directory)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached result exists")

	return cmd
}

func (c *CLI) runGenerate(cmd *cobra.Command, input string, opts *generateOpts) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	source, err := readSource(input)
	if err != nil {
		return err
	}

	popts := buildPipelineOptions(cmd, cfg, source, opts)
	runner := c.newRunner(cfg, opts.noCache)

	outputPath := resolveOutput(input, opts.output)
	toStdout := outputPath == ""

	var spinner *Spinner
	if !toStdout {
		spinner = newSpinnerWithContext(cmd.Context(), "Rendering diagram")
		spinner.Start()
	}

	result, err := runner.Execute(cmd.Context(), popts)
	if spinner != nil {
		cancelled := spinner.Cancelled()
		spinner.Stop()
		if err != nil {
			if cancelled {
				return context.Canceled
			}
			printError("%s", err)
			return err
		}
	}
	if err != nil {
		return err
	}

	out, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(result.XML); err != nil {
		return err
	}

	if !toStdout {
		printSuccess("Generated diagram")
		printFile(outputPath)
		printStats(result.Stats.StatementCount, result.Stats.ParticipantCount, result.CacheHit)
		c.Logger.Debug("timings",
			"parse", result.Stats.ParseTime,
			"layout", result.Stats.LayoutTime,
			"render", result.Stats.RenderTime)
	}
	return nil
}

// buildPipelineOptions merges config defaults with explicit flags.
// Flags that were set on the command line win over config values.
func buildPipelineOptions(cmd *cobra.Command, cfg Config, source string, opts *generateOpts) pipeline.Options {
	popts := pipeline.Options{
		Source:          source,
		PageName:        cfg.PageName,
		IDPrefix:        cfg.IDPrefix,
		LifelineWidth:   cfg.LifelineWidth,
		LifelineSpacing: cfg.LifelineSpacing,
		Refresh:         opts.refresh,
	}
	if cmd.Flags().Changed("page") {
		popts.PageName = opts.pageName
	}
	if cmd.Flags().Changed("id-prefix") {
		popts.IDPrefix = opts.idPrefix
	}
	if cmd.Flags().Changed("width") {
		popts.LifelineWidth = opts.width
	}
	if cmd.Flags().Changed("spacing") {
		popts.LifelineSpacing = opts.spacing
	}
	return popts
}

// readSource reads diagram source from path, or from stdin when path is "-".
func readSource(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.New(errors.ErrCodeFileNotFound, "file not found: %s", path)
		}
		return "", err
	}
	return string(data), nil
}

// resolveOutput derives the output path. An empty result means stdout.
func resolveOutput(input, output string) string {
	if output == "-" {
		return ""
	}
	if output != "" {
		return output
	}
	if input == "-" {
		return ""
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".drawio"
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}
