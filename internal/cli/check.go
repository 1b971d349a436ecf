package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/seqgen/pkg/pipeline"
)

// checkCommand creates the check command for validating diagram sources.
func (c *CLI) checkCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Validate a sequence diagram source without writing output",
		Long: `Check parses a source file and runs the full layout pass, reporting
the first error it finds with its line number. Nothing is written.
Use "-" as the file argument to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(args[0], configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: seqgen.toml in working directory)")

	return cmd
}

func (c *CLI) runCheck(input, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	source, err := readSource(input)
	if err != nil {
		return err
	}

	runner := c.newRunner(cfg, true)
	stmts, err := runner.Check(source, pipeline.Options{
		Source:          source,
		LifelineWidth:   cfg.LifelineWidth,
		LifelineSpacing: cfg.LifelineSpacing,
	})
	if err != nil {
		printError("%s", err)
		return err
	}

	printSuccess("Diagram is valid")
	printDetail("%d statements", len(stmts))
	return nil
}
