// Package cmd provides the command-line interface for keep-away simulations.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type rootOptions struct {
	verbose bool
	quiet   bool
	logger  *zap.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "keepaway",
		Short: "Simulate agents passing items around in rounds.",
		Long: `keepaway runs the keep-away simulation described in a notes ` +
			`file: agents inspect the items they hold, transform them, and ` +
			`throw them to each other. The score is the product of the two ` +
			`largest inspection counts.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.quiet {
				return nil
			}

			config := zap.NewProductionConfig()
			if opts.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}

			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			opts.logger = logger

			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = opts.logger.Sync()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Log at debug level")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false,
		"Disable logging")

	rootCmd.AddCommand(
		newRunCmd(opts),
		newSolveCmd(opts),
		newValidateCmd(),
		newFmtCmd(),
		newReportCmd(),
	)

	return rootCmd
}

// Execute runs the root command and exits with a non-zero status on error.
func Execute() {
	err := NewRootCmd().Execute()
	if err != nil {
		os.Exit(1)
	}
}
