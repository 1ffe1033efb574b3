package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/keepaway/config"
	"github.com/sarchlab/keepaway/input"
)

func newSolveCmd(root *rootOptions) *cobra.Command {
	var inputFile string

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "Print the scores of the short and the long preset.",
		Long: `Solve runs the 20-round divide relief preset and the ` +
			`10,000-round modulo relief preset on the same agents and prints ` +
			`both scores.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, err := input.LoadFile(inputFile)
			if err != nil {
				return err
			}

			presets := []struct {
				name string
				cfg  config.Config
			}{
				{"part one", config.PartOne()},
				{"part two", config.PartTwo()},
			}

			for _, p := range presets {
				s, err := buildSimulation(p.cfg, specs, root.logger, false)
				if err != nil {
					return err
				}

				result, err := s.Run()
				if err := terminate(s, err); err != nil {
					return fmt.Errorf("%s: %w", p.name, err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", p.name, result.Score)
			}

			return nil
		},
	}

	solveCmd.Flags().StringVarP(&inputFile, "input", "i", "",
		"Notes or YAML file")
	_ = solveCmd.MarkFlagRequired("input")

	return solveCmd
}
