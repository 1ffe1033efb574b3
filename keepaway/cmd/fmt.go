package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/keepaway/input"
)

func newFmtCmd() *cobra.Command {
	var (
		inputFile string
		asYAML    bool
	)

	fmtCmd := &cobra.Command{
		Use:   "fmt",
		Short: "Print the agents of a file in notes or YAML form.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, err := input.LoadFile(inputFile)
			if err != nil {
				return err
			}

			if asYAML {
				return input.EncodeYAML(cmd.OutOrStdout(), specs)
			}

			fmt.Fprint(cmd.OutOrStdout(), input.Format(specs))

			return nil
		},
	}

	fmtCmd.Flags().StringVarP(&inputFile, "input", "i", "",
		"Notes or YAML file")
	fmtCmd.Flags().BoolVar(&asYAML, "yaml", false, "Print a YAML agent list")
	_ = fmtCmd.MarkFlagRequired("input")

	return fmtCmd
}
