package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sarchlab/keepaway/input"
	"github.com/sarchlab/keepaway/sim"
)

func newValidateCmd() *cobra.Command {
	var inputFile string

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a notes file and summarize its agents.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, err := input.LoadFile(inputFile)
			if err != nil {
				return err
			}

			reg, err := sim.NewRegistry(specs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, agentTable(reg))

			modulus, err := sim.CommonModulus(reg.Divisors(), sim.LCMModulus)
			if err != nil {
				fmt.Fprintf(out, "%d agents, %d items, no 64-bit common modulus\n",
					reg.Len(), reg.TotalItems())

				return nil
			}

			fmt.Fprintf(out, "%d agents, %d items, common modulus %d\n",
				reg.Len(), reg.TotalItems(), modulus)

			return nil
		},
	}

	validateCmd.Flags().StringVarP(&inputFile, "input", "i", "",
		"Notes or YAML file")
	_ = validateCmd.MarkFlagRequired("input")

	return validateCmd
}

func agentTable(reg *sim.Registry) string {
	t := table.New().
		Headers("Agent", "Items", "Operation", "Divisor", "If true", "If false")

	for _, a := range reg.Agents() {
		items := make([]string, 0, a.QueueLen())
		for _, item := range a.Items() {
			items = append(items, strconv.FormatUint(item, 10))
		}

		ifTrue, ifFalse := a.Destinations()

		t.Row(
			a.Name(),
			strings.Join(items, ", "),
			a.Operation().String(),
			strconv.FormatUint(a.Divisor(), 10),
			strconv.Itoa(int(ifTrue)),
			strconv.Itoa(int(ifFalse)),
		)
	}

	return t.String()
}
