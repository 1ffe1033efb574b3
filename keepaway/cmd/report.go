package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sarchlab/keepaway/datarecording"
	"github.com/sarchlab/keepaway/tracing"
)

func newReportCmd() *cobra.Command {
	var (
		dbFile string
		round  int
	)

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize the runs in a recorded database.",
		Long: `Report prints every run recorded in a database written by ` +
			`run --record, followed by the agent state of its last recorded ` +
			`round, or of --round when given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := datarecording.NewReader(dbFile)
			if err != nil {
				return err
			}
			defer reader.Close()

			rr := tracing.NewRoundReader(reader)
			ctx := cmd.Context()

			runs, err := rr.Runs(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			for _, run := range runs {
				fmt.Fprintf(out,
					"run %s: %d rounds, %d agents, %d items, score %d\n",
					run.RunID, run.Rounds, run.Agents, run.TotalItems, run.Score)

				at := round
				if at == 0 {
					at, err = rr.LastRound(ctx, run.RunID)
					if err != nil {
						return err
					}
				}

				agents, err := rr.AgentsAt(ctx, run.RunID, at)
				if err != nil {
					return err
				}

				if len(agents) == 0 {
					fmt.Fprintf(out, "round %d not recorded\n", at)
					continue
				}

				fmt.Fprintf(out, "round %d\n%s\n", at, agentRoundTable(agents))
			}

			return nil
		},
	}

	reportCmd.Flags().StringVar(&dbFile, "db", "", "Recorded .sqlite3 file")
	reportCmd.Flags().IntVar(&round, "round", 0,
		"Round to show, the last recorded one if 0")
	_ = reportCmd.MarkFlagRequired("db")

	return reportCmd
}

func agentRoundTable(entries []tracing.AgentRoundEntry) string {
	t := table.New().Headers("Agent", "Inspections", "Items held")

	for _, e := range entries {
		t.Row(
			fmt.Sprintf("Agent %d", e.Agent),
			strconv.FormatUint(e.Inspections, 10),
			strconv.Itoa(e.QueueLen),
		)
	}

	return t.String()
}
