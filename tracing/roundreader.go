package tracing

import (
	"context"

	"github.com/sarchlab/keepaway/datarecording"
)

// RoundReader reads back the tables written by a RoundRecorder.
type RoundReader struct {
	reader datarecording.DataReader
}

// NewRoundReader maps the recorder tables on reader.
func NewRoundReader(reader datarecording.DataReader) *RoundReader {
	reader.MapTable(AgentRoundTable, AgentRoundEntry{})
	reader.MapTable(RunSummaryTable, RunSummaryEntry{})

	return &RoundReader{reader: reader}
}

// Runs returns the summaries of every recorded run.
func (r *RoundReader) Runs(ctx context.Context) ([]RunSummaryEntry, error) {
	rows, _, err := r.reader.Query(ctx, RunSummaryTable,
		datarecording.QueryParams{OrderBy: "RunID"})
	if err != nil {
		return nil, err
	}

	runs := make([]RunSummaryEntry, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, *row.(*RunSummaryEntry))
	}

	return runs, nil
}

// LastRound returns the highest round recorded for a run, or 0 if the run
// has no agent rows.
func (r *RoundReader) LastRound(ctx context.Context, runID string) (int, error) {
	rows, _, err := r.reader.Query(ctx, AgentRoundTable,
		datarecording.QueryParams{
			Where:   "RunID = ?",
			Args:    []any{runID},
			OrderBy: "Round DESC",
			Limit:   1,
		})
	if err != nil || len(rows) == 0 {
		return 0, err
	}

	return rows[0].(*AgentRoundEntry).Round, nil
}

// AgentsAt returns the agent rows of one recorded round, in agent order.
func (r *RoundReader) AgentsAt(
	ctx context.Context,
	runID string,
	round int,
) ([]AgentRoundEntry, error) {
	rows, _, err := r.reader.Query(ctx, AgentRoundTable,
		datarecording.QueryParams{
			Where:   "RunID = ? AND Round = ?",
			Args:    []any{runID, round},
			OrderBy: "Agent",
		})
	if err != nil {
		return nil, err
	}

	entries := make([]AgentRoundEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, *row.(*AgentRoundEntry))
	}

	return entries, nil
}
