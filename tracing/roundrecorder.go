// Package tracing provides hooks that observe a running simulation.
package tracing

import (
	"sync"

	"github.com/sarchlab/keepaway/datarecording"
	"github.com/sarchlab/keepaway/sim"
)

// Table names written by a RoundRecorder.
const (
	AgentRoundTable = "agent_rounds"
	RunSummaryTable = "run_summary"
)

// AgentRoundEntry is the state of one agent after a round.
type AgentRoundEntry struct {
	RunID       string
	Round       int
	Agent       int
	Inspections uint64
	QueueLen    int
}

// RunSummaryEntry describes a finished run.
type RunSummaryEntry struct {
	RunID      string
	Rounds     int
	Agents     int
	TotalItems int
	Score      uint64
}

// RoundRecorder is a hook that writes per-agent state into a DataRecorder
// after every sampled round, and a summary when the simulation ends.
type RoundRecorder struct {
	mu           sync.Mutex
	runID        string
	backend      datarecording.DataRecorder
	every        int
	lastRecorded int
}

// NewRoundRecorder creates the tables and returns a recorder that samples
// every n-th round. Values of n below 1 record every round.
func NewRoundRecorder(
	runID string,
	backend datarecording.DataRecorder,
	every int,
) *RoundRecorder {
	if every < 1 {
		every = 1
	}

	backend.CreateTable(AgentRoundTable, AgentRoundEntry{})
	backend.CreateTable(RunSummaryTable, RunSummaryEntry{})

	return &RoundRecorder{
		runID:   runID,
		backend: backend,
		every:   every,
	}
}

// Func records the registry after sampled rounds.
func (r *RoundRecorder) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosAfterRound {
		return
	}

	round := ctx.Item.(int)
	if round%r.every != 0 {
		return
	}

	s := ctx.Domain.(*sim.Scheduler)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.recordRound(round, s.Registry())
}

// Handle records the last round if sampling skipped it, then the summary.
func (r *RoundRecorder) Handle(rounds int, reg *sim.Registry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rounds > 0 && r.lastRecorded != rounds {
		r.recordRound(rounds, reg)
	}

	r.backend.InsertData(RunSummaryTable, RunSummaryEntry{
		RunID:      r.runID,
		Rounds:     rounds,
		Agents:     reg.Len(),
		TotalItems: reg.TotalItems(),
		Score:      sim.Score(reg.InspectionCounts()),
	})

	r.backend.Flush()
}

func (r *RoundRecorder) recordRound(round int, reg *sim.Registry) {
	for _, a := range reg.Agents() {
		r.backend.InsertData(AgentRoundTable, AgentRoundEntry{
			RunID:       r.runID,
			Round:       round,
			Agent:       int(a.ID()),
			Inspections: a.Inspections(),
			QueueLen:    a.QueueLen(),
		})
	}

	r.lastRecorded = round
}
