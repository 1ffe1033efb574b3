package sim

// An AgentState is a copy of one agent's observable state.
type AgentState struct {
	ID          AgentID  `json:"id"`
	Name        string   `json:"name"`
	Operation   string   `json:"operation"`
	Divisor     uint64   `json:"divisor"`
	IfTrue      AgentID  `json:"if_true"`
	IfFalse     AgentID  `json:"if_false"`
	Inspections uint64   `json:"inspections"`
	Items       []uint64 `json:"items"`
}

// A Snapshot is a copy of the whole simulation state between two rounds. It
// shares no memory with the registry.
type Snapshot struct {
	Round  int          `json:"round"`
	Agents []AgentState `json:"agents"`
}

// Snapshot copies the current state of every agent.
func (s *Scheduler) Snapshot() Snapshot {
	snap := Snapshot{
		Round:  s.round,
		Agents: make([]AgentState, 0, s.registry.Len()),
	}

	for _, a := range s.registry.agents {
		snap.Agents = append(snap.Agents, AgentState{
			ID:          a.id,
			Name:        a.name,
			Operation:   a.operation.String(),
			Divisor:     a.divisor,
			IfTrue:      a.ifTrue,
			IfFalse:     a.ifFalse,
			Inspections: a.inspections,
			Items:       a.Items(),
		})
	}

	return snap
}

// InspectionCounts returns the per-agent counts held in the snapshot.
func (s Snapshot) InspectionCounts() []uint64 {
	counts := make([]uint64, len(s.Agents))
	for i, a := range s.Agents {
		counts[i] = a.Inspections
	}

	return counts
}
