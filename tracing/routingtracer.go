package tracing

import (
	"sync"

	"github.com/sarchlab/keepaway/sim"
)

type route struct {
	from, to sim.AgentID
}

// RoutingTracer counts how many items each agent has thrown to each other
// agent.
type RoutingTracer struct {
	lock      sync.Mutex
	numAgents int
	counts    map[route]uint64
	total     uint64
}

// NewRoutingTracer creates a tracer for a simulation with numAgents agents.
func NewRoutingTracer(numAgents int) *RoutingTracer {
	return &RoutingTracer{
		numAgents: numAgents,
		counts:    make(map[route]uint64),
	}
}

// Func counts inspection events.
func (t *RoutingTracer) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosInspection {
		return
	}

	insp := ctx.Detail.(sim.Inspection)

	t.lock.Lock()
	t.counts[route{insp.From, insp.To}]++
	t.total++
	t.lock.Unlock()
}

// Count returns the number of items thrown from one agent to another.
func (t *RoutingTracer) Count(from, to sim.AgentID) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.counts[route{from, to}]
}

// Total returns the number of throws observed.
func (t *RoutingTracer) Total() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.total
}

// Matrix returns the counts indexed by [from][to].
func (t *RoutingTracer) Matrix() [][]uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	m := make([][]uint64, t.numAgents)
	for i := range m {
		m[i] = make([]uint64, t.numAgents)
	}

	for r, n := range t.counts {
		m[r.from][r.to] = n
	}

	return m
}
