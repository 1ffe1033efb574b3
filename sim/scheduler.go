package sim

// HookPosBeforeRound is triggered before the first agent of a round takes its
// turn. The hook item is the round number, starting from 1.
var HookPosBeforeRound = &HookPos{Name: "BeforeRound"}

// HookPosAfterRound is triggered after the last agent of a round finishes its
// turn. The hook item is the round number.
var HookPosAfterRound = &HookPos{Name: "AfterRound"}

// HookPosBeforeTurn is triggered before an agent starts draining its queue.
// The hook item is the *Agent.
var HookPosBeforeTurn = &HookPos{Name: "BeforeTurn"}

// HookPosAfterTurn is triggered after an agent has drained its queue. The
// hook item is the *Agent.
var HookPosAfterTurn = &HookPos{Name: "AfterTurn"}

// HookPosInspection is triggered once per inspected item, after the item has
// been pushed to its destination. The hook item is the *Agent that inspected
// it and the detail is an Inspection.
var HookPosInspection = &HookPos{Name: "Inspection"}

// An Inspection describes one transform-and-route event.
type Inspection struct {
	Round  int
	From   AgentID
	To     AgentID
	Before uint64
	After  uint64
}

// A SimulationEndHandler is a handler that is called after the last round.
type SimulationEndHandler interface {
	Handle(rounds int, reg *Registry)
}

// A Scheduler drives the rounds of a simulation. Agents take their turns one
// after another in index order, and nothing else mutates agent state.
type Scheduler struct {
	HookableBase

	registry *Registry
	relief   Relief
	round    int
	err      error

	simulationEndHandlers []SimulationEndHandler
}

// NewScheduler creates a scheduler that has not run any round yet.
func NewScheduler(reg *Registry, relief Relief) *Scheduler {
	return &Scheduler{
		registry: reg,
		relief:   relief,
	}
}

// Registry returns the agents the scheduler drives.
func (s *Scheduler) Registry() *Registry {
	return s.registry
}

// Relief returns the bounding step in use.
func (s *Scheduler) Relief() Relief {
	return s.relief
}

// Err returns the error that stopped the scheduler, if any.
func (s *Scheduler) Err() error {
	return s.err
}

// CurrentRound returns the number of completed rounds.
func (s *Scheduler) CurrentRound() int {
	return s.round
}

// InspectionCounts returns every agent's inspection count in index order.
func (s *Scheduler) InspectionCounts() []uint64 {
	return s.registry.InspectionCounts()
}

// RegisterSimulationEndHandler registers a handler that is called once Run
// has completed all of its rounds.
func (s *Scheduler) RegisterSimulationEndHandler(h SimulationEndHandler) {
	s.simulationEndHandlers = append(s.simulationEndHandlers, h)
}

// Run runs the given number of rounds and then calls the simulation end
// handlers. It stops at the first round that fails.
func (s *Scheduler) Run(rounds int) error {
	if s.err != nil {
		return s.err
	}

	for i := 0; i < rounds; i++ {
		err := s.RunRound()
		if err != nil {
			return err
		}
	}

	s.Finished()

	return nil
}

// Finished invokes all the registered SimulationEndHandlers.
func (s *Scheduler) Finished() {
	for _, h := range s.simulationEndHandlers {
		h.Handle(s.round, s.registry)
	}
}

// RunRound lets every agent take exactly one turn. Once a round has failed,
// the scheduler stays stopped and every later call returns the same error.
func (s *Scheduler) RunRound() error {
	if s.err != nil {
		return s.err
	}

	round := s.round + 1
	s.invoke(HookPosBeforeRound, round, nil)

	for _, a := range s.registry.agents {
		err := s.takeTurn(round, a)
		if err != nil {
			s.err = err
			return err
		}
	}

	s.round = round
	s.invoke(HookPosAfterRound, round, nil)

	return nil
}

// takeTurn drains the items the agent held when its turn started. The count
// is captured up front so that items the agent throws to itself wait for the
// next round.
func (s *Scheduler) takeTurn(round int, a *Agent) error {
	s.invoke(HookPosBeforeTurn, a, nil)

	k := a.QueueLen()
	for i := 0; i < k; i++ {
		before, _ := a.queue.Peek()

		hi, lo := a.operation.Apply(before)
		after, ok := s.relief.Reduce(hi, lo)
		if !ok {
			return &OverflowError{Round: round, Agent: a.id}
		}

		a.InspectNext()
		a.RecordInspection()

		to := a.Route(after)
		s.registry.agents[to].Receive(after)

		if s.NumHooks() > 0 {
			s.InvokeHook(HookCtx{
				Domain: s,
				Pos:    HookPosInspection,
				Item:   a,
				Detail: Inspection{
					Round:  round,
					From:   a.id,
					To:     to,
					Before: before,
					After:  after,
				},
			})
		}
	}

	s.invoke(HookPosAfterTurn, a, nil)

	return nil
}

func (s *Scheduler) invoke(pos *HookPos, item, detail interface{}) {
	if s.NumHooks() == 0 {
		return
	}

	s.InvokeHook(HookCtx{
		Domain: s,
		Pos:    pos,
		Item:   item,
		Detail: detail,
	})
}
