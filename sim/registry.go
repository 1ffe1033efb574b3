package sim

// A Registry is the fixed, ordered set of agents of one run. Agents reference
// each other only by index into the registry.
type Registry struct {
	agents []*Agent
}

// NewRegistry validates the specs and creates one agent per spec. Nothing is
// created if any spec is invalid.
func NewRegistry(specs []AgentSpec) (*Registry, error) {
	if len(specs) == 0 {
		return nil, &ConfigurationError{
			Agent:  -1,
			Field:  "agents",
			Reason: "agent list is empty",
			Err:    ErrNoAgents,
		}
	}

	for i, s := range specs {
		err := specMustBeValid(i, s, len(specs))
		if err != nil {
			return nil, err
		}
	}

	r := &Registry{agents: make([]*Agent, len(specs))}
	for i, s := range specs {
		r.agents[i] = newAgent(AgentID(i), s)
	}

	return r, nil
}

func specMustBeValid(i int, s AgentSpec, n int) error {
	if s.Divisor == 0 {
		return agentConfigError(i, "divisor", "must be positive")
	}

	if err := s.Operation.Validate(); err != nil {
		return agentConfigError(i, "operation", "%v", err)
	}

	if s.TrueDestination < 0 || int(s.TrueDestination) >= n {
		return agentConfigError(i, "true destination",
			"%d is out of range [0, %d)", s.TrueDestination, n)
	}

	if s.FalseDestination < 0 || int(s.FalseDestination) >= n {
		return agentConfigError(i, "false destination",
			"%d is out of range [0, %d)", s.FalseDestination, n)
	}

	return nil
}

// Len returns the number of agents.
func (r *Registry) Len() int {
	return len(r.agents)
}

// Agent returns the agent with the given id. It panics if the id is out of
// range.
func (r *Registry) Agent(id AgentID) *Agent {
	return r.agents[id]
}

// Agents returns the agents in index order. The returned slice must not be
// modified.
func (r *Registry) Agents() []*Agent {
	return r.agents
}

// Divisors returns every agent's divisor in index order.
func (r *Registry) Divisors() []uint64 {
	divisors := make([]uint64, len(r.agents))
	for i, a := range r.agents {
		divisors[i] = a.divisor
	}

	return divisors
}

// InspectionCounts returns every agent's inspection count in index order.
func (r *Registry) InspectionCounts() []uint64 {
	counts := make([]uint64, len(r.agents))
	for i, a := range r.agents {
		counts[i] = a.inspections
	}

	return counts
}

// TotalItems returns the number of items held by all agents together.
func (r *Registry) TotalItems() int {
	total := 0
	for _, a := range r.agents {
		total += a.QueueLen()
	}

	return total
}
