package sim

// RunConfig holds the parameters of one run.
type RunConfig struct {
	TotalRounds int
	Relief      ReliefMode
	Modulus     ModulusStrategy
}

// Validate checks the parameters that do not depend on the agents.
func (c RunConfig) Validate() error {
	if c.TotalRounds < 0 {
		return runConfigError("rounds", "%d is negative", c.TotalRounds)
	}

	if c.Relief != DivideRelief && c.Relief != ModuloRelief {
		return runConfigError("relief", "unknown mode %d", int(c.Relief))
	}

	if c.Modulus != LCMModulus && c.Modulus != ProductModulus {
		return runConfigError("modulus", "unknown strategy %d", int(c.Modulus))
	}

	return nil
}

// Result is the outcome of a run.
type Result struct {
	Rounds           int
	InspectionCounts []uint64
	Score            uint64

	// Modulus is the common modulus used by modulo relief, 0 otherwise.
	Modulus uint64
}

// ResultOf collects the result from a scheduler.
func ResultOf(s *Scheduler) Result {
	counts := s.InspectionCounts()

	return Result{
		Rounds:           s.CurrentRound(),
		InspectionCounts: counts,
		Score:            Score(counts),
		Modulus:          s.relief.Modulus(),
	}
}

// Prepare validates the specs and the run configuration and returns a
// scheduler ready for round 1.
func Prepare(specs []AgentSpec, cfg RunConfig) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reg, err := NewRegistry(specs)
	if err != nil {
		return nil, err
	}

	relief, err := NewRelief(cfg.Relief, reg, cfg.Modulus)
	if err != nil {
		return nil, err
	}

	return NewScheduler(reg, relief), nil
}

// Simulate runs the configured number of rounds over the agents and returns
// the per-agent inspection counts and the score. Zero rounds give a score of
// zero.
func Simulate(specs []AgentSpec, cfg RunConfig) (Result, error) {
	s, err := Prepare(specs, cfg)
	if err != nil {
		return Result{}, err
	}

	err = s.Run(cfg.TotalRounds)
	if err != nil {
		return Result{}, err
	}

	return ResultOf(s), nil
}
