package sim

import (
	"errors"
	"fmt"
)

// ErrNoAgents is wrapped by the ConfigurationError returned for an empty
// agent list.
var ErrNoAgents = errors.New("no agents")

// A ConfigurationError reports an agent list or run configuration that cannot
// be simulated. It is always returned before the first round runs.
type ConfigurationError struct {
	// Agent is the index of the offending agent, or -1 if the error is not
	// about a single agent.
	Agent  int
	Field  string
	Reason string

	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Agent < 0 {
		return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
	}

	return fmt.Sprintf("invalid configuration: agent %d: %s: %s",
		e.Agent, e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func agentConfigError(agent int, field, format string, args ...any) error {
	return &ConfigurationError{
		Agent:  agent,
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	}
}

func runConfigError(field, format string, args ...any) error {
	return &ConfigurationError{
		Agent:  -1,
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	}
}

// An OverflowError reports that an item could not be brought back into 64
// bits by the relief step. Only divide relief can produce it.
type OverflowError struct {
	Round int
	Agent AgentID
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("round %d: agent %d: worry level overflows 64 bits",
		e.Round, e.Agent)
}
