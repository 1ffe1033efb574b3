package simulation

import (
	"fmt"

	"github.com/rs/xid"
	"go.uber.org/zap"

	"github.com/sarchlab/keepaway/datarecording"
	"github.com/sarchlab/keepaway/monitoring"
	"github.com/sarchlab/keepaway/sim"
	"github.com/sarchlab/keepaway/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	cfg         sim.RunConfig
	recordOn    bool
	recordPath  string
	recordEvery int
	monitorOn   bool
	monitorPort int
	conserve    bool
	logInspect  bool
	logger      *zap.Logger
	hooks       []sim.Hook
}

// MakeBuilder creates a new builder for a 20-round run with divide relief,
// without recording or monitoring.
func MakeBuilder() Builder {
	return Builder{
		cfg: sim.RunConfig{
			TotalRounds: 20,
			Relief:      sim.DivideRelief,
			Modulus:     sim.LCMModulus,
		},
		recordEvery: 1,
	}
}

// WithConfig sets the rounds, relief and modulus strategy.
func (b Builder) WithConfig(cfg sim.RunConfig) Builder {
	b.cfg = cfg
	return b
}

// WithRecordPath records the run into <path>.sqlite3. An empty path names
// the file after the simulation ID.
func (b Builder) WithRecordPath(path string) Builder {
	b.recordOn = true
	b.recordPath = path
	return b
}

// WithoutRecording disables recording.
func (b Builder) WithoutRecording() Builder {
	b.recordOn = false
	b.recordPath = ""
	return b
}

// WithRecordEvery records one round out of every n.
func (b Builder) WithRecordEvery(n int) Builder {
	b.recordEvery = n
	return b
}

// WithMonitor serves the monitor on the given port. Zero picks a random
// port.
func (b Builder) WithMonitor(port int) Builder {
	b.monitorOn = true
	b.monitorPort = port
	return b
}

// WithLogger sets the logger used by the simulation and its monitor.
func (b Builder) WithLogger(logger *zap.Logger) Builder {
	b.logger = logger
	return b
}

// WithHook adds a hook to the scheduler.
func (b Builder) WithHook(h sim.Hook) Builder {
	hooks := make([]sim.Hook, len(b.hooks), len(b.hooks)+1)
	copy(hooks, b.hooks)
	b.hooks = append(hooks, h)

	return b
}

// WithConservationCheck panics after any round that changes the item total.
func (b Builder) WithConservationCheck() Builder {
	b.conserve = true
	return b
}

// WithInspectionLog logs every inspection at debug level.
func (b Builder) WithInspectionLog() Builder {
	b.logInspect = true
	return b
}

func (b Builder) parametersMustBeValid() error {
	if b.recordEvery < 0 {
		return fmt.Errorf("record every %d rounds: must not be negative",
			b.recordEvery)
	}

	if b.monitorPort < 0 || b.monitorPort > 65535 {
		return fmt.Errorf("monitor port %d out of range", b.monitorPort)
	}

	return nil
}

// Build validates the agents and creates the simulation. Nothing is written
// to disk and no server is started if validation fails.
func (b Builder) Build(specs []sim.AgentSpec) (*Simulation, error) {
	if err := b.parametersMustBeValid(); err != nil {
		return nil, err
	}

	scheduler, err := sim.Prepare(specs, b.cfg)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		id:        xid.New().String(),
		cfg:       b.cfg,
		scheduler: scheduler,
		logger:    b.logger,
	}

	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	s.logger = s.logger.With(zap.String("run", s.id))

	s.routing = tracing.NewRoutingTracer(scheduler.Registry().Len())
	scheduler.AcceptHook(s.routing)

	if b.conserve {
		scheduler.AcceptHook(tracing.NewConservationChecker(scheduler.Registry()))
	}

	if b.logInspect {
		scheduler.AcceptHook(tracing.NewInspectionLogger(s.logger))
	}

	for _, h := range b.hooks {
		scheduler.AcceptHook(h)
	}

	if b.recordOn {
		if err := s.startRecording(b.recordPath, b.recordEvery); err != nil {
			return nil, err
		}
	}

	if b.monitorOn {
		if err := s.startMonitor(b.monitorPort); err != nil {
			s.Terminate()
			return nil, err
		}
	}

	return s, nil
}

func (s *Simulation) startRecording(path string, every int) error {
	if path == "" {
		path = "keepaway_" + s.id
	}

	recorder, err := datarecording.New(path)
	if err != nil {
		return err
	}

	s.dataRecorder = recorder
	s.recordFile = path + ".sqlite3"

	rr := tracing.NewRoundRecorder(s.id, recorder, every)
	s.scheduler.AcceptHook(rr)
	s.scheduler.RegisterSimulationEndHandler(rr)

	s.logger.Debug("recording", zap.String("file", s.recordFile))

	return nil
}

func (s *Simulation) startMonitor(port int) error {
	s.monitor = monitoring.NewMonitor().
		WithLogger(s.logger).
		WithPortNumber(port)

	s.scheduler.AcceptHook(s.monitor)
	s.monitor.Publish(s.scheduler)
	s.roundBar = s.monitor.TrackRounds(s.cfg.TotalRounds)

	_, err := s.monitor.StartServer()

	return err
}
