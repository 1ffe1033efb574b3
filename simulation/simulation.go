// Package simulation assembles a runnable keep-away simulation from a list of
// agents and the optional recording, tracing and monitoring services.
package simulation

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sarchlab/keepaway/datarecording"
	"github.com/sarchlab/keepaway/monitoring"
	"github.com/sarchlab/keepaway/sim"
	"github.com/sarchlab/keepaway/tracing"
)

// ErrAlreadyRun is returned when Run is called a second time.
var ErrAlreadyRun = errors.New("simulation already run")

// A Simulation owns a scheduler and the services attached to it.
type Simulation struct {
	id     string
	cfg    sim.RunConfig
	logger *zap.Logger

	scheduler    *sim.Scheduler
	routing      *tracing.RoutingTracer
	dataRecorder datarecording.DataRecorder
	recordFile   string
	monitor      *monitoring.Monitor
	roundBar     *monitoring.ProgressBar

	ran bool
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Config returns the run configuration.
func (s *Simulation) Config() sim.RunConfig {
	return s.cfg
}

// Scheduler returns the scheduler driving the rounds.
func (s *Simulation) Scheduler() *sim.Scheduler {
	return s.scheduler
}

// Routing returns the tracer counting throws between agents.
func (s *Simulation) Routing() *tracing.RoutingTracer {
	return s.routing
}

// Monitor returns the monitor, or nil if monitoring is off.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// DataRecorder returns the recorder, or nil if recording is off.
func (s *Simulation) DataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// RecordFile returns the SQLite file of the run, or an empty string.
func (s *Simulation) RecordFile() string {
	return s.recordFile
}

// Run runs all the configured rounds and returns the result.
func (s *Simulation) Run() (sim.Result, error) {
	if s.ran {
		return sim.Result{}, ErrAlreadyRun
	}

	s.ran = true

	s.logger.Info("simulation started",
		zap.Int("agents", s.scheduler.Registry().Len()),
		zap.Int("rounds", s.cfg.TotalRounds),
		zap.Stringer("relief", s.cfg.Relief),
		zap.Uint64("modulus", s.scheduler.Relief().Modulus()))

	start := time.Now()

	err := s.scheduler.Run(s.cfg.TotalRounds)
	if err != nil {
		s.logger.Error("simulation failed",
			zap.Int("round", s.scheduler.CurrentRound()+1),
			zap.Error(err))

		return sim.Result{}, err
	}

	result := sim.ResultOf(s.scheduler)

	s.logger.Info("simulation completed",
		zap.Uint64s("inspections", result.InspectionCounts),
		zap.Uint64("score", result.Score),
		zap.Duration("elapsed", time.Since(start)))

	return result, nil
}

// Terminate stops the monitor and flushes and closes the recorder.
func (s *Simulation) Terminate() error {
	var errs []error

	if s.monitor != nil {
		if s.roundBar != nil {
			s.monitor.CompleteProgressBar(s.roundBar)
			s.roundBar = nil
		}

		errs = append(errs, s.monitor.Close())
	}

	if s.dataRecorder != nil {
		errs = append(errs, s.dataRecorder.Close())
	}

	return errors.Join(errs...)
}
