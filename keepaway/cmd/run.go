package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sarchlab/keepaway/config"
	"github.com/sarchlab/keepaway/input"
	"github.com/sarchlab/keepaway/sim"
	"github.com/sarchlab/keepaway/simulation"
)

type runOptions struct {
	input       string
	configFile  string
	rounds      int
	relief      string
	modulus     string
	record      string
	recordEvery int
	monitor     bool
	monitorPort int
	open        bool
	counts      bool
	logInspect  bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	ro := &runOptions{}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation and print its score.",
		Long: `Run reads the agents from a notes or YAML file, runs the ` +
			`configured number of rounds, and prints the score. Settings come ` +
			`from the defaults, then --config, then KEEPAWAY_* variables ` +
			`(also read from .env), then flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, ro)
			if err != nil {
				return err
			}

			specs, err := input.LoadFile(ro.input)
			if err != nil {
				return err
			}

			s, err := buildSimulation(cfg, specs, root.logger, ro.logInspect)
			if err != nil {
				return err
			}

			if ro.open && s.Monitor() != nil {
				if err := s.Monitor().OpenInBrowser(); err != nil {
					root.logger.Warn("cannot open browser", zap.Error(err))
				}
			}

			return terminate(s, printRun(cmd.OutOrStdout(), s, ro.counts))
		},
	}

	flags := runCmd.Flags()
	flags.StringVarP(&ro.input, "input", "i", "", "Notes or YAML file")
	flags.StringVar(&ro.configFile, "config", "", "YAML run configuration")
	flags.IntVar(&ro.rounds, "rounds", 20, "Number of rounds")
	flags.StringVar(&ro.relief, "relief", "divide", "Relief: divide or modulo")
	flags.StringVar(&ro.modulus, "modulus", "lcm",
		"Common modulus: lcm or product")
	flags.StringVar(&ro.record, "record", "",
		"Record rounds into <path>.sqlite3")
	flags.IntVar(&ro.recordEvery, "record-every", 1,
		"Record one round out of every N")
	flags.BoolVar(&ro.monitor, "monitor", false, "Serve the monitor")
	flags.IntVar(&ro.monitorPort, "monitor-port", 0,
		"Monitor port, random if 0")
	flags.BoolVar(&ro.open, "open", false, "Open the monitor in a browser")
	flags.BoolVar(&ro.counts, "counts", false,
		"Print the inspection count of every agent")
	flags.BoolVar(&ro.logInspect, "log-inspections", false,
		"Log every inspection, needs --verbose")
	_ = runCmd.MarkFlagRequired("input")

	return runCmd
}

func printRun(out io.Writer, s *simulation.Simulation, counts bool) error {
	result, err := s.Run()
	if err != nil {
		return err
	}

	if counts {
		for i, n := range result.InspectionCounts {
			fmt.Fprintf(out, "Agent %d: %d inspections\n", i, n)
		}
	}

	fmt.Fprintln(out, result.Score)

	return nil
}

type terminator interface {
	Terminate() error
}

// terminate shuts t down and joins a shutdown failure onto err.
func terminate(t terminator, err error) error {
	if tErr := t.Terminate(); tErr != nil {
		return errors.Join(err, fmt.Errorf("terminate: %w", tErr))
	}

	return err
}

func resolveConfig(cmd *cobra.Command, ro *runOptions) (config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Config{}, err
	}

	cfg := config.Default()

	if ro.configFile != "" {
		var err error

		cfg, err = config.Load(ro.configFile)
		if err != nil {
			return cfg, err
		}
	}

	cfg, err := config.ApplyEnv(cfg)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()

	if flags.Changed("rounds") {
		cfg.Rounds = ro.rounds
	}

	if flags.Changed("relief") {
		cfg.Relief = ro.relief
	}

	if flags.Changed("modulus") {
		cfg.Modulus = ro.modulus
	}

	if flags.Changed("record") {
		cfg.Record.Enabled = ro.record != ""
		cfg.Record.Path = ro.record
	}

	if flags.Changed("record-every") {
		cfg.Record.Every = ro.recordEvery
	}

	if ro.monitor || ro.open || flags.Changed("monitor-port") {
		cfg.Monitor.Enabled = true
	}

	if flags.Changed("monitor-port") {
		cfg.Monitor.Port = ro.monitorPort
	}

	return cfg, cfg.Validate()
}

func buildSimulation(
	cfg config.Config,
	specs []sim.AgentSpec,
	logger *zap.Logger,
	logInspect bool,
) (*simulation.Simulation, error) {
	rc, err := cfg.RunConfig()
	if err != nil {
		return nil, err
	}

	b := simulation.MakeBuilder().
		WithConfig(rc).
		WithLogger(logger)

	if cfg.Record.Enabled {
		b = b.WithRecordPath(cfg.Record.Path).
			WithRecordEvery(cfg.Record.Every)
	}

	if logInspect {
		b = b.WithInspectionLog()
	}

	if cfg.Monitor.Enabled {
		b = b.WithMonitor(cfg.Monitor.Port)
	}

	return b.Build(specs)
}
