// Package config loads the run configuration from defaults, a YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/keepaway/sim"
)

// Environment variables that override the configuration file.
const (
	EnvRounds      = "KEEPAWAY_ROUNDS"
	EnvRelief      = "KEEPAWAY_RELIEF"
	EnvModulus     = "KEEPAWAY_MODULUS"
	EnvRecordPath  = "KEEPAWAY_RECORD_PATH"
	EnvMonitorPort = "KEEPAWAY_MONITOR_PORT"
)

// Config is everything a run needs besides the agents.
type Config struct {
	Rounds  int     `yaml:"rounds"`
	Relief  string  `yaml:"relief"`
	Modulus string  `yaml:"modulus"`
	Record  Record  `yaml:"record"`
	Monitor Monitor `yaml:"monitor"`
}

// Record configures the SQLite recording of a run.
type Record struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Every   int    `yaml:"every"`
}

// Monitor configures the HTTP monitor.
type Monitor struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Default returns the configuration of a short run with divide relief.
func Default() Config {
	return PartOne()
}

// PartOne returns the 20-round divide relief preset.
func PartOne() Config {
	return Config{
		Rounds:  20,
		Relief:  "divide",
		Modulus: "lcm",
		Record:  Record{Every: 1},
	}
}

// PartTwo returns the 10,000-round modulo relief preset.
func PartTwo() Config {
	c := PartOne()
	c.Rounds = 10000
	c.Relief = "modulo"

	return c
}

// Load reads a YAML file over the defaults. Fields missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	c := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}

	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", f, err)
		}
	}

	return nil
}

// ApplyEnv overrides fields from KEEPAWAY_* environment variables.
func ApplyEnv(c Config) (Config, error) {
	if v, ok := os.LookupEnv(EnvRounds); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c, fmt.Errorf("%s: %w", EnvRounds, err)
		}

		c.Rounds = n
	}

	if v, ok := os.LookupEnv(EnvRelief); ok {
		c.Relief = v
	}

	if v, ok := os.LookupEnv(EnvModulus); ok {
		c.Modulus = v
	}

	if v, ok := os.LookupEnv(EnvRecordPath); ok {
		c.Record.Enabled = v != ""
		c.Record.Path = v
	}

	if v, ok := os.LookupEnv(EnvMonitorPort); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c, fmt.Errorf("%s: %w", EnvMonitorPort, err)
		}

		c.Monitor.Enabled = true
		c.Monitor.Port = n
	}

	return c, nil
}

// Validate checks every field.
func (c Config) Validate() error {
	_, err := c.RunConfig()
	if err != nil {
		return err
	}

	if c.Record.Every < 0 {
		return fmt.Errorf("record.every: %d is negative", c.Record.Every)
	}

	if c.Monitor.Port < 0 || c.Monitor.Port > 65535 {
		return fmt.Errorf("monitor.port: %d is out of range", c.Monitor.Port)
	}

	return nil
}

// RunConfig converts the configuration into simulation parameters.
func (c Config) RunConfig() (sim.RunConfig, error) {
	relief, err := sim.ParseReliefMode(c.Relief)
	if err != nil {
		return sim.RunConfig{}, err
	}

	modulus, err := sim.ParseModulusStrategy(c.Modulus)
	if err != nil {
		return sim.RunConfig{}, err
	}

	rc := sim.RunConfig{
		TotalRounds: c.Rounds,
		Relief:      relief,
		Modulus:     modulus,
	}

	if err := rc.Validate(); err != nil {
		return sim.RunConfig{}, err
	}

	return rc, nil
}
