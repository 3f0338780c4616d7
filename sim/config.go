package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy names recognized by NewPolicy and Config.Policy.
const (
	PolicyFCFS          = "fcfs"
	PolicySJF           = "sjf"
	PolicyRoundRobin    = "round_robin"
	PolicyPriority      = "priority"
	PolicyLoadBalancing = "load_balancing"
	PolicyWorkStealing  = "work_stealing"
	PolicyAdaptive      = "adaptive"
)

// validPolicies maps accepted policy names.
var validPolicies = map[string]bool{
	PolicyFCFS:          true,
	PolicySJF:           true,
	PolicyRoundRobin:    true,
	PolicyPriority:      true,
	PolicyLoadBalancing: true,
	PolicyWorkStealing:  true,
	PolicyAdaptive:      true,
}

// IsValidPolicy returns true if name is a recognized policy name.
func IsValidPolicy(name string) bool {
	return validPolicies[name]
}

// AdaptiveThresholds exposes the workload-classification cutoffs as named
// configuration values so test suites can probe boundary values exactly.
type AdaptiveThresholds struct {
	LoadLow           float64 `yaml:"load_low"`            // load ratio below this is LOW
	LoadHigh          float64 `yaml:"load_high"`           // load ratio at or above this is HIGH
	CPUIntensiveRatio float64 `yaml:"cpu_intensive_ratio"` // cpu-bound fraction above this is CPU_INTENSIVE
	IOIntensiveRatio  float64 `yaml:"io_intensive_ratio"`  // io-bound fraction above this is IO_INTENSIVE
	ShortJobBurst     float64 `yaml:"short_job_burst"`     // mean burst below this is SHORT_JOBS
	LongJobBurst      float64 `yaml:"long_job_burst"`      // mean burst above this is LONG_JOBS
}

// DefaultThresholds returns the standard classification cutoffs.
func DefaultThresholds() AdaptiveThresholds {
	return AdaptiveThresholds{
		LoadLow:           1.0,
		LoadHigh:          3.0,
		CPUIntensiveRatio: 0.6,
		IOIntensiveRatio:  0.6,
		ShortJobBurst:     10,
		LongJobBurst:      50,
	}
}

// Config groups the recognized construction options for a simulation.
// Unrecognized or out-of-range values fail Validate before any simulation
// step runs.
type Config struct {
	NumCores           int     `yaml:"num_cores"`
	Policy             string  `yaml:"policy"`
	TimeQuantum        int64   `yaml:"time_quantum"`        // Round Robin slice length
	AdaptationInterval int64   `yaml:"adaptation_interval"` // ticks between adaptation samples
	AgingRate          float64 `yaml:"aging_rate"`          // priority decrease per waiting tick

	// Cancellation bounds. Zero means unbounded. On early stop the engine
	// still emits metrics, reporting incomplete processes as unfinished.
	MaxTime  int64 `yaml:"max_time"`
	MaxSteps int   `yaml:"max_steps"`

	Thresholds AdaptiveThresholds `yaml:"thresholds"`
}

// DefaultConfig returns a 4-core FCFS configuration with the standard
// quantum, adaptation interval, and aging rate.
func DefaultConfig() Config {
	return Config{
		NumCores:           4,
		Policy:             PolicyFCFS,
		TimeQuantum:        4,
		AdaptationInterval: 50,
		AgingRate:          0.1,
		Thresholds:         DefaultThresholds(),
	}
}

// Validate rejects unrecognized or out-of-range options.
func (c *Config) Validate() error {
	if c.NumCores < 1 {
		return fmt.Errorf("%w: num_cores must be >= 1, got %d", ErrInvalidConfiguration, c.NumCores)
	}
	if !IsValidPolicy(c.Policy) {
		return fmt.Errorf("%w: unknown policy %q", ErrInvalidConfiguration, c.Policy)
	}
	if c.TimeQuantum <= 0 && (c.Policy == PolicyRoundRobin || c.Policy == PolicyAdaptive) {
		return fmt.Errorf("%w: time_quantum must be > 0 for policy %q, got %d",
			ErrInvalidConfiguration, c.Policy, c.TimeQuantum)
	}
	if c.TimeQuantum < 0 {
		return fmt.Errorf("%w: time_quantum must not be negative, got %d", ErrInvalidConfiguration, c.TimeQuantum)
	}
	if c.AdaptationInterval <= 0 && c.Policy == PolicyAdaptive {
		return fmt.Errorf("%w: adaptation_interval must be > 0 for adaptive policy, got %d",
			ErrInvalidConfiguration, c.AdaptationInterval)
	}
	if c.AgingRate < 0 {
		return fmt.Errorf("%w: aging_rate must not be negative, got %g", ErrInvalidConfiguration, c.AgingRate)
	}
	if c.MaxTime < 0 {
		return fmt.Errorf("%w: max_time must not be negative, got %d", ErrInvalidConfiguration, c.MaxTime)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("%w: max_steps must not be negative, got %d", ErrInvalidConfiguration, c.MaxSteps)
	}
	t := c.Thresholds
	if t.LoadLow <= 0 || t.LoadHigh <= t.LoadLow {
		return fmt.Errorf("%w: load thresholds must satisfy 0 < low < high, got low=%g high=%g",
			ErrInvalidConfiguration, t.LoadLow, t.LoadHigh)
	}
	if t.CPUIntensiveRatio <= 0 || t.CPUIntensiveRatio >= 1 || t.IOIntensiveRatio <= 0 || t.IOIntensiveRatio >= 1 {
		return fmt.Errorf("%w: intensity ratios must lie in (0, 1), got cpu=%g io=%g",
			ErrInvalidConfiguration, t.CPUIntensiveRatio, t.IOIntensiveRatio)
	}
	if t.ShortJobBurst <= 0 || t.LongJobBurst <= t.ShortJobBurst {
		return fmt.Errorf("%w: burst thresholds must satisfy 0 < short < long, got short=%g long=%g",
			ErrInvalidConfiguration, t.ShortJobBurst, t.LongJobBurst)
	}
	return nil
}

// LoadConfig reads a YAML scenario file into a Config, applying defaults
// for absent fields.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
