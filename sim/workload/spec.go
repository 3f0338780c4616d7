package workload

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/multicore-sim/multicore-sim/sim"
)

// Spec is the top-level synthetic workload configuration.
// Loaded from YAML via LoadSpec(path).
type Spec struct {
	Seed         int64 `yaml:"seed"`
	NumProcesses int   `yaml:"num_processes"`

	// MeanInterarrival is the mean gap between consecutive arrivals, in
	// ticks. Arrivals are exponentially spaced around it.
	MeanInterarrival float64 `yaml:"mean_interarrival"`

	BurstMin int64 `yaml:"burst_min"`
	BurstMax int64 `yaml:"burst_max"`

	PriorityMin float64 `yaml:"priority_min"`
	PriorityMax float64 `yaml:"priority_max"`

	// Mix gives the fraction of each process type; fractions must sum to 1.
	Mix TypeMix `yaml:"mix"`

	// IO-bound processes block every IOEvery executed ticks for IODuration
	// ticks. Zero disables I/O modeling.
	IOEvery    int64 `yaml:"io_every,omitempty"`
	IODuration int64 `yaml:"io_duration,omitempty"`
}

// TypeMix is the per-type share of generated processes.
type TypeMix struct {
	CPUBound float64 `yaml:"cpu_bound"`
	IOBound  float64 `yaml:"io_bound"`
	Mixed    float64 `yaml:"mixed"`
}

// DefaultSpec returns a moderate mixed workload.
func DefaultSpec() Spec {
	return Spec{
		Seed:             42,
		NumProcesses:     20,
		MeanInterarrival: 3,
		BurstMin:         2,
		BurstMax:         20,
		PriorityMin:      0,
		PriorityMax:      10,
		Mix:              TypeMix{CPUBound: 0.4, IOBound: 0.3, Mixed: 0.3},
		IOEvery:          5,
		IODuration:       3,
	}
}

// Validate checks internal consistency before any generation happens.
func (s *Spec) Validate() error {
	if s.NumProcesses <= 0 {
		return fmt.Errorf("num_processes must be positive, got %d", s.NumProcesses)
	}
	if s.MeanInterarrival <= 0 {
		return fmt.Errorf("mean_interarrival must be positive, got %v", s.MeanInterarrival)
	}
	if s.BurstMin <= 0 || s.BurstMax < s.BurstMin {
		return fmt.Errorf("burst range [%d, %d] is invalid", s.BurstMin, s.BurstMax)
	}
	if s.PriorityMax < s.PriorityMin {
		return fmt.Errorf("priority range [%v, %v] is invalid", s.PriorityMin, s.PriorityMax)
	}
	if s.IOEvery < 0 || s.IODuration < 0 {
		return fmt.Errorf("io_every/io_duration must be non-negative")
	}
	total := s.Mix.CPUBound + s.Mix.IOBound + s.Mix.Mixed
	if total < 0.999 || total > 1.001 {
		return fmt.Errorf("type mix fractions must sum to 1, got %v", total)
	}
	return nil
}

// LoadSpec reads and validates a workload spec from a YAML file.
func LoadSpec(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, fmt.Errorf("reading workload spec: %w", err)
	}
	spec := DefaultSpec()
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return Spec{}, fmt.Errorf("parsing workload spec %s: %w", path, err)
	}
	if err := spec.Validate(); err != nil {
		return Spec{}, fmt.Errorf("workload spec %s: %w", path, err)
	}
	return spec, nil
}

// processFile is the YAML shape of an explicit process list.
type processFile struct {
	Processes []sim.ProcessRecord `yaml:"processes"`
}

// LoadProcesses reads an explicit process list from a YAML file, for runs
// that replay a hand-written scenario instead of a generated one.
func LoadProcesses(path string) ([]sim.ProcessRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading process file: %w", err)
	}
	var pf processFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing process file %s: %w", path, err)
	}
	if len(pf.Processes) == 0 {
		return nil, fmt.Errorf("process file %s contains no processes", path)
	}
	return pf.Processes, nil
}
