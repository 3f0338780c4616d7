// Synthetic workload generation: turns a Spec into the flat process list
// the simulator ingests. Deterministic given the same spec and seed.

package workload

import (
	"fmt"

	"github.com/multicore-sim/multicore-sim/sim"
)

// Generate creates a process list from a Spec. Arrival times are
// non-decreasing and pids are sequential from 0, so the output feeds
// NewSimulator directly.
func Generate(spec Spec) ([]sim.ProcessRecord, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workload spec: %w", err)
	}

	prng := sim.NewPartitionedRNG(sim.NewSimulationKey(spec.Seed))
	rng := prng.ForSubsystem(sim.SubsystemWorkload)
	arrivals := NewExponentialSampler(spec.MeanInterarrival)

	records := make([]sim.ProcessRecord, 0, spec.NumProcesses)
	now := int64(0)
	for pid := 0; pid < spec.NumProcesses; pid++ {
		if pid > 0 {
			now += arrivals.SampleIAT(rng)
		}

		rec := sim.ProcessRecord{
			PID:         pid,
			ArrivalTime: now,
			BurstTime:   uniformInt64(rng, spec.BurstMin, spec.BurstMax),
			Priority:    uniformFloat(rng, spec.PriorityMin, spec.PriorityMax),
			Type:        sampleType(rng.Float64(), spec.Mix),
		}
		if rec.Type == sim.IOBound && spec.IOEvery > 0 && spec.IODuration > 0 {
			rec.IOEvery = spec.IOEvery
			rec.IODuration = spec.IODuration
		}
		records = append(records, rec)
	}
	return records, nil
}

// sampleType maps a uniform draw onto the configured type mix.
func sampleType(u float64, mix TypeMix) sim.ProcessType {
	switch {
	case u < mix.CPUBound:
		return sim.CPUBound
	case u < mix.CPUBound+mix.IOBound:
		return sim.IOBound
	default:
		return sim.Mixed
	}
}
