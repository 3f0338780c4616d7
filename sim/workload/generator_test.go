package workload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multicore-sim/multicore-sim/sim"
)

func TestGenerate_Deterministic(t *testing.T) {
	spec := DefaultSpec()
	a, err := Generate(spec)
	require.NoError(t, err)
	b, err := Generate(spec)
	require.NoError(t, err)
	assert.Equal(t, a, b, "same spec and seed must reproduce the same workload")

	spec.Seed = 43
	c, err := Generate(spec)
	require.NoError(t, err)
	assert.NotEqual(t, a, c, "a different seed must change the workload")
}

func TestGenerate_RespectsSpecBounds(t *testing.T) {
	spec := DefaultSpec()
	spec.NumProcesses = 200
	records, err := Generate(spec)
	require.NoError(t, err)
	require.Len(t, records, 200)

	prevArrival := int64(0)
	for i, r := range records {
		assert.Equal(t, i, r.PID, "pids are sequential")
		assert.GreaterOrEqual(t, r.ArrivalTime, prevArrival, "arrivals are non-decreasing")
		prevArrival = r.ArrivalTime

		assert.GreaterOrEqual(t, r.BurstTime, spec.BurstMin)
		assert.LessOrEqual(t, r.BurstTime, spec.BurstMax)
		assert.GreaterOrEqual(t, r.Priority, spec.PriorityMin)
		assert.Less(t, r.Priority, spec.PriorityMax)
	}
}

func TestGenerate_IOKnobsOnlyOnIOBoundProcesses(t *testing.T) {
	spec := DefaultSpec()
	spec.NumProcesses = 100
	records, err := Generate(spec)
	require.NoError(t, err)

	sawIOBound := false
	for _, r := range records {
		if r.Type == sim.IOBound {
			sawIOBound = true
			assert.Equal(t, spec.IOEvery, r.IOEvery)
			assert.Equal(t, spec.IODuration, r.IODuration)
		} else {
			assert.Zero(t, r.IOEvery)
			assert.Zero(t, r.IODuration)
		}
	}
	assert.True(t, sawIOBound, "a 0.3 io fraction over 100 draws should appear")
}

func TestGenerate_InvalidSpec(t *testing.T) {
	spec := DefaultSpec()
	spec.BurstMax = spec.BurstMin - 1
	_, err := Generate(spec)
	assert.Error(t, err)
}

func TestSpecValidate(t *testing.T) {
	mutations := map[string]func(*Spec){
		"zero processes":      func(s *Spec) { s.NumProcesses = 0 },
		"zero interarrival":   func(s *Spec) { s.MeanInterarrival = 0 },
		"inverted burst":      func(s *Spec) { s.BurstMin = 10; s.BurstMax = 5 },
		"inverted priority":   func(s *Spec) { s.PriorityMin = 5; s.PriorityMax = 1 },
		"negative io":         func(s *Spec) { s.IOEvery = -1 },
		"mix not summing to 1": func(s *Spec) { s.Mix = TypeMix{CPUBound: 0.5} },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			spec := DefaultSpec()
			mutate(&spec)
			assert.Error(t, spec.Validate())
		})
	}
	valid := DefaultSpec()
	assert.NoError(t, valid.Validate())
}

func TestLoadSpec_AppliesDefaultsForAbsentFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workload.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 7\nnum_processes: 5\n"), 0o644))

	spec, err := LoadSpec(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), spec.Seed)
	assert.Equal(t, 5, spec.NumProcesses)
	assert.Equal(t, DefaultSpec().BurstMax, spec.BurstMax)
}

func TestLoadProcesses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "procs.yaml")
	content := `processes:
  - pid: 0
    arrival_time: 0
    burst_time: 5
    priority: 2
    type: cpu_bound
  - pid: 1
    arrival_time: 1
    burst_time: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := LoadProcesses(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, sim.ProcessRecord{PID: 0, BurstTime: 5, Priority: 2, Type: sim.CPUBound}, records[0])
	assert.Equal(t, int64(1), records[1].ArrivalTime)
}

func TestLoadProcesses_EmptyFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("processes: []\n"), 0o644))
	_, err := LoadProcesses(path)
	assert.Error(t, err)
}
