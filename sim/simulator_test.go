package sim

import (
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multicore-sim/multicore-sim/sim/trace"
)

func singleCoreConfig(policy string) Config {
	cfg := DefaultConfig()
	cfg.NumCores = 1
	cfg.Policy = policy
	return cfg
}

func mustRun(t *testing.T, cfg Config, records []ProcessRecord) Snapshot {
	t.Helper()
	s, err := NewSimulator(cfg, records)
	require.NoError(t, err)
	snap, err := s.Run()
	require.NoError(t, err)
	return snap
}

func resultByPID(t *testing.T, snap Snapshot, pid int) ProcessResult {
	t.Helper()
	for _, r := range snap.Results {
		if r.PID == pid {
			return r
		}
	}
	t.Fatalf("no result for P%d", pid)
	return ProcessResult{}
}

func TestRun_FCFS_GoldenVector(t *testing.T) {
	// Single core, P0 arrives at 0 with burst 5, P1 at 1 with burst 3.
	snap := mustRun(t, singleCoreConfig(PolicyFCFS), []ProcessRecord{
		{PID: 0, ArrivalTime: 0, BurstTime: 5},
		{PID: 1, ArrivalTime: 1, BurstTime: 3},
	})

	require.True(t, snap.Complete)
	assert.Equal(t, int64(5), resultByPID(t, snap, 0).CompletionTime)
	assert.Equal(t, int64(8), resultByPID(t, snap, 1).CompletionTime)
	assert.Equal(t, 2.0, snap.AvgWaiting)
	assert.Equal(t, 6.0, snap.AvgTurnaround)
	assert.Equal(t, int64(8), snap.Elapsed)

	assert.Equal(t, []trace.ExecutionRecord{
		{CoreID: 0, PID: 0, Start: 0, End: 5},
		{CoreID: 0, PID: 1, Start: 5, End: 8},
	}, snap.Timeline)
}

func TestRun_RoundRobin_GoldenVector(t *testing.T) {
	// Quantum 4: P0(burst 5) and P1(burst 3) share one core as
	// P0[0..4], P1[4..7], P0[7..8].
	cfg := singleCoreConfig(PolicyRoundRobin)
	cfg.TimeQuantum = 4
	snap := mustRun(t, cfg, []ProcessRecord{
		{PID: 0, ArrivalTime: 0, BurstTime: 5},
		{PID: 1, ArrivalTime: 0, BurstTime: 3},
	})

	assert.Equal(t, []trace.ExecutionRecord{
		{CoreID: 0, PID: 0, Start: 0, End: 4},
		{CoreID: 0, PID: 1, Start: 4, End: 7},
		{CoreID: 0, PID: 0, Start: 7, End: 8},
	}, snap.Timeline)
	assert.Equal(t, int64(7), resultByPID(t, snap, 1).CompletionTime)
	assert.Equal(t, int64(8), resultByPID(t, snap, 0).CompletionTime)
	assert.Equal(t, []int{3}, snap.PerCoreExecuted, "one count per opened slice")
}

func TestRun_SRTF_PreemptsOnShorterArrival(t *testing.T) {
	// P1 (burst 3) arrives at t=1 while P0 (burst 5, 4 left) runs, so it
	// preempts: P0[0..1], P1[1..4], P0[4..8].
	snap := mustRun(t, singleCoreConfig(PolicySJF), []ProcessRecord{
		{PID: 0, ArrivalTime: 0, BurstTime: 5},
		{PID: 1, ArrivalTime: 1, BurstTime: 3},
	})

	assert.Equal(t, []trace.ExecutionRecord{
		{CoreID: 0, PID: 0, Start: 0, End: 1},
		{CoreID: 0, PID: 1, Start: 1, End: 4},
		{CoreID: 0, PID: 0, Start: 4, End: 8},
	}, snap.Timeline)
	assert.Equal(t, int64(4), resultByPID(t, snap, 1).CompletionTime)
	assert.Equal(t, int64(8), resultByPID(t, snap, 0).CompletionTime)
	assert.Equal(t, int64(0), resultByPID(t, snap, 1).Response, "the short job runs immediately")
}

func TestRun_MultiCore_ParallelCompletionSameTick(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumCores = 2
	cfg.Policy = PolicyFCFS
	snap := mustRun(t, cfg, []ProcessRecord{
		{PID: 0, ArrivalTime: 0, BurstTime: 5},
		{PID: 1, ArrivalTime: 0, BurstTime: 5},
	})

	assert.Equal(t, int64(5), snap.Elapsed)
	assert.Equal(t, []int64{5, 5}, snap.PerCoreBusy)
	assert.Equal(t, []int64{0, 0}, snap.PerCoreIdle)
	assert.Equal(t, []int{1, 1}, snap.PerCoreExecuted)
	assert.Equal(t, 100.0, snap.CPUUtilization)
	assert.Equal(t, 1.0, snap.LoadBalanceScore)
}

func TestRun_IOBlockingRoundTrip(t *testing.T) {
	// Burst 4 with I/O every 2 ticks for 3: runs [0..2], blocks until 5,
	// runs [5..7], completes at 7.
	snap := mustRun(t, singleCoreConfig(PolicyFCFS), []ProcessRecord{
		{PID: 0, ArrivalTime: 0, BurstTime: 4, Type: IOBound, IOEvery: 2, IODuration: 3},
	})

	assert.Equal(t, []trace.ExecutionRecord{
		{CoreID: 0, PID: 0, Start: 0, End: 2},
		{CoreID: 0, PID: 0, Start: 5, End: 7},
	}, snap.Timeline)
	r := resultByPID(t, snap, 0)
	assert.Equal(t, int64(7), r.CompletionTime)
	assert.Equal(t, int64(3), r.Waiting, "time blocked on I/O counts as waiting")
}

func TestRun_MaxTimeStopReportsUnfinished(t *testing.T) {
	cfg := singleCoreConfig(PolicyFCFS)
	cfg.MaxTime = 10
	snap := mustRun(t, cfg, []ProcessRecord{
		{PID: 0, ArrivalTime: 0, BurstTime: 100},
	})

	assert.False(t, snap.Complete)
	assert.Equal(t, int64(10), snap.Elapsed)
	require.Len(t, snap.Unfinished, 1)
	assert.Equal(t, 0, snap.Unfinished[0].PID)
	assert.Equal(t, int64(90), snap.Unfinished[0].RemainingTime)
	assert.Equal(t, []int64{10}, snap.PerCoreBusy, "partial execution still shows in the ledger")
	assert.Equal(t, []trace.ExecutionRecord{
		{CoreID: 0, PID: 0, Start: 0, End: 10},
	}, snap.Timeline)
}

func TestRun_EmptyWorkloadCompletesImmediately(t *testing.T) {
	snap := mustRun(t, singleCoreConfig(PolicyFCFS), nil)
	assert.True(t, snap.Complete)
	assert.Equal(t, int64(0), snap.Elapsed)
	assert.Equal(t, 0, snap.CompletedCount)
}

func TestNewSimulator_RejectsDuplicatePIDs(t *testing.T) {
	_, err := NewSimulator(singleCoreConfig(PolicyFCFS), []ProcessRecord{
		{PID: 7, ArrivalTime: 0, BurstTime: 5},
		{PID: 7, ArrivalTime: 3, BurstTime: 5},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicatePID))
}

func TestNewSimulator_RejectsInvalidRecords(t *testing.T) {
	for name, rec := range map[string]ProcessRecord{
		"negative arrival": {PID: 0, ArrivalTime: -1, BurstTime: 5},
		"zero burst":       {PID: 0, ArrivalTime: 0, BurstTime: 0},
		"negative io":      {PID: 0, ArrivalTime: 0, BurstTime: 5, IOEvery: -1},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewSimulator(singleCoreConfig(PolicyFCFS), []ProcessRecord{rec})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfiguration))
		})
	}
}

func TestNewSimulator_SortsUnsortedInput(t *testing.T) {
	snap := mustRun(t, singleCoreConfig(PolicyFCFS), []ProcessRecord{
		{PID: 1, ArrivalTime: 9, BurstTime: 2},
		{PID: 0, ArrivalTime: 0, BurstTime: 3},
	})
	assert.Equal(t, int64(3), resultByPID(t, snap, 0).CompletionTime)
	assert.Equal(t, int64(11), resultByPID(t, snap, 1).CompletionTime)
}

// stubPolicy lets tests drive the engine with scripted selections.
type stubPolicy struct {
	nonPreemptive
	runToCompletion
	globalArrival
	stateless
	pick func(ctx *SchedContext, core *Core) *Process
}

func (*stubPolicy) Name() string { return "stub" }

func (sp *stubPolicy) Select(ctx *SchedContext, core *Core) *Process {
	if sp.pick == nil {
		return nil
	}
	return sp.pick(ctx, core)
}

func TestRun_StallsWhenPolicyNeverSelects(t *testing.T) {
	s, err := NewSimulator(singleCoreConfig(PolicyFCFS), []ProcessRecord{
		{PID: 0, ArrivalTime: 0, BurstTime: 5},
	})
	require.NoError(t, err)
	s.policy = &stubPolicy{}

	_, err = s.Run()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSimulationStalled))
}

func TestRun_SelectionViolationIsFatal(t *testing.T) {
	s, err := NewSimulator(singleCoreConfig(PolicyFCFS), []ProcessRecord{
		{PID: 0, ArrivalTime: 0, BurstTime: 5},
	})
	require.NoError(t, err)

	ghost := newProcess(ProcessRecord{PID: 99, BurstTime: 5})
	ghost.MarkReady(0)
	s.policy = &stubPolicy{pick: func(*SchedContext, *Core) *Process { return ghost }}

	_, err = s.Run()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchedulerSelection))
}

func TestRun_AgingPreventsStarvation(t *testing.T) {
	// A low-urgency process competing with a stream of urgent ones. With
	// aging it overtakes the last urgent arrival; with aging disabled it
	// finishes dead last.
	records := []ProcessRecord{
		{PID: 0, ArrivalTime: 0, BurstTime: 2, Priority: 9},
		{PID: 1, ArrivalTime: 0, BurstTime: 3, Priority: 1},
		{PID: 2, ArrivalTime: 1, BurstTime: 3, Priority: 1},
		{PID: 3, ArrivalTime: 2, BurstTime: 3, Priority: 1},
		{PID: 4, ArrivalTime: 3, BurstTime: 3, Priority: 1},
	}

	cfg := singleCoreConfig(PolicyPriority)
	cfg.AgingRate = 1.0
	aged := mustRun(t, cfg, records)

	cfg.AgingRate = 0
	unaged := mustRun(t, cfg, records)

	assert.Less(t,
		resultByPID(t, aged, 0).CompletionTime,
		resultByPID(t, unaged, 0).CompletionTime)
	assert.Less(t,
		resultByPID(t, aged, 0).CompletionTime,
		resultByPID(t, aged, 4).CompletionTime,
		"the aged process overtakes the last urgent arrival")
}

func TestRun_AdaptiveEndToEnd(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumCores = 2
	cfg.Policy = PolicyAdaptive

	records := make([]ProcessRecord, 8)
	for i := range records {
		records[i] = ProcessRecord{PID: i, ArrivalTime: int64(i), BurstTime: 10, Type: CPUBound}
	}
	snap := mustRun(t, cfg, records)

	require.True(t, snap.Complete)
	assert.Equal(t, 8, snap.CompletedCount)
	require.NotEmpty(t, snap.Policies, "the meta-scheduler records usage intervals")
	assert.Equal(t, snap.Elapsed, snap.Policies[len(snap.Policies)-1].End)
	assert.Equal(t, int64(0), snap.Policies[0].Start)
}

// randomRecords builds a reproducible workload without going through the
// workload package (which would import sim back).
func randomRecords(seed int64, n int) []ProcessRecord {
	rng := rand.New(rand.NewSource(seed))
	types := []ProcessType{CPUBound, IOBound, Mixed}
	records := make([]ProcessRecord, n)
	now := int64(0)
	for i := range records {
		records[i] = ProcessRecord{
			PID:         i,
			ArrivalTime: now,
			BurstTime:   1 + rng.Int63n(20),
			Priority:    float64(rng.Intn(10)),
			Type:        types[rng.Intn(len(types))],
		}
		now += rng.Int63n(4)
	}
	return records
}

func TestRun_InvariantsAcrossPolicies(t *testing.T) {
	records := randomRecords(1, 40)
	var totalBurst int64
	for _, r := range records {
		totalBurst += r.BurstTime
	}

	for _, policy := range []string{
		PolicyFCFS, PolicySJF, PolicyRoundRobin, PolicyPriority,
		PolicyLoadBalancing, PolicyWorkStealing, PolicyAdaptive,
	} {
		t.Run(policy, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Policy = policy
			snap := mustRun(t, cfg, records)

			require.True(t, snap.Complete)
			require.Equal(t, len(records), snap.CompletedCount)

			var totalBusy int64
			for _, busy := range snap.PerCoreBusy {
				totalBusy += busy
			}
			assert.Equal(t, totalBurst, totalBusy, "every burst tick executes exactly once")
			assert.LessOrEqual(t, totalBusy, int64(snap.NumCores)*snap.Elapsed)

			for _, r := range snap.Results {
				assert.GreaterOrEqual(t, r.Waiting, int64(0), "P%d", r.PID)
				assert.GreaterOrEqual(t, r.Response, int64(0), "P%d", r.PID)
				assert.GreaterOrEqual(t, r.Turnaround, int64(0), "P%d", r.PID)
			}

			// Per-core slices must not overlap and must respect causality.
			perCore := map[int][]trace.ExecutionRecord{}
			for _, e := range snap.Timeline {
				assert.Less(t, e.Start, e.End, "empty or inverted slice")
				assert.LessOrEqual(t, e.End, snap.Elapsed)
				perCore[e.CoreID] = append(perCore[e.CoreID], e)
			}
			for coreID, slices := range perCore {
				sort.Slice(slices, func(i, j int) bool { return slices[i].Start < slices[j].Start })
				for i := 1; i < len(slices); i++ {
					assert.GreaterOrEqual(t, slices[i].Start, slices[i-1].End, "core %d overlap", coreID)
				}
			}
		})
	}
}

func TestRun_DeterministicAcrossRuns(t *testing.T) {
	records := randomRecords(7, 30)
	cfg := DefaultConfig()
	cfg.Policy = PolicyAdaptive

	first := mustRun(t, cfg, records)
	second := mustRun(t, cfg, records)
	assert.Equal(t, first, second, "identical input and config must reproduce identical results")
}

func TestSnapshot_BeforeTerminationIsIncomplete(t *testing.T) {
	s, err := NewSimulator(singleCoreConfig(PolicyFCFS), []ProcessRecord{
		{PID: 0, ArrivalTime: 0, BurstTime: 5},
	})
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.False(t, snap.Complete)
	require.Len(t, snap.Unfinished, 1)
	assert.Equal(t, StateNew, snap.Unfinished[0].State)
}
