// The adaptive meta-scheduler wraps the full policy set, samples system
// state on a fixed interval, and swaps the active policy according to a
// load/workload decision table. It implements Policy itself, so the engine
// is agnostic to whether adaptation is active.

package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/multicore-sim/multicore-sim/sim/trace"
)

// SystemLoad classifies ready-pool pressure relative to the core count.
type SystemLoad string

const (
	LowLoad    SystemLoad = "low"
	MediumLoad SystemLoad = "medium"
	HighLoad   SystemLoad = "high"
)

// WorkloadClass characterizes the pending work mix.
type WorkloadClass string

const (
	CPUIntensive  WorkloadClass = "cpu_intensive"
	IOIntensive   WorkloadClass = "io_intensive"
	ShortJobs     WorkloadClass = "short_jobs"
	LongJobs      WorkloadClass = "long_jobs"
	MixedWorkload WorkloadClass = "mixed"
)

// AdaptiveScheduler delegates every Policy call to the currently active
// strategy and periodically re-decides which strategy that should be.
type AdaptiveScheduler struct {
	policies   map[string]Policy
	active     Policy
	thresholds AdaptiveThresholds

	activeSince int64
	finished    bool
	tr          *trace.ScheduleTrace
}

// NewAdaptiveScheduler builds the meta-scheduler with the full strategy
// set. Load Balancing starts active. Usage intervals are recorded into tr.
func NewAdaptiveScheduler(cfg Config, tr *trace.ScheduleTrace) (*AdaptiveScheduler, error) {
	names := []string{
		PolicyFCFS, PolicySJF, PolicyRoundRobin,
		PolicyPriority, PolicyLoadBalancing, PolicyWorkStealing,
	}
	policies := make(map[string]Policy, len(names))
	for _, name := range names {
		p, err := NewPolicy(name, cfg)
		if err != nil {
			return nil, err
		}
		policies[name] = p
	}
	return &AdaptiveScheduler{
		policies:   policies,
		active:     policies[PolicyLoadBalancing],
		thresholds: cfg.Thresholds,
		tr:         tr,
	}, nil
}

// === Policy delegation ===

func (a *AdaptiveScheduler) Name() string { return PolicyAdaptive }

// ActiveName returns the name of the currently active strategy.
func (a *AdaptiveScheduler) ActiveName() string { return a.active.Name() }

func (a *AdaptiveScheduler) Select(ctx *SchedContext, core *Core) *Process {
	return a.active.Select(ctx, core)
}

func (a *AdaptiveScheduler) OnArrival(ctx *SchedContext, p *Process) {
	a.active.OnArrival(ctx, p)
}

func (a *AdaptiveScheduler) QuantumFor(p *Process) (int64, bool) {
	return a.active.QuantumFor(p)
}

func (a *AdaptiveScheduler) Preemptive() bool { return a.active.Preemptive() }

func (a *AdaptiveScheduler) ShouldPreempt(ctx *SchedContext, core *Core) bool {
	return a.active.ShouldPreempt(ctx, core)
}

func (a *AdaptiveScheduler) Reset(ctx *SchedContext) {
	a.active.Reset(ctx)
}

// === Adaptation ===

// Adapt samples system state and switches the active policy if the
// decision table names a different one. Called by the engine every
// adaptation interval, behind the core barrier, so it observes a globally
// consistent snapshot of all cores and the ready pool.
func (a *AdaptiveScheduler) Adapt(ctx *SchedContext) {
	load := a.ClassifyLoad(ctx)
	workload := a.ClassifyWorkload(ctx)

	name, ok := decidePolicy(load, workload)
	if !ok {
		// Ambiguous state: retain the current policy, no oscillation.
		logrus.Debugf("[adaptive] t=%d load=%s workload=%s: retaining %s",
			ctx.Clock, load, workload, a.active.Name())
		return
	}
	if name != a.active.Name() {
		a.switchTo(ctx, name)
	}
}

// ClassifyLoad buckets the ready-process count (global pool plus per-core
// local queues) per core into LOW/MEDIUM/HIGH.
func (a *AdaptiveScheduler) ClassifyLoad(ctx *SchedContext) SystemLoad {
	ready := ctx.Ready.Len()
	for _, c := range ctx.Cores {
		ready += c.LocalLen()
	}
	loadRatio := float64(ready) / float64(len(ctx.Cores))

	switch {
	case loadRatio < a.thresholds.LoadLow:
		return LowLoad
	case loadRatio < a.thresholds.LoadHigh:
		return MediumLoad
	default:
		return HighLoad
	}
}

// ClassifyWorkload characterizes the ready+running mix by process type and
// the mean burst time of pooled processes.
func (a *AdaptiveScheduler) ClassifyWorkload(ctx *SchedContext) WorkloadClass {
	pooled := ctx.Ready.Snapshot()
	for _, c := range ctx.Cores {
		pooled = append(pooled, c.LocalItems()...)
	}
	observed := append([]*Process(nil), pooled...)
	for _, c := range ctx.Cores {
		if p := c.Current(); p != nil {
			observed = append(observed, p)
		}
	}
	if len(observed) == 0 {
		return MixedWorkload
	}

	var cpuCount, ioCount int
	for _, p := range observed {
		switch p.Type {
		case CPUBound:
			cpuCount++
		case IOBound:
			ioCount++
		}
	}
	cpuRatio := float64(cpuCount) / float64(len(observed))
	ioRatio := float64(ioCount) / float64(len(observed))

	if cpuRatio > a.thresholds.CPUIntensiveRatio {
		return CPUIntensive
	}
	if ioRatio > a.thresholds.IOIntensiveRatio {
		return IOIntensive
	}

	if len(pooled) > 0 {
		var burstSum int64
		for _, p := range pooled {
			burstSum += p.BurstTime
		}
		avgBurst := float64(burstSum) / float64(len(pooled))
		if avgBurst < a.thresholds.ShortJobBurst {
			return ShortJobs
		}
		if avgBurst > a.thresholds.LongJobBurst {
			return LongJobs
		}
	}
	return MixedWorkload
}

// decidePolicy is the (load, workload) → policy table. Unmatched
// combinations retain the current policy.
func decidePolicy(load SystemLoad, workload WorkloadClass) (string, bool) {
	switch {
	case load == HighLoad && workload == CPUIntensive:
		return PolicyLoadBalancing, true
	case load == HighLoad && workload == LongJobs:
		return PolicyRoundRobin, true
	case load == MediumLoad && workload == ShortJobs:
		return PolicySJF, true
	case load == MediumLoad && workload == IOIntensive:
		return PolicyPriority, true
	case load == LowLoad && workload == MixedWorkload:
		return PolicyWorkStealing, true
	case load == LowLoad && workload == ShortJobs:
		return PolicySJF, true
	}
	return "", false
}

// switchTo activates a different strategy: the new policy's internal state
// is reset, waiting processes keep their pool order, and per-core local
// queues are flattened and redistributed through the new policy's
// OnArrival as if freshly arriving.
func (a *AdaptiveScheduler) switchTo(ctx *SchedContext, name string) {
	old := a.active
	next := a.policies[name]

	var migrated []*Process
	if usesLocalQueues(old) {
		for _, c := range ctx.Cores {
			migrated = append(migrated, c.DrainLocal()...)
		}
	}
	if usesLocalQueues(next) {
		// A per-core policy selects only from local queues, so pool
		// residents must be placed too.
		for {
			p := ctx.Ready.Peek()
			if p == nil {
				break
			}
			ctx.Ready.Remove(p)
			migrated = append(migrated, p)
		}
	}

	next.Reset(ctx)
	for _, p := range migrated {
		next.OnArrival(ctx, p)
	}

	a.tr.RecordPolicyInterval(trace.PolicyInterval{
		Policy: old.Name(), Start: a.activeSince, End: ctx.Clock,
	})
	a.activeSince = ctx.Clock
	a.active = next

	logrus.Infof("[adaptive] t=%d switched %s -> %s", ctx.Clock, old.Name(), name)
}

// Finish closes the usage interval of the active policy. Called once by
// the engine when the run ends.
func (a *AdaptiveScheduler) Finish(now int64) {
	if a.finished {
		return
	}
	a.finished = true
	a.tr.RecordPolicyInterval(trace.PolicyInterval{
		Policy: a.active.Name(), Start: a.activeSince, End: now,
	})
}
