package sim

// PriorityAging schedules the most urgent process first (lower priority
// value = more urgent) and ages waiting processes to prevent starvation:
// every tick spent waiting lowers the effective priority by AgingRate,
// floored at 0. Preemptive on arrival.
type PriorityAging struct {
	runToCompletion
	globalArrival
	stateless

	AgingRate float64
}

func (*PriorityAging) Name() string { return PolicyPriority }

// Select returns the pooled process with the minimum aged priority,
// tie-broken by arrival time, then pid. The aged value is materialized on
// the process for observability.
func (pa *PriorityAging) Select(ctx *SchedContext, _ *Core) *Process {
	return pa.mostUrgent(ctx.Ready.Snapshot(), ctx.Clock)
}

func (*PriorityAging) Preemptive() bool { return true }

// ShouldPreempt yields the running process when a strictly more urgent
// process waits in the pool. The running process does not age.
func (pa *PriorityAging) ShouldPreempt(ctx *SchedContext, core *Core) bool {
	running := core.Current()
	if running == nil {
		return false
	}
	best := pa.mostUrgent(ctx.Ready.Snapshot(), ctx.Clock)
	return best != nil && best.EffectivePriority < running.AgedPriority(ctx.Clock, pa.AgingRate)
}

func (pa *PriorityAging) mostUrgent(pool []*Process, now int64) *Process {
	var best *Process
	for _, p := range pool {
		p.EffectivePriority = p.AgedPriority(now, pa.AgingRate)
		if best == nil ||
			p.EffectivePriority < best.EffectivePriority ||
			(p.EffectivePriority == best.EffectivePriority && p.ArrivalTime < best.ArrivalTime) ||
			(p.EffectivePriority == best.EffectivePriority && p.ArrivalTime == best.ArrivalTime && p.PID < best.PID) {
			best = p
		}
	}
	return best
}
