package sim

// SJF picks the process with the shortest remaining time (SRTF: the
// preemptive variant re-evaluates every busy core on each arrival).
// Minimizes average waiting time; long processes can starve under
// sustained load.
type SJF struct {
	runToCompletion
	globalArrival
	stateless
}

func (*SJF) Name() string { return PolicySJF }

// Select returns the pooled process with the minimum remaining time,
// tie-broken by arrival time, then pid.
func (*SJF) Select(ctx *SchedContext, _ *Core) *Process {
	return shortestRemaining(ctx.Ready.Snapshot())
}

func (*SJF) Preemptive() bool { return true }

// ShouldPreempt yields the running process when a strictly shorter job
// waits in the pool.
func (*SJF) ShouldPreempt(ctx *SchedContext, core *Core) bool {
	if core.Current() == nil {
		return false
	}
	shortest := shortestRemaining(ctx.Ready.Snapshot())
	return shortest != nil && shortest.RemainingTime < core.remainingAt(ctx.Clock)
}

func shortestRemaining(pool []*Process) *Process {
	var best *Process
	for _, p := range pool {
		if best == nil ||
			p.RemainingTime < best.RemainingTime ||
			(p.RemainingTime == best.RemainingTime && p.ArrivalTime < best.ArrivalTime) ||
			(p.RemainingTime == best.RemainingTime && p.ArrivalTime == best.ArrivalTime && p.PID < best.PID) {
			best = p
		}
	}
	return best
}
