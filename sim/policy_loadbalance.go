package sim

// LoadBalancing spreads arrivals across per-core local queues: each new
// process is routed to the core with the smallest accumulated busy time,
// and every core then runs FCFS within its own queue. Non-preemptive.
type LoadBalancing struct {
	nonPreemptive
	runToCompletion
}

func (*LoadBalancing) Name() string { return PolicyLoadBalancing }

// OnArrival assigns the process to the local queue of the least-busy core,
// tie-broken by minimum core id.
func (*LoadBalancing) OnArrival(ctx *SchedContext, p *Process) {
	target := ctx.Cores[0]
	for _, c := range ctx.Cores[1:] {
		if c.BusyTime < target.BusyTime {
			target = c
		}
	}
	target.PushLocal(p)
}

// Select runs FCFS within the requesting core's local queue: minimum
// arrival time, tie-broken by minimum pid.
func (*LoadBalancing) Select(_ *SchedContext, core *Core) *Process {
	var best *Process
	for _, p := range core.LocalItems() {
		if best == nil ||
			p.ArrivalTime < best.ArrivalTime ||
			(p.ArrivalTime == best.ArrivalTime && p.PID < best.PID) {
			best = p
		}
	}
	return best
}

// Reset drops any stale local-queue contents. The engine flattens live
// queues back into the global pool before deactivation, so this only
// guards against reuse of a dirty instance.
func (*LoadBalancing) Reset(ctx *SchedContext) {
	for _, c := range ctx.Cores {
		c.DrainLocal()
	}
}
