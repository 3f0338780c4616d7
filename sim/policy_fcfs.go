package sim

// FCFS runs processes in arrival order, to completion. Simple and
// starvation-free, but short processes convoy behind long ones.
type FCFS struct {
	nonPreemptive
	runToCompletion
	globalArrival
	stateless
}

func (*FCFS) Name() string { return PolicyFCFS }

// Select returns the pooled process with the minimum arrival time,
// tie-broken by minimum pid.
func (*FCFS) Select(ctx *SchedContext, _ *Core) *Process {
	var best *Process
	for _, p := range ctx.Ready.Snapshot() {
		if best == nil ||
			p.ArrivalTime < best.ArrivalTime ||
			(p.ArrivalTime == best.ArrivalTime && p.PID < best.PID) {
			best = p
		}
	}
	return best
}
