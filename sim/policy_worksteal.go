package sim

// WorkStealing gives each core a private FIFO queue and lets an idle core
// take the tail of the busiest other core's queue. Stealing happens only at
// idle; within a core, execution is FCFS and non-preemptive. Arrivals go to
// the shortest queue, so placement stays deterministic (no randomized
// victim sampling).
type WorkStealing struct {
	nonPreemptive
	runToCompletion
}

func (*WorkStealing) Name() string { return PolicyWorkStealing }

// OnArrival places the process into the shortest local queue, tie-broken by
// minimum core id.
func (*WorkStealing) OnArrival(ctx *SchedContext, p *Process) {
	target := ctx.Cores[0]
	for _, c := range ctx.Cores[1:] {
		if c.LocalLen() < target.LocalLen() {
			target = c
		}
	}
	target.PushLocal(p)
}

// Select takes the head of the core's own queue; if that queue is empty it
// steals the tail of the busiest other core's queue (maximum length,
// tie-broken by minimum core id).
func (*WorkStealing) Select(ctx *SchedContext, core *Core) *Process {
	if local := core.LocalItems(); len(local) > 0 {
		return local[0]
	}

	var victim *Core
	for _, c := range ctx.Cores {
		if c.ID == core.ID || c.LocalLen() == 0 {
			continue
		}
		if victim == nil || c.LocalLen() > victim.LocalLen() {
			victim = c
		}
	}
	if victim == nil {
		return nil
	}
	queue := victim.LocalItems()
	return queue[len(queue)-1]
}

// Reset drops any stale local-queue contents; see LoadBalancing.Reset.
func (*WorkStealing) Reset(ctx *SchedContext) {
	for _, c := range ctx.Cores {
		c.DrainLocal()
	}
}
