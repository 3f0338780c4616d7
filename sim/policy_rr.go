package sim

// RoundRobin shares each core in fixed quanta. The ready pool preserves
// insertion order, so the rotation is the pool itself: arrivals and expired
// slices join at the tail, Select takes the head. Fair, starvation-free.
type RoundRobin struct {
	nonPreemptive
	globalArrival
	stateless

	Quantum int64
}

func (*RoundRobin) Name() string { return PolicyRoundRobin }

// Select returns the head of the rotation queue.
func (*RoundRobin) Select(ctx *SchedContext, _ *Core) *Process {
	return ctx.Ready.Peek()
}

// QuantumFor returns the fixed slice; the engine requeues an unfinished
// process at the tail when it expires.
func (rr *RoundRobin) QuantumFor(*Process) (int64, bool) {
	return rr.Quantum, true
}
