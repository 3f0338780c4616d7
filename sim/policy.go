package sim

import "fmt"

// SchedContext is the engine-owned context passed to every policy call.
// The active policy is never hidden global state: the engine threads this
// object through Select/OnArrival/ShouldPreempt so multiple simulations can
// run concurrently without interference.
type SchedContext struct {
	Clock int64
	Cores []*Core
	Ready *ReadyQueue
}

// Policy decides, at each scheduling opportunity, which process a core
// should run next.
//
// Select must return a process currently present in the global ready pool
// or in one of the per-core local queues, or nil; the engine verifies the
// selection and treats an absent or already-running process as a fatal
// SchedulerSelectionViolation.
type Policy interface {
	Name() string

	// Select picks the next process for the given core, or nil.
	Select(ctx *SchedContext, core *Core) *Process

	// OnArrival places a newly runnable process. Global policies enqueue
	// into the shared ready pool; placement-sensitive policies route into
	// per-core local queues.
	OnArrival(ctx *SchedContext, p *Process)

	// QuantumFor returns the execution slice length before the engine
	// re-invokes the policy. ok=false signals run-to-completion.
	QuantumFor(p *Process) (quantum int64, ok bool)

	// Preemptive reports whether arrivals trigger preemption re-evaluation.
	Preemptive() bool

	// ShouldPreempt reports whether the process running on core must yield
	// to a waiting process. Only consulted for preemptive policies.
	ShouldPreempt(ctx *SchedContext, core *Core) bool

	// Reset clears policy-internal state. Called on activation.
	Reset(ctx *SchedContext)
}

// nonPreemptive provides the default no-preemption behavior.
type nonPreemptive struct{}

func (nonPreemptive) Preemptive() bool                          { return false }
func (nonPreemptive) ShouldPreempt(*SchedContext, *Core) bool   { return false }

// runToCompletion provides the default unbounded execution slice.
type runToCompletion struct{}

func (runToCompletion) QuantumFor(*Process) (int64, bool) { return 0, false }

// globalArrival provides the default placement: the shared ready pool.
type globalArrival struct{}

func (globalArrival) OnArrival(ctx *SchedContext, p *Process) {
	ctx.Ready.Enqueue(p)
}

// stateless marks policies with no internal state to reset.
type stateless struct{}

func (stateless) Reset(*SchedContext) {}

// NewPolicy creates a concrete scheduling policy by name. The adaptive
// meta-scheduler is constructed separately via NewAdaptiveScheduler.
func NewPolicy(name string, cfg Config) (Policy, error) {
	switch name {
	case PolicyFCFS:
		return &FCFS{}, nil
	case PolicySJF:
		return &SJF{}, nil
	case PolicyRoundRobin:
		return &RoundRobin{Quantum: cfg.TimeQuantum}, nil
	case PolicyPriority:
		return &PriorityAging{AgingRate: cfg.AgingRate}, nil
	case PolicyLoadBalancing:
		return &LoadBalancing{}, nil
	case PolicyWorkStealing:
		return &WorkStealing{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown policy %q", ErrInvalidConfiguration, name)
	}
}

// usesLocalQueues reports whether the policy places work on per-core local
// queues. The meta-scheduler flattens those queues back into the global
// pool when deactivating such a policy.
func usesLocalQueues(p Policy) bool {
	switch p.(type) {
	case *LoadBalancing, *WorkStealing:
		return true
	}
	return false
}
