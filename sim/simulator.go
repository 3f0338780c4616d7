package sim

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/multicore-sim/multicore-sim/sim/trace"
)

// Simulator is the core object that holds simulated time, system state, and
// the event loop. It owns the global clock, the ready pool, all cores, and
// every process for its lifetime.
type Simulator struct {
	Clock   int64
	Cores   []*Core
	Ready   *ReadyQueue
	Metrics *MetricsCollector
	Trace   *trace.ScheduleTrace

	cfg      Config
	events   *EventHeap
	policy   Policy
	adaptive *AdaptiveScheduler // non-nil when cfg.Policy == adaptive
	ctx      *SchedContext

	procs   []*Process
	pending int // processes not yet terminated
	steps   int
	failure error
}

// NewSimulator validates the configuration, ingests the workload (sorting
// unsorted input, rejecting duplicate pids), and schedules the arrival
// events. No simulation step runs until Run.
func NewSimulator(cfg Config, records []ProcessRecord) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	recs := append([]ProcessRecord(nil), records...)
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].ArrivalTime != recs[j].ArrivalTime {
			return recs[i].ArrivalTime < recs[j].ArrivalTime
		}
		return recs[i].PID < recs[j].PID
	})
	seen := make(map[int]bool, len(recs))
	for _, r := range recs {
		if seen[r.PID] {
			return nil, fmt.Errorf("%w: pid=%d", ErrDuplicatePID, r.PID)
		}
		seen[r.PID] = true
		if r.ArrivalTime < 0 || r.BurstTime <= 0 || r.IOEvery < 0 || r.IODuration < 0 {
			return nil, fmt.Errorf("%w: pid=%d has invalid times (arrival=%d burst=%d io_every=%d io_duration=%d)",
				ErrInvalidConfiguration, r.PID, r.ArrivalTime, r.BurstTime, r.IOEvery, r.IODuration)
		}
	}

	metrics := NewMetricsCollector(cfg.NumCores)
	cores := make([]*Core, cfg.NumCores)
	for i := range cores {
		cores[i] = NewCore(i, metrics)
	}
	tr := trace.NewScheduleTrace()

	s := &Simulator{
		Cores:   cores,
		Ready:   &ReadyQueue{},
		Metrics: metrics,
		Trace:   tr,
		cfg:     cfg,
		events:  NewEventHeap(),
	}
	s.ctx = &SchedContext{Cores: cores, Ready: s.Ready}

	if cfg.Policy == PolicyAdaptive {
		adaptive, err := NewAdaptiveScheduler(cfg, tr)
		if err != nil {
			return nil, err
		}
		s.adaptive = adaptive
		s.policy = adaptive
	} else {
		policy, err := NewPolicy(cfg.Policy, cfg)
		if err != nil {
			return nil, err
		}
		s.policy = policy
	}
	s.policy.Reset(s.ctx)

	for _, r := range recs {
		p := newProcess(r)
		s.procs = append(s.procs, p)
		s.events.Schedule(NewArrivalEvent(r.ArrivalTime, p))
	}
	s.pending = len(s.procs)

	if s.adaptive != nil && s.pending > 0 {
		s.events.Schedule(NewAdaptationEvent(cfg.AdaptationInterval))
	}

	return s, nil
}

// Run drives the event loop until every process terminates, a configured
// bound is hit, or a fatal violation surfaces. On early stop it still emits
// metrics, reporting incomplete processes as unfinished.
func (s *Simulator) Run() (Snapshot, error) {
	stoppedEarly := false

	for s.pending > 0 && s.events.Len() > 0 && s.failure == nil {
		next := s.events.Peek().Timestamp()
		if s.cfg.MaxTime > 0 && next > s.cfg.MaxTime {
			s.Clock = s.cfg.MaxTime
			stoppedEarly = true
			break
		}
		s.Clock = next
		s.ctx.Clock = next
		logrus.Debugf("[tick %07d] step %d", s.Clock, s.steps)

		// Apply every event scheduled at this tick, including same-tick
		// followups (preemption checks), before any core is re-dispatched.
		for s.failure == nil && s.events.Len() > 0 && s.events.Peek().Timestamp() == s.Clock {
			s.executeBatch(s.drainBatch(s.Clock))
		}
		if s.failure != nil {
			break
		}

		s.dispatch()

		s.steps++
		if s.cfg.MaxSteps > 0 && s.steps >= s.cfg.MaxSteps && s.pending > 0 {
			stoppedEarly = true
			break
		}
	}

	if s.failure != nil {
		return Snapshot{}, s.failure
	}
	if s.pending > 0 && !stoppedEarly {
		// Defensive: the event model guarantees progress, so an exhausted
		// heap with work left means a missed arrival/quantum registration.
		return Snapshot{}, fmt.Errorf("%w: %d processes pending at t=%d",
			ErrSimulationStalled, s.pending, s.Clock)
	}
	if stoppedEarly {
		s.flushSlices()
	}
	if s.adaptive != nil {
		s.adaptive.Finish(s.Clock)
	}

	logrus.Infof("[tick %07d] Simulation ended (%d completed, %d unfinished)",
		s.Clock, s.Metrics.CompletedCount(), s.pending)
	return s.Snapshot(), nil
}

// Snapshot returns the current metrics view. Requested before termination
// it is flagged incomplete rather than erroring.
func (s *Simulator) Snapshot() Snapshot {
	complete := s.pending == 0 && s.failure == nil
	return s.Metrics.Snapshot(s.cfg.Policy, s.Clock, complete, s.unfinished(), s.Trace)
}

// ActivePolicy returns the name of the policy currently making decisions.
func (s *Simulator) ActivePolicy() string {
	if s.adaptive != nil {
		return s.adaptive.ActiveName()
	}
	return s.policy.Name()
}

// drainBatch pops every event scheduled at tick t, in deterministic
// heap order: arrivals, I/O returns, slice completions, preemption checks,
// adaptation samples.
func (s *Simulator) drainBatch(t int64) []Event {
	var batch []Event
	for s.events.Len() > 0 && s.events.Peek().Timestamp() == t {
		batch = append(batch, s.events.PopNext())
	}
	return batch
}

// executeBatch first advances every core with a live slice ending at this
// tick — concurrently when there is more than one, synchronized by a
// WaitGroup barrier that no completion handling, preemption check, or
// adaptation sample may cross — then applies the events in order.
func (s *Simulator) executeBatch(batch []Event) {
	var slices []*SliceDoneEvent
	for _, ev := range batch {
		if sd, ok := ev.(*SliceDoneEvent); ok {
			core := s.Cores[sd.CoreID]
			if sd.Seq == core.sliceSeq && core.Busy() {
				slices = append(slices, sd)
			}
		}
	}
	switch {
	case len(slices) == 1:
		s.advanceSlice(slices[0])
	case len(slices) > 1:
		var wg sync.WaitGroup
		for _, sd := range slices {
			wg.Add(1)
			go func(sd *SliceDoneEvent) {
				defer wg.Done()
				s.advanceSlice(sd)
			}(sd)
		}
		wg.Wait()
	}

	for _, ev := range batch {
		if s.failure != nil {
			return
		}
		ev.Execute(s)
	}
}

// advanceSlice executes the concurrent-safe part of a slice ending: it
// touches only the event's core, that core's process, and the mutex-guarded
// utilization ledger.
func (s *Simulator) advanceSlice(sd *SliceDoneEvent) {
	core := s.Cores[sd.CoreID]
	sd.completed = core.Advance(s.Clock - core.sliceStart)
}

// === event handlers ===

func (s *Simulator) handleArrival(p *Process) {
	p.MarkReady(s.Clock)
	s.policy.OnArrival(s.ctx, p)
	if s.policy.Preemptive() {
		s.events.Schedule(NewPreemptCheckEvent(s.Clock))
	}
}

func (s *Simulator) handleIOComplete(p *Process) {
	p.MarkReady(s.Clock)
	s.policy.OnArrival(s.ctx, p)
	if s.policy.Preemptive() {
		s.events.Schedule(NewPreemptCheckEvent(s.Clock))
	}
}

func (s *Simulator) handleSliceDone(e *SliceDoneEvent) {
	core := s.Cores[e.CoreID]
	if e.Seq != core.sliceSeq || !core.Busy() {
		// Stale: the slice was cut by a preemption before this fired.
		return
	}

	start := core.sliceStart
	p := core.Release()
	s.Trace.RecordExecution(trace.ExecutionRecord{
		CoreID: core.ID, PID: p.PID, Start: start, End: s.Clock,
	})

	switch {
	case e.completed:
		p.State = StateTerminated
		p.CompletionTime = s.Clock
		s.pending--
		s.Metrics.RecordCompletion(p)
		logrus.Infof("[tick %07d] P%d completed on core %d", s.Clock, p.PID, core.ID)

	case p.IOEvery > 0 && p.ranSinceIO >= p.IOEvery && p.IODuration > 0:
		p.State = StateWaiting
		p.ranSinceIO = 0
		s.events.Schedule(NewIOCompleteEvent(s.Clock+p.IODuration, p))
		logrus.Infof("[tick %07d] P%d blocked for I/O (%d ticks)", s.Clock, p.PID, p.IODuration)

	default: // quantum expired
		p.MarkReady(s.Clock)
		s.policy.OnArrival(s.ctx, p)
	}
}

func (s *Simulator) handlePreemptCheck() {
	for _, core := range s.Cores {
		if !core.Busy() || !s.policy.ShouldPreempt(s.ctx, core) {
			continue
		}
		start := core.sliceStart
		ran := s.Clock - start
		if ran > 0 {
			core.Advance(ran)
			s.Trace.RecordExecution(trace.ExecutionRecord{
				CoreID: core.ID, PID: core.Current().PID, Start: start, End: s.Clock,
			})
		}
		core.cancelSlice()
		p := core.Release()
		p.MarkReady(s.Clock)
		s.policy.OnArrival(s.ctx, p)
		logrus.Warnf("[tick %07d] P%d preempted off core %d", s.Clock, p.PID, core.ID)
	}
}

func (s *Simulator) handleAdaptation() {
	if s.adaptive == nil {
		return
	}
	s.adaptive.Adapt(s.ctx)
	if s.pending > 0 {
		s.events.Schedule(NewAdaptationEvent(s.Clock + s.cfg.AdaptationInterval))
	}
}

// dispatch invokes Select for every idle core, in core-id order, and opens
// a new execution slice for each selection. The slice ends at completion,
// quantum expiry, or the next I/O block, whichever comes first.
func (s *Simulator) dispatch() {
	for _, core := range s.Cores {
		if core.Busy() {
			continue
		}
		p := s.policy.Select(s.ctx, core)
		if p == nil {
			continue
		}
		if err := s.take(p); err != nil {
			s.failure = err
			return
		}
		if err := core.Assign(p, s.Clock); err != nil {
			s.failure = err
			return
		}
		p.startRunning(s.Clock, core.ID)

		dur := p.RemainingTime
		if q, ok := s.policy.QuantumFor(p); ok && q < dur {
			dur = q
		}
		if io := p.nextIOIn(); io > 0 && io < dur {
			dur = io
		}
		s.events.Schedule(NewSliceDoneEvent(s.Clock+dur, core.ID, core.sliceSeq))
		logrus.Infof("[tick %07d] P%d -> core %d for %d ticks", s.Clock, p.PID, core.ID, dur)
	}
}

// take removes the policy's selection from whichever pool holds it. A
// selection that is not READY or not present anywhere is a fatal policy bug.
func (s *Simulator) take(p *Process) error {
	if p.State != StateReady {
		return fmt.Errorf("%w: pid=%d in state %s t=%d", ErrSchedulerSelection, p.PID, p.State, s.Clock)
	}
	if s.Ready.Remove(p) {
		return nil
	}
	for _, c := range s.Cores {
		if c.TakeLocal(p) {
			return nil
		}
	}
	return fmt.Errorf("%w: pid=%d not present in any pool t=%d", ErrSchedulerSelection, p.PID, s.Clock)
}

// flushSlices cuts every in-flight slice at the stop time so partial
// execution still shows in the busy ledger and the timeline.
func (s *Simulator) flushSlices() {
	for _, core := range s.Cores {
		if !core.Busy() {
			continue
		}
		start := core.sliceStart
		if ran := s.Clock - start; ran > 0 {
			core.Advance(ran)
			s.Trace.RecordExecution(trace.ExecutionRecord{
				CoreID: core.ID, PID: core.Current().PID, Start: start, End: s.Clock,
			})
		}
		core.cancelSlice()
		p := core.Release()
		p.MarkReady(s.Clock)
		s.Ready.Enqueue(p)
	}
}

func (s *Simulator) unfinished() []UnfinishedProcess {
	var out []UnfinishedProcess
	for _, p := range s.procs {
		if !p.Completed() {
			out = append(out, UnfinishedProcess{PID: p.PID, State: p.State, RemainingTime: p.RemainingTime})
		}
	}
	return out
}
