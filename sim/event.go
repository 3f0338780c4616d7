package sim

import "github.com/sirupsen/logrus"

// EventClass orders events scheduled at the same tick. The fixed same-tick
// order keeps tie-breaking deterministic: arrivals, then I/O returns, then
// slice completions/expiries, then preemption re-evaluation, then
// adaptation sampling.
type EventClass int

const (
	ClassArrival EventClass = iota
	ClassIOComplete
	ClassSliceDone
	ClassPreemptCheck
	ClassAdaptation
)

// Event is a scheduled state change in the simulation. Each event has a
// Timestamp in ticks, a Class for same-tick ordering, and an Execute method
// that advances simulation state when invoked.
type Event interface {
	Timestamp() int64
	Class() EventClass
	eventID() uint64
	setEventID(id uint64)
	Execute(sim *Simulator)
}

// BaseEvent provides the common event fields. The event id is assigned by
// the heap at Schedule time, in creation order, as the final deterministic
// tie-breaker.
type BaseEvent struct {
	time  int64
	id    uint64
	class EventClass
}

func newBaseEvent(time int64, class EventClass) BaseEvent {
	return BaseEvent{time: time, class: class}
}

func (e *BaseEvent) Timestamp() int64      { return e.time }
func (e *BaseEvent) Class() EventClass     { return e.class }
func (e *BaseEvent) eventID() uint64       { return e.id }
func (e *BaseEvent) setEventID(id uint64)  { e.id = id }

// ArrivalEvent inserts a new process into the ready pool.
type ArrivalEvent struct {
	BaseEvent
	Process *Process
}

func NewArrivalEvent(time int64, p *Process) *ArrivalEvent {
	return &ArrivalEvent{BaseEvent: newBaseEvent(time, ClassArrival), Process: p}
}

func (e *ArrivalEvent) Execute(sim *Simulator) {
	logrus.Infof("<< Arrival: P%d at %d ticks", e.Process.PID, e.time)
	sim.handleArrival(e.Process)
}

// IOCompleteEvent returns a WAITING process to the ready pool after its
// simulated I/O duration elapses. Blocking is a timed event, never a real
// suspension.
type IOCompleteEvent struct {
	BaseEvent
	Process *Process
}

func NewIOCompleteEvent(time int64, p *Process) *IOCompleteEvent {
	return &IOCompleteEvent{BaseEvent: newBaseEvent(time, ClassIOComplete), Process: p}
}

func (e *IOCompleteEvent) Execute(sim *Simulator) {
	logrus.Infof("<< IOComplete: P%d at %d ticks", e.Process.PID, e.time)
	sim.handleIOComplete(e.Process)
}

// SliceDoneEvent marks the end of an execution slice on a core: the running
// process either completed, exhausted its quantum, or blocked for I/O.
// Seq guards against stale events after a mid-slice preemption cut.
type SliceDoneEvent struct {
	BaseEvent
	CoreID int
	Seq    uint64

	// completed is filled by the parallel advance phase before Execute
	// runs; see Simulator.executeBatch.
	completed bool
}

func NewSliceDoneEvent(time int64, coreID int, seq uint64) *SliceDoneEvent {
	return &SliceDoneEvent{BaseEvent: newBaseEvent(time, ClassSliceDone), CoreID: coreID, Seq: seq}
}

func (e *SliceDoneEvent) Execute(sim *Simulator) {
	sim.handleSliceDone(e)
}

// PreemptCheckEvent re-evaluates every busy core against the ready pool.
// Scheduled on each arrival (and I/O return) while a preemptive policy is
// active.
type PreemptCheckEvent struct {
	BaseEvent
}

func NewPreemptCheckEvent(time int64) *PreemptCheckEvent {
	return &PreemptCheckEvent{BaseEvent: newBaseEvent(time, ClassPreemptCheck)}
}

func (e *PreemptCheckEvent) Execute(sim *Simulator) {
	sim.handlePreemptCheck()
}

// AdaptationEvent samples system state and lets the meta-scheduler swap the
// active policy. Reschedules itself every adaptation interval while work
// remains.
type AdaptationEvent struct {
	BaseEvent
}

func NewAdaptationEvent(time int64) *AdaptationEvent {
	return &AdaptationEvent{BaseEvent: newBaseEvent(time, ClassAdaptation)}
}

func (e *AdaptationEvent) Execute(sim *Simulator) {
	sim.handleAdaptation()
}
