package sim

import "fmt"

// ProcessState tracks a process through its lifecycle. TERMINATED is
// absorbing; every other transition follows
// NEW → READY → RUNNING → {READY, WAITING, TERMINATED}.
type ProcessState string

const (
	StateNew        ProcessState = "new"
	StateReady      ProcessState = "ready"
	StateRunning    ProcessState = "running"
	StateWaiting    ProcessState = "waiting"
	StateTerminated ProcessState = "terminated"
)

// ProcessType labels the workload character of a process. The adaptive
// meta-scheduler classifies the pending mix by these labels.
type ProcessType string

const (
	CPUBound ProcessType = "cpu_bound"
	IOBound  ProcessType = "io_bound"
	Mixed    ProcessType = "mixed"
)

// ProcessRecord is the flat boundary type workload generators hand to the
// simulator: one row per process, no simulation state.
type ProcessRecord struct {
	PID         int         `yaml:"pid"`
	ArrivalTime int64       `yaml:"arrival_time"`
	BurstTime   int64       `yaml:"burst_time"`
	Priority    float64     `yaml:"priority"`
	Type        ProcessType `yaml:"type,omitempty"`

	// Optional I/O modeling: block for IODuration ticks after every
	// IOEvery executed ticks. Zero disables.
	IOEvery    int64 `yaml:"io_every,omitempty"`
	IODuration int64 `yaml:"io_duration,omitempty"`
}

// Process is the unit of simulated work. Priority is the base value (lower
// means more urgent); EffectivePriority is the aged view materialized by
// the priority policy at decision time.
type Process struct {
	PID           int
	ArrivalTime   int64
	BurstTime     int64
	RemainingTime int64

	Priority          float64
	EffectivePriority float64
	Type              ProcessType
	State             ProcessState

	StartTime      int64 // first execution tick, -1 until first run
	CompletionTime int64 // -1 until terminated
	ReadyAt        int64 // last READY transition, drives aging and waiting
	WaitingAccum   int64

	LastCore        int // -1 until first run
	ContextSwitches int

	IOEvery    int64
	IODuration int64
	ranSinceIO int64
}

func newProcess(rec ProcessRecord) *Process {
	typ := rec.Type
	if typ == "" {
		typ = CPUBound
	}
	return &Process{
		PID:               rec.PID,
		ArrivalTime:       rec.ArrivalTime,
		BurstTime:         rec.BurstTime,
		RemainingTime:     rec.BurstTime,
		Priority:          rec.Priority,
		EffectivePriority: rec.Priority,
		Type:              typ,
		State:             StateNew,
		StartTime:         -1,
		CompletionTime:    -1,
		LastCore:          -1,
		IOEvery:           rec.IOEvery,
		IODuration:        rec.IODuration,
	}
}

// MarkReady moves the process into READY and stamps the transition time.
// ReadyAt feeds both waiting-time accumulation and priority aging.
func (p *Process) MarkReady(now int64) {
	p.State = StateReady
	p.ReadyAt = now
}

// startRunning transitions READY → RUNNING on the given core. StartTime is
// set on the first run only; a context switch is counted when the process
// resumes on a different core than it last ran on.
func (p *Process) startRunning(now int64, coreID int) {
	p.State = StateRunning
	if p.StartTime < 0 {
		p.StartTime = now
	}
	p.WaitingAccum += now - p.ReadyAt
	if p.LastCore >= 0 && p.LastCore != coreID {
		p.ContextSwitches++
	}
	p.LastCore = coreID
}

// AgedPriority returns the effective priority at time now: the base value
// lowered by rate per tick spent READY, floored at zero. A process that is
// not waiting in READY keeps its base priority.
func (p *Process) AgedPriority(now int64, rate float64) float64 {
	if p.State != StateReady {
		return p.Priority
	}
	aged := p.Priority - rate*float64(now-p.ReadyAt)
	if aged < 0 {
		return 0
	}
	return aged
}

// nextIOIn returns the executed ticks until the next I/O block, or 0 when
// I/O modeling is disabled for this process.
func (p *Process) nextIOIn() int64 {
	if p.IOEvery <= 0 || p.IODuration <= 0 {
		return 0
	}
	return p.IOEvery - p.ranSinceIO
}

// Completed reports whether the process has terminated.
func (p *Process) Completed() bool {
	return p.State == StateTerminated
}

func (p *Process) String() string {
	return fmt.Sprintf("P%d(%s, remaining=%d/%d, prio=%.1f)",
		p.PID, p.State, p.RemainingTime, p.BurstTime, p.Priority)
}
