package sim

import "fmt"

// Core models one CPU core: at most one running process, a busy-time
// accumulator, and a local queue used only by placement-sensitive policies
// (load balancing, work stealing).
type Core struct {
	ID       int
	BusyTime int64
	Executed int // processes ever assigned to this core

	current    *Process
	sliceStart int64
	sliceSeq   uint64 // bumped per assignment and per cut; stales old SliceDoneEvents

	local   []*Process
	metrics *MetricsCollector
}

func NewCore(id int, metrics *MetricsCollector) *Core {
	return &Core{ID: id, metrics: metrics}
}

// Busy reports whether a process occupies the core.
func (c *Core) Busy() bool { return c.current != nil }

// Current returns the running process, or nil when idle.
func (c *Core) Current() *Process { return c.current }

// Assign opens a new execution slice for p at tick now.
func (c *Core) Assign(p *Process, now int64) error {
	if c.current != nil {
		return fmt.Errorf("%w: core=%d pid=%d blocked by pid=%d t=%d",
			ErrCoreBusy, c.ID, p.PID, c.current.PID, now)
	}
	c.current = p
	c.sliceStart = now
	c.sliceSeq++
	c.Executed++
	c.metrics.AddExecuted(c.ID)
	return nil
}

// Advance executes d ticks of the current slice and reports whether the
// process completed. Touches only this core, its process, and the
// mutex-guarded utilization ledger, so different cores may advance
// concurrently.
func (c *Core) Advance(d int64) bool {
	p := c.current
	if p == nil || d <= 0 {
		return false
	}
	if d > p.RemainingTime {
		d = p.RemainingTime
	}
	p.RemainingTime -= d
	p.ranSinceIO += d
	c.BusyTime += d
	c.metrics.AddBusy(c.ID, d)
	return p.RemainingTime == 0
}

// remainingAt returns the running process's remaining time as of tick now,
// counting execution since the slice opened. RemainingTime itself is only
// materialized when the slice closes.
func (c *Core) remainingAt(now int64) int64 {
	if c.current == nil {
		return 0
	}
	rem := c.current.RemainingTime - (now - c.sliceStart)
	if rem < 0 {
		return 0
	}
	return rem
}

// Release detaches and returns the current process.
func (c *Core) Release() *Process {
	p := c.current
	c.current = nil
	return p
}

// cancelSlice invalidates the pending SliceDoneEvent for the current slice.
func (c *Core) cancelSlice() {
	c.sliceSeq++
}

// PushLocal appends p to the core's local queue.
func (c *Core) PushLocal(p *Process) {
	c.local = append(c.local, p)
}

// LocalLen returns the local queue depth.
func (c *Core) LocalLen() int { return len(c.local) }

// LocalItems exposes the local queue in order. Callers must not mutate it;
// removal goes through TakeLocal.
func (c *Core) LocalItems() []*Process { return c.local }

// TakeLocal removes p from the local queue, preserving order. Returns
// false if p is not queued here.
func (c *Core) TakeLocal(p *Process) bool {
	for i, q := range c.local {
		if q == p {
			c.local = append(c.local[:i], c.local[i+1:]...)
			return true
		}
	}
	return false
}

// DrainLocal empties the local queue and returns its contents in order.
func (c *Core) DrainLocal() []*Process {
	out := c.local
	c.local = nil
	return out
}

func (c *Core) String() string {
	if c.current == nil {
		return fmt.Sprintf("core %d idle (busy=%d)", c.ID, c.BusyTime)
	}
	return fmt.Sprintf("core %d running P%d (busy=%d)", c.ID, c.current.PID, c.BusyTime)
}
