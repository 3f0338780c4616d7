// Implements the ReadyQueue, the shared global pool of runnable processes.
// Processes are enqueued on arrival, on quantum expiry, and on I/O return.

package sim

import (
	"fmt"
	"strings"
	"sync"
)

// ReadyQueue is the global ready pool. Insertion order is preserved, which
// is the rotation order Round Robin relies on. Access is mutex-guarded:
// policies that are not per-core-local hold the pool for the duration of a
// Select/OnArrival call while per-core Advance operations run concurrently.
type ReadyQueue struct {
	mu    sync.Mutex
	queue []*Process
}

// Enqueue adds a process to the back of the pool.
func (rq *ReadyQueue) Enqueue(p *Process) {
	rq.mu.Lock()
	defer rq.mu.Unlock()
	rq.queue = append(rq.queue, p)
}

// Len returns the number of processes in the pool.
func (rq *ReadyQueue) Len() int {
	rq.mu.Lock()
	defer rq.mu.Unlock()
	return len(rq.queue)
}

// Peek returns the process at the front of the pool without removing it.
// Returns nil if the pool is empty.
func (rq *ReadyQueue) Peek() *Process {
	rq.mu.Lock()
	defer rq.mu.Unlock()
	if len(rq.queue) == 0 {
		return nil
	}
	return rq.queue[0]
}

// Snapshot returns a copy of the pool contents in insertion order.
// Policies scan the snapshot to pick a candidate; the engine then removes
// the selection with Remove.
func (rq *ReadyQueue) Snapshot() []*Process {
	rq.mu.Lock()
	defer rq.mu.Unlock()
	out := make([]*Process, len(rq.queue))
	copy(out, rq.queue)
	return out
}

// Remove deletes a specific process from the pool, preserving the order of
// the remainder. Returns false if the process is not present — the engine
// treats that as a SchedulerSelectionViolation.
func (rq *ReadyQueue) Remove(p *Process) bool {
	rq.mu.Lock()
	defer rq.mu.Unlock()
	for i, q := range rq.queue {
		if q == p {
			rq.queue = append(rq.queue[:i], rq.queue[i+1:]...)
			return true
		}
	}
	return false
}

func (rq *ReadyQueue) String() string {
	rq.mu.Lock()
	defer rq.mu.Unlock()
	var sb strings.Builder
	sb.WriteString("[")
	for i, p := range rq.queue {
		sb.WriteString(fmt.Sprintf("P%d", p.PID))
		if i < len(rq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
