package sim

import (
	"testing"
)

func TestReadyQueue_PreservesInsertionOrder(t *testing.T) {
	// GIVEN three processes enqueued in order
	rq := &ReadyQueue{}
	p0 := newProcess(ProcessRecord{PID: 0, BurstTime: 1})
	p1 := newProcess(ProcessRecord{PID: 1, BurstTime: 1})
	p2 := newProcess(ProcessRecord{PID: 2, BurstTime: 1})
	rq.Enqueue(p0)
	rq.Enqueue(p1)
	rq.Enqueue(p2)

	// WHEN we look at the pool
	// THEN the head and the snapshot reflect insertion order
	if got := rq.Peek(); got != p0 {
		t.Fatalf("expected P0 at head, got %v", got)
	}
	snap := rq.Snapshot()
	if len(snap) != 3 || snap[0] != p0 || snap[1] != p1 || snap[2] != p2 {
		t.Errorf("snapshot order wrong: %v", snap)
	}
}

func TestReadyQueue_RemovePreservesRemainderOrder(t *testing.T) {
	// GIVEN a pool [P0 P1 P2]
	rq := &ReadyQueue{}
	procs := make([]*Process, 3)
	for i := range procs {
		procs[i] = newProcess(ProcessRecord{PID: i, BurstTime: 1})
		rq.Enqueue(procs[i])
	}

	// WHEN the middle process is removed
	if !rq.Remove(procs[1]) {
		t.Fatal("Remove should find P1")
	}

	// THEN the remainder keeps its order
	snap := rq.Snapshot()
	if len(snap) != 2 || snap[0] != procs[0] || snap[1] != procs[2] {
		t.Errorf("expected [P0 P2], got %v", snap)
	}
}

func TestReadyQueue_RemoveAbsentReturnsFalse(t *testing.T) {
	rq := &ReadyQueue{}
	rq.Enqueue(newProcess(ProcessRecord{PID: 0, BurstTime: 1}))

	outsider := newProcess(ProcessRecord{PID: 9, BurstTime: 1})
	if rq.Remove(outsider) {
		t.Error("Remove must return false for a process not in the pool")
	}
	if rq.Len() != 1 {
		t.Errorf("pool size changed: got %d, want 1", rq.Len())
	}
}

func TestReadyQueue_SnapshotIsACopy(t *testing.T) {
	rq := &ReadyQueue{}
	p := newProcess(ProcessRecord{PID: 0, BurstTime: 1})
	rq.Enqueue(p)

	snap := rq.Snapshot()
	snap[0] = nil
	if rq.Peek() != p {
		t.Error("mutating a snapshot must not affect the pool")
	}
}

func TestReadyQueue_PeekEmptyReturnsNil(t *testing.T) {
	rq := &ReadyQueue{}
	if rq.Peek() != nil {
		t.Error("Peek on an empty pool must return nil")
	}
}
