// Package sim provides the discrete-event multicore scheduling simulator.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - process.go: Process lifecycle (NEW → READY → RUNNING → TERMINATED) and timing fields
//   - event.go: Event types that drive the simulation (Arrival, SliceDone, PreemptCheck, ...)
//   - simulator.go: The event loop, slice dispatch, and the same-tick core barrier
//
// # Architecture
//
// The engine is policy-agnostic: it owns time, cores, the ready pool, and
// the event heap, and delegates every "who runs next" decision to a Policy.
// Policies live in policy_*.go; the adaptive meta-scheduler (adaptive.go)
// wraps them all and swaps the active one at runtime. Sub-packages:
//   - sim/trace/: execution timeline and policy-interval recording
//   - sim/workload/: synthetic workload generation
//
// # Key Interfaces
//
//   - Policy: Select/OnArrival/QuantumFor/ShouldPreempt, the scheduling
//     strategy contract
//   - Event: timestamped unit of work applied to the Simulator
//
// Determinism is a hard requirement: identical workload and configuration
// must reproduce identical metrics and timeline. Ties on the event heap
// break by event class then creation order; ties inside policies break by
// pid or core id. Randomness, where used at all, flows through
// PartitionedRNG (rng.go).
package sim
