package sim

import "errors"

// Fatal simulation errors. Each is wrapped at the failure site with the
// offending pid, core id, and simulated time; a Run that hits one aborts
// and returns it.
var (
	// ErrInvalidConfiguration rejects a config or workload before any
	// simulation step runs.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrDuplicatePID rejects a workload containing the same pid twice.
	ErrDuplicatePID = errors.New("duplicate pid")

	// ErrSchedulerSelection flags a policy that selected a process which is
	// not runnable or not present in any pool.
	ErrSchedulerSelection = errors.New("scheduler selection violation")

	// ErrCoreBusy flags an assignment to an occupied core.
	ErrCoreBusy = errors.New("core busy")

	// ErrSimulationStalled flags an exhausted event heap with processes
	// still incomplete and no configured stop bound.
	ErrSimulationStalled = errors.New("simulation stalled")
)
