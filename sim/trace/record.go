// Package trace provides schedule-trace recording for reporting and
// visualization. This package has no dependencies on sim/ — it stores pure
// data types.
package trace

// ExecutionRecord captures one contiguous execution interval of a process
// on a core. The ordered sequence of records is sufficient to reconstruct
// a schedule diagram.
type ExecutionRecord struct {
	CoreID int
	PID    int
	Start  int64
	End    int64
}

// PolicyInterval captures one usage interval of a scheduling policy,
// recorded by the adaptive meta-scheduler on every switch.
type PolicyInterval struct {
	Policy string
	Start  int64
	End    int64
}
