package trace

// Summary aggregates statistics from a ScheduleTrace.
type Summary struct {
	TotalSlices  int
	BusyPerCore  map[int]int64    // core id → total executed ticks
	SlicesPerPID map[int]int      // pid → number of execution slices
	PolicyTicks  map[string]int64 // policy name → ticks active
	SwitchCount  int              // policy changes (intervals - 1, floor 0)
}

// Summarize computes aggregate statistics from a ScheduleTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *ScheduleTrace) *Summary {
	summary := &Summary{
		BusyPerCore:  make(map[int]int64),
		SlicesPerPID: make(map[int]int),
		PolicyTicks:  make(map[string]int64),
	}
	if st == nil {
		return summary
	}

	summary.TotalSlices = len(st.Executions)
	for _, e := range st.Executions {
		summary.BusyPerCore[e.CoreID] += e.End - e.Start
		summary.SlicesPerPID[e.PID]++
	}

	for _, p := range st.Policies {
		summary.PolicyTicks[p.Policy] += p.End - p.Start
	}
	if n := len(st.Policies); n > 1 {
		summary.SwitchCount = n - 1
	}

	return summary
}
