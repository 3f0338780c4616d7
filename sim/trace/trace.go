package trace

// ScheduleTrace collects execution intervals and policy usage intervals
// during a simulation run.
type ScheduleTrace struct {
	Executions []ExecutionRecord
	Policies   []PolicyInterval
}

// NewScheduleTrace creates a ScheduleTrace ready for recording.
func NewScheduleTrace() *ScheduleTrace {
	return &ScheduleTrace{
		Executions: make([]ExecutionRecord, 0),
		Policies:   make([]PolicyInterval, 0),
	}
}

// RecordExecution appends an execution interval.
func (st *ScheduleTrace) RecordExecution(record ExecutionRecord) {
	st.Executions = append(st.Executions, record)
}

// RecordPolicyInterval appends a policy usage interval.
func (st *ScheduleTrace) RecordPolicyInterval(record PolicyInterval) {
	st.Policies = append(st.Policies, record)
}
