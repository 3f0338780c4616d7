// Tracks per-process and per-core performance data and computes the final
// aggregates that make scheduling policies comparable.

package sim

import (
	"fmt"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/multicore-sim/multicore-sim/sim/trace"
)

// ProcessResult archives the timing of one completed process.
type ProcessResult struct {
	PID             int
	Type            ProcessType
	ArrivalTime     int64
	CompletionTime  int64
	Turnaround      int64 // completion - arrival
	Waiting         int64 // turnaround - burst
	Response        int64 // first execution - arrival
	ContextSwitches int
}

// UnfinishedProcess reports a process still incomplete when the run stopped
// early. A distinct category, never silently dropped.
type UnfinishedProcess struct {
	PID           int
	State         ProcessState
	RemainingTime int64
}

// MetricsCollector accumulates per-core utilization and per-process
// results during a run. The busy ledger is mutex-guarded because per-core
// Advance calls may execute concurrently.
type MetricsCollector struct {
	mu       sync.Mutex
	coreBusy []int64
	coreExec []int
	results  []ProcessResult
}

func NewMetricsCollector(numCores int) *MetricsCollector {
	return &MetricsCollector{
		coreBusy: make([]int64, numCores),
		coreExec: make([]int, numCores),
	}
}

// AddBusy credits d executed ticks to the core's utilization ledger.
// Called by every Core.Advance.
func (m *MetricsCollector) AddBusy(coreID int, d int64) {
	m.mu.Lock()
	m.coreBusy[coreID] += d
	m.mu.Unlock()
}

// AddExecuted counts one process assignment on the core. Called by every
// Core.Assign.
func (m *MetricsCollector) AddExecuted(coreID int) {
	m.mu.Lock()
	m.coreExec[coreID]++
	m.mu.Unlock()
}

// RecordCompletion archives a terminated process.
func (m *MetricsCollector) RecordCompletion(p *Process) {
	turnaround := p.CompletionTime - p.ArrivalTime
	m.mu.Lock()
	m.results = append(m.results, ProcessResult{
		PID:             p.PID,
		Type:            p.Type,
		ArrivalTime:     p.ArrivalTime,
		CompletionTime:  p.CompletionTime,
		Turnaround:      turnaround,
		Waiting:         turnaround - p.BurstTime,
		Response:        p.StartTime - p.ArrivalTime,
		ContextSwitches: p.ContextSwitches,
	})
	m.mu.Unlock()
}

// CompletedCount returns the number of archived completions.
func (m *MetricsCollector) CompletedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.results)
}

// Distribution captures a statistical summary of a metric.
type Distribution struct {
	Mean  float64
	P50   float64
	P95   float64
	P99   float64
	Min   float64
	Max   float64
	Count int
}

// NewDistribution computes a Distribution from raw values.
// Returns a zero-value Distribution for empty input.
func NewDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return Distribution{
		Mean:  stat.Mean(sorted, nil),
		P50:   stat.Quantile(0.50, stat.LinInterp, sorted, nil),
		P95:   stat.Quantile(0.95, stat.LinInterp, sorted, nil),
		P99:   stat.Quantile(0.99, stat.LinInterp, sorted, nil),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Count: len(sorted),
	}
}

// Snapshot is the finalized, read-only metrics view handed to reporting.
// Complete is false when the snapshot was taken before termination (early
// stop or mid-run request); the values then cover completed work only.
type Snapshot struct {
	Complete bool
	Policy   string
	NumCores int
	Elapsed  int64

	CompletedCount int
	AvgTurnaround  float64
	AvgWaiting     float64
	AvgResponse    float64
	Turnaround     Distribution

	CPUUtilization   float64 // percent of cores × elapsed spent busy
	Throughput       float64 // completions per tick
	LoadBalanceScore float64 // 1 - stdev(per-core utilization)/100
	ContextSwitches  int

	PerCoreBusy        []int64
	PerCoreIdle        []int64   // elapsed minus busy, per core
	PerCoreExecuted    []int     // process assignments per core
	PerCoreUtilization []float64 // percent per core

	Results    []ProcessResult
	Unfinished []UnfinishedProcess
	Timeline   []trace.ExecutionRecord
	Policies   []trace.PolicyInterval
}

// Snapshot aggregates the collected data into an immutable value. The
// caller supplies elapsed simulated time and run context; every slice is
// copied so later mutation of collector state cannot leak in.
func (m *MetricsCollector) Snapshot(policy string, elapsed int64, complete bool,
	unfinished []UnfinishedProcess, tr *trace.ScheduleTrace) Snapshot {

	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		Complete:        complete,
		Policy:          policy,
		NumCores:        len(m.coreBusy),
		Elapsed:         elapsed,
		CompletedCount:  len(m.results),
		Results:         append([]ProcessResult(nil), m.results...),
		Unfinished:      append([]UnfinishedProcess(nil), unfinished...),
		PerCoreBusy:     append([]int64(nil), m.coreBusy...),
		PerCoreExecuted: append([]int(nil), m.coreExec...),
	}
	s.PerCoreIdle = make([]int64, len(m.coreBusy))
	for i, busy := range m.coreBusy {
		s.PerCoreIdle[i] = elapsed - busy
	}
	if tr != nil {
		s.Timeline = append([]trace.ExecutionRecord(nil), tr.Executions...)
		s.Policies = append([]trace.PolicyInterval(nil), tr.Policies...)
	}

	if n := len(m.results); n > 0 {
		turnarounds := make([]float64, n)
		var waitSum, respSum, switches int64
		for i, r := range m.results {
			turnarounds[i] = float64(r.Turnaround)
			waitSum += r.Waiting
			respSum += r.Response
			switches += int64(r.ContextSwitches)
		}
		s.Turnaround = NewDistribution(turnarounds)
		s.AvgTurnaround = s.Turnaround.Mean
		s.AvgWaiting = float64(waitSum) / float64(n)
		s.AvgResponse = float64(respSum) / float64(n)
		s.ContextSwitches = int(switches)
	}

	s.PerCoreUtilization = make([]float64, len(m.coreBusy))
	if elapsed > 0 {
		var totalBusy int64
		for i, busy := range m.coreBusy {
			totalBusy += busy
			s.PerCoreUtilization[i] = float64(busy) / float64(elapsed) * 100
		}
		s.CPUUtilization = float64(totalBusy) / (float64(len(m.coreBusy)) * float64(elapsed)) * 100
		s.Throughput = float64(len(m.results)) / float64(elapsed)
	}

	// 1.0 means perfectly even utilization; a single core is trivially even.
	s.LoadBalanceScore = 1.0
	if len(s.PerCoreUtilization) > 1 && elapsed > 0 {
		score := 1.0 - stat.StdDev(s.PerCoreUtilization, nil)/100
		if score < 0 {
			score = 0
		}
		s.LoadBalanceScore = score
	}

	return s
}

// Print displays the aggregated metrics at the end of a run.
func (s Snapshot) Print() {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Policy               : %s\n", s.Policy)
	fmt.Printf("Cores                : %d\n", s.NumCores)
	fmt.Printf("Elapsed              : %d ticks\n", s.Elapsed)
	fmt.Printf("Completed Processes  : %d\n", s.CompletedCount)
	if len(s.Unfinished) > 0 {
		fmt.Printf("Unfinished Processes : %d\n", len(s.Unfinished))
	}
	if s.CompletedCount > 0 {
		fmt.Printf("Avg Turnaround Time  : %.2f ticks\n", s.AvgTurnaround)
		fmt.Printf("Avg Waiting Time     : %.2f ticks\n", s.AvgWaiting)
		fmt.Printf("Avg Response Time    : %.2f ticks\n", s.AvgResponse)
		fmt.Printf("Turnaround p95       : %.2f ticks\n", s.Turnaround.P95)
		fmt.Printf("CPU Utilization      : %.2f%%\n", s.CPUUtilization)
		fmt.Printf("Throughput           : %.4f processes/tick\n", s.Throughput)
		fmt.Printf("Load Balance Score   : %.2f\n", s.LoadBalanceScore)
		fmt.Printf("Context Switches     : %d\n", s.ContextSwitches)
	}
	for i := range s.PerCoreBusy {
		fmt.Printf("%-21s: busy=%d idle=%d executed=%d\n",
			fmt.Sprintf("Core %d", i), s.PerCoreBusy[i], s.PerCoreIdle[i], s.PerCoreExecuted[i])
	}
	for _, interval := range s.Policies {
		fmt.Printf("Policy %-14s : ticks %d..%d\n", interval.Policy, interval.Start, interval.End)
	}
}
