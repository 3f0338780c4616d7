package cmd

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/multicore-sim/multicore-sim/sim"
	"github.com/multicore-sim/multicore-sim/sim/workload"
)

var (
	// CLI flags for the simulation
	logLevel     string // Log verbosity level
	configPath   string // Optional YAML scenario file
	numCores     int    // Number of simulated cores
	policy       string // Scheduling policy name
	timeQuantum  int64  // Round Robin slice length (ticks)
	adaptEvery   int64  // Ticks between adaptation samples
	agingRate    float64
	maxTime      int64 // Stop bound on simulated time (0 = unbounded)
	maxSteps     int   // Stop bound on event-loop steps (0 = unbounded)

	// CLI flags for workload generation
	workloadPath     string // Optional YAML workload spec
	processesPath    string // Optional explicit process list (YAML)
	seed             int64
	numProcesses     int
	meanInterarrival float64
	burstMin         int64
	burstMax         int64
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "multicore-sim",
	Short: "Discrete-event simulator for multicore CPU scheduling",
}

// buildConfig merges the YAML scenario (if given) with CLI flag overrides.
func buildConfig(cmd *cobra.Command) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if configPath != "" {
		loaded, err := sim.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("cores") {
		cfg.NumCores = numCores
	}
	if cmd.Flags().Changed("policy") {
		cfg.Policy = policy
	}
	if cmd.Flags().Changed("quantum") {
		cfg.TimeQuantum = timeQuantum
	}
	if cmd.Flags().Changed("adaptation-interval") {
		cfg.AdaptationInterval = adaptEvery
	}
	if cmd.Flags().Changed("aging-rate") {
		cfg.AgingRate = agingRate
	}
	if cmd.Flags().Changed("max-time") {
		cfg.MaxTime = maxTime
	}
	if cmd.Flags().Changed("max-steps") {
		cfg.MaxSteps = maxSteps
	}
	return cfg, nil
}

// buildWorkload produces the process list: an explicit process file wins
// over a workload spec file, which wins over flag-driven generation.
func buildWorkload(cmd *cobra.Command) ([]sim.ProcessRecord, error) {
	if processesPath != "" {
		return workload.LoadProcesses(processesPath)
	}

	spec := workload.DefaultSpec()
	if workloadPath != "" {
		loaded, err := workload.LoadSpec(workloadPath)
		if err != nil {
			return nil, err
		}
		spec = loaded
	}
	if cmd.Flags().Changed("seed") {
		spec.Seed = seed
	}
	if cmd.Flags().Changed("num-processes") {
		spec.NumProcesses = numProcesses
	}
	if cmd.Flags().Changed("mean-interarrival") {
		spec.MeanInterarrival = meanInterarrival
	}
	if cmd.Flags().Changed("burst-min") {
		spec.BurstMin = burstMin
	}
	if cmd.Flags().Changed("burst-max") {
		spec.BurstMax = burstMax
	}
	return workload.Generate(spec)
}

// runCmd executes one simulation and prints its metrics
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduling simulation",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := buildConfig(cmd)
		if err != nil {
			logrus.Fatalf("config: %v", err)
		}
		records, err := buildWorkload(cmd)
		if err != nil {
			logrus.Fatalf("workload: %v", err)
		}

		logrus.Infof("Starting simulation: %d cores, policy=%s, %d processes",
			cfg.NumCores, cfg.Policy, len(records))
		startTime := time.Now()

		s, err := sim.NewSimulator(cfg, records)
		if err != nil {
			logrus.Fatalf("simulator: %v", err)
		}
		snapshot, err := s.Run()
		if err != nil {
			logrus.Fatalf("simulation: %v", err)
		}
		snapshot.Print()

		logrus.Infof("Simulation complete in %v (wall clock).", time.Since(startTime))
	},
}

// comparePolicies is every selectable policy, in report order.
var comparePolicies = []string{
	sim.PolicyFCFS, sim.PolicySJF, sim.PolicyRoundRobin, sim.PolicyPriority,
	sim.PolicyLoadBalancing, sim.PolicyWorkStealing, sim.PolicyAdaptive,
}

// compareCmd runs every policy over an identical workload and reports a
// side-by-side table plus the best performer per metric.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare all scheduling policies on one workload",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := buildConfig(cmd)
		if err != nil {
			logrus.Fatalf("config: %v", err)
		}
		records, err := buildWorkload(cmd)
		if err != nil {
			logrus.Fatalf("workload: %v", err)
		}

		snapshots := make(map[string]sim.Snapshot, len(comparePolicies))
		for _, name := range comparePolicies {
			runCfg := cfg
			runCfg.Policy = name
			s, err := sim.NewSimulator(runCfg, records)
			if err != nil {
				logrus.Fatalf("simulator (%s): %v", name, err)
			}
			snap, err := s.Run()
			if err != nil {
				logrus.Fatalf("simulation (%s): %v", name, err)
			}
			snapshots[name] = snap
		}
		printComparison(snapshots)
	},
}

func printComparison(snapshots map[string]sim.Snapshot) {
	fmt.Println("=== Policy Comparison ===")
	fmt.Printf("%-16s %12s %12s %12s %10s %12s %8s\n",
		"Policy", "AvgTurnarnd", "AvgWaiting", "AvgResponse", "CPU Util", "Throughput", "Balance")
	for _, name := range comparePolicies {
		s := snapshots[name]
		fmt.Printf("%-16s %12.2f %12.2f %12.2f %9.2f%% %12.4f %8.2f\n",
			name, s.AvgTurnaround, s.AvgWaiting, s.AvgResponse,
			s.CPUUtilization, s.Throughput, s.LoadBalanceScore)
	}

	fmt.Println()
	fmt.Printf("Best avg turnaround : %s\n", bestBy(snapshots, func(s sim.Snapshot) float64 { return s.AvgTurnaround }, false))
	fmt.Printf("Best avg waiting    : %s\n", bestBy(snapshots, func(s sim.Snapshot) float64 { return s.AvgWaiting }, false))
	fmt.Printf("Best throughput     : %s\n", bestBy(snapshots, func(s sim.Snapshot) float64 { return s.Throughput }, true))
	fmt.Printf("Best load balance   : %s\n", bestBy(snapshots, func(s sim.Snapshot) float64 { return s.LoadBalanceScore }, true))
}

// bestBy returns the policy with the extreme value of the metric; name
// order breaks ties so the report is stable.
func bestBy(snapshots map[string]sim.Snapshot, metric func(sim.Snapshot) float64, higher bool) string {
	names := make([]string, 0, len(snapshots))
	for name := range snapshots {
		names = append(names, name)
	}
	sort.Strings(names)

	best := names[0]
	for _, name := range names[1:] {
		v, bv := metric(snapshots[name]), metric(snapshots[best])
		if (higher && v > bv) || (!higher && v < bv) {
			best = name
		}
	}
	return best
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	for _, c := range []*cobra.Command{runCmd, compareCmd} {
		c.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
		c.Flags().StringVar(&configPath, "config", "", "YAML scenario file (flags override)")

		c.Flags().IntVar(&numCores, "cores", 4, "Number of simulated cores")
		c.Flags().Int64Var(&timeQuantum, "quantum", 4, "Round Robin time quantum (ticks)")
		c.Flags().Int64Var(&adaptEvery, "adaptation-interval", 50, "Ticks between adaptation samples")
		c.Flags().Float64Var(&agingRate, "aging-rate", 0.1, "Priority decrease per waiting tick")
		c.Flags().Int64Var(&maxTime, "max-time", 0, "Stop after this many simulated ticks (0 = unbounded)")
		c.Flags().IntVar(&maxSteps, "max-steps", 0, "Stop after this many event-loop steps (0 = unbounded)")

		c.Flags().StringVar(&workloadPath, "workload", "", "YAML workload spec file")
		c.Flags().StringVar(&processesPath, "processes", "", "YAML explicit process list (overrides generation)")
		c.Flags().Int64Var(&seed, "seed", 42, "Seed for random workload generation")
		c.Flags().IntVar(&numProcesses, "num-processes", 20, "Number of generated processes")
		c.Flags().Float64Var(&meanInterarrival, "mean-interarrival", 3, "Mean inter-arrival gap (ticks)")
		c.Flags().Int64Var(&burstMin, "burst-min", 2, "Minimum burst time (ticks)")
		c.Flags().Int64Var(&burstMax, "burst-max", 20, "Maximum burst time (ticks)")
	}
	runCmd.Flags().StringVar(&policy, "policy", sim.PolicyFCFS,
		"Scheduling policy (fcfs, sjf, round_robin, priority, load_balancing, work_stealing, adaptive)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(compareCmd)
}
