package cmd

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/arxos/physics-sim/sim"
)

var (
	// CLI flags mirroring sim.Config
	logLevel             string  // Log verbosity level
	scenarioPath         string  // Path to the scenario YAML file
	materialsPath        string  // Optional material table override YAML
	precision            float64 // Geometric precision in mm
	maxIterations        int     // Iteration cap for iterative solvers
	convergenceThreshold float64 // Residual below which iteration stops
	batchSize            int     // Structural element batch size
	deferGlobalSolve     bool    // Queue structural global solves
	throttleUpdates      bool    // Sleep between batch items
	performanceTargetMs  float64 // Advisory per-call latency target
	solveQueueCapacity   int     // Deferred-solve queue bound
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "physics-sim",
	Short: "Multi-physics simulation engine for BIM/CAD workflows",
}

// runCmd executes a scenario file using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation scenario",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if scenarioPath == "" {
			logrus.Fatalf("Scenario file not provided. Exiting.")
		}
		scenario, err := LoadScenario(scenarioPath)
		if err != nil {
			logrus.Fatalf("Unable to load scenario: %v", err)
		}

		materials := sim.NewMaterialDB()
		if materialsPath != "" {
			materials, err = sim.LoadMaterialDB(materialsPath)
			if err != nil {
				logrus.Fatalf("Unable to load materials: %v", err)
			}
		}

		cfg := sim.Config{
			Precision:            precision,
			MaxIterations:        maxIterations,
			ConvergenceThreshold: convergenceThreshold,
			BatchSize:            batchSize,
			DeferGlobalSolve:     deferGlobalSolve,
			ThrottleUpdates:      throttleUpdates,
			PerformanceTargetMs:  performanceTargetMs,
			SolveQueueCapacity:   solveQueueCapacity,
		}

		engine, err := sim.NewEngine(cfg, materials)
		if err != nil {
			logrus.Fatalf("Unable to build engine: %v", err)
		}

		logrus.Infof("Running scenario %q: %d simulations", scenario.Name, len(scenario.Simulations))
		results := engine.BatchProcess(context.Background(), scenario.Simulations)

		failed := 0
		for i, res := range results {
			if !res.Success {
				failed++
				logrus.Warnf("simulation %d (%s) failed: %s", i, scenario.Simulations[i].Type, res.ErrorMessage)
			}
		}

		if processed, err := engine.ProcessDeferredSolves(); err != nil {
			logrus.Warnf("deferred solves: %d processed, first error: %v", processed, err)
		}

		engine.PerformanceStats().Print()
		if failed > 0 {
			logrus.Warnf("%d of %d simulations failed", failed, len(results))
		}
		logrus.Info("Scenario complete.")
	},
}

// statsCmd prints an empty stats report shape, useful for wiring checks
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the performance stats report format",
	Run: func(cmd *cobra.Command, args []string) {
		sim.StatsSnapshot{}.Print()
	},
}

func init() {
	defaults := sim.DefaultConfig()

	runCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to scenario YAML file")
	runCmd.Flags().StringVar(&materialsPath, "materials", "", "Path to material table override YAML file")
	runCmd.Flags().Float64Var(&precision, "precision", defaults.Precision, "Geometric precision in mm")
	runCmd.Flags().IntVar(&maxIterations, "max-iterations", defaults.MaxIterations, "Iteration cap for iterative solvers")
	runCmd.Flags().Float64Var(&convergenceThreshold, "convergence-threshold", defaults.ConvergenceThreshold, "Residual threshold for convergence")
	runCmd.Flags().IntVar(&batchSize, "batch-size", defaults.BatchSize, "Structural element batch size")
	runCmd.Flags().BoolVar(&deferGlobalSolve, "defer-global-solve", defaults.DeferGlobalSolve, "Defer structural global solves onto the queue")
	runCmd.Flags().BoolVar(&throttleUpdates, "throttle-updates", defaults.ThrottleUpdates, "Throttle batch processing between items")
	runCmd.Flags().Float64Var(&performanceTargetMs, "performance-target-ms", defaults.PerformanceTargetMs, "Advisory per-call latency target in ms")
	runCmd.Flags().IntVar(&solveQueueCapacity, "solve-queue-capacity", defaults.SolveQueueCapacity, "Deferred-solve queue bound")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statsCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
