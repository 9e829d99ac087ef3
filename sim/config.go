package sim

import "fmt"

// SimulationType identifies which domain solver handles a request.
type SimulationType string

const (
	Structural    SimulationType = "structural"
	FluidDynamics SimulationType = "fluid_dynamics"
	HeatTransfer  SimulationType = "heat_transfer"
	Electrical    SimulationType = "electrical"
	RFPropagation SimulationType = "rf_propagation"
)

var validSimulationTypes = map[SimulationType]bool{
	Structural:    true,
	FluidDynamics: true,
	HeatTransfer:  true,
	Electrical:    true,
	RFPropagation: true,
}

// ParseSimulationType validates a wire-format type string.
// Unknown types are reported as errors, never defaulted: the API boundary
// must fail closed on bad input.
func ParseSimulationType(s string) (SimulationType, error) {
	t := SimulationType(s)
	if !validSimulationTypes[t] {
		return "", fmt.Errorf("unsupported simulation type %q", s)
	}
	return t, nil
}

// Config groups run-time solver policy shared by all engines.
// A Config is immutable for the lifetime of an Engine; solvers receive it
// by pointer and MUST NOT modify it.
type Config struct {
	Precision            float64 `yaml:"precision"`             // geometric precision in mm (default 0.001)
	MaxIterations        int     `yaml:"max_iterations"`        // iteration cap for the fluid/heat solvers (must be >= 1)
	ConvergenceThreshold float64 `yaml:"convergence_threshold"` // residual below which iteration stops (must be > 0)
	BatchSize            int     `yaml:"batch_size"`            // element batch size for structural processing (must be >= 1)
	DeferGlobalSolve     bool    `yaml:"defer_global_solve"`    // queue structural global solves instead of solving inline
	ThrottleUpdates      bool    `yaml:"throttle_updates"`      // sleep briefly between batch items to bound burst CPU
	PerformanceTargetMs  float64 `yaml:"performance_target_ms"` // advisory per-call latency target (recorded, not enforced)
	SolveQueueCapacity   int     `yaml:"solve_queue_capacity"`  // deferred-solve queue bound (default 1024)
}

// DefaultConfig returns the engine defaults used by the CTO latency
// directives: deferred global solves, throttled updates, <100ms target.
func DefaultConfig() Config {
	return Config{
		Precision:            0.001,
		MaxIterations:        1000,
		ConvergenceThreshold: 1e-6,
		BatchSize:            100,
		DeferGlobalSolve:     true,
		ThrottleUpdates:      true,
		PerformanceTargetMs:  100.0,
		SolveQueueCapacity:   1024,
	}
}

// Validate checks Config field ranges.
func (c *Config) Validate() error {
	if c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be >= 1, got %d", c.MaxIterations)
	}
	if c.ConvergenceThreshold <= 0 {
		return fmt.Errorf("convergence_threshold must be > 0, got %g", c.ConvergenceThreshold)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be >= 1, got %d", c.BatchSize)
	}
	if c.PerformanceTargetMs < 0 {
		return fmt.Errorf("performance_target_ms must be >= 0, got %g", c.PerformanceTargetMs)
	}
	if c.SolveQueueCapacity < 1 {
		return fmt.Errorf("solve_queue_capacity must be >= 1, got %d", c.SolveQueueCapacity)
	}
	return nil
}
