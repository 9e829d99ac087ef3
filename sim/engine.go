// Engine coordinates the domain solvers: routes requests by type,
// processes batches with one worker per type group, drains deferred
// structural global solves, and aggregates performance statistics.

package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Request is one simulation request as submitted by the API layer.
type Request struct {
	Type     string         `yaml:"type" json:"type"`
	Data     map[string]any `yaml:"data" json:"data"`
	Priority string         `yaml:"priority" json:"priority"`
}

// Engine is the coordinator owning the shared config, the material
// tables, one solver per domain, and the performance counters.
// Construct one per process or test via NewEngine; there is no package
// singleton.
type Engine struct {
	cfg        Config
	materials  *MaterialDB
	structural *StructuralEngine
	fluid      *FluidEngine
	heat       *HeatTransferEngine
	electrical *CircuitEngine
	rf         *RFPropagationEngine
	stats      *statsTracker
}

// NewEngine validates the config and wires up the solvers.
// A nil materials db uses the built-in tables.
func NewEngine(cfg Config, materials *MaterialDB) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}
	if materials == nil {
		materials = NewMaterialDB()
	}
	e := &Engine{
		cfg:       cfg,
		materials: materials,
		stats:     &statsTracker{},
	}
	e.structural = NewStructuralEngine(&e.cfg, materials)
	e.fluid = NewFluidEngine(&e.cfg, materials)
	e.heat = NewHeatTransferEngine(&e.cfg, materials)
	e.electrical = NewCircuitEngine(&e.cfg, materials)
	e.rf = NewRFPropagationEngine(&e.cfg)
	return e, nil
}

// Config returns the engine's immutable run-time policy.
func (e *Engine) Config() Config {
	return e.cfg
}

// RunSimulation dispatches one request to its solver. Callers always get
// a well-formed Result, even on bad input: unknown types, solver panics
// and context cancellation all come back as failed results. Statistics
// update exactly once per dispatched call, after the solver returns.
func (e *Engine) RunSimulation(ctx context.Context, req Request) Result {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return failedResult(start, fmt.Errorf("simulation aborted: %w", err))
	}

	simType, err := ParseSimulationType(req.Type)
	if err != nil {
		logrus.Errorf("simulation failed: %v", err)
		return failedResult(start, err)
	}
	priority, err := ParsePriority(req.Priority)
	if err != nil {
		logrus.Errorf("simulation failed: %v", err)
		return failedResult(start, err)
	}

	logrus.Debugf("dispatching %s simulation (priority %s)", simType, priority)
	result := e.dispatch(simType, req.Data)
	e.stats.Record(result, e.cfg.PerformanceTargetMs)
	return result
}

// dispatch routes to the matching solver, converting any panic into a
// failed result so the API boundary never crashes on bad input.
func (e *Engine) dispatch(simType SimulationType, data map[string]any) (result Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("%s solver panicked: %v", simType, r)
			result = failedResult(start, fmt.Errorf("%s solver panicked: %v", simType, r))
		}
	}()

	switch simType {
	case Structural:
		return e.structural.AnalyzeStructure(
			payloadMaps(payloadSlice(data, "elements")),
			payloadMaps(payloadSlice(data, "loads")),
		)
	case FluidDynamics:
		return e.fluid.SimulateFlow(
			payloadMap(data, "geometry"),
			payloadMap(data, "boundary_conditions"),
		)
	case HeatTransfer:
		return e.heat.SimulateHeatTransfer(
			payloadMap(data, "geometry"),
			payloadMap(data, "thermal_conditions"),
		)
	case Electrical:
		return e.electrical.SimulateCircuit(payloadMap(data, "circuit"))
	case RFPropagation:
		return e.rf.SimulatePropagation(
			payloadMap(data, "environment"),
			payloadMaps(payloadSlice(data, "transmitters")),
		)
	}
	// Unreachable: ParseSimulationType gates dispatch.
	return failedResult(start, fmt.Errorf("unsupported simulation type %q", simType))
}

// BatchProcess runs a batch of requests grouped by simulation type.
// Each type group executes on its own goroutine; within a group requests
// run sequentially in submission order. Results are returned indexed by
// request position, so callers see input order even though execution
// interleaves across groups. With ThrottleUpdates set, workers sleep
// briefly between items to bound burst CPU usage.
func (e *Engine) BatchProcess(ctx context.Context, requests []Request) []Result {
	batchID := uuid.NewString()
	logrus.Infof("batch %s: processing %d simulations", batchID, len(requests))

	// Group request indices by type, first-seen order.
	groups := make(map[string][]int)
	order := make([]string, 0)
	for i, req := range requests {
		if _, seen := groups[req.Type]; !seen {
			order = append(order, req.Type)
		}
		groups[req.Type] = append(groups[req.Type], i)
	}

	results := make([]Result, len(requests))
	done := make(chan struct{})
	for _, simType := range order {
		indices := groups[simType]
		go func(simType string, indices []int) {
			defer func() { done <- struct{}{} }()
			for _, idx := range indices {
				results[idx] = e.RunSimulation(ctx, requests[idx])
				if e.cfg.ThrottleUpdates {
					time.Sleep(time.Millisecond)
				}
			}
		}(simType, indices)
	}
	for range order {
		<-done
	}

	logrus.Infof("batch %s: done", batchID)
	return results
}

// ProcessDeferredSolves drains the structural engine's deferred queue
// strictly FIFO, one global solve per entry. It returns the number of
// entries processed and the first solve error, if any; the drain keeps
// going past failures so the queue always empties.
func (e *Engine) ProcessDeferredSolves() (int, error) {
	processed := 0
	var firstErr error
	for {
		task, ok := e.structural.queue.Dequeue()
		if !ok {
			break
		}
		processed++
		if _, err := e.structural.globalSolve(task.Elements, task.Loads); err != nil {
			logrus.Errorf("deferred global solve %d failed: %v", processed, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if processed > 0 {
		logrus.Infof("processed %d deferred global solves", processed)
	}
	return processed, firstErr
}

// GlobalSolvePending reports whether deferred structural solves await
// ProcessDeferredSolves.
func (e *Engine) GlobalSolvePending() bool {
	return e.structural.GlobalSolvePending()
}

// PerformanceStats returns a snapshot of the cumulative performance
// counters.
func (e *Engine) PerformanceStats() StatsSnapshot {
	return e.stats.Snapshot()
}
