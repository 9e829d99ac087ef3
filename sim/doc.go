// Package sim provides the multi-physics simulation engine: a coordinator
// that routes analysis requests to domain-specific solvers under strict
// latency targets.
//
// # Reading Guide
//
// Start with these three files to understand the engine:
//   - engine.go: request dispatch, batch processing, deferred-solve drain
//   - config.go: the run-time policy shared by all solvers
//   - result.go: the Result contract every solver honors
//
// # Solvers
//
// One file per domain, each consuming the shared Config and MaterialDB:
//   - structural.go: stiffness-matrix linear analysis, deferred global solves
//   - fluid.go: iterative channel-flow relaxation
//   - heat.go: iterative 1D conduction relaxation
//   - electrical.go: resistive nodal analysis
//   - rf.go: path-loss and coverage calculation
//
// The fluid and heat solvers are approximate by design: bounded iteration
// with a residual stopping rule, not certified CFD/FEM numerics. The
// structural and electrical solvers are single-pass direct linear solves
// on gonum/mat.
//
// # Shared state
//
// Exactly two structures are shared across concurrent calls: the
// deferred-solve queue (solvequeue.go) and the performance counters
// (stats.go). Both are mutex-guarded; everything else is per-call.
package sim
