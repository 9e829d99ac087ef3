// Tracks engine-wide performance statistics across simulation calls.

package sim

import (
	"fmt"
	"sync"
)

// StatsSnapshot is a point-in-time copy of the performance counters with
// derived rates. Invariants: Successful <= Total, TargetMet <= Successful.
type StatsSnapshot struct {
	TotalSimulations      int     `json:"total_simulations"`
	SuccessfulSimulations int     `json:"successful_simulations"`
	AverageDurationMs     float64 `json:"average_duration_ms"`
	PerformanceTargetMet  int     `json:"performance_target_met"`
	SuccessRate           float64 `json:"success_rate"`
	PerformanceTargetRate float64 `json:"performance_target_rate"`
}

// statsTracker accumulates counters under a lock; batch groups record
// from separate goroutines.
type statsTracker struct {
	mu        sync.Mutex
	total     int
	success   int
	avgMs     float64 // running mean over successful runs only
	targetMet int
}

// Record folds one completed simulation into the counters. Called exactly
// once per solver invocation, after the solver returns.
func (st *statsTracker) Record(res Result, targetMs float64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.total++
	if !res.Success {
		return
	}
	st.success++
	st.avgMs = (st.avgMs*float64(st.success-1) + res.DurationMs) / float64(st.success)
	if res.DurationMs <= targetMs {
		st.targetMet++
	}
}

// Snapshot returns a copy of the counters with derived rates.
func (st *statsTracker) Snapshot() StatsSnapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	snap := StatsSnapshot{
		TotalSimulations:      st.total,
		SuccessfulSimulations: st.success,
		AverageDurationMs:     st.avgMs,
		PerformanceTargetMet:  st.targetMet,
	}
	if st.total > 0 {
		snap.SuccessRate = float64(st.success) / float64(st.total)
	}
	if st.success > 0 {
		snap.PerformanceTargetRate = float64(st.targetMet) / float64(st.success)
	}
	return snap
}

// Print displays the aggregated statistics at the end of a run.
func (s StatsSnapshot) Print() {
	fmt.Println("=== Simulation Performance ===")
	fmt.Printf("Total Simulations      : %d\n", s.TotalSimulations)
	fmt.Printf("Successful Simulations : %d\n", s.SuccessfulSimulations)
	if s.TotalSimulations > 0 {
		fmt.Printf("Average Duration       : %.3f ms\n", s.AverageDurationMs)
		fmt.Printf("Performance Target Met : %d\n", s.PerformanceTargetMet)
		fmt.Printf("Success Rate           : %.2f%%\n", s.SuccessRate*100)
		fmt.Printf("Target Rate            : %.2f%%\n", s.PerformanceTargetRate*100)
	}
}
