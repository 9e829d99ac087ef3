package sim

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatsTracker_RunningMean(t *testing.T) {
	// After N successful runs with durations d1..dN, the average is their mean.
	st := &statsTracker{}
	durations := []float64{10, 20, 30, 40}
	for _, d := range durations {
		st.Record(Result{Success: true, DurationMs: d}, 100)
	}

	snap := st.Snapshot()
	assert.Equal(t, 4, snap.TotalSimulations)
	assert.Equal(t, 4, snap.SuccessfulSimulations)
	assert.InDelta(t, 25.0, snap.AverageDurationMs, 1e-9)
	assert.Equal(t, 4, snap.PerformanceTargetMet)
	assert.InDelta(t, 1.0, snap.SuccessRate, 1e-12)
	assert.InDelta(t, 1.0, snap.PerformanceTargetRate, 1e-12)
}

func TestStatsTracker_FailuresCountedButNotAveraged(t *testing.T) {
	st := &statsTracker{}
	st.Record(Result{Success: true, DurationMs: 10}, 100)
	st.Record(Result{Success: false, DurationMs: 500, ErrorMessage: "boom"}, 100)
	st.Record(Result{Success: true, DurationMs: 30}, 100)

	snap := st.Snapshot()
	assert.Equal(t, 3, snap.TotalSimulations)
	assert.Equal(t, 2, snap.SuccessfulSimulations)
	// The failed run's duration must not pollute the mean.
	assert.InDelta(t, 20.0, snap.AverageDurationMs, 1e-9)
	assert.InDelta(t, 2.0/3.0, snap.SuccessRate, 1e-12)
}

func TestStatsTracker_TargetMetCountsOnlyUnderTarget(t *testing.T) {
	st := &statsTracker{}
	st.Record(Result{Success: true, DurationMs: 50}, 100)
	st.Record(Result{Success: true, DurationMs: 150}, 100)
	st.Record(Result{Success: true, DurationMs: 100}, 100) // boundary counts

	snap := st.Snapshot()
	assert.Equal(t, 2, snap.PerformanceTargetMet)
	assert.InDelta(t, 2.0/3.0, snap.PerformanceTargetRate, 1e-12)
}

func TestStatsTracker_EmptySnapshot(t *testing.T) {
	st := &statsTracker{}
	snap := st.Snapshot()
	assert.Equal(t, StatsSnapshot{}, snap)
}

func TestStatsTracker_ConcurrentRecords(t *testing.T) {
	// Invariants must hold when batch groups record from many goroutines.
	st := &statsTracker{}
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			st.Record(Result{Success: i%2 == 0, DurationMs: 10, ErrorMessage: "x"}, 100)
		}(i)
	}
	wg.Wait()

	snap := st.Snapshot()
	assert.Equal(t, 200, snap.TotalSimulations)
	assert.Equal(t, 100, snap.SuccessfulSimulations)
	assert.LessOrEqual(t, snap.PerformanceTargetMet, snap.SuccessfulSimulations)
	assert.InDelta(t, 10.0, snap.AverageDurationMs, 1e-9)
}
