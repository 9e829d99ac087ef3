package sim

import "time"

// Result is the outcome of a single solver invocation.
// Immutable after construction; callers own the returned value.
//
// Invariant: Success=false implies a non-empty ErrorMessage and nil Data.
// failedResult is the only constructor for failures and enforces this.
type Result struct {
	Success             bool           `json:"success"`
	Data                map[string]any `json:"data"`
	DurationMs          float64        `json:"duration_ms"`
	Iterations          int            `json:"iterations"`
	ConvergenceAchieved bool           `json:"convergence_achieved"`
	ErrorMessage        string         `json:"error_message,omitempty"`
}

// sinceMs returns wall-clock milliseconds elapsed since start.
func sinceMs(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

// failedResult builds a failure Result carrying the error text and the
// wall-clock duration of the failed call.
func failedResult(start time.Time, err error) Result {
	msg := "simulation failed"
	if err != nil {
		msg = err.Error()
	}
	return Result{
		Success:      false,
		Data:         nil,
		DurationMs:   sinceMs(start),
		ErrorMessage: msg,
	}
}
