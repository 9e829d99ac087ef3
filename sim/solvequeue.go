// Implements the deferred-solve queue owned by the structural engine.
// Entries are appended when defer_global_solve is on and consumed exactly
// once, strictly FIFO, by Engine.ProcessDeferredSolves.

package sim

import "sync"

// SolveTask is one queued structural global solve: the processed elements
// and applied loads captured at analysis time.
type SolveTask struct {
	Elements []beamElement
	Loads    []appliedLoad
}

// SolveQueue is a bounded, mutex-guarded FIFO of deferred global solves.
// The lock matters: with batch groups running on separate goroutines,
// multiple structural calls may enqueue concurrently.
type SolveQueue struct {
	mu       sync.Mutex
	tasks    []SolveTask
	capacity int
}

// NewSolveQueue creates a queue bounded at capacity entries.
func NewSolveQueue(capacity int) *SolveQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &SolveQueue{capacity: capacity}
}

// Enqueue appends a task. If the queue is full, the oldest entry is
// evicted and returned so the caller can solve it synchronously; the
// queue never grows past its bound.
func (q *SolveQueue) Enqueue(t SolveTask) (evicted *SolveTask) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) >= q.capacity {
		old := q.tasks[0]
		q.tasks = q.tasks[1:]
		evicted = &old
	}
	q.tasks = append(q.tasks, t)
	return evicted
}

// Dequeue removes and returns the oldest task.
func (q *SolveQueue) Dequeue() (SolveTask, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return SolveTask{}, false
	}
	t := q.tasks[0]
	q.tasks = q.tasks[1:]
	return t, true
}

// Len returns the number of pending tasks.
func (q *SolveQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}
