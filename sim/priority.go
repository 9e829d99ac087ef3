package sim

import "fmt"

// Priority is the caller-declared urgency of a simulation request.
// It is accepted, validated and carried through logging, but does not
// currently alter scheduling order: batch processing stays strictly
// submission-ordered within a type group. Priority-aware dispatch is a
// known follow-up once callers start distinguishing their traffic.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

var validPriorities = map[Priority]bool{
	PriorityCritical: true,
	PriorityHigh:     true,
	PriorityMedium:   true,
	PriorityLow:      true,
}

// ParsePriority validates a wire-format priority string.
// Empty string defaults to medium (for callers that omit the field).
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityMedium, nil
	}
	p := Priority(s)
	if !validPriorities[p] {
		return "", fmt.Errorf("unknown priority %q", s)
	}
	return p, nil
}
