package domain

import (
	"fmt"
	"strings"
)

// Priority represents a task priority level.
// This is a value object that enforces valid priority values.
type Priority string

// Valid priority levels
const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// NewPriority parses a priority case-insensitively, ignoring surrounding
// space, and validates it.
func NewPriority(value string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(value)))
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

// Validate checks if the priority is valid
func (p Priority) Validate() error {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return nil
	default:
		return fmt.Errorf("invalid priority %q: must be low, medium, high, or critical", string(p))
	}
}

// String returns the string representation
func (p Priority) String() string {
	return string(p)
}
