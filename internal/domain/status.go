package domain

import "fmt"

// TaskStatus is the lifecycle state reported for a task.
// Generated plans only ever contain StatusPending.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusBlocked    TaskStatus = "blocked"
)

// Validate checks if the status is one of the known values
func (s TaskStatus) Validate() error {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusBlocked:
		return nil
	default:
		return fmt.Errorf("invalid task status %q", string(s))
	}
}

func (s TaskStatus) String() string {
	return string(s)
}
