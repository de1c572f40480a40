// Package events delivers plan lifecycle notifications to sinks after the
// HTTP response has been written.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/smartplan/internal/planner"
)

// TypePlanCreated is emitted once per generated plan.
const TypePlanCreated = "plan.created"

// Event is a snapshot of a plan taken when it was created. It does not
// reference the plan so the plan can be released once the response is sent.
type Event struct {
	ID                  string    `json:"id"`
	Type                string    `json:"type"`
	Timestamp           time.Time `json:"timestamp"`
	PlanID              string    `json:"plan_id"`
	Goal                string    `json:"goal"`
	Category            string    `json:"category"`
	TaskCount           int       `json:"task_count"`
	TotalEstimatedHours float64   `json:"total_estimated_hours"`
	CriticalPathDays    int       `json:"critical_path_duration"`
	SuccessProbability  float64   `json:"success_probability"`
	InputFingerprint    string    `json:"input_fingerprint"`
	CatalogVersion      string    `json:"catalog_version"`
	UserID              string    `json:"user_id,omitempty"`
}

// PlanCreated builds the event for p. userID is carried through from the
// request; it is not part of the plan.
func PlanCreated(p *planner.Plan, userID string) Event {
	return Event{
		ID:                  uuid.NewString(),
		Type:                TypePlanCreated,
		Timestamp:           p.CreatedAt,
		PlanID:              p.PlanID,
		Goal:                p.Goal,
		Category:            string(p.Category),
		TaskCount:           len(p.Tasks),
		TotalEstimatedHours: p.TotalEstimatedHours,
		CriticalPathDays:    p.CriticalPathDuration,
		SuccessProbability:  p.SuccessProbability,
		InputFingerprint:    p.InputFingerprint,
		CatalogVersion:      p.CatalogVersion,
		UserID:              userID,
	}
}

// Sink receives events from a Dispatcher. Deliver is called from a single
// goroutine.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, e Event) error
}
