package planner

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDGenerator issues identifiers for plans, tasks, and milestones.
type IDGenerator interface {
	PlanID() string
	TaskID() string
	MilestoneID() string
}

// Clock returns the current time. One reading is taken per plan.
type Clock func() time.Time

// RandomIDs derives short identifiers from random UUIDs.
type RandomIDs struct{}

func (RandomIDs) PlanID() string      { return "plan_" + shortHex(8) }
func (RandomIDs) TaskID() string      { return "task_" + shortHex(8) }
func (RandomIDs) MilestoneID() string { return "milestone_" + shortHex(6) }

func shortHex(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
