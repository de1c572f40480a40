package planner

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/smartplan/internal/catalog"
)

var testNow = time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// seqIDs issues predictable identifiers.
type seqIDs struct {
	plans, tasks, milestones int
}

func (s *seqIDs) PlanID() string {
	s.plans++
	return fmt.Sprintf("plan_%08d", s.plans)
}

func (s *seqIDs) TaskID() string {
	s.tasks++
	return fmt.Sprintf("task_%08d", s.tasks)
}

func (s *seqIDs) MilestoneID() string {
	s.milestones++
	return fmt.Sprintf("milestone_%06d", s.milestones)
}

func testEngine(opts ...Option) (*Engine, *seqIDs) {
	ids := &seqIDs{}
	base := []Option{WithClock(fixedClock), WithIDGenerator(ids)}
	return NewEngine(catalog.MustBuiltin(), append(base, opts...)...), ids
}

func at(days int) *time.Time {
	t := testNow.AddDate(0, 0, days)
	return &t
}

func ptr[T any](v T) *T { return &v }
