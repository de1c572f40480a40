package events

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/smartplan/internal/log"
)

// analyticsGoalLength is how much of the goal the analytics line keeps.
const analyticsGoalLength = 30

// LogSink writes one analytics line per event.
type LogSink struct {
	logger *log.Logger
}

// NewLogSink creates a sink writing to logger.
func NewLogSink(logger *log.Logger) *LogSink {
	return &LogSink{logger: logger.With("sink", "log")}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Deliver(ctx context.Context, e Event) error {
	s.logger.InfoContext(ctx, fmt.Sprintf("Plan %s created for goal: %s", e.PlanID, prefix(e.Goal, analyticsGoalLength)),
		"event_id", e.ID,
		"category", e.Category,
		"tasks", e.TaskCount,
	)
	return nil
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
