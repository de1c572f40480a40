package planner

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/felixgeelhaar/smartplan/internal/domain"
	"github.com/felixgeelhaar/smartplan/internal/errors"
)

const (
	MinGoalLength        = 3
	MinWorkingHours      = 1
	MaxWorkingHours      = 24
	DefaultWorkingHours  = 8
	DefaultPriorityLevel = "medium"
)

// GoalRequest is the wire form of a plan request. Pointer fields
// distinguish "absent" from zero values so defaults apply only to
// omitted fields.
type GoalRequest struct {
	Goal               string   `json:"goal"`
	Deadline           *string  `json:"deadline"`
	Context            *string  `json:"context"`
	Domain             *string  `json:"domain"`
	Resources          []string `json:"resources"`
	WorkingHoursPerDay *int     `json:"working_hours_per_day"`
	UserID             *string  `json:"user_id"`
	PriorityLevel      *string  `json:"priority_level"`
}

// Input converts the request into a validated GoalInput.
func (r GoalRequest) Input() (GoalInput, error) {
	in := GoalInput{
		Goal:               r.Goal,
		Context:            deref(r.Context),
		Domain:             deref(r.Domain),
		Resources:          r.Resources,
		WorkingHoursPerDay: DefaultWorkingHours,
		UserID:             deref(r.UserID),
		PriorityLevel:      deref(r.PriorityLevel),
	}
	if r.WorkingHoursPerDay != nil {
		in.WorkingHoursPerDay = *r.WorkingHoursPerDay
	}
	if r.Deadline != nil && strings.TrimSpace(*r.Deadline) != "" {
		deadline, err := ParseDeadline(*r.Deadline)
		if err != nil {
			return GoalInput{}, err
		}
		in.Deadline = &deadline
	}

	in = in.withDefaults()
	if err := in.Validate(); err != nil {
		return GoalInput{}, err
	}
	return in, nil
}

// Normalize fills defaults for zero-valued optional fields and validates.
// It is used by callers that build a GoalInput directly, like the CLI.
func (in GoalInput) Normalize() (GoalInput, error) {
	if in.WorkingHoursPerDay == 0 {
		in.WorkingHoursPerDay = DefaultWorkingHours
	}
	in = in.withDefaults()
	if err := in.Validate(); err != nil {
		return GoalInput{}, err
	}
	return in, nil
}

func (in GoalInput) withDefaults() GoalInput {
	if strings.TrimSpace(in.Domain) == "" {
		in.Domain = domain.DefaultDomain
	}
	if strings.TrimSpace(in.PriorityLevel) == "" {
		in.PriorityLevel = DefaultPriorityLevel
	}
	if in.Resources == nil {
		in.Resources = []string{}
	}
	if in.Deadline != nil {
		utc := in.Deadline.UTC()
		in.Deadline = &utc
	}
	return in
}

// Validate checks the goal length and working hours range.
func (in GoalInput) Validate() error {
	if n := utf8.RuneCountInString(strings.TrimSpace(in.Goal)); n < MinGoalLength {
		return errors.NewGoalTooShortError(MinGoalLength, n)
	}
	if in.WorkingHoursPerDay < MinWorkingHours || in.WorkingHoursPerDay > MaxWorkingHours {
		return errors.NewWorkingHoursError(in.WorkingHoursPerDay, MinWorkingHours, MaxWorkingHours)
	}
	return nil
}

var deadlineLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDeadline accepts RFC 3339 timestamps, timestamps without a zone
// (read as UTC), and plain dates.
func ParseDeadline(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.NewMalformedInputError("deadline must be an ISO 8601 timestamp, got "+strconv.Quote(s), nil)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
