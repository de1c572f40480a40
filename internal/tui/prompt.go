package tui

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/huh"

	"github.com/felixgeelhaar/smartplan/internal/errors"
	"github.com/felixgeelhaar/smartplan/internal/planner"
)

// GoalAnswers holds the raw values collected by the goal form.
type GoalAnswers struct {
	Goal      string
	Deadline  string
	Domain    string
	Resources string // comma separated
	Hours     string
	Priority  string
}

// Priorities offered by the form.
var Priorities = []string{"low", "medium", "high", "critical"}

// NewGoalForm builds the interactive form writing into a. Fields already set
// on a are shown as defaults.
func NewGoalForm(a *GoalAnswers, domains []string) *huh.Form {
	if a.Hours == "" {
		a.Hours = strconv.Itoa(planner.DefaultWorkingHours)
	}
	if a.Priority == "" {
		a.Priority = planner.DefaultPriorityLevel
	}

	domainOptions := huh.NewOptions(append([]string{"general"}, domains...)...)
	if a.Domain == "" {
		a.Domain = "general"
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("What do you want to achieve?").
				Placeholder("Launch a new mobile app by Q3").
				Value(&a.Goal).
				Validate(ValidateGoal),
			huh.NewInput().
				Title("Deadline").
				Description("Optional. YYYY-MM-DD or an ISO 8601 timestamp.").
				Value(&a.Deadline).
				Validate(ValidateDeadline),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Domain").
				Options(domainOptions...).
				Value(&a.Domain),
			huh.NewInput().
				Title("Resources").
				Description("Optional. Comma separated, e.g. dev team, designer.").
				Value(&a.Resources),
			huh.NewInput().
				Title("Working hours per day").
				Value(&a.Hours).
				Validate(ValidateHours),
			huh.NewSelect[string]().
				Title("Priority").
				Options(huh.NewOptions(Priorities...)...).
				Value(&a.Priority),
		),
	)
}

// PromptForGoal runs the goal form and converts the answers.
func PromptForGoal(defaults GoalAnswers, domains []string) (planner.GoalInput, error) {
	answers := defaults
	if err := NewGoalForm(&answers, domains).Run(); err != nil {
		return planner.GoalInput{}, fmt.Errorf("prompt failed: %w", err)
	}
	return answers.Input()
}

// Input validates the answers the same way the API validates a request.
func (a GoalAnswers) Input() (planner.GoalInput, error) {
	req := planner.GoalRequest{
		Goal:      a.Goal,
		Resources: SplitResources(a.Resources),
	}
	if s := strings.TrimSpace(a.Deadline); s != "" {
		req.Deadline = &s
	}
	if s := strings.TrimSpace(a.Domain); s != "" {
		req.Domain = &s
	}
	if s := strings.TrimSpace(a.Priority); s != "" {
		req.PriorityLevel = &s
	}
	if s := strings.TrimSpace(a.Hours); s != "" {
		hours, err := strconv.Atoi(s)
		if err != nil {
			return planner.GoalInput{}, errors.NewMalformedInputError("working hours must be a whole number, got "+strconv.Quote(s), err)
		}
		req.WorkingHoursPerDay = &hours
	}
	return req.Input()
}

// SplitResources splits a comma separated list, dropping blanks.
func SplitResources(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ValidateGoal rejects goals shorter than planner.MinGoalLength.
func ValidateGoal(s string) error {
	if n := utf8.RuneCountInString(strings.TrimSpace(s)); n < planner.MinGoalLength {
		return fmt.Errorf("describe the goal in at least %d characters", planner.MinGoalLength)
	}
	return nil
}

// ValidateDeadline accepts an empty value or anything planner.ParseDeadline does.
func ValidateDeadline(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := planner.ParseDeadline(s); err != nil {
		return fmt.Errorf("use YYYY-MM-DD or an ISO 8601 timestamp")
	}
	return nil
}

// ValidateHours accepts whole numbers in the working hours range.
func ValidateHours(s string) error {
	h, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || h < planner.MinWorkingHours || h > planner.MaxWorkingHours {
		return fmt.Errorf("enter a whole number between %d and %d", planner.MinWorkingHours, planner.MaxWorkingHours)
	}
	return nil
}

// IsInteractive returns true if stdin is a terminal (not piped)
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// ShouldPrompt returns true if prompts should be shown based on environment
// Prompts are disabled in CI environments or when stdin is not a terminal
func ShouldPrompt() bool {
	ciEnvVars := []string{
		"CI",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_URL",
		"TRAVIS",
		"CIRCLECI",
		"BUILDKITE",
	}

	for _, envVar := range ciEnvVars {
		if os.Getenv(envVar) != "" {
			return false
		}
	}

	return IsInteractive()
}
