package cmd

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	perrors "github.com/felixgeelhaar/smartplan/internal/errors"
	"github.com/felixgeelhaar/smartplan/internal/planner"
	"github.com/felixgeelhaar/smartplan/internal/tui"
)

type planOptions struct {
	goal        string
	deadline    string
	domain      string
	context     string
	priority    string
	userID      string
	resources   []string
	hours       int
	format      string
	interactive bool
}

func (a *app) planCmd() *cobra.Command {
	opts := &planOptions{}

	cmd := &cobra.Command{
		Use:   "plan [goal]",
		Short: "Generate a plan for a goal",
		Long: `Generate a plan for a goal and print it.

The goal is given as arguments or with --goal. Input is validated the same
way the HTTP API validates a create-plan request, so the same error codes
apply. With --interactive, missing values are asked for in a form.`,
		Example: `  smartplan plan "Launch a new mobile app by Q3"
  smartplan plan --goal "Learn Spanish" --hours 2 --deadline 2026-12-31
  smartplan plan "Organize a team offsite" --resource "event planner" --format json
  smartplan plan --interactive`,
	}
	cmd.RunE = a.instrument("plan", func(cmd *cobra.Command, args []string) error {
		return a.runPlan(cmd, args, opts)
	})

	f := cmd.Flags()
	f.StringVarP(&opts.goal, "goal", "g", "", "goal to plan for")
	f.StringVarP(&opts.deadline, "deadline", "d", "", "deadline as YYYY-MM-DD or an ISO 8601 timestamp")
	f.StringVar(&opts.domain, "domain", "", "planning domain, e.g. software_development (see 'smartplan domains')")
	f.StringVar(&opts.context, "context", "", "additional context for the goal")
	f.StringVarP(&opts.priority, "priority", "p", "", "priority level: low, medium, high, critical")
	f.StringVar(&opts.userID, "user", "", "user identifier, for reference only")
	f.StringSliceVarP(&opts.resources, "resource", "r", nil, "available resource (repeatable or comma separated)")
	f.IntVar(&opts.hours, "hours", planner.DefaultWorkingHours, "working hours per day")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "fill in the goal with an interactive form")
	addFormatFlag(cmd, &opts.format)

	return cmd
}

func (a *app) runPlan(cmd *cobra.Command, args []string, opts *planOptions) error {
	goal := opts.goal
	if len(args) > 0 {
		if goal != "" {
			return perrors.NewMalformedInputError("pass the goal as an argument or with --goal, not both", nil)
		}
		goal = strings.Join(args, " ")
	}

	c, err := a.loadCatalog()
	if err != nil {
		return err
	}

	var in planner.GoalInput
	if opts.interactive {
		if !tui.ShouldPrompt() {
			return perrors.NewMalformedInputError("--interactive requires a terminal", nil).
				WithSuggestion("Pass the goal as an argument instead")
		}
		defaults := tui.GoalAnswers{
			Goal:      goal,
			Deadline:  opts.deadline,
			Domain:    opts.domain,
			Resources: strings.Join(opts.resources, ", "),
			Hours:     strconv.Itoa(opts.hours),
			Priority:  opts.priority,
		}
		in, err = tui.PromptForGoal(defaults, c.DomainNames())
		if err != nil {
			return err
		}
		in.UserID = strings.TrimSpace(opts.userID)
		in.Context = strings.TrimSpace(opts.context)
	} else {
		req := planner.GoalRequest{
			Goal:      goal,
			Resources: opts.resources,
		}
		optional(&req.Deadline, opts.deadline)
		optional(&req.Domain, opts.domain)
		optional(&req.Context, opts.context)
		optional(&req.PriorityLevel, opts.priority)
		optional(&req.UserID, opts.userID)
		if cmd.Flags().Changed("hours") {
			req.WorkingHoursPerDay = &opts.hours
		}
		in, err = req.Input()
		if err != nil {
			return err
		}
	}

	engine := planner.NewEngine(c,
		planner.WithLogger(a.logger),
		planner.WithMetrics(a.metrics),
	)
	plan, err := engine.Generate(cmd.Context(), in)
	if err != nil {
		return err
	}

	return write(cmd, opts.format, plan, func(interface{}) (string, error) {
		return tui.RenderPlan(plan, styles()), nil
	})
}

func optional(dst **string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = &v
	}
}
