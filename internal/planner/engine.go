package planner

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/felixgeelhaar/smartplan/internal/catalog"
	"github.com/felixgeelhaar/smartplan/internal/errors"
	"github.com/felixgeelhaar/smartplan/internal/log"
	"github.com/felixgeelhaar/smartplan/internal/metrics"
	"github.com/felixgeelhaar/smartplan/internal/telemetry"
)

// goalLogLength bounds how much of a goal is written to logs.
const goalLogLength = 50

// Engine runs the planning pipeline against a catalog.
type Engine struct {
	catalog func() *catalog.Catalog
	clock   Clock
	ids     IDGenerator
	logger  *log.Logger
	metrics *metrics.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source.
func WithClock(clock Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithIDGenerator sets the identifier source.
func WithIDGenerator(ids IDGenerator) Option {
	return func(e *Engine) { e.ids = ids }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics records plan metrics to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithCatalogStore reads the catalog from store on every plan so hot
// reloads take effect without rebuilding the engine.
func WithCatalogStore(store *catalog.Store) Option {
	return func(e *Engine) { e.catalog = store.Current }
}

// NewEngine creates an engine planning against c.
func NewEngine(c *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog: func() *catalog.Catalog { return c },
		clock:   time.Now,
		ids:     RandomIDs{},
		logger:  log.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog the next plan will use.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog()
}

// Generate builds a plan for in. Validation failures are returned before any
// task is created.
func (e *Engine) Generate(ctx context.Context, in GoalInput) (*Plan, error) {
	started := time.Now()

	in, err := in.Normalize()
	if err != nil {
		e.metrics.RecordError(err, "planner")
		return nil, err
	}

	fingerprint, err := Fingerprint(in)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePlanInternal, "fingerprint goal input", err)
	}

	ctx, span := telemetry.StartPlanSpan(ctx, fingerprint)
	defer span.End()

	logger := e.logger.WithContext(ctx)
	logger.Info("generating plan", "goal", log.Truncate(in.Goal, goalLogLength), "domain", in.Domain)

	plan, err := e.generate(ctx, in, fingerprint)
	category := ""
	if plan != nil {
		category = string(plan.Category)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		e.metrics.RecordPlan(category, false, time.Since(started), 0, 0)
		e.metrics.RecordError(err, "planner")
		logger.LogError(ctx, "plan generation failed", err)
		return nil, err
	}

	telemetry.RecordSuccess(span,
		attribute.String("plan.id", plan.PlanID),
		attribute.String("plan.category", category),
		attribute.Int("plan.tasks", len(plan.Tasks)),
	)
	telemetry.RecordPlanCreated(ctx, category)
	e.metrics.RecordPlan(category, true, time.Since(started), len(plan.Tasks), plan.TotalEstimatedHours)

	args := append([]any{
		"plan_id", plan.PlanID,
		"category", category,
		"tasks", len(plan.Tasks),
		"duration_days", plan.CriticalPathDuration,
	}, riskLevels(plan.RiskAssessment)...)
	logger.Info("plan generated", args...)

	return plan, nil
}

func (e *Engine) generate(ctx context.Context, in GoalInput, fingerprint string) (*Plan, error) {
	cat := e.catalog()
	now := e.clock().UTC()

	var complexity float64
	var tmpl *catalog.Template
	stage(ctx, "analyze", func() {
		complexity = AnalyzeComplexity(in.Goal, cat.Analysis)
		tmpl = SelectTemplate(in.Goal, cat)
	})
	if tmpl == nil {
		return nil, errors.NewCatalogInconsistentError("no template matches and no fallback is defined")
	}
	if len(tmpl.Steps) == 0 {
		return nil, errors.NewEmptyTemplateError(string(tmpl.Category))
	}

	var tasks []Task
	stage(ctx, "materialize", func() {
		tasks = Materialize(tmpl, complexity, cat.HourlyRate(in.Domain), e.ids)
	})

	var err error
	stage(ctx, "schedule", func() {
		err = Schedule(tasks, now, in.WorkingHoursPerDay)
	})
	if err != nil {
		return &Plan{Category: tmpl.Category}, err
	}

	var ra RiskAssessment
	var recommendations []string
	stage(ctx, "risk", func() {
		ra = AssessRisk(tasks, in, complexity, now)
		recommendations = Recommend(tasks, ra)
	})

	var milestones []Milestone
	stage(ctx, "milestones", func() {
		milestones = BuildMilestones(tasks, e.ids)
	})

	plan := &Plan{
		PlanID:           e.ids.PlanID(),
		Goal:             in.Goal,
		Category:         tmpl.Category,
		ComplexityScore:  complexity,
		InputFingerprint: fingerprint,
		CatalogVersion:   cat.Version,
		Tasks:            tasks,
		Milestones:       milestones,
		RiskAssessment:   ra,
		Recommendations:  recommendations,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	stage(ctx, "aggregate", func() {
		plan.TotalEstimatedHours = TotalHours(tasks)
		plan.CriticalPathDuration = CriticalPathDays(tasks)
		plan.ConfidenceScore = OverallConfidence(tasks)
		plan.DependenciesGraph = DependencyGraph(tasks)
		plan.EstimatedBudget = Budget(tasks)
		plan.SuccessProbability = SuccessProbability(tasks, ra)
	})
	return plan, nil
}

// stage runs fn inside a child span and records its duration.
func stage(ctx context.Context, name string, fn func()) {
	ctx, span := telemetry.StartStageSpan(ctx, name)
	defer span.End()

	start := time.Now()
	fn()
	elapsed := time.Since(start)
	telemetry.RecordDuration(span, name, elapsed)
	telemetry.RecordStageDuration(ctx, name, elapsed)
}
