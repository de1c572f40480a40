package planner

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/felixgeelhaar/smartplan/internal/catalog"
	"github.com/felixgeelhaar/smartplan/internal/domain"
	"github.com/felixgeelhaar/smartplan/internal/errors"
	"github.com/felixgeelhaar/smartplan/internal/log"
	"github.com/felixgeelhaar/smartplan/internal/metrics"
	"github.com/felixgeelhaar/smartplan/internal/telemetry"
)

func TestGenerateProductLaunch(t *testing.T) {
	engine, _ := testEngine()
	in := GoalInput{
		Goal:      "Launch a new mobile app by Q3",
		Domain:    "technical",
		Resources: []string{"dev team"},
	}

	plan, err := engine.Generate(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "plan_00000001", plan.PlanID)
	assert.Equal(t, domain.CategoryProductLaunch, plan.Category)
	assert.Equal(t, "2.0.0", plan.CatalogVersion)
	assert.InDelta(t, (7.0/50+1.0/20+1.0/3)/3, plan.ComplexityScore, 1e-9)
	assert.Equal(t, testNow, plan.CreatedAt)
	assert.Equal(t, plan.CreatedAt, plan.UpdatedAt)

	require.Len(t, plan.Tasks, 6)
	root := plan.Tasks[0]
	assert.Equal(t, "Market Research & Competitive Analysis", root.Title)
	assert.Empty(t, root.Dependencies)
	assert.Equal(t, testNow, *root.StartDate)
	for _, task := range plan.Tasks[1:] {
		assert.NotEmpty(t, task.Dependencies, task.Title)
	}

	var sum, budget float64
	for _, task := range plan.Tasks {
		sum += task.EstimatedHours
		budget += *task.EstimatedCost
	}
	assert.InDelta(t, sum, plan.TotalEstimatedHours, 1e-9)
	require.NotNil(t, plan.EstimatedBudget)
	assert.InDelta(t, plan.TotalEstimatedHours*100, *plan.EstimatedBudget, 1e-6)
	assert.InDelta(t, budget, *plan.EstimatedBudget, 1e-6)

	assert.Equal(t, domain.RiskMedium, plan.RiskAssessment.TimelineRisk)
	assert.Equal(t, domain.RiskMedium, plan.RiskAssessment.ResourceRisk)
	assert.Equal(t, domain.RiskLow, plan.RiskAssessment.ComplexityRisk)
	assert.InDelta(t, plan.TotalEstimatedHours, plan.RiskAssessment.TotalEstimatedHours, 1e-9)
	assert.Equal(t, defaultRecommendations, plan.Recommendations[len(plan.Recommendations)-2:])

	require.Len(t, plan.Milestones, 4)
	last := plan.Milestones[3]
	assert.Equal(t, 100, last.Percentage)
	assert.Equal(t, "Production Deployment & Go-Live", last.KeyTask)

	assert.Len(t, plan.DependenciesGraph, 6)
	assert.Empty(t, plan.DependenciesGraph[root.ID])
	assert.Equal(t, []string{plan.Tasks[3].ID, plan.Tasks[4].ID}, plan.DependenciesGraph[plan.Tasks[5].ID])

	assert.GreaterOrEqual(t, plan.CriticalPathDuration, 1)
	assert.GreaterOrEqual(t, plan.SuccessProbability, 0.2)
	assert.LessOrEqual(t, plan.SuccessProbability, 0.95)
	assert.Greater(t, plan.ConfidenceScore, 0.0)
	assert.LessOrEqual(t, plan.ConfidenceScore, 1.0)
	assert.NotEmpty(t, plan.InputFingerprint)
}

func TestGenerateLearningPlan(t *testing.T) {
	engine, _ := testEngine()
	plan, err := engine.Generate(context.Background(), GoalInput{
		Goal:      "Learn machine learning",
		Domain:    "personal",
		Resources: []string{"online course"},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.CategoryLearning, plan.Category)
	require.Len(t, plan.Tasks, 4)
	assert.Equal(t, domain.RiskMedium, plan.RiskAssessment.ResourceRisk)
	require.NotNil(t, plan.EstimatedBudget)
	assert.InDelta(t, plan.TotalEstimatedHours*25, *plan.EstimatedBudget, 1e-6)

	// Each step starts when the previous one ends.
	for i := 1; i < len(plan.Tasks); i++ {
		assert.Equal(t, *plan.Tasks[i-1].EndDate, *plan.Tasks[i].StartDate)
	}
}

func TestGenerateWithDeadline(t *testing.T) {
	engine, _ := testEngine()
	plan, err := engine.Generate(context.Background(), GoalInput{
		Goal:     "Organize a team offsite",
		Deadline: at(3),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.CategoryEvent, plan.Category)
	assert.Equal(t, domain.RiskHigh, plan.RiskAssessment.TimelineRisk)
	assert.Equal(t, domain.RiskHigh, plan.RiskAssessment.ResourceRisk)
	assert.Contains(t, plan.RiskAssessment.RiskMitigationStrategies, MitigationTimeline)
	assert.Contains(t, plan.RiskAssessment.RiskMitigationStrategies, MitigationResource)
	assert.Equal(t, timelineRecommendations[0], plan.Recommendations[0])
}

func TestGenerateRejectsShortGoal(t *testing.T) {
	engine, ids := testEngine()

	plan, err := engine.Generate(context.Background(), GoalInput{Goal: "hi"})
	require.Error(t, err)
	assert.Nil(t, plan)
	assert.Equal(t, errors.ErrCodeGoalTooShort, errors.CodeOf(err))
	assert.Zero(t, ids.tasks, "no tasks are created for invalid input")
	assert.Zero(t, ids.plans)
}

func TestGenerateIsDeterministic(t *testing.T) {
	in := GoalInput{Goal: "Investigate churn drivers", Domain: "business", Resources: []string{"analyst", "data"}}

	a, _ := testEngine()
	b, _ := testEngine()
	first, err := a.Generate(context.Background(), in)
	require.NoError(t, err)
	second, err := b.Generate(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateFollowsCatalogStore(t *testing.T) {
	store := catalog.NewStore(catalog.MustBuiltin())
	engine, _ := testEngine(WithCatalogStore(store))

	replacement := *catalog.MustBuiltin()
	replacement.Version = "3.0.0"
	store.Swap(&replacement)

	plan, err := engine.Generate(context.Background(), GoalInput{Goal: "Write a novel"})
	require.NoError(t, err)
	assert.Equal(t, "3.0.0", plan.CatalogVersion)
	assert.Equal(t, domain.CategoryGeneric, plan.Category)
	assert.Same(t, &replacement, engine.Catalog())
}

func loopCatalog(steps []catalog.Step) *catalog.Catalog {
	return &catalog.Catalog{
		Version:           "loop",
		Analysis:          catalog.MustBuiltin().Analysis,
		DefaultHourlyRate: 10,
		Templates: []catalog.Template{{
			Category:  domain.CategoryGeneric,
			Name:      "Loop",
			BaseHours: 10,
			Steps:     steps,
		}},
	}
}

func TestGenerateCatalogFailures(t *testing.T) {
	_, m := metrics.NewRegistry()

	t.Run("cycle", func(t *testing.T) {
		c := loopCatalog([]catalog.Step{
			{Key: "a", Title: "A", HourShare: 0.5, DependsOn: []string{"b"}},
			{Key: "b", Title: "B", HourShare: 0.5, DependsOn: []string{"a"}},
		})
		engine := NewEngine(c, WithClock(fixedClock), WithIDGenerator(&seqIDs{}), WithMetrics(m))

		_, err := engine.Generate(context.Background(), GoalInput{Goal: "Write a novel"})
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodePlanCyclicDep, errors.CodeOf(err))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.PlanGenerations.WithLabelValues("generic", "false")))
	})

	t.Run("empty template", func(t *testing.T) {
		engine := NewEngine(loopCatalog(nil), WithMetrics(m))
		_, err := engine.Generate(context.Background(), GoalInput{Goal: "Write a novel"})
		assert.Equal(t, errors.ErrCodePlanEmptyTemplate, errors.CodeOf(err))
	})

	t.Run("no template", func(t *testing.T) {
		c := loopCatalog(nil)
		c.Templates = nil
		engine := NewEngine(c)
		_, err := engine.Generate(context.Background(), GoalInput{Goal: "Write a novel"})
		assert.Equal(t, errors.ErrCodeCatalogInconsistent, errors.CodeOf(err))
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues(string(errors.ErrCodePlanEmptyTemplate), "planner")))
}

func TestGenerateRecordsMetrics(t *testing.T) {
	_, m := metrics.NewRegistry()
	engine, _ := testEngine(WithMetrics(m))

	_, err := engine.Generate(context.Background(), GoalInput{Goal: "Launch a new mobile app by Q3"})
	require.NoError(t, err)
	_, err = engine.Generate(context.Background(), GoalInput{Goal: "hi"})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PlanGenerations.WithLabelValues("product_launch", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues(string(errors.ErrCodeGoalTooShort), "planner")))
}

func TestGenerateTraces(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	telemetry.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		telemetry.SetTracerProvider(nil)
	})

	engine, _ := testEngine()
	_, err := engine.Generate(context.Background(), GoalInput{Goal: "Learn machine learning"})
	require.NoError(t, err)

	spans := recorder.Ended()
	names := make([]string, 0, len(spans))
	for _, s := range spans {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{
		"plan.analyze",
		"plan.materialize",
		"plan.schedule",
		"plan.risk",
		"plan.milestones",
		"plan.aggregate",
		"plan.generate",
	}, names)

	root := spans[len(spans)-1]
	assert.Equal(t, codes.Ok, root.Status().Code)
	for _, s := range spans[:len(spans)-1] {
		assert.Equal(t, root.SpanContext().SpanID(), s.Parent().SpanID(), s.Name())

		key := strings.TrimPrefix(s.Name(), "plan.") + "_ms"
		found := false
		for _, kv := range s.Attributes() {
			found = found || string(kv.Key) == key
		}
		assert.True(t, found, "%s should carry %s", s.Name(), key)
	}
}

func TestGenerateLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: log.LevelInfo, Format: log.FormatJSON, Output: &buf})
	engine, _ := testEngine(WithLogger(logger))

	_, err := engine.Generate(context.Background(), GoalInput{Goal: "Learn machine learning"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"generating plan"`)
	assert.Contains(t, out, `"msg":"plan generated"`)
	assert.Contains(t, out, `"category":"learning"`)
	assert.Contains(t, out, `"plan_id":"plan_00000001"`)
}
