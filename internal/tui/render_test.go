package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/smartplan/internal/catalog"
	"github.com/felixgeelhaar/smartplan/internal/planner"
)

func testPlan(t *testing.T) *planner.Plan {
	t.Helper()
	now := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	engine := planner.NewEngine(catalog.MustBuiltin(), planner.WithClock(func() time.Time { return now }))
	p, err := engine.Generate(context.Background(), planner.GoalInput{
		Goal:      "Launch a new mobile app by Q3",
		Domain:    "technical",
		Resources: []string{"dev team"},
	})
	require.NoError(t, err)
	return p
}

func TestRenderPlan(t *testing.T) {
	p := testPlan(t)
	out := RenderPlan(p, PlainStyles())

	assert.Contains(t, out, "Plan "+p.PlanID)
	assert.Contains(t, out, "Launch a new mobile app by Q3")
	assert.Contains(t, out, "product_launch")
	for _, task := range p.Tasks {
		assert.Contains(t, out, task.Title)
	}
	assert.Contains(t, out, "2025-03-03", "first task starts on the request date")
	assert.Contains(t, out, "100%")
	assert.Contains(t, out, "Timeline")
	for _, r := range p.Recommendations {
		assert.Contains(t, out, r)
	}
}

func TestRenderPlanWithoutBudget(t *testing.T) {
	p := testPlan(t)
	p.EstimatedBudget = nil
	p.Milestones = nil
	p.Tasks[0].StartDate = nil

	out := RenderPlan(p, PlainStyles())
	assert.Contains(t, out, "n/a")
	assert.NotContains(t, out, "Milestones")
}

func TestRenderDomains(t *testing.T) {
	c := catalog.MustBuiltin()
	out := RenderDomains(c, PlainStyles())

	for _, name := range c.DomainNames() {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "$100/h")
	assert.Less(t, strings.Index(out, "academic"), strings.Index(out, "technical"))
}

func TestRenderTemplates(t *testing.T) {
	c := catalog.MustBuiltin()
	out := RenderTemplates(c, DefaultStyles())

	assert.Contains(t, out, c.Version)
	assert.Contains(t, out, "Market Research & Competitive Analysis")
	assert.Contains(t, out, "fallback")
	for name := range c.DomainTemplates {
		assert.Contains(t, out, name)
	}
}
