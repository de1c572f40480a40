package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/felixgeelhaar/smartplan/internal/catalog"
	"github.com/felixgeelhaar/smartplan/internal/domain"
)

func TestAnalyzeComplexity(t *testing.T) {
	a := catalog.MustBuiltin().Analysis

	tests := []struct {
		name string
		goal string
		want float64
	}{
		{"empty", "", 0},
		{"blank", "   \t ", 0},
		{"launch with marker", "Launch a new mobile app by Q3", (7.0/50 + 1.0/20 + 1.0/3) / 3},
		{"inflected keyword", "Developing tools", (2.0/50 + 1.0/20) / 3},
		{"marker inside a word counts", "Plan a baby shower", (4.0/50 + 1.0/3) / 3},
		{"for inside platform", "Build a platform", (3.0/50 + 1.0/3) / 3},
		{"with inside without", "Ship without delay", (3.0/50 + 1.0/3) / 3},
		{"each marker counted once", "by by by with", (4.0/50 + 2.0/3) / 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AnalyzeComplexity(tt.goal, a), 1e-9)
		})
	}
}

func TestAnalyzeComplexitySaturates(t *testing.T) {
	a := catalog.MustBuiltin().Analysis
	goal := ""
	for i := 0; i < 60; i++ {
		goal += "integrate develop implement optimize analyze design research coordinate manage launch scale automate by within using for with through "
	}
	// 12 keywords out of a cap of 20.
	assert.InDelta(t, (1+12.0/20+1)/3, AnalyzeComplexity(goal, a), 1e-9)
}

func TestAnalyzeComplexityBounded(t *testing.T) {
	a := catalog.MustBuiltin().Analysis
	rapid.Check(t, func(t *rapid.T) {
		goal := rapid.String().Draw(t, "goal")
		score := AnalyzeComplexity(goal, a)
		if score < 0 || score > 1 {
			t.Fatalf("complexity %v out of range for %q", score, goal)
		}
	})
}

func TestSelectTemplate(t *testing.T) {
	c := catalog.MustBuiltin()

	tests := []struct {
		goal string
		want domain.Category
	}{
		{"Launch a new mobile app by Q3", domain.CategoryProductLaunch},
		{"Build a WEBSITE for my bakery", domain.CategoryProductLaunch},
		{"Learn machine learning", domain.CategoryLearning},
		{"Study for the bar exam", domain.CategoryLearning},
		{"Investigate churn drivers", domain.CategoryResearch},
		{"Analyze survey results", domain.CategoryResearch},
		{"Organize a team offsite", domain.CategoryEvent},
		{"Host the annual conference", domain.CategoryEvent},
		{"Write a novel", domain.CategoryGeneric},
		{"Plan the relaunch party", domain.CategoryProductLaunch},
		{"Build a webapp for clients", domain.CategoryProductLaunch},
		{"Ship our new webapp", domain.CategoryProductLaunch},
		{"Relearn calculus", domain.CategoryLearning},
		{"", domain.CategoryGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.goal, func(t *testing.T) {
			got := SelectTemplate(tt.goal, c)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Category)
		})
	}
}

func TestStepHours(t *testing.T) {
	assert.InDelta(t, 30.0, StepHours(200, 0, 0.15), 1e-9)
	assert.InDelta(t, 45.0, StepHours(200, 0.5, 0.15), 1e-9)
}

func TestTaskConfidence(t *testing.T) {
	tests := []struct {
		name     string
		hours    float64
		risks    int
		criteria int
		want     float64
	}{
		{"typical", 30, 3, 3, 0.75},
		{"large task", 60, 3, 3, 0.65},
		{"no risks", 10, 0, 3, 0.90},
		{"few criteria", 10, 2, 2, 0.75},
		{"floor", 100, 10, 0, 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TaskConfidence(tt.hours, tt.risks, tt.criteria), 1e-9)
		})
	}
}

func TestTaskConfidenceBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		hours := rapid.Float64Range(0, 1000).Draw(t, "hours")
		risks := rapid.IntRange(0, 50).Draw(t, "risks")
		criteria := rapid.IntRange(0, 50).Draw(t, "criteria")
		c := TaskConfidence(hours, risks, criteria)
		if c < 0.4 || c > 1 {
			t.Fatalf("confidence %v out of [0.4,1]", c)
		}
	})
}

func TestMaterialize(t *testing.T) {
	tmpl, ok := catalog.MustBuiltin().Template(domain.CategoryProductLaunch)
	require.True(t, ok)

	tasks := Materialize(tmpl, 0, 100, &seqIDs{})
	require.Len(t, tasks, 6)

	first := tasks[0]
	assert.Equal(t, "task_00000001", first.ID)
	assert.Equal(t, "market-research", first.Key)
	assert.Equal(t, "Market Research & Competitive Analysis", first.Title)
	assert.InDelta(t, 30.0, first.EstimatedHours, 1e-9)
	require.NotNil(t, first.EstimatedCost)
	assert.InDelta(t, 3000.0, *first.EstimatedCost, 1e-9)
	assert.Empty(t, first.Dependencies)
	assert.Equal(t, domain.StatusPending, first.Status)
	assert.Zero(t, first.CompletionPercentage)
	assert.False(t, first.Scheduled())

	goLive := tasks[5]
	assert.Equal(t, []string{"Quality Assurance & Testing", "Marketing Campaign & Launch Preparation"}, goLive.Dependencies)
	assert.Equal(t, []string{"quality-assurance", "launch-marketing"}, goLive.dependencyKeys)

	// Task text is copied, not shared with the catalog.
	tasks[0].RiskFactors[0] = "changed"
	assert.NotEqual(t, "changed", tmpl.Steps[0].RiskFactors[0])
}
