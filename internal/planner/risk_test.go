package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/smartplan/internal/domain"
)

func TestTimelineRisk(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		deadline int
		noDate   bool
		want     domain.RiskLevel
	}{
		{name: "no deadline", total: 500, noDate: true, want: domain.RiskMedium},
		{name: "tight", total: 208, deadline: 10, want: domain.RiskHigh},
		{name: "stretched", total: 208, deadline: 22, want: domain.RiskMedium},
		{name: "at the medium boundary", total: 208, deadline: 24, want: domain.RiskLow},
		{name: "comfortable", total: 208, deadline: 30, want: domain.RiskLow},
		{name: "past deadline", total: 16, deadline: -5, want: domain.RiskHigh},
		{name: "due today", total: 8, deadline: 0, want: domain.RiskLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deadline := at(tt.deadline)
			if tt.noDate {
				deadline = nil
			}
			assert.Equal(t, tt.want, TimelineRisk(tt.total, deadline, testNow, 8))
		})
	}
}

func TestResourceRisk(t *testing.T) {
	assert.Equal(t, domain.RiskHigh, ResourceRisk(0))
	assert.Equal(t, domain.RiskMedium, ResourceRisk(1))
	assert.Equal(t, domain.RiskMedium, ResourceRisk(2))
	assert.Equal(t, domain.RiskLow, ResourceRisk(3))
	assert.Equal(t, domain.RiskLow, ResourceRisk(10))
}

func TestComplexityRisk(t *testing.T) {
	assert.Equal(t, domain.RiskLow, ComplexityRisk(0.2))
	assert.Equal(t, domain.RiskLow, ComplexityRisk(0.5))
	assert.Equal(t, domain.RiskMedium, ComplexityRisk(0.6))
	assert.Equal(t, domain.RiskHigh, ComplexityRisk(0.81))
}

func riskyTasks(n int, factors int) []Task {
	tasks := make([]Task, n)
	for i := range tasks {
		tasks[i] = Task{EstimatedHours: 10, RiskFactors: make([]string, factors), Priority: domain.PriorityMedium}
	}
	return tasks
}

func TestAssessRisk(t *testing.T) {
	tasks := riskyTasks(4, 3)
	tasks[0].Priority = domain.PriorityCritical
	tasks[1].RiskFactors = []string{"one"}

	in := GoalInput{Goal: "anything", WorkingHoursPerDay: 8, Deadline: at(1)}
	ra := AssessRisk(tasks, in, 0.9, testNow)

	assert.Equal(t, domain.RiskHigh, ra.TimelineRisk)
	assert.Equal(t, domain.RiskHigh, ra.ResourceRisk)
	assert.Equal(t, domain.RiskHigh, ra.ComplexityRisk)
	assert.Equal(t, domain.RiskMedium, ra.BudgetRisk)
	assert.Equal(t, domain.RiskMedium, ra.TechnicalRisk)
	assert.Equal(t, domain.RiskLow, ra.StakeholderRisk)
	assert.Equal(t, 3, ra.HighRiskTasks)
	assert.Equal(t, 1, ra.CriticalPathRisks)
	assert.InDelta(t, 40.0, ra.TotalEstimatedHours, 1e-9)
	assert.Equal(t, []string{MitigationTimeline, MitigationResource, MitigationComplexity}, ra.RiskMitigationStrategies)
}

func TestAssessRiskNoMitigations(t *testing.T) {
	in := GoalInput{Goal: "anything", WorkingHoursPerDay: 8, Resources: []string{"a", "b", "c"}}
	ra := AssessRisk(riskyTasks(2, 1), in, 0.1, testNow)

	assert.Equal(t, domain.RiskMedium, ra.TimelineRisk)
	assert.Equal(t, domain.RiskLow, ra.ResourceRisk)
	assert.NotNil(t, ra.RiskMitigationStrategies)
	assert.Empty(t, ra.RiskMitigationStrategies)
}

func TestRecommend(t *testing.T) {
	t.Run("defaults only", func(t *testing.T) {
		got := Recommend(riskyTasks(4, 1), RiskAssessment{TimelineRisk: domain.RiskLow, ResourceRisk: domain.RiskLow})
		assert.Equal(t, defaultRecommendations, got)
	})

	t.Run("every trigger", func(t *testing.T) {
		ra := RiskAssessment{TimelineRisk: domain.RiskHigh, ResourceRisk: domain.RiskHigh, HighRiskTasks: 4}
		got := Recommend(riskyTasks(9, 3), ra)

		assert.Len(t, got, 10)
		assert.Equal(t, timelineRecommendations[0], got[0])
		assert.Equal(t, resourceRecommendations[0], got[2])
		assert.Equal(t, riskRecommendations[0], got[4])
		assert.Equal(t, qualityRecommendations[0], got[6])
		assert.Equal(t, defaultRecommendations, got[8:])
	})

	t.Run("thresholds are exclusive", func(t *testing.T) {
		ra := RiskAssessment{TimelineRisk: domain.RiskMedium, ResourceRisk: domain.RiskMedium, HighRiskTasks: 3}
		assert.Equal(t, defaultRecommendations, Recommend(riskyTasks(8, 3), ra))
	})
}
