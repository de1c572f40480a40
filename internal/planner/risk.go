package planner

import (
	"math"
	"time"

	"github.com/felixgeelhaar/smartplan/internal/domain"
)

const (
	timelineHighFactor   = 1.3
	timelineMediumFactor = 1.1
	complexityMedium     = 0.5
	complexityHigh       = 0.8
	fewResources         = 3
	highRiskFactorCount  = 2
	manyHighRiskTasks    = 3
	manyTasks            = 8
)

// Mitigation strategies, one per high-risk dimension.
const (
	MitigationTimeline   = "Consider scope reduction or deadline extension"
	MitigationResource   = "Identify and allocate dedicated team members"
	MitigationComplexity = "Break down complex tasks into smaller components"
)

var (
	timelineRecommendations = []string{
		"Consider extending deadline by 20-30% or reducing scope to ensure quality delivery",
		"Implement parallel task execution where dependencies allow",
	}
	resourceRecommendations = []string{
		"Allocate dedicated team members and define clear roles and responsibilities",
		"Invest in proper tools and infrastructure to maximize team productivity",
	}
	riskRecommendations = []string{
		"Develop contingency plans for high-risk tasks and identify early warning indicators",
		"Implement weekly risk review sessions to proactively address emerging issues",
	}
	qualityRecommendations = []string{
		"Establish quality gates and milestone reviews to ensure deliverable standards",
		"Set up progress tracking dashboard with real-time visibility for stakeholders",
	}
	defaultRecommendations = []string{
		"Define clear success metrics and KPIs to measure progress objectively",
		"Schedule regular stakeholder check-ins to ensure alignment and gather feedback",
	}
)

// TimelineRisk compares the daily hours needed to meet the deadline with the
// hours available. Without a deadline the risk is medium.
func TimelineRisk(totalHours float64, deadline *time.Time, now time.Time, workingHoursPerDay int) domain.RiskLevel {
	if deadline == nil {
		return domain.RiskMedium
	}
	days := int(math.Floor(deadline.Sub(now).Hours() / 24))
	required := totalHours / float64(max(days, 1))
	available := float64(workingHoursPerDay)
	return domain.ThresholdLevel(required, available*timelineMediumFactor, available*timelineHighFactor)
}

// ResourceRisk rates how many resources the caller listed.
func ResourceRisk(resources int) domain.RiskLevel {
	switch {
	case resources == 0:
		return domain.RiskHigh
	case resources < fewResources:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// ComplexityRisk rates a complexity score.
func ComplexityRisk(score float64) domain.RiskLevel {
	return domain.ThresholdLevel(score, complexityMedium, complexityHigh)
}

// AssessRisk derives the plan's risk levels from scheduled tasks.
func AssessRisk(tasks []Task, in GoalInput, complexity float64, now time.Time) RiskAssessment {
	total := TotalHours(tasks)

	var highRisk, critical int
	for _, t := range tasks {
		if len(t.RiskFactors) > highRiskFactorCount {
			highRisk++
		}
		if t.Priority == domain.PriorityCritical {
			critical++
		}
	}

	ra := RiskAssessment{
		TimelineRisk:             TimelineRisk(total, in.Deadline, now, in.WorkingHoursPerDay),
		ResourceRisk:             ResourceRisk(len(in.Resources)),
		ComplexityRisk:           ComplexityRisk(complexity),
		BudgetRisk:               domain.RiskMedium,
		TechnicalRisk:            domain.RiskMedium,
		StakeholderRisk:          domain.RiskLow,
		HighRiskTasks:            highRisk,
		CriticalPathRisks:        critical,
		TotalEstimatedHours:      total,
		RiskMitigationStrategies: []string{},
	}

	if ra.TimelineRisk == domain.RiskHigh {
		ra.RiskMitigationStrategies = append(ra.RiskMitigationStrategies, MitigationTimeline)
	}
	if ra.ResourceRisk == domain.RiskHigh {
		ra.RiskMitigationStrategies = append(ra.RiskMitigationStrategies, MitigationResource)
	}
	if ra.ComplexityRisk == domain.RiskHigh {
		ra.RiskMitigationStrategies = append(ra.RiskMitigationStrategies, MitigationComplexity)
	}
	return ra
}

// Recommend lists advice for the plan. The two default recommendations are
// always last.
func Recommend(tasks []Task, ra RiskAssessment) []string {
	var out []string
	if ra.TimelineRisk == domain.RiskHigh {
		out = append(out, timelineRecommendations...)
	}
	if ra.ResourceRisk == domain.RiskHigh {
		out = append(out, resourceRecommendations...)
	}
	if ra.HighRiskTasks > manyHighRiskTasks {
		out = append(out, riskRecommendations...)
	}
	if len(tasks) > manyTasks {
		out = append(out, qualityRecommendations...)
	}
	return append(out, defaultRecommendations...)
}
