package planner

import "math"

const (
	baseSuccessProbability = 0.8
	emptyPlanConfidence    = 0.5
	minSuccessProbability  = 0.2
	maxSuccessProbability  = 0.95

	timelineWeight   = 0.4
	resourceWeight   = 0.3
	complexityWeight = 0.3
)

// TotalHours sums estimated hours.
func TotalHours(tasks []Task) float64 {
	var total float64
	for _, t := range tasks {
		total += t.EstimatedHours
	}
	return total
}

// CriticalPathDays is the whole-day span from the earliest start to the
// latest end, plus one. Plans without dates have a zero span.
func CriticalPathDays(tasks []Task) int {
	var first, last *Task
	for i := range tasks {
		t := &tasks[i]
		if t.StartDate != nil && (first == nil || t.StartDate.Before(*first.StartDate)) {
			first = t
		}
		if t.EndDate != nil && (last == nil || t.EndDate.After(*last.EndDate)) {
			last = t
		}
	}
	if first == nil || last == nil {
		return 0
	}
	days := math.Floor(last.EndDate.Sub(*first.StartDate).Hours() / 24)
	return int(days) + 1
}

// OverallConfidence is the hours-weighted mean task confidence.
func OverallConfidence(tasks []Task) float64 {
	var weighted, hours float64
	for _, t := range tasks {
		weighted += t.ConfidenceScore * t.EstimatedHours
		hours += t.EstimatedHours
	}
	if hours <= 0 {
		return 0
	}
	return weighted / hours
}

// MeanConfidence is the unweighted mean task confidence, 0.5 for no tasks.
func MeanConfidence(tasks []Task) float64 {
	if len(tasks) == 0 {
		return emptyPlanConfidence
	}
	var sum float64
	for _, t := range tasks {
		sum += t.ConfidenceScore
	}
	return sum / float64(len(tasks))
}

// SuccessProbability combines mean confidence with weighted risk scores,
// clamped to [0.2, 0.95].
func SuccessProbability(tasks []Task, ra RiskAssessment) float64 {
	risk := ra.TimelineRisk.Score()*timelineWeight +
		ra.ResourceRisk.Score()*resourceWeight +
		ra.ComplexityRisk.Score()*complexityWeight
	p := baseSuccessProbability * MeanConfidence(tasks) * risk
	return clamp(p, minSuccessProbability, maxSuccessProbability)
}

// Budget sums task costs; nil when the total is zero.
func Budget(tasks []Task) *float64 {
	var total float64
	for _, t := range tasks {
		if t.EstimatedCost != nil {
			total += *t.EstimatedCost
		}
	}
	if total <= 0 {
		return nil
	}
	return &total
}

// DependencyGraph maps each task id to the ids of its known dependencies,
// resolved the same way Schedule resolves them.
func DependencyGraph(tasks []Task) map[string][]string {
	byKey := make(map[string]string, len(tasks))
	byTitle := make(map[string]string, len(tasks))
	for _, t := range tasks {
		if t.Key != "" {
			byKey[t.Key] = t.ID
		}
		byTitle[t.Title] = t.ID
	}

	graph := make(map[string][]string, len(tasks))
	for _, t := range tasks {
		ids := []string{}
		if t.dependencyKeys != nil {
			for _, key := range t.dependencyKeys {
				if id, ok := byKey[key]; ok {
					ids = append(ids, id)
				}
			}
		} else {
			for _, title := range t.Dependencies {
				if id, ok := byTitle[title]; ok {
					ids = append(ids, id)
				}
			}
		}
		graph[t.ID] = ids
	}
	return graph
}

// riskLevels is used in logs.
func riskLevels(ra RiskAssessment) []any {
	return []any{
		"timeline_risk", ra.TimelineRisk,
		"resource_risk", ra.ResourceRisk,
		"complexity_risk", ra.ComplexityRisk,
	}
}
