package planner

import (
	"github.com/felixgeelhaar/smartplan/internal/catalog"
	"github.com/felixgeelhaar/smartplan/internal/domain"
)

const (
	baseConfidence     = 0.85
	riskPenalty        = 0.05
	largeTaskHours     = 50.0
	largeTaskPenalty   = 0.1
	wellDefinedBonus   = 0.05
	wellDefinedMinimum = 3
	minConfidence      = 0.4
	maxConfidence      = 1.0
)

// TaskConfidence estimates the chance a task finishes as planned.
func TaskConfidence(hours float64, riskFactors, successCriteria int) float64 {
	confidence := baseConfidence - riskPenalty*float64(riskFactors)
	if hours > largeTaskHours {
		confidence -= largeTaskPenalty
	}
	if successCriteria >= wellDefinedMinimum {
		confidence += wellDefinedBonus
	}
	return clamp(confidence, minConfidence, maxConfidence)
}

// Materialize instantiates unscheduled tasks from a template. Dependencies
// are listed by title; the keys behind them are kept for scheduling.
func Materialize(tmpl *catalog.Template, complexity float64, rate float64, ids IDGenerator) []Task {
	titles := make(map[string]string, len(tmpl.Steps))
	for _, s := range tmpl.Steps {
		titles[s.Key] = s.Title
	}

	tasks := make([]Task, 0, len(tmpl.Steps))
	for _, s := range tmpl.Steps {
		hours := StepHours(tmpl.BaseHours, complexity, s.HourShare)
		cost := hours * rate

		deps := make([]string, 0, len(s.DependsOn))
		keys := make([]string, 0, len(s.DependsOn))
		for _, key := range s.DependsOn {
			keys = append(keys, key)
			if title, ok := titles[key]; ok {
				deps = append(deps, title)
			}
		}

		tasks = append(tasks, Task{
			ID:              ids.TaskID(),
			Key:             s.Key,
			Title:           s.Title,
			Description:     s.Description,
			Priority:        s.Priority,
			EstimatedHours:  hours,
			Dependencies:    deps,
			ConfidenceScore: TaskConfidence(hours, len(s.RiskFactors), len(s.SuccessCriteria)),
			RiskFactors:     cloneStrings(s.RiskFactors),
			SuccessCriteria: cloneStrings(s.SuccessCriteria),
			ResourcesNeeded: cloneStrings(s.ResourcesNeeded),
			Status:          domain.StatusPending,
			EstimatedCost:   &cost,
			dependencyKeys:  keys,
		})
	}
	return tasks
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
