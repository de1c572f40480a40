package planner

import (
	"fmt"
	"sort"
)

// MilestonePercentages are the completion thresholds, ascending.
var MilestonePercentages = []int{25, 50, 75, 100}

var milestoneStakeholders = []string{"Project Manager", "Team Lead", "Stakeholders"}

// BuildMilestones walks scheduled tasks in end-date order, accumulating
// hours, and emits each threshold once at the task that crosses it.
func BuildMilestones(tasks []Task, ids IDGenerator) []Milestone {
	ordered := make([]*Task, 0, len(tasks))
	for i := range tasks {
		if tasks[i].EndDate != nil {
			ordered = append(ordered, &tasks[i])
		}
	}
	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].EndDate.Before(*ordered[b].EndDate)
	})

	// Summed in the same order as the walk so the last task reaches exactly 100%.
	var total float64
	for _, t := range ordered {
		total += t.EstimatedHours
	}

	milestones := []Milestone{}
	if total <= 0 {
		return milestones
	}

	next := 0
	var cumulative float64
	for _, t := range ordered {
		cumulative += t.EstimatedHours
		pct := cumulative / total * 100
		for next < len(MilestonePercentages) && pct >= float64(MilestonePercentages[next]) {
			milestones = append(milestones, newMilestone(ids.MilestoneID(), MilestonePercentages[next], t))
			next++
		}
	}
	return milestones
}

func newMilestone(id string, pct int, t *Task) Milestone {
	return Milestone{
		ID:         id,
		Percentage: pct,
		Title:      fmt.Sprintf("Project %d%% Complete", pct),
		Date:       *t.EndDate,
		KeyTask:    t.Title,
		KeyTaskID:  t.ID,
		Description: fmt.Sprintf("Milestone achieved with completion of '%s' - %d%% of total project scope delivered",
			t.Title, pct),
		Deliverables: []string{
			fmt.Sprintf("All tasks up to '%s' completed", t.Title),
			fmt.Sprintf("%d%% of project scope delivered", pct),
		},
		Stakeholders: cloneStrings(milestoneStakeholders),
	}
}
