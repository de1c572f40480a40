package planner

import (
	"math"
	"time"

	"github.com/felixgeelhaar/smartplan/internal/errors"
)

// TaskDays is the number of calendar days a task occupies:
// ceil(hours / hours per day), at least one.
func TaskDays(hours float64, workingHoursPerDay int) int {
	if workingHoursPerDay <= 0 {
		workingHoursPerDay = DefaultWorkingHours
	}
	days := int(math.Ceil(hours / float64(workingHoursPerDay)))
	return max(days, 1)
}

type visitState uint8

const (
	unvisited visitState = iota
	visiting
	scheduled
)

// Schedule assigns start and end dates in place. A task starts at the latest
// end of its dependencies, or at now when it has none. Each task is scheduled
// once; references to unknown tasks are ignored and a dependency cycle is
// reported as an error.
//
// Dependencies are resolved by template key when the task came from
// Materialize, and by title otherwise.
func Schedule(tasks []Task, now time.Time, workingHoursPerDay int) error {
	byKey := make(map[string]int, len(tasks))
	byTitle := make(map[string]int, len(tasks))
	for i, t := range tasks {
		if t.Key != "" {
			byKey[t.Key] = i
		}
		byTitle[t.Title] = i
	}

	deps := func(i int) []int {
		var out []int
		if tasks[i].dependencyKeys != nil {
			for _, key := range tasks[i].dependencyKeys {
				if j, ok := byKey[key]; ok {
					out = append(out, j)
				}
			}
			return out
		}
		for _, title := range tasks[i].Dependencies {
			if j, ok := byTitle[title]; ok {
				out = append(out, j)
			}
		}
		return out
	}

	state := make([]visitState, len(tasks))
	var stack []int

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case scheduled:
			return nil
		case visiting:
			return cycleError(tasks, stack, i)
		}

		state[i] = visiting
		stack = append(stack, i)

		start := now
		for _, j := range deps(i) {
			if err := visit(j); err != nil {
				return err
			}
			if end := *tasks[j].EndDate; end.After(start) {
				start = end
			}
		}

		end := start.AddDate(0, 0, TaskDays(tasks[i].EstimatedHours, workingHoursPerDay))
		tasks[i].StartDate = &start
		tasks[i].EndDate = &end

		stack = stack[:len(stack)-1]
		state[i] = scheduled
		return nil
	}

	for i := range tasks {
		if err := visit(i); err != nil {
			return err
		}
	}
	return nil
}

func cycleError(tasks []Task, stack []int, repeated int) error {
	var path []string
	for k, idx := range stack {
		if idx == repeated {
			for _, j := range stack[k:] {
				path = append(path, tasks[j].Title)
			}
			break
		}
	}
	path = append(path, tasks[repeated].Title)
	return errors.NewCyclicDependencyError(path)
}
