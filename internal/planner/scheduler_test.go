package planner

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/felixgeelhaar/smartplan/internal/catalog"
	"github.com/felixgeelhaar/smartplan/internal/domain"
	"github.com/felixgeelhaar/smartplan/internal/errors"
)

func TestTaskDays(t *testing.T) {
	tests := []struct {
		hours float64
		whpd  int
		want  int
	}{
		{16, 8, 2},
		{17, 8, 3},
		{1, 8, 1},
		{0, 8, 1},
		{30, 8, 4},
		{30, 24, 2},
		{10, 0, 2},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%vh@%d", tt.hours, tt.whpd), func(t *testing.T) {
			assert.Equal(t, tt.want, TaskDays(tt.hours, tt.whpd))
		})
	}
}

func TestScheduleProductLaunch(t *testing.T) {
	tmpl, ok := catalog.MustBuiltin().Template(domain.CategoryProductLaunch)
	require.True(t, ok)
	tasks := Materialize(tmpl, 0, 100, &seqIDs{})

	require.NoError(t, Schedule(tasks, testNow, 8))

	// hours: 30, 20, 80, 30, 24, 16
	want := []struct{ start, end int }{
		{0, 4},   // market research
		{4, 7},   // strategy
		{7, 17},  // mvp
		{17, 21}, // qa
		{7, 10},  // marketing
		{21, 23}, // go-live waits for the later of qa and marketing
	}
	for i, w := range want {
		assert.Equal(t, testNow.AddDate(0, 0, w.start), *tasks[i].StartDate, tasks[i].Title)
		assert.Equal(t, testNow.AddDate(0, 0, w.end), *tasks[i].EndDate, tasks[i].Title)
	}
	assert.Equal(t, 24, CriticalPathDays(tasks))
}

func TestScheduleIgnoresUnknownDependencies(t *testing.T) {
	tasks := []Task{
		{Title: "A", EstimatedHours: 8, Dependencies: []string{"Nope"}},
		{Title: "B", EstimatedHours: 8, Dependencies: []string{"A", "Missing"}},
	}
	require.NoError(t, Schedule(tasks, testNow, 8))

	assert.Equal(t, testNow, *tasks[0].StartDate)
	assert.Equal(t, testNow.AddDate(0, 0, 1), *tasks[1].StartDate)
}

func TestScheduleOutOfOrderDependencies(t *testing.T) {
	tasks := []Task{
		{Title: "Late", EstimatedHours: 8, Dependencies: []string{"Early"}},
		{Title: "Early", EstimatedHours: 16},
	}
	require.NoError(t, Schedule(tasks, testNow, 8))

	assert.Equal(t, testNow, *tasks[1].StartDate)
	assert.Equal(t, *tasks[1].EndDate, *tasks[0].StartDate)
}

func TestScheduleCycle(t *testing.T) {
	tasks := []Task{
		{Title: "Root", EstimatedHours: 8},
		{Title: "A", EstimatedHours: 8, Dependencies: []string{"Root", "B"}},
		{Title: "B", EstimatedHours: 8, Dependencies: []string{"A"}},
	}
	err := Schedule(tasks, testNow, 8)
	require.Error(t, err)

	assert.Equal(t, errors.ErrCodePlanCyclicDep, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "A -> B -> A")
}

func TestScheduleSelfDependency(t *testing.T) {
	tasks := []Task{{Title: "Loop", EstimatedHours: 8, Dependencies: []string{"Loop"}}}
	err := Schedule(tasks, testNow, 8)
	assert.Equal(t, errors.ErrCodePlanCyclicDep, errors.CodeOf(err))
}

func TestScheduleProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(t, "tasks")
		whpd := rapid.IntRange(MinWorkingHours, MaxWorkingHours).Draw(t, "whpd")

		tasks := make([]Task, n)
		for i := range tasks {
			tasks[i] = Task{
				Title:          fmt.Sprintf("t%d", i),
				EstimatedHours: rapid.Float64Range(0, 200).Draw(t, fmt.Sprintf("hours%d", i)),
			}
			// Only earlier tasks are referenced, so the graph is acyclic.
			for j := 0; j < i; j++ {
				if rapid.Bool().Draw(t, fmt.Sprintf("dep%d_%d", i, j)) {
					tasks[i].Dependencies = append(tasks[i].Dependencies, tasks[j].Title)
				}
			}
		}

		if err := Schedule(tasks, testNow, whpd); err != nil {
			t.Fatalf("schedule: %v", err)
		}

		byTitle := map[string]*Task{}
		for i := range tasks {
			byTitle[tasks[i].Title] = &tasks[i]
		}
		for _, task := range tasks {
			if !task.Scheduled() {
				t.Fatalf("%s not scheduled", task.Title)
			}
			if !task.EndDate.After(*task.StartDate) {
				t.Fatalf("%s ends %v before it starts %v", task.Title, task.EndDate, task.StartDate)
			}
			if want := task.StartDate.AddDate(0, 0, TaskDays(task.EstimatedHours, whpd)); !task.EndDate.Equal(want) {
				t.Fatalf("%s ends %v, want %v", task.Title, task.EndDate, want)
			}
			if len(task.Dependencies) == 0 && !task.StartDate.Equal(testNow) {
				t.Fatalf("%s has no dependencies but starts %v", task.Title, task.StartDate)
			}
			latest := testNow
			for _, dep := range task.Dependencies {
				end := *byTitle[dep].EndDate
				if task.StartDate.Before(end) {
					t.Fatalf("%s starts before dependency %s ends", task.Title, dep)
				}
				if end.After(latest) {
					latest = end
				}
			}
			if !task.StartDate.Equal(latest) {
				t.Fatalf("%s starts %v, want latest dependency end %v", task.Title, task.StartDate, latest)
			}
		}

		if got := CriticalPathDays(tasks); got < 1 {
			t.Fatalf("critical path %d < 1", got)
		}
	})
}

func TestScheduleKeepsTimezoneOfNow(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := testNow.In(loc)
	tasks := []Task{{Title: "A", EstimatedHours: 8}}
	require.NoError(t, Schedule(tasks, now, 8))
	assert.True(t, tasks[0].StartDate.Equal(now))
}
