package query

import (
	"sort"

	"realtycore/pkg/domain"
)

var priorityRank = map[domain.TaskPriority]int{
	domain.PriorityHigh:   0,
	domain.PriorityMedium: 1,
	domain.PriorityLow:    2,
}

// CompareTasks orders tasks for list views: pending before completed, then
// ascending due date, then priority high before medium before low. Returns a
// negative value when a sorts before b, positive when after, zero when the
// three keys are identical.
func CompareTasks(a, b domain.Task) int {
	if a.Status != b.Status {
		if a.Status == domain.TaskPending {
			return -1
		}
		return 1
	}
	if !a.DueDate.Equal(b.DueDate) {
		if a.DueDate.Before(b.DueDate) {
			return -1
		}
		return 1
	}
	return priorityRank[a.Priority] - priorityRank[b.Priority]
}

// SortTasks returns a sorted copy of tasks using CompareTasks. The sort is
// stable, so tasks identical on all three keys keep their relative order.
func SortTasks(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		return CompareTasks(out[i], out[j]) < 0
	})
	return out
}
