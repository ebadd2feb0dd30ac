// Package dashboard derives summary metrics from the four CRM collections.
// Everything here is a pure recomputation over snapshots, nothing is
// maintained incrementally.
package dashboard

import (
	"sort"
	"time"

	"realtycore/pkg/domain"
)

const recentLimit = 5

// Summary holds the headline metrics for the dashboard page.
type Summary struct {
	ActiveDeals int           `json:"active_deals"`
	TotalValue  float64       `json:"total_value"`
	TasksToday  int           `json:"tasks_today"`
	NewContacts int           `json:"new_contacts"`
	RecentTasks []domain.Task `json:"recent_tasks"`
	RecentDeals []domain.Deal `json:"recent_deals"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// Summarize computes the dashboard metrics as of now. A deal counts as active
// while its stage is not the pipeline's terminal stage; total value sums
// active deals only. New contacts are those created within the trailing seven
// days, boundary inclusive.
func Summarize(contacts []domain.Contact, deals []domain.Deal, tasks []domain.Task, pipeline domain.Pipeline, now time.Time) Summary {
	s := Summary{GeneratedAt: now}

	active := make([]domain.Deal, 0, len(deals))
	for _, d := range deals {
		if pipeline.IsTerminal(d.Stage) {
			continue
		}
		active = append(active, d)
		s.TotalValue += d.Value
	}
	s.ActiveDeals = len(active)

	open := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == domain.TaskCompleted {
			continue
		}
		open = append(open, t)
		if sameDay(t.DueDate, now) {
			s.TasksToday++
		}
	}

	weekAgo := now.AddDate(0, 0, -7)
	for _, c := range contacts {
		if !c.CreatedAt.Before(weekAgo) {
			s.NewContacts++
		}
	}

	sort.SliceStable(open, func(i, j int) bool {
		return open[i].DueDate.Before(open[j].DueDate)
	})
	s.RecentTasks = head(open, recentLimit)

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].CreatedAt.After(active[j].CreatedAt)
	})
	s.RecentDeals = head(active, recentLimit)

	return s
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func head[T any](in []T, n int) []T {
	if len(in) > n {
		in = in[:n]
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
