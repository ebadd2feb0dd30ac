// Package query provides pure filter and sort functions deriving visible
// subsets from full collections. Functions never mutate their inputs and
// preserve the relative order of matching records.
package query

import (
	"strings"

	"realtycore/pkg/domain"
)

// All is the sentinel filter value that bypasses a predicate.
const All = "all"

// ContactFilter selects contacts by free-text search and type.
type ContactFilter struct {
	Search string
	Type   string
}

// Match reports whether the contact satisfies the filter.
func (f ContactFilter) Match(c domain.Contact) bool {
	if term := strings.TrimSpace(f.Search); term != "" {
		lower := strings.ToLower(term)
		if !strings.Contains(strings.ToLower(c.Name), lower) &&
			!strings.Contains(strings.ToLower(c.Email), lower) &&
			!strings.Contains(c.Phone, term) {
			return false
		}
	}
	if f.Type != "" && f.Type != All && string(c.Type) != f.Type {
		return false
	}
	return true
}

// Apply returns the contacts matching the filter in their original order.
func (f ContactFilter) Apply(contacts []domain.Contact) []domain.Contact {
	out := make([]domain.Contact, 0, len(contacts))
	for _, c := range contacts {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

// PropertyFilter selects properties by address search, a multi-select status
// set, and type. An empty status set or one containing All matches every
// status.
type PropertyFilter struct {
	Search   string
	Statuses []string
	Type     string
}

// Match reports whether the property satisfies the filter.
func (f PropertyFilter) Match(p domain.Property) bool {
	if term := strings.TrimSpace(f.Search); term != "" {
		if !strings.Contains(strings.ToLower(p.Address), strings.ToLower(term)) {
			return false
		}
	}
	if !statusSelected(f.Statuses, string(p.Status)) {
		return false
	}
	if f.Type != "" && f.Type != All && string(p.Type) != f.Type {
		return false
	}
	return true
}

func statusSelected(selected []string, status string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, s := range selected {
		if s == All || s == status {
			return true
		}
	}
	return false
}

// Apply returns the properties matching the filter in their original order.
func (f PropertyFilter) Apply(properties []domain.Property) []domain.Property {
	out := make([]domain.Property, 0, len(properties))
	for _, p := range properties {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// TaskFilter selects tasks by exact priority and status, each independently
// bypassable with All.
type TaskFilter struct {
	Priority string
	Status   string
}

// Match reports whether the task satisfies the filter.
func (f TaskFilter) Match(t domain.Task) bool {
	if f.Priority != "" && f.Priority != All && string(t.Priority) != f.Priority {
		return false
	}
	if f.Status != "" && f.Status != All && string(t.Status) != f.Status {
		return false
	}
	return true
}

// Apply returns the tasks matching the filter in their original order.
func (f TaskFilter) Apply(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}
