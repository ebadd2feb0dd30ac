package query

import (
	"reflect"
	"testing"
	"time"

	"realtycore/pkg/domain"
)

func contact(id, name, email, phone string, typ domain.ContactType) domain.Contact {
	return domain.Contact{Base: domain.Base{ID: id}, Name: name, Email: email, Phone: phone, Type: typ}
}

func TestContactFilterSearch(t *testing.T) {
	contacts := []domain.Contact{
		contact("c1", "Ana Torres", "ana@example.com", "555-0101", domain.ContactBuyer),
		contact("c2", "Ben Okafor", "ben@homes.net", "555-0202", domain.ContactSeller),
		contact("c3", "Carla Nguyen", "carla@example.com", "777-0101", domain.ContactInvestor),
	}

	cases := []struct {
		name   string
		filter ContactFilter
		want   []string
	}{
		{"empty filter matches all", ContactFilter{}, []string{"c1", "c2", "c3"}},
		{"name match is case-insensitive", ContactFilter{Search: "ANA"}, []string{"c1"}},
		{"email substring", ContactFilter{Search: "homes.net"}, []string{"c2"}},
		{"phone substring", ContactFilter{Search: "0101"}, []string{"c1", "c3"}},
		{"type exact", ContactFilter{Type: "seller"}, []string{"c2"}},
		{"type all bypasses", ContactFilter{Type: All}, []string{"c1", "c2", "c3"}},
		{"search and type are anded", ContactFilter{Search: "0101", Type: "investor"}, []string{"c3"}},
		{"no match", ContactFilter{Search: "zelda"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.filter.Apply(contacts)
			ids := make([]string, 0, len(got))
			for _, c := range got {
				ids = append(ids, c.ID)
			}
			if !reflect.DeepEqual(ids, tc.want) {
				t.Fatalf("got %v, want %v", ids, tc.want)
			}
		})
	}
}

func TestPropertyFilterMultiSelectStatus(t *testing.T) {
	properties := []domain.Property{
		{Base: domain.Base{ID: "p1"}, Address: "12 Oak St", Status: domain.PropertyActive, Type: domain.PropertyHouse},
		{Base: domain.Base{ID: "p2"}, Address: "9 Elm Ave", Status: domain.PropertySold, Type: domain.PropertyCondo},
		{Base: domain.Base{ID: "p3"}, Address: "4 Oak Ct", Status: domain.PropertyPending, Type: domain.PropertyHouse},
	}

	got := PropertyFilter{Statuses: []string{"active", "pending"}}.Apply(properties)
	if len(got) != 2 || got[0].ID != "p1" || got[1].ID != "p3" {
		t.Fatalf("multi-select lost records or order: %+v", got)
	}

	if got := (PropertyFilter{Statuses: []string{All}}).Apply(properties); len(got) != 3 {
		t.Fatalf("all sentinel should match everything, got %d", len(got))
	}
	if got := (PropertyFilter{Search: "oak", Type: "house"}).Apply(properties); len(got) != 2 {
		t.Fatalf("expected 2 oak houses, got %d", len(got))
	}
	if got := (PropertyFilter{Search: "OAK", Statuses: []string{"pending"}}).Apply(properties); len(got) != 1 || got[0].ID != "p3" {
		t.Fatalf("combined predicates wrong: %+v", got)
	}
}

func TestTaskFilter(t *testing.T) {
	tasks := []domain.Task{
		{Base: domain.Base{ID: "t1"}, Priority: domain.PriorityHigh, Status: domain.TaskPending},
		{Base: domain.Base{ID: "t2"}, Priority: domain.PriorityLow, Status: domain.TaskCompleted},
		{Base: domain.Base{ID: "t3"}, Priority: domain.PriorityHigh, Status: domain.TaskCompleted},
	}

	if got := (TaskFilter{Priority: "high"}).Apply(tasks); len(got) != 2 {
		t.Fatalf("priority filter: got %d", len(got))
	}
	if got := (TaskFilter{Status: "completed"}).Apply(tasks); len(got) != 2 {
		t.Fatalf("status filter: got %d", len(got))
	}
	if got := (TaskFilter{Priority: "high", Status: "completed"}).Apply(tasks); len(got) != 1 || got[0].ID != "t3" {
		t.Fatalf("combined filter: %+v", got)
	}
	if got := (TaskFilter{Priority: All, Status: All}).Apply(tasks); len(got) != 3 {
		t.Fatalf("all sentinel: got %d", len(got))
	}
}

func TestFilterIdempotentAndPure(t *testing.T) {
	tasks := []domain.Task{
		{Base: domain.Base{ID: "t1"}, Priority: domain.PriorityHigh, Status: domain.TaskPending},
		{Base: domain.Base{ID: "t2"}, Priority: domain.PriorityLow, Status: domain.TaskCompleted},
	}
	input := make([]domain.Task, len(tasks))
	copy(input, tasks)

	f := TaskFilter{Status: "pending"}
	once := f.Apply(tasks)
	twice := f.Apply(f.Apply(tasks))
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("filter is not idempotent")
	}
	if !reflect.DeepEqual(tasks, input) {
		t.Fatalf("filter mutated its input")
	}
}

func TestSortTasksComparatorOrder(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	tasks := []domain.Task{
		{Base: domain.Base{ID: "a"}, Status: domain.TaskPending, DueDate: day(2), Priority: domain.PriorityHigh},
		{Base: domain.Base{ID: "b"}, Status: domain.TaskCompleted, DueDate: day(1), Priority: domain.PriorityLow},
		{Base: domain.Base{ID: "c"}, Status: domain.TaskPending, DueDate: day(2), Priority: domain.PriorityMedium},
	}

	sorted := SortTasks(tasks)
	want := []string{"a", "c", "b"}
	for i, id := range want {
		if sorted[i].ID != id {
			t.Fatalf("position %d: got %s, want %s", i, sorted[i].ID, id)
		}
	}
	// Input untouched.
	if tasks[0].ID != "a" || tasks[1].ID != "b" || tasks[2].ID != "c" {
		t.Fatalf("sort mutated input")
	}
}

func TestSortTasksStability(t *testing.T) {
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	tasks := []domain.Task{
		{Base: domain.Base{ID: "first"}, Status: domain.TaskPending, DueDate: due, Priority: domain.PriorityMedium},
		{Base: domain.Base{ID: "second"}, Status: domain.TaskPending, DueDate: due, Priority: domain.PriorityMedium},
		{Base: domain.Base{ID: "third"}, Status: domain.TaskPending, DueDate: due, Priority: domain.PriorityMedium},
	}
	sorted := SortTasks(tasks)
	for i, id := range []string{"first", "second", "third"} {
		if sorted[i].ID != id {
			t.Fatalf("equal-key tasks reordered: %v", sorted)
		}
	}
}

func TestSortTasksDueDateBeforePriority(t *testing.T) {
	tasks := []domain.Task{
		{Base: domain.Base{ID: "later-high"}, Status: domain.TaskPending, DueDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Priority: domain.PriorityHigh},
		{Base: domain.Base{ID: "sooner-low"}, Status: domain.TaskPending, DueDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Priority: domain.PriorityLow},
	}
	sorted := SortTasks(tasks)
	if sorted[0].ID != "sooner-low" {
		t.Fatalf("due date should outrank priority: %v", sorted)
	}
}
