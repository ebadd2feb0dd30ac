package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateContact(Contact) (Contact, error)
	UpdateContact(id string, mutator func(*Contact) error) (Contact, error)
	DeleteContact(id string) (Contact, error)
	CreateProperty(Property) (Property, error)
	UpdateProperty(id string, mutator func(*Property) error) (Property, error)
	DeleteProperty(id string) (Property, error)
	CreateDeal(Deal) (Deal, error)
	UpdateDeal(id string, mutator func(*Deal) error) (Deal, error)
	DeleteDeal(id string) (Deal, error)
	CreateTask(Task) (Task, error)
	UpdateTask(id string, mutator func(*Task) error) (Task, error)
	DeleteTask(id string) (Task, error)
	FindDeal(id string) (Deal, bool)
	FindContact(id string) (Contact, bool)
}

// TransactionView provides read-only access to snapshot data for rules.
type TransactionView interface {
	ListContacts() []Contact
	ListProperties() []Property
	ListDeals() []Deal
	ListTasks() []Task
	FindContact(id string) (Contact, bool)
	FindProperty(id string) (Property, bool)
	FindDeal(id string) (Deal, bool)
	FindTask(id string) (Task, bool)
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetContact(id string) (Contact, bool)
	ListContacts() []Contact
	GetProperty(id string) (Property, bool)
	ListProperties() []Property
	GetDeal(id string) (Deal, bool)
	ListDeals() []Deal
	GetTask(id string) (Task, bool)
	ListTasks() []Task
}
