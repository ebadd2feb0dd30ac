// Package domain defines the persistent entities, value types, and rule
// evaluation primitives used by realtycore.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityContact identifies a contact record.
	EntityContact EntityType = "contact"
	// EntityProperty identifies a property listing record.
	EntityProperty EntityType = "property"
	// EntityDeal identifies a deal record.
	EntityDeal EntityType = "deal"
	// EntityTask identifies a task record.
	EntityTask EntityType = "task"
)

// ContactType classifies a contact's role in a transaction.
type ContactType string

// Canonical contact types.
const (
	ContactBuyer    ContactType = "buyer"
	ContactSeller   ContactType = "seller"
	ContactInvestor ContactType = "investor"
)

// PropertyType enumerates listing categories.
type PropertyType string

// Canonical property types.
const (
	PropertyHouse     PropertyType = "house"
	PropertyCondo     PropertyType = "condo"
	PropertyTownhouse PropertyType = "townhouse"
	PropertyLand      PropertyType = "land"
)

// PropertyStatus enumerates listing market states.
type PropertyStatus string

// Canonical property statuses.
const (
	PropertyActive    PropertyStatus = "active"
	PropertyPending   PropertyStatus = "pending"
	PropertySold      PropertyStatus = "sold"
	PropertyWithdrawn PropertyStatus = "withdrawn"
)

// DealStage names a step in a deal's progression toward close. The valid set
// is configuration, not protocol; see Pipeline.
type DealStage string

// TaskPriority ranks task urgency.
type TaskPriority string

// Canonical task priorities, ordered high before medium before low.
const (
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

// TaskStatus enumerates task completion states.
type TaskStatus string

// Canonical task statuses.
const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Contact represents a person tracked in the directory.
type Contact struct {
	Base
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone"`
	Type        ContactType       `json:"type"`
	Notes       string            `json:"notes,omitempty"`
	Preferences map[string]string `json:"preferences,omitempty"`
	LastContact time.Time         `json:"last_contact"`
}

// Property represents a listing.
type Property struct {
	Base
	Address     string         `json:"address"`
	Price       float64        `json:"price"`
	Bedrooms    int            `json:"bedrooms"`
	Bathrooms   int            `json:"bathrooms"`
	Sqft        int            `json:"sqft"`
	Type        PropertyType   `json:"type"`
	Status      PropertyStatus `json:"status"`
	Description string         `json:"description,omitempty"`
	Images      []string       `json:"images,omitempty"`
	Features    []string       `json:"features,omitempty"`
}

// Deal represents a transaction moving through the pipeline.
type Deal struct {
	Base
	Title             string     `json:"title"`
	Value             float64    `json:"value"`
	Client            string     `json:"client,omitempty"`
	Property          string     `json:"property,omitempty"`
	Description       string     `json:"description,omitempty"`
	ExpectedCloseDate *time.Time `json:"expected_close_date,omitempty"`
	Stage             DealStage  `json:"stage"`
	Commission        float64    `json:"commission,omitempty"`
	ClosedAt          *time.Time `json:"closed_at,omitempty"`
}

// Task represents a unit of follow-up work, optionally tied to a deal or contact.
type Task struct {
	Base
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	DueDate     time.Time    `json:"due_date"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	Category    string       `json:"category,omitempty"`
	DealID      *string      `json:"deal_id,omitempty"`
	ContactID   *string      `json:"contact_id,omitempty"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations captured in the audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}

// NotFoundError is returned when an operation references a nonexistent id.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
