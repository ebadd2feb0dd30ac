package domain

import "time"

// Patch types carry partial updates: a nil field preserves the stored value,
// a non-nil field overwrites it. Apply merges the patch into a record
// in place; the store's transaction layer handles cloning and timestamps.

// ContactPatch is a partial update for a Contact.
type ContactPatch struct {
	Name        *string            `json:"name,omitempty"`
	Email       *string            `json:"email,omitempty"`
	Phone       *string            `json:"phone,omitempty"`
	Type        *ContactType       `json:"type,omitempty"`
	Notes       *string            `json:"notes,omitempty"`
	Preferences *map[string]string `json:"preferences,omitempty"`
	LastContact *time.Time         `json:"last_contact,omitempty"`
}

// Apply merges set fields over the contact.
func (p ContactPatch) Apply(c *Contact) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
	if p.Preferences != nil {
		c.Preferences = cloneStringMap(*p.Preferences)
	}
	if p.LastContact != nil {
		c.LastContact = *p.LastContact
	}
}

// PropertyPatch is a partial update for a Property.
type PropertyPatch struct {
	Address     *string         `json:"address,omitempty"`
	Price       *float64        `json:"price,omitempty"`
	Bedrooms    *int            `json:"bedrooms,omitempty"`
	Bathrooms   *int            `json:"bathrooms,omitempty"`
	Sqft        *int            `json:"sqft,omitempty"`
	Type        *PropertyType   `json:"type,omitempty"`
	Status      *PropertyStatus `json:"status,omitempty"`
	Description *string         `json:"description,omitempty"`
	Images      *[]string       `json:"images,omitempty"`
	Features    *[]string       `json:"features,omitempty"`
}

// Apply merges set fields over the property.
func (p PropertyPatch) Apply(pr *Property) {
	if p.Address != nil {
		pr.Address = *p.Address
	}
	if p.Price != nil {
		pr.Price = *p.Price
	}
	if p.Bedrooms != nil {
		pr.Bedrooms = *p.Bedrooms
	}
	if p.Bathrooms != nil {
		pr.Bathrooms = *p.Bathrooms
	}
	if p.Sqft != nil {
		pr.Sqft = *p.Sqft
	}
	if p.Type != nil {
		pr.Type = *p.Type
	}
	if p.Status != nil {
		pr.Status = *p.Status
	}
	if p.Description != nil {
		pr.Description = *p.Description
	}
	if p.Images != nil {
		pr.Images = append([]string(nil), *p.Images...)
	}
	if p.Features != nil {
		pr.Features = append([]string(nil), *p.Features...)
	}
}

// DealPatch is a partial update for a Deal. Stage changes belong to the
// pipeline board, which stamps ClosedAt alongside terminal transitions.
type DealPatch struct {
	Title             *string     `json:"title,omitempty"`
	Value             *float64    `json:"value,omitempty"`
	Client            *string     `json:"client,omitempty"`
	Property          *string     `json:"property,omitempty"`
	Description       *string     `json:"description,omitempty"`
	ExpectedCloseDate **time.Time `json:"expected_close_date,omitempty"`
	Stage             *DealStage  `json:"stage,omitempty"`
	Commission        *float64    `json:"commission,omitempty"`
	ClosedAt          **time.Time `json:"closed_at,omitempty"`
}

// Apply merges set fields over the deal.
func (p DealPatch) Apply(d *Deal) {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Value != nil {
		d.Value = *p.Value
	}
	if p.Client != nil {
		d.Client = *p.Client
	}
	if p.Property != nil {
		d.Property = *p.Property
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.ExpectedCloseDate != nil {
		d.ExpectedCloseDate = cloneTimePtr(*p.ExpectedCloseDate)
	}
	if p.Stage != nil {
		d.Stage = *p.Stage
	}
	if p.Commission != nil {
		d.Commission = *p.Commission
	}
	if p.ClosedAt != nil {
		d.ClosedAt = cloneTimePtr(*p.ClosedAt)
	}
}

// TaskPatch is a partial update for a Task.
type TaskPatch struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	Status      *TaskStatus   `json:"status,omitempty"`
	Category    *string       `json:"category,omitempty"`
	DealID      **string      `json:"deal_id,omitempty"`
	ContactID   **string      `json:"contact_id,omitempty"`
}

// Apply merges set fields over the task.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.DealID != nil {
		t.DealID = cloneStringPtr(*p.DealID)
	}
	if p.ContactID != nil {
		t.ContactID = cloneStringPtr(*p.ContactID)
	}
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

func cloneStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
