// Package memory provides the canonical in-memory transactional store for the
// realtycore domain. Durable backends wrap this store and persist snapshots.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"realtycore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

// state holds the four collections. Records are kept in a map keyed by id
// plus an insertion-order id list so snapshots and list reads preserve the
// order records were created in.
type state struct {
	contacts    map[string]domain.Contact
	contactIDs  []string
	properties  map[string]domain.Property
	propertyIDs []string
	deals       map[string]domain.Deal
	dealIDs     []string
	tasks       map[string]domain.Task
	taskIDs     []string
}

func newState() state {
	return state{
		contacts:   make(map[string]domain.Contact),
		properties: make(map[string]domain.Property),
		deals:      make(map[string]domain.Deal),
		tasks:      make(map[string]domain.Task),
	}
}

func (s state) clone() state {
	cloned := newState()
	for k, v := range s.contacts {
		cloned.contacts[k] = cloneContact(v)
	}
	for k, v := range s.properties {
		cloned.properties[k] = cloneProperty(v)
	}
	for k, v := range s.deals {
		cloned.deals[k] = cloneDeal(v)
	}
	for k, v := range s.tasks {
		cloned.tasks[k] = cloneTask(v)
	}
	cloned.contactIDs = append([]string(nil), s.contactIDs...)
	cloned.propertyIDs = append([]string(nil), s.propertyIDs...)
	cloned.dealIDs = append([]string(nil), s.dealIDs...)
	cloned.taskIDs = append([]string(nil), s.taskIDs...)
	return cloned
}

func cloneContact(c domain.Contact) domain.Contact {
	cp := c
	if c.Preferences != nil {
		cp.Preferences = make(map[string]string, len(c.Preferences))
		for k, v := range c.Preferences {
			cp.Preferences[k] = v
		}
	}
	return cp
}

func cloneProperty(p domain.Property) domain.Property {
	cp := p
	if p.Images != nil {
		cp.Images = append([]string(nil), p.Images...)
	}
	if p.Features != nil {
		cp.Features = append([]string(nil), p.Features...)
	}
	return cp
}

func cloneDeal(d domain.Deal) domain.Deal {
	cp := d
	if d.ExpectedCloseDate != nil {
		t := *d.ExpectedCloseDate
		cp.ExpectedCloseDate = &t
	}
	if d.ClosedAt != nil {
		t := *d.ClosedAt
		cp.ClosedAt = &t
	}
	return cp
}

func cloneTask(t domain.Task) domain.Task {
	cp := t
	if t.DealID != nil {
		id := *t.DealID
		cp.DealID = &id
	}
	if t.ContactID != nil {
		id := *t.ContactID
		cp.ContactID = &id
	}
	return cp
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// Store provides an in-memory transactional store for the core domain.
type Store struct {
	mu       sync.RWMutex
	state    state
	engine   *domain.RulesEngine
	pipeline domain.Pipeline
	nowFn    func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine
// and the default deal pipeline.
func NewStore(engine *domain.RulesEngine) *Store {
	return NewStoreWithPipeline(engine, domain.DefaultPipeline())
}

// NewStoreWithPipeline constructs a store using a custom stage vocabulary.
func NewStoreWithPipeline(engine *domain.RulesEngine, pipeline domain.Pipeline) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:    newState(),
		engine:   engine,
		pipeline: pipeline,
		nowFn:    func() time.Time { return time.Now().UTC() },
	}
}

// Pipeline returns the stage configuration deals are created against.
func (s *Store) Pipeline() domain.Pipeline {
	return s.pipeline
}

// SetNow overrides the timestamp source used for CreatedAt and other stamps
// assigned inside transactions. A nil fn restores the wall clock.
func (s *Store) SetNow(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn == nil {
		fn = func() time.Time { return time.Now().UTC() }
	}
	s.nowFn = fn
}

func (s *Store) newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// Transaction represents a mutation set applied to the store state.
type Transaction struct {
	store   *Store
	state   state
	changes []domain.Change
	now     time.Time
}

var _ domain.Transaction = (*Transaction)(nil)

// view exposes a read-only snapshot of a state to rules and callers.
type view struct {
	state *state
}

var _ domain.TransactionView = view{}

func (v view) ListContacts() []domain.Contact {
	out := make([]domain.Contact, 0, len(v.state.contactIDs))
	for _, id := range v.state.contactIDs {
		out = append(out, cloneContact(v.state.contacts[id]))
	}
	return out
}

func (v view) ListProperties() []domain.Property {
	out := make([]domain.Property, 0, len(v.state.propertyIDs))
	for _, id := range v.state.propertyIDs {
		out = append(out, cloneProperty(v.state.properties[id]))
	}
	return out
}

func (v view) ListDeals() []domain.Deal {
	out := make([]domain.Deal, 0, len(v.state.dealIDs))
	for _, id := range v.state.dealIDs {
		out = append(out, cloneDeal(v.state.deals[id]))
	}
	return out
}

func (v view) ListTasks() []domain.Task {
	out := make([]domain.Task, 0, len(v.state.taskIDs))
	for _, id := range v.state.taskIDs {
		out = append(out, cloneTask(v.state.tasks[id]))
	}
	return out
}

func (v view) FindContact(id string) (domain.Contact, bool) {
	c, ok := v.state.contacts[id]
	if !ok {
		return domain.Contact{}, false
	}
	return cloneContact(c), true
}

func (v view) FindProperty(id string) (domain.Property, bool) {
	p, ok := v.state.properties[id]
	if !ok {
		return domain.Property{}, false
	}
	return cloneProperty(p), true
}

func (v view) FindDeal(id string) (domain.Deal, bool) {
	d, ok := v.state.deals[id]
	if !ok {
		return domain.Deal{}, false
	}
	return cloneDeal(d), true
}

func (v view) FindTask(id string) (domain.Task, bool) {
	t, ok := v.state.tasks[id]
	if !ok {
		return domain.Task{}, false
	}
	return cloneTask(t), true
}

// RunInTransaction executes fn within a transactional copy of the store state.
// Rules are evaluated against the candidate state; blocking violations abort
// the commit and the prior state remains visible.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return domain.Result{}, err
	}

	var result domain.Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, view{state: &tx.state}, tx.changes)
		if err != nil {
			return domain.Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(ctx context.Context, fn func(domain.TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(view{state: &snapshot})
}

// Snapshot exposes the transactional state to rules and service helpers.
func (tx *Transaction) Snapshot() domain.TransactionView {
	return view{state: &tx.state}
}

func (tx *Transaction) recordChange(change domain.Change) {
	tx.changes = append(tx.changes, change)
}

// CreateContact stores a new contact within the transaction.
func (tx *Transaction) CreateContact(c domain.Contact) (domain.Contact, error) {
	if c.ID == "" {
		c.ID = tx.store.newID()
	}
	if _, exists := tx.state.contacts[c.ID]; exists {
		return domain.Contact{}, duplicateErr(domain.EntityContact, c.ID)
	}
	c.CreatedAt = tx.now
	if c.LastContact.IsZero() {
		c.LastContact = tx.now
	}
	tx.state.contacts[c.ID] = cloneContact(c)
	tx.state.contactIDs = append(tx.state.contactIDs, c.ID)
	tx.recordChange(domain.Change{Entity: domain.EntityContact, Action: domain.ActionCreate, After: cloneContact(c)})
	return cloneContact(c), nil
}

// UpdateContact mutates a contact using the provided mutator function.
func (tx *Transaction) UpdateContact(id string, mutator func(*domain.Contact) error) (domain.Contact, error) {
	current, ok := tx.state.contacts[id]
	if !ok {
		return domain.Contact{}, domain.NotFoundError{Entity: domain.EntityContact, ID: id}
	}
	before := cloneContact(current)
	if err := mutator(&current); err != nil {
		return domain.Contact{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	tx.state.contacts[id] = cloneContact(current)
	tx.recordChange(domain.Change{Entity: domain.EntityContact, Action: domain.ActionUpdate, Before: before, After: cloneContact(current)})
	return cloneContact(current), nil
}

// DeleteContact removes a contact and returns the removed record.
func (tx *Transaction) DeleteContact(id string) (domain.Contact, error) {
	current, ok := tx.state.contacts[id]
	if !ok {
		return domain.Contact{}, domain.NotFoundError{Entity: domain.EntityContact, ID: id}
	}
	delete(tx.state.contacts, id)
	tx.state.contactIDs = removeID(tx.state.contactIDs, id)
	tx.recordChange(domain.Change{Entity: domain.EntityContact, Action: domain.ActionDelete, Before: cloneContact(current)})
	return cloneContact(current), nil
}

// CreateProperty stores a new property listing.
func (tx *Transaction) CreateProperty(p domain.Property) (domain.Property, error) {
	if p.ID == "" {
		p.ID = tx.store.newID()
	}
	if _, exists := tx.state.properties[p.ID]; exists {
		return domain.Property{}, duplicateErr(domain.EntityProperty, p.ID)
	}
	p.CreatedAt = tx.now
	if p.Status == "" {
		p.Status = domain.PropertyActive
	}
	tx.state.properties[p.ID] = cloneProperty(p)
	tx.state.propertyIDs = append(tx.state.propertyIDs, p.ID)
	tx.recordChange(domain.Change{Entity: domain.EntityProperty, Action: domain.ActionCreate, After: cloneProperty(p)})
	return cloneProperty(p), nil
}

// UpdateProperty mutates an existing property listing.
func (tx *Transaction) UpdateProperty(id string, mutator func(*domain.Property) error) (domain.Property, error) {
	current, ok := tx.state.properties[id]
	if !ok {
		return domain.Property{}, domain.NotFoundError{Entity: domain.EntityProperty, ID: id}
	}
	before := cloneProperty(current)
	if err := mutator(&current); err != nil {
		return domain.Property{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	tx.state.properties[id] = cloneProperty(current)
	tx.recordChange(domain.Change{Entity: domain.EntityProperty, Action: domain.ActionUpdate, Before: before, After: cloneProperty(current)})
	return cloneProperty(current), nil
}

// DeleteProperty removes a property listing and returns the removed record.
func (tx *Transaction) DeleteProperty(id string) (domain.Property, error) {
	current, ok := tx.state.properties[id]
	if !ok {
		return domain.Property{}, domain.NotFoundError{Entity: domain.EntityProperty, ID: id}
	}
	delete(tx.state.properties, id)
	tx.state.propertyIDs = removeID(tx.state.propertyIDs, id)
	tx.recordChange(domain.Change{Entity: domain.EntityProperty, Action: domain.ActionDelete, Before: cloneProperty(current)})
	return cloneProperty(current), nil
}

// CreateDeal stores a new deal. Deals default to the pipeline's initial stage
// and, when value is set, a 3% commission.
func (tx *Transaction) CreateDeal(d domain.Deal) (domain.Deal, error) {
	if d.ID == "" {
		d.ID = tx.store.newID()
	}
	if _, exists := tx.state.deals[d.ID]; exists {
		return domain.Deal{}, duplicateErr(domain.EntityDeal, d.ID)
	}
	d.CreatedAt = tx.now
	if d.Stage == "" {
		d.Stage = tx.store.pipeline.Initial()
	}
	if d.Commission == 0 && d.Value > 0 {
		d.Commission = d.Value * 0.03
	}
	tx.state.deals[d.ID] = cloneDeal(d)
	tx.state.dealIDs = append(tx.state.dealIDs, d.ID)
	tx.recordChange(domain.Change{Entity: domain.EntityDeal, Action: domain.ActionCreate, After: cloneDeal(d)})
	return cloneDeal(d), nil
}

// UpdateDeal mutates an existing deal.
func (tx *Transaction) UpdateDeal(id string, mutator func(*domain.Deal) error) (domain.Deal, error) {
	current, ok := tx.state.deals[id]
	if !ok {
		return domain.Deal{}, domain.NotFoundError{Entity: domain.EntityDeal, ID: id}
	}
	before := cloneDeal(current)
	if err := mutator(&current); err != nil {
		return domain.Deal{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	tx.state.deals[id] = cloneDeal(current)
	tx.recordChange(domain.Change{Entity: domain.EntityDeal, Action: domain.ActionUpdate, Before: before, After: cloneDeal(current)})
	return cloneDeal(current), nil
}

// DeleteDeal removes a deal and returns the removed record.
func (tx *Transaction) DeleteDeal(id string) (domain.Deal, error) {
	current, ok := tx.state.deals[id]
	if !ok {
		return domain.Deal{}, domain.NotFoundError{Entity: domain.EntityDeal, ID: id}
	}
	delete(tx.state.deals, id)
	tx.state.dealIDs = removeID(tx.state.dealIDs, id)
	tx.recordChange(domain.Change{Entity: domain.EntityDeal, Action: domain.ActionDelete, Before: cloneDeal(current)})
	return cloneDeal(current), nil
}

// CreateTask stores a new task. Tasks default to pending status.
func (tx *Transaction) CreateTask(t domain.Task) (domain.Task, error) {
	if t.ID == "" {
		t.ID = tx.store.newID()
	}
	if _, exists := tx.state.tasks[t.ID]; exists {
		return domain.Task{}, duplicateErr(domain.EntityTask, t.ID)
	}
	t.CreatedAt = tx.now
	if t.Status == "" {
		t.Status = domain.TaskPending
	}
	if t.Priority == "" {
		t.Priority = domain.PriorityMedium
	}
	tx.state.tasks[t.ID] = cloneTask(t)
	tx.state.taskIDs = append(tx.state.taskIDs, t.ID)
	tx.recordChange(domain.Change{Entity: domain.EntityTask, Action: domain.ActionCreate, After: cloneTask(t)})
	return cloneTask(t), nil
}

// UpdateTask mutates an existing task.
func (tx *Transaction) UpdateTask(id string, mutator func(*domain.Task) error) (domain.Task, error) {
	current, ok := tx.state.tasks[id]
	if !ok {
		return domain.Task{}, domain.NotFoundError{Entity: domain.EntityTask, ID: id}
	}
	before := cloneTask(current)
	if err := mutator(&current); err != nil {
		return domain.Task{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	tx.state.tasks[id] = cloneTask(current)
	tx.recordChange(domain.Change{Entity: domain.EntityTask, Action: domain.ActionUpdate, Before: before, After: cloneTask(current)})
	return cloneTask(current), nil
}

// DeleteTask removes a task and returns the removed record.
func (tx *Transaction) DeleteTask(id string) (domain.Task, error) {
	current, ok := tx.state.tasks[id]
	if !ok {
		return domain.Task{}, domain.NotFoundError{Entity: domain.EntityTask, ID: id}
	}
	delete(tx.state.tasks, id)
	tx.state.taskIDs = removeID(tx.state.taskIDs, id)
	tx.recordChange(domain.Change{Entity: domain.EntityTask, Action: domain.ActionDelete, Before: cloneTask(current)})
	return cloneTask(current), nil
}

// FindDeal retrieves a deal by id from the transactional state.
func (tx *Transaction) FindDeal(id string) (domain.Deal, bool) {
	d, ok := tx.state.deals[id]
	if !ok {
		return domain.Deal{}, false
	}
	return cloneDeal(d), true
}

// FindContact retrieves a contact by id from the transactional state.
func (tx *Transaction) FindContact(id string) (domain.Contact, bool) {
	c, ok := tx.state.contacts[id]
	if !ok {
		return domain.Contact{}, false
	}
	return cloneContact(c), true
}

func duplicateErr(entity domain.EntityType, id string) error {
	return &duplicateIDError{entity: entity, id: id}
}

type duplicateIDError struct {
	entity domain.EntityType
	id     string
}

func (e *duplicateIDError) Error() string {
	return string(e.entity) + " " + e.id + " already exists"
}

// Read helpers ---------------------------------------------------------------

// GetContact retrieves a contact by id from committed state.
func (s *Store) GetContact(id string) (domain.Contact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.contacts[id]
	if !ok {
		return domain.Contact{}, false
	}
	return cloneContact(c), true
}

// ListContacts returns all contacts in creation order.
func (s *Store) ListContacts() []domain.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view{state: &s.state}.ListContacts()
}

// GetProperty retrieves a property by id from committed state.
func (s *Store) GetProperty(id string) (domain.Property, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.properties[id]
	if !ok {
		return domain.Property{}, false
	}
	return cloneProperty(p), true
}

// ListProperties returns all properties in creation order.
func (s *Store) ListProperties() []domain.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view{state: &s.state}.ListProperties()
}

// GetDeal retrieves a deal by id from committed state.
func (s *Store) GetDeal(id string) (domain.Deal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.state.deals[id]
	if !ok {
		return domain.Deal{}, false
	}
	return cloneDeal(d), true
}

// ListDeals returns all deals in creation order.
func (s *Store) ListDeals() []domain.Deal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view{state: &s.state}.ListDeals()
}

// GetTask retrieves a task by id from committed state.
func (s *Store) GetTask(id string) (domain.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.state.tasks[id]
	if !ok {
		return domain.Task{}, false
	}
	return cloneTask(t), true
}

// ListTasks returns all tasks in creation order.
func (s *Store) ListTasks() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view{state: &s.state}.ListTasks()
}

// Snapshot captures the full store state for external persistence. Buckets
// are ordered by creation time so hydration preserves relative order.
type Snapshot struct {
	Contacts   []domain.Contact  `json:"contacts"`
	Properties []domain.Property `json:"properties"`
	Deals      []domain.Deal     `json:"deals"`
	Tasks      []domain.Task     `json:"tasks"`
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := view{state: &s.state}
	return Snapshot{
		Contacts:   v.ListContacts(),
		Properties: v.ListProperties(),
		Deals:      v.ListDeals(),
		Tasks:      v.ListTasks(),
	}
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := newState()
	for _, c := range snapshot.Contacts {
		next.contacts[c.ID] = cloneContact(c)
		next.contactIDs = append(next.contactIDs, c.ID)
	}
	for _, p := range snapshot.Properties {
		next.properties[p.ID] = cloneProperty(p)
		next.propertyIDs = append(next.propertyIDs, p.ID)
	}
	for _, d := range snapshot.Deals {
		next.deals[d.ID] = cloneDeal(d)
		next.dealIDs = append(next.dealIDs, d.ID)
	}
	for _, t := range snapshot.Tasks {
		next.tasks[t.ID] = cloneTask(t)
		next.taskIDs = append(next.taskIDs, t.ID)
	}
	s.state = next
}
