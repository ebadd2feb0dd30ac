package core

import (
	"context"
	"math/rand/v2"
	"time"

	"realtycore/internal/blob"
	"realtycore/internal/infra/persistence/memory"
	"realtycore/pkg/domain"
)

// Service exposes the CRUD contract for the four CRM collections. Every
// operation is context-aware, runs through the store's transactional scope,
// and surfaces its outcome to the configured notifier.
type Service struct {
	store      domain.PersistentStore
	pipeline   domain.Pipeline
	clock      Clock
	logger     Logger
	metrics    MetricsRecorder
	tracer     Tracer
	notifier   Notifier
	blobs      blob.Store
	latencyMin time.Duration
	latencyMax time.Duration
}

// Option customises service construction.
type Option func(*Service)

// nowSetter is implemented by stores whose transaction timestamps can be
// redirected to an injected time source.
type nowSetter interface {
	SetNow(func() time.Time)
}

// WithClock overrides the clock used for timestamps. Stores that support it
// stamp CreatedAt from the same clock, so a record can never be created after
// it was closed.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock == nil {
			return
		}
		s.clock = clock
		if src, ok := s.store.(nowSetter); ok {
			src.SetNow(clock.Now)
		}
	}
}

// WithLogger installs a diagnostics logger.
func WithLogger(logger Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsRecorder installs a metrics recorder.
func WithMetricsRecorder(rec MetricsRecorder) Option {
	return func(s *Service) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// WithTracer installs a tracer.
func WithTracer(tracer Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithNotifier installs the notification sink for mutation events.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithPipeline overrides the deal stage vocabulary.
func WithPipeline(p domain.Pipeline) Option {
	return func(s *Service) {
		s.pipeline = p
	}
}

// WithLatency makes each operation pause for a random duration in [min, max]
// before touching the store, modelling remote-backend round trips. Zero
// disables the pause.
func WithLatency(min, max time.Duration) Option {
	return func(s *Service) {
		if max < min {
			min, max = max, min
		}
		s.latencyMin = min
		s.latencyMax = max
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:    store,
		pipeline: domain.DefaultPipeline(),
		clock:    systemClock(),
		logger:   noopLogger{},
		metrics:  noopMetrics{},
		tracer:   noopTracer{},
		notifier: noopNotifier{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service and in-memory store with the given
// rules engine.
func NewInMemoryService(engine *RulesEngine, opts ...Option) *Service {
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}

// Pipeline returns the configured deal stage vocabulary.
func (s *Service) Pipeline() domain.Pipeline {
	return s.pipeline
}

// run wraps an operation with simulated latency, tracing, metrics, and logging.
func (s *Service) run(ctx context.Context, op string, fn func(context.Context) error) error {
	if err := s.simulateLatency(ctx); err != nil {
		return err
	}
	ctx, span := s.tracer.Start(ctx, op)
	start := time.Now()
	err := fn(ctx)
	s.metrics.Observe(ctx, op, err == nil, time.Since(start))
	span.End(err)
	if err != nil {
		s.logger.Errorf("%s: %v", op, err)
	} else {
		s.logger.Debugf("%s: ok", op)
	}
	return err
}

func (s *Service) simulateLatency(ctx context.Context) error {
	if s.latencyMax <= 0 {
		return nil
	}
	d := s.latencyMin
	if spread := s.latencyMax - s.latencyMin; spread > 0 {
		d += time.Duration(rand.Int64N(int64(spread) + 1))
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Service) notify(entity EntityType, action Action, id string, err error, okMsg, failMsg string) {
	ev := Event{
		Entity:   entity,
		Action:   action,
		RecordID: id,
		OK:       err == nil,
		Message:  okMsg,
		At:       s.clock.Now(),
	}
	if err != nil {
		ev.Message = failMsg
	}
	s.notifier.Notify(ev)
}

// Contacts --------------------------------------------------------------------

// ListContacts returns a snapshot of all contacts in creation order.
func (s *Service) ListContacts(ctx context.Context) ([]Contact, error) {
	var out []Contact
	err := s.run(ctx, "contact.list", func(ctx context.Context) error {
		return s.store.View(ctx, func(v TransactionView) error {
			out = v.ListContacts()
			return nil
		})
	})
	return out, err
}

// GetContact retrieves a contact by id.
func (s *Service) GetContact(ctx context.Context, id string) (Contact, error) {
	var out Contact
	err := s.run(ctx, "contact.get", func(ctx context.Context) error {
		c, ok := s.store.GetContact(id)
		if !ok {
			return NotFoundError{Entity: EntityContact, ID: id}
		}
		out = c
		return nil
	})
	return out, err
}

// CreateContact persists a new contact.
func (s *Service) CreateContact(ctx context.Context, contact Contact) (Contact, error) {
	var created Contact
	err := s.run(ctx, "contact.create", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			created, err = tx.CreateContact(contact)
			return err
		})
		return err
	})
	s.notify(EntityContact, ActionCreate, created.ID, err, "contact created", "failed to create contact")
	return created, err
}

// UpdateContact merges the patch over an existing contact.
func (s *Service) UpdateContact(ctx context.Context, id string, patch ContactPatch) (Contact, error) {
	var updated Contact
	err := s.run(ctx, "contact.update", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			updated, err = tx.UpdateContact(id, func(c *Contact) error {
				patch.Apply(c)
				return nil
			})
			return err
		})
		return err
	})
	s.notify(EntityContact, ActionUpdate, id, err, "contact updated", "failed to update contact")
	return updated, err
}

// DeleteContact removes a contact and returns the removed record.
func (s *Service) DeleteContact(ctx context.Context, id string) (Contact, error) {
	var removed Contact
	err := s.run(ctx, "contact.delete", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			removed, err = tx.DeleteContact(id)
			return err
		})
		return err
	})
	s.notify(EntityContact, ActionDelete, id, err, "contact deleted", "failed to delete contact")
	return removed, err
}

// Properties ------------------------------------------------------------------

// ListProperties returns a snapshot of all properties in creation order.
func (s *Service) ListProperties(ctx context.Context) ([]Property, error) {
	var out []Property
	err := s.run(ctx, "property.list", func(ctx context.Context) error {
		return s.store.View(ctx, func(v TransactionView) error {
			out = v.ListProperties()
			return nil
		})
	})
	return out, err
}

// GetProperty retrieves a property by id.
func (s *Service) GetProperty(ctx context.Context, id string) (Property, error) {
	var out Property
	err := s.run(ctx, "property.get", func(ctx context.Context) error {
		p, ok := s.store.GetProperty(id)
		if !ok {
			return NotFoundError{Entity: EntityProperty, ID: id}
		}
		out = p
		return nil
	})
	return out, err
}

// CreateProperty persists a new property listing.
func (s *Service) CreateProperty(ctx context.Context, property Property) (Property, error) {
	var created Property
	err := s.run(ctx, "property.create", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			created, err = tx.CreateProperty(property)
			return err
		})
		return err
	})
	s.notify(EntityProperty, ActionCreate, created.ID, err, "property created", "failed to create property")
	return created, err
}

// UpdateProperty merges the patch over an existing property.
func (s *Service) UpdateProperty(ctx context.Context, id string, patch PropertyPatch) (Property, error) {
	var updated Property
	err := s.run(ctx, "property.update", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			updated, err = tx.UpdateProperty(id, func(p *Property) error {
				patch.Apply(p)
				return nil
			})
			return err
		})
		return err
	})
	s.notify(EntityProperty, ActionUpdate, id, err, "property updated", "failed to update property")
	return updated, err
}

// DeleteProperty removes a property and returns the removed record.
func (s *Service) DeleteProperty(ctx context.Context, id string) (Property, error) {
	var removed Property
	err := s.run(ctx, "property.delete", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			removed, err = tx.DeleteProperty(id)
			return err
		})
		return err
	})
	s.notify(EntityProperty, ActionDelete, id, err, "property deleted", "failed to delete property")
	return removed, err
}

// Deals -----------------------------------------------------------------------

// ListDeals returns a snapshot of all deals in creation order.
func (s *Service) ListDeals(ctx context.Context) ([]Deal, error) {
	var out []Deal
	err := s.run(ctx, "deal.list", func(ctx context.Context) error {
		return s.store.View(ctx, func(v TransactionView) error {
			out = v.ListDeals()
			return nil
		})
	})
	return out, err
}

// GetDeal retrieves a deal by id.
func (s *Service) GetDeal(ctx context.Context, id string) (Deal, error) {
	var out Deal
	err := s.run(ctx, "deal.get", func(ctx context.Context) error {
		d, ok := s.store.GetDeal(id)
		if !ok {
			return NotFoundError{Entity: EntityDeal, ID: id}
		}
		out = d
		return nil
	})
	return out, err
}

// CreateDeal persists a new deal. The store assigns the pipeline's initial
// stage and a default commission when unset.
func (s *Service) CreateDeal(ctx context.Context, deal Deal) (Deal, error) {
	var created Deal
	err := s.run(ctx, "deal.create", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			created, err = tx.CreateDeal(deal)
			return err
		})
		return err
	})
	s.notify(EntityDeal, ActionCreate, created.ID, err, "deal created", "failed to create deal")
	return created, err
}

// UpdateDeal merges the patch over an existing deal. Stage changes coming from
// the pipeline board go through MoveDeal, which stamps the close timestamp.
func (s *Service) UpdateDeal(ctx context.Context, id string, patch DealPatch) (Deal, error) {
	var updated Deal
	err := s.run(ctx, "deal.update", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			updated, err = tx.UpdateDeal(id, func(d *Deal) error {
				patch.Apply(d)
				return nil
			})
			return err
		})
		return err
	})
	s.notify(EntityDeal, ActionUpdate, id, err, "deal updated", "failed to update deal")
	return updated, err
}

// DeleteDeal removes a deal and returns the removed record.
func (s *Service) DeleteDeal(ctx context.Context, id string) (Deal, error) {
	var removed Deal
	err := s.run(ctx, "deal.delete", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			removed, err = tx.DeleteDeal(id)
			return err
		})
		return err
	})
	s.notify(EntityDeal, ActionDelete, id, err, "deal deleted", "failed to delete deal")
	return removed, err
}

// Tasks -----------------------------------------------------------------------

// ListTasks returns a snapshot of all tasks in creation order.
func (s *Service) ListTasks(ctx context.Context) ([]Task, error) {
	var out []Task
	err := s.run(ctx, "task.list", func(ctx context.Context) error {
		return s.store.View(ctx, func(v TransactionView) error {
			out = v.ListTasks()
			return nil
		})
	})
	return out, err
}

// GetTask retrieves a task by id.
func (s *Service) GetTask(ctx context.Context, id string) (Task, error) {
	var out Task
	err := s.run(ctx, "task.get", func(ctx context.Context) error {
		t, ok := s.store.GetTask(id)
		if !ok {
			return NotFoundError{Entity: EntityTask, ID: id}
		}
		out = t
		return nil
	})
	return out, err
}

// CreateTask persists a new task. The store defaults status to pending.
func (s *Service) CreateTask(ctx context.Context, task Task) (Task, error) {
	var created Task
	err := s.run(ctx, "task.create", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			created, err = tx.CreateTask(task)
			return err
		})
		return err
	})
	s.notify(EntityTask, ActionCreate, created.ID, err, "task created", "failed to create task")
	return created, err
}

// UpdateTask merges the patch over an existing task.
func (s *Service) UpdateTask(ctx context.Context, id string, patch TaskPatch) (Task, error) {
	var updated Task
	err := s.run(ctx, "task.update", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			updated, err = tx.UpdateTask(id, func(t *Task) error {
				patch.Apply(t)
				return nil
			})
			return err
		})
		return err
	})
	s.notify(EntityTask, ActionUpdate, id, err, "task updated", "failed to update task")
	return updated, err
}

// DeleteTask removes a task and returns the removed record.
func (s *Service) DeleteTask(ctx context.Context, id string) (Task, error) {
	var removed Task
	err := s.run(ctx, "task.delete", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			removed, err = tx.DeleteTask(id)
			return err
		})
		return err
	})
	s.notify(EntityTask, ActionDelete, id, err, "task deleted", "failed to delete task")
	return removed, err
}
