package core

import (
	"context"
	"reflect"
	"testing"
	"time"

	"realtycore/pkg/domain"
)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	return NewInMemoryService(NewDefaultRulesEngine(), opts...)
}

func TestContactLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateContact(ctx, Contact{Name: "Ana Torres", Email: "ana@example.com", Phone: "555-0101", Type: domain.ContactBuyer})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected assigned id")
	}

	got, err := svc.GetContact(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Ana Torres" {
		t.Fatalf("unexpected contact: %+v", got)
	}

	notes := "prefers morning showings"
	updated, err := svc.UpdateContact(ctx, created.ID, ContactPatch{Notes: &notes})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Notes != notes || updated.Name != "Ana Torres" {
		t.Fatalf("patch merge wrong: %+v", updated)
	}

	removed, err := svc.DeleteContact(ctx, created.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed.ID != created.ID {
		t.Fatalf("delete returned wrong record")
	}

	if _, err := svc.GetContact(ctx, created.ID); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}
}

func TestEmptyPatchIsNoOp(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, Task{Title: "Call inspector", DueDate: time.Now().UTC()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	updated, err := svc.UpdateTask(ctx, created.ID, TaskPatch{})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !reflect.DeepEqual(created, updated) {
		t.Fatalf("empty patch changed record:\n before %+v\n after  %+v", created, updated)
	}
}

func TestMutationEvents(t *testing.T) {
	notifier := NewChannelNotifier(16)
	svc := newTestService(t, WithNotifier(notifier))
	ctx := context.Background()

	created, err := svc.CreateDeal(ctx, Deal{Title: "Oak St", Value: 100})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ev := <-notifier.Events()
	if ev.Entity != EntityDeal || ev.Action != ActionCreate || !ev.OK {
		t.Fatalf("unexpected create event: %+v", ev)
	}
	if ev.RecordID != created.ID {
		t.Fatalf("event record id mismatch")
	}
	if ev.Message != "deal created" {
		t.Fatalf("unexpected message %q", ev.Message)
	}

	if _, err := svc.UpdateDeal(ctx, "missing", DealPatch{}); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	ev = <-notifier.Events()
	if ev.OK {
		t.Fatalf("expected failure event, got %+v", ev)
	}
	if ev.Message != "failed to update deal" {
		t.Fatalf("unexpected failure message %q", ev.Message)
	}
}

func TestChannelNotifierDropsWhenFull(t *testing.T) {
	notifier := NewChannelNotifier(1)
	notifier.Notify(Event{Message: "first"})
	notifier.Notify(Event{Message: "dropped"})

	select {
	case ev := <-notifier.Events():
		if ev.Message != "first" {
			t.Fatalf("unexpected event %+v", ev)
		}
	default:
		t.Fatalf("expected buffered event")
	}
	select {
	case ev := <-notifier.Events():
		t.Fatalf("expected overflow to drop, got %+v", ev)
	default:
	}
}

func TestSimulatedLatencyHonorsCancellation(t *testing.T) {
	svc := newTestService(t, WithLatency(200*time.Millisecond, 400*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.ListContacts(ctx); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSimulatedLatencyDelaysOperations(t *testing.T) {
	svc := newTestService(t, WithLatency(20*time.Millisecond, 40*time.Millisecond))
	start := time.Now()
	if _, err := svc.ListContacts(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("expected at least 20ms of simulated latency, took %s", elapsed)
	}
}

func TestExpvarMetricsRecorder(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	svc := newTestService(t, WithMetricsRecorder(rec))
	ctx := context.Background()

	if _, err := svc.CreateContact(ctx, Contact{Name: "Ana", Email: "a@example.com", Phone: "555-0100"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.GetContact(ctx, "missing"); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}

	snap := rec.Snapshot()
	if snap.Operations["contact.create"].Successes != 1 {
		t.Fatalf("missing create success count: %+v", snap.Operations)
	}
	if snap.Operations["contact.get"].Errors != 1 {
		t.Fatalf("missing get error count: %+v", snap.Operations)
	}
}

func TestJSONTracerRecordsSpans(t *testing.T) {
	tracer := NewJSONTracer(nil)
	svc := newTestService(t, WithTracer(tracer))

	if _, err := svc.ListDeals(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}

	entries := tracer.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 span, got %d", len(entries))
	}
	if entries[0].Operation != "deal.list" || entries[0].Status != "success" {
		t.Fatalf("unexpected span: %+v", entries[0])
	}
}

func TestListOrderSurvivesServiceLayer(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		if _, err := svc.CreateDeal(ctx, Deal{Title: title, Value: 1}); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}
	deals, err := svc.ListDeals(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i, title := range titles {
		if deals[i].Title != title {
			t.Fatalf("order broken at %d: %s", i, deals[i].Title)
		}
	}
}
