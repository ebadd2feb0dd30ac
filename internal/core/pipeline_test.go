package core

import (
	"context"
	"testing"
	"time"

	"realtycore/internal/infra/persistence/memory"
	"realtycore/pkg/domain"
)

func fixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

func TestMoveDealChangesStage(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	deal, err := svc.CreateDeal(ctx, Deal{Title: "Oak St", Value: 100})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if deal.Stage != "lead" {
		t.Fatalf("expected initial stage lead, got %s", deal.Stage)
	}

	moved, err := svc.MoveDeal(ctx, deal.ID, "offer")
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if !moved {
		t.Fatalf("expected move to report true")
	}
	got, err := svc.GetDeal(ctx, deal.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Stage != "offer" {
		t.Fatalf("expected stage offer, got %s", got.Stage)
	}
	if got.ClosedAt != nil {
		t.Fatalf("non-terminal move must not stamp closedAt")
	}
}

func TestMoveDealSelfDropIsSilentNoOp(t *testing.T) {
	notifier := NewChannelNotifier(16)
	svc := newTestService(t, WithNotifier(notifier))
	ctx := context.Background()

	deal, err := svc.CreateDeal(ctx, Deal{Title: "Oak St"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	<-notifier.Events() // drain create event

	moved, err := svc.MoveDeal(ctx, deal.ID, deal.Stage)
	if err != nil {
		t.Fatalf("self drop errored: %v", err)
	}
	if moved {
		t.Fatalf("self drop reported a move")
	}
	select {
	case ev := <-notifier.Events():
		t.Fatalf("self drop emitted event %+v", ev)
	default:
	}
	got, _ := svc.GetDeal(ctx, deal.ID)
	if got.Stage != deal.Stage || got.ClosedAt != nil {
		t.Fatalf("self drop changed the deal: %+v", got)
	}
}

func TestMoveDealMissingDealIsNoOp(t *testing.T) {
	svc := newTestService(t)
	moved, err := svc.MoveDeal(context.Background(), "vanished", "offer")
	if err != nil {
		t.Fatalf("expected silent no-op, got %v", err)
	}
	if moved {
		t.Fatalf("missing deal reported a move")
	}
}

func TestMoveDealTerminalStampsClosedAt(t *testing.T) {
	closeTime := time.Date(2026, 7, 1, 15, 0, 0, 0, time.UTC)
	svc := newTestService(t, WithClock(fixedClock(closeTime)))
	ctx := context.Background()

	deal, err := svc.CreateDeal(ctx, Deal{Title: "Oak St", Value: 100})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.MoveDeal(ctx, deal.ID, "closed"); err != nil {
		t.Fatalf("move: %v", err)
	}

	got, _ := svc.GetDeal(ctx, deal.ID)
	if got.ClosedAt == nil {
		t.Fatalf("terminal move must stamp closedAt")
	}
	if !got.ClosedAt.Equal(closeTime) {
		t.Fatalf("expected closedAt %s, got %s", closeTime, got.ClosedAt)
	}
	if got.ClosedAt.Before(got.CreatedAt) {
		t.Fatalf("closedAt %s precedes createdAt %s", got.ClosedAt, got.CreatedAt)
	}
}

func TestMoveDealClockLaggingWallTime(t *testing.T) {
	past := time.Now().UTC().Add(-48 * time.Hour).Truncate(time.Second)
	svc := newTestService(t, WithClock(fixedClock(past)))
	ctx := context.Background()

	deal, err := svc.CreateDeal(ctx, Deal{Title: "Oak St", Value: 100})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !deal.CreatedAt.Equal(past) {
		t.Fatalf("expected createdAt from injected clock, got %s", deal.CreatedAt)
	}
	if _, err := svc.MoveDeal(ctx, deal.ID, "closed"); err != nil {
		t.Fatalf("move: %v", err)
	}

	got, _ := svc.GetDeal(ctx, deal.ID)
	if got.ClosedAt == nil || !got.ClosedAt.Equal(past) {
		t.Fatalf("expected closedAt %s, got %v", past, got.ClosedAt)
	}
	if got.ClosedAt.Before(got.CreatedAt) {
		t.Fatalf("closedAt %s precedes createdAt %s", got.ClosedAt, got.CreatedAt)
	}
}

func TestMoveDealReopenClearsClosedAt(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	deal, err := svc.CreateDeal(ctx, Deal{Title: "Oak St"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.MoveDeal(ctx, deal.ID, "closed"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := svc.MoveDeal(ctx, deal.ID, "contract"); err != nil {
		t.Fatalf("reopen: %v", err)
	}

	got, _ := svc.GetDeal(ctx, deal.ID)
	if got.Stage != "contract" {
		t.Fatalf("expected stage contract, got %s", got.Stage)
	}
	if got.ClosedAt != nil {
		t.Fatalf("reopen must clear closedAt")
	}
}

func TestMoveDealUnknownStageLeavesDealUnchanged(t *testing.T) {
	notifier := NewChannelNotifier(16)
	svc := newTestService(t, WithNotifier(notifier))
	ctx := context.Background()

	deal, err := svc.CreateDeal(ctx, Deal{Title: "Oak St"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	<-notifier.Events()

	moved, err := svc.MoveDeal(ctx, deal.ID, "archived")
	if err == nil {
		t.Fatalf("expected rule violation for unknown stage")
	}
	if moved {
		t.Fatalf("failed move reported true")
	}
	ev := <-notifier.Events()
	if ev.OK || ev.Message != "failed to move deal" {
		t.Fatalf("expected failure event, got %+v", ev)
	}

	got, _ := svc.GetDeal(ctx, deal.ID)
	if got.Stage != deal.Stage {
		t.Fatalf("failed move changed visible stage to %s", got.Stage)
	}
}

func TestDealsByStageGroupsInCreationOrder(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, _ := svc.CreateDeal(ctx, Deal{Title: "first"})
	second, _ := svc.CreateDeal(ctx, Deal{Title: "second"})
	third, _ := svc.CreateDeal(ctx, Deal{Title: "third"})
	if _, err := svc.MoveDeal(ctx, second.ID, "offer"); err != nil {
		t.Fatalf("move: %v", err)
	}

	grouped, err := svc.DealsByStage(ctx)
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	leads := grouped["lead"]
	if len(leads) != 2 || leads[0].ID != first.ID || leads[1].ID != third.ID {
		t.Fatalf("lead column wrong: %+v", leads)
	}
	if len(grouped["offer"]) != 1 {
		t.Fatalf("offer column wrong: %+v", grouped["offer"])
	}

	counts, err := svc.StageCounts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts["lead"] != 2 || counts["offer"] != 1 || counts["closed"] != 0 {
		t.Fatalf("stage counts wrong: %+v", counts)
	}
}

func TestLegacyPipelineService(t *testing.T) {
	engine := domain.NewRulesEngine()
	engine.Register(StageTransitionRule(domain.LegacyPipeline()))
	store := memory.NewStoreWithPipeline(engine, domain.LegacyPipeline())
	svc := NewService(store, WithPipeline(domain.LegacyPipeline()))
	ctx := context.Background()

	deal, err := svc.CreateDeal(ctx, Deal{Title: "Oak St"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if deal.Stage != "lead" {
		t.Fatalf("expected lead, got %s", deal.Stage)
	}
	if _, err := svc.MoveDeal(ctx, deal.ID, "negotiation"); err != nil {
		t.Fatalf("move: %v", err)
	}
	got, _ := svc.GetDeal(ctx, deal.ID)
	if got.Stage != "negotiation" {
		t.Fatalf("expected negotiation, got %s", got.Stage)
	}
}
