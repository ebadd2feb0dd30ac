package domain

import "testing"

func TestDefaultPipelineShape(t *testing.T) {
	p := DefaultPipeline()
	stages := p.Stages()
	want := []DealStage{"lead", "showing", "offer", "contract", "closed"}
	if len(stages) != len(want) {
		t.Fatalf("expected %d stages, got %d", len(want), len(stages))
	}
	for i, stage := range want {
		if stages[i] != stage {
			t.Fatalf("stage %d: expected %s got %s", i, stage, stages[i])
		}
	}
	if p.Initial() != "lead" {
		t.Fatalf("expected initial stage lead, got %s", p.Initial())
	}
	if p.Terminal() != "closed" {
		t.Fatalf("expected terminal stage closed, got %s", p.Terminal())
	}
}

func TestPipelineTransitions(t *testing.T) {
	p := DefaultPipeline()

	// Any stage may jump to any other stage, including backwards.
	if !p.CanTransition("lead", "closed") {
		t.Fatalf("expected lead -> closed to be allowed")
	}
	if !p.CanTransition("closed", "lead") {
		t.Fatalf("expected closed -> lead to be allowed")
	}
	if !p.CanTransition("offer", "showing") {
		t.Fatalf("expected offer -> showing to be allowed")
	}

	// Self-transitions are not transitions.
	if p.CanTransition("offer", "offer") {
		t.Fatalf("expected self transition to be rejected")
	}

	// Stages outside the vocabulary never transition.
	if p.CanTransition("lead", "archived") {
		t.Fatalf("expected unknown target to be rejected")
	}
	if p.CanTransition("archived", "lead") {
		t.Fatalf("expected unknown source to be rejected")
	}
}

func TestPipelineTerminal(t *testing.T) {
	p := DefaultPipeline()
	if !p.IsTerminal("closed") {
		t.Fatalf("expected closed to be terminal")
	}
	if p.IsTerminal("contract") {
		t.Fatalf("expected contract to be non-terminal")
	}
}

func TestLegacyPipeline(t *testing.T) {
	p := LegacyPipeline()
	for _, stage := range []DealStage{"lead", "qualified", "proposal", "negotiation", "closed"} {
		if !p.Contains(stage) {
			t.Fatalf("expected legacy pipeline to contain %s", stage)
		}
	}
	if p.Contains("showing") {
		t.Fatalf("legacy pipeline should not contain showing")
	}
}

func TestNewPipelinePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for duplicate stage")
		}
	}()
	NewPipeline("lead", "lead", "closed")
}
