package domain

// Pipeline describes the ordered deal stages and the terminal stage after
// which a deal is considered closed. The stage vocabulary is configuration:
// any stage may transition to any other stage directly, so adding a stage
// never requires a code change.
type Pipeline struct {
	stages   []DealStage
	terminal DealStage
}

// NewPipeline builds a pipeline from an ordered stage list. The last stage is
// terminal. Panics on fewer than two stages or duplicate names; pipelines are
// static configuration, so a bad definition is a programming error.
func NewPipeline(stages ...DealStage) Pipeline {
	if len(stages) < 2 {
		panic("pipeline requires at least an initial and a terminal stage")
	}
	seen := make(map[DealStage]struct{}, len(stages))
	for _, s := range stages {
		if _, dup := seen[s]; dup {
			panic("duplicate pipeline stage " + string(s))
		}
		seen[s] = struct{}{}
	}
	return Pipeline{
		stages:   append([]DealStage(nil), stages...),
		terminal: stages[len(stages)-1],
	}
}

// DefaultPipeline returns the canonical stage set.
func DefaultPipeline() Pipeline {
	return NewPipeline("lead", "showing", "offer", "contract", "closed")
}

// LegacyPipeline returns the alternate stage vocabulary that shipped alongside
// the canonical one.
func LegacyPipeline() Pipeline {
	return NewPipeline("lead", "qualified", "proposal", "negotiation", "closed")
}

// Stages returns the ordered stage list as a copy.
func (p Pipeline) Stages() []DealStage {
	return append([]DealStage(nil), p.stages...)
}

// Initial returns the stage assigned to newly created deals.
func (p Pipeline) Initial() DealStage {
	return p.stages[0]
}

// Terminal returns the closed stage.
func (p Pipeline) Terminal() DealStage {
	return p.terminal
}

// Contains reports whether stage is part of the pipeline.
func (p Pipeline) Contains(stage DealStage) bool {
	for _, s := range p.stages {
		if s == stage {
			return true
		}
	}
	return false
}

// IsTerminal reports whether stage closes a deal.
func (p Pipeline) IsTerminal(stage DealStage) bool {
	return stage == p.terminal
}

// CanTransition reports whether a deal may move from one stage to another.
// The relation is a wildcard: every pair of known stages is legal except a
// self-transition, which callers treat as a silent no-op.
func (p Pipeline) CanTransition(from, to DealStage) bool {
	if from == to {
		return false
	}
	return p.Contains(from) && p.Contains(to)
}
