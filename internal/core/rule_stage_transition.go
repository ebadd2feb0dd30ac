package core

import (
	"context"
	"fmt"

	"realtycore/pkg/domain"
)

// StageTransitionRule validates deal stages against the configured pipeline.
// The transition relation is a wildcard (any stage to any other stage), so the
// rule only blocks stages outside the vocabulary and warns when a deal lands
// in the terminal stage without a close timestamp.
func StageTransitionRule(pipeline domain.Pipeline) domain.Rule {
	return stageTransitionRule{pipeline: pipeline}
}

type stageTransitionRule struct {
	pipeline domain.Pipeline
}

func (stageTransitionRule) Name() string { return "stage_transition" }

func (r stageTransitionRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntityDeal || change.Action == domain.ActionDelete {
			continue
		}
		deal, ok := change.After.(domain.Deal)
		if !ok {
			continue
		}
		if !r.pipeline.Contains(deal.Stage) {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "stage_transition",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("deal %s is set to unknown stage %s", deal.ID, deal.Stage),
				Entity:   domain.EntityDeal,
				EntityID: deal.ID,
			})
			continue
		}
		if r.pipeline.IsTerminal(deal.Stage) && deal.ClosedAt == nil {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "stage_transition",
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("deal %s reached terminal stage %s without a close timestamp", deal.ID, deal.Stage),
				Entity:   domain.EntityDeal,
				EntityID: deal.ID,
			})
		}
	}
	return res, nil
}
