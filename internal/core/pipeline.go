package core

import (
	"context"
	"time"

	"realtycore/pkg/domain"
)

// MoveDeal transitions a deal to the target stage, the operation behind a
// board drag-and-drop. Any stage may move to any other stage. Dropping a deal
// on its current stage, or moving a deal that no longer exists, is a silent
// no-op and returns false. Moving into the terminal stage stamps the close
// timestamp. The boolean reports whether the deal actually changed stage.
func (s *Service) MoveDeal(ctx context.Context, dealID string, target DealStage) (bool, error) {
	deal, ok := s.store.GetDeal(dealID)
	if !ok {
		return false, nil
	}
	if deal.Stage == target {
		return false, nil
	}

	patch := DealPatch{Stage: &target}
	var closedAt *time.Time
	if s.pipeline.IsTerminal(target) {
		now := s.clock.Now()
		closedAt = &now
		patch.ClosedAt = &closedAt
	} else if deal.ClosedAt != nil {
		// Reopening a closed deal clears the close timestamp.
		patch.ClosedAt = &closedAt
	}

	err := s.run(ctx, "deal.move", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			_, err := tx.UpdateDeal(dealID, func(d *domain.Deal) error {
				patch.Apply(d)
				return nil
			})
			return err
		})
		return err
	})
	s.notify(EntityDeal, ActionUpdate, dealID, err, "deal moved to "+string(target), "failed to move deal")
	if err != nil {
		return false, err
	}
	return true, nil
}

// StageCounts returns the number of deals in each pipeline stage, keyed by
// stage, for board column headers.
func (s *Service) StageCounts(ctx context.Context) (map[DealStage]int, error) {
	counts := make(map[DealStage]int, len(s.pipeline.Stages()))
	for _, stage := range s.pipeline.Stages() {
		counts[stage] = 0
	}
	err := s.run(ctx, "deal.stage_counts", func(ctx context.Context) error {
		return s.store.View(ctx, func(v TransactionView) error {
			for _, deal := range v.ListDeals() {
				counts[deal.Stage]++
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// DealsByStage groups deals into board columns in creation order.
func (s *Service) DealsByStage(ctx context.Context) (map[DealStage][]Deal, error) {
	grouped := make(map[DealStage][]Deal, len(s.pipeline.Stages()))
	err := s.run(ctx, "deal.by_stage", func(ctx context.Context) error {
		return s.store.View(ctx, func(v TransactionView) error {
			for _, deal := range v.ListDeals() {
				grouped[deal.Stage] = append(grouped[deal.Stage], deal)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return grouped, nil
}
