package core

import (
	"context"

	"realtycore/internal/dashboard"
)

// Dashboard computes the summary metrics over a single consistent snapshot of
// all four collections.
func (s *Service) Dashboard(ctx context.Context) (dashboard.Summary, error) {
	var summary dashboard.Summary
	err := s.run(ctx, "dashboard.summarize", func(ctx context.Context) error {
		return s.store.View(ctx, func(v TransactionView) error {
			summary = dashboard.Summarize(v.ListContacts(), v.ListDeals(), v.ListTasks(), s.pipeline, s.clock.Now())
			return nil
		})
	})
	return summary, err
}
