package expense

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Summary aggregates the trailing-days window of expenses grouped by
// category. Days <= 0 takes the default window. The result comes from a
// single deterministic query and is safe to build a reply from even when
// every other subsystem is down.
func (s *Service) Summary(ctx context.Context, userHash string, days int) (*SummaryResult, error) {
	if days <= 0 {
		days = SummaryWindowDays
	}

	since := s.now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	totals, err := s.expenses.CategoryTotals(ctx, userHash, since)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}

	result := &SummaryResult{Days: days, Total: decimal.Zero, Totals: totals}
	for _, t := range totals {
		result.Total = result.Total.Add(t.Total)
		result.Count += t.Count
	}
	return result, nil
}
