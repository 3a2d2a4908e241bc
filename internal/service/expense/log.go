package expense

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finbrain/finbrain/internal/domain"
	"github.com/finbrain/finbrain/internal/parser"
)

// Log persists the parsed items as expense records keyed by messageID.
//
// Redelivering the same messageID is a no-op insert: the repository skips
// rows whose message id exists, so at-least-once webhook delivery never
// produces duplicate records. The returned monthly stats are read after the
// write and therefore already include it.
func (s *Service) Log(ctx context.Context, userHash string, items []domain.ParsedItem, messageID string) (*LogResult, error) {
	if len(items) == 0 {
		return nil, domain.NewValidationError("items", "nothing to log")
	}
	if messageID == "" {
		return nil, domain.NewValidationError("message_id", "idempotency key is required")
	}

	now := s.now().UTC()
	total := decimal.Zero
	expenses := make([]domain.Expense, len(items))
	for i, item := range items {
		expenses[i] = domain.Expense{
			ID:          uuid.New(),
			UserHash:    userHash,
			Amount:      item.Amount,
			Description: domain.NormalizeText(item.Description),
			Category:    parser.Categorize(item.Description),
			MessageID:   messageID,
			CreatedAt:   now,
		}
		total = total.Add(item.Amount)
	}

	// Insert and the follow-up stats read share one transaction so the
	// reply reflects a consistent monthly total.
	var (
		inserted     int
		monthlyTotal decimal.Decimal
		monthlyCount int
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var txErr error
		inserted, txErr = s.expenses.CreateBatch(ctx, expenses)
		if txErr != nil {
			return fmt.Errorf("create expenses: %w", txErr)
		}
		monthlyTotal, monthlyCount, txErr = s.expenses.MonthlyStats(ctx, userHash, s.monthStart())
		if txErr != nil {
			return fmt.Errorf("monthly stats: %w", txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &LogResult{
		Items:        len(items),
		Total:        total,
		Category:     expenses[0].Category,
		Duplicate:    inserted == 0,
		MonthlyTotal: monthlyTotal,
		MonthlyCount: monthlyCount,
	}

	s.log.InfoContext(ctx, "expenses logged",
		slog.String("user_hash", userHash),
		slog.Int("items", result.Items),
		slog.String("total", total.String()),
		slog.Bool("duplicate", result.Duplicate),
	)

	return result, nil
}
