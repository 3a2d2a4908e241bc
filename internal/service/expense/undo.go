package expense

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/finbrain/finbrain/internal/domain"
)

// Undo removes the user's most recently persisted expense and returns it.
// Returns domain.ErrNotFound when the user has nothing to undo.
func (s *Service) Undo(ctx context.Context, userHash string) (*domain.Expense, error) {
	removed, err := s.expenses.DeleteLatest(ctx, userHash)
	if err != nil {
		return nil, fmt.Errorf("delete latest expense: %w", err)
	}

	s.log.InfoContext(ctx, "expense undone",
		slog.String("user_hash", userHash),
		slog.String("expense_id", removed.ID.String()),
		slog.String("amount", removed.Amount.String()),
	)

	return removed, nil
}
