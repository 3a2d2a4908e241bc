// Package expense is the canonical write path for expense records.
// Every persisted expense goes through this service so idempotency and
// category invariants are enforced in exactly one place.
package expense

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbrain/finbrain/internal/domain"
)

// SummaryWindowDays is the trailing window used by summaries.
const SummaryWindowDays = 7

type expenseRepo interface {
	// CreateBatch inserts expenses, skipping rows whose message id is
	// already stored. Returns the number of rows actually inserted.
	CreateBatch(ctx context.Context, expenses []domain.Expense) (int, error)
	MonthlyStats(ctx context.Context, userHash string, monthStart time.Time) (decimal.Decimal, int, error)
	CategoryTotals(ctx context.Context, userHash string, since time.Time) ([]domain.CategoryTotal, error)
	DeleteLatest(ctx context.Context, userHash string) (*domain.Expense, error)
}

// txRunner executes fn inside a database transaction; the repo picks the
// transaction up from the context.
type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service provides expense logging, summaries, and undo.
type Service struct {
	expenses expenseRepo
	tx       txRunner
	log      *slog.Logger
	now      func() time.Time
}

// NewService creates the expense service.
func NewService(log *slog.Logger, expenses expenseRepo, tx txRunner) *Service {
	return &Service{
		expenses: expenses,
		tx:       tx,
		log:      log.With("service", "expense"),
		now:      time.Now,
	}
}

// monthStart returns the first instant of the current calendar month in UTC.
func (s *Service) monthStart() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}
