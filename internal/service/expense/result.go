package expense

import (
	"github.com/shopspring/decimal"

	"github.com/finbrain/finbrain/internal/domain"
)

// LogResult reports the outcome of one Log call.
type LogResult struct {
	// Items is the number of expenses in the request (not the number
	// inserted: a duplicate delivery inserts zero but still reports the
	// original item count).
	Items int
	// Total is the summed amount of the request's items.
	Total decimal.Decimal
	// Category of the first item; multi-item messages are summarised by
	// their leading category.
	Category domain.Category
	// Duplicate is true when the message id was already persisted and the
	// write was skipped entirely.
	Duplicate bool
	// MonthlyTotal and MonthlyCount describe the user's current calendar
	// month after this call.
	MonthlyTotal decimal.Decimal
	MonthlyCount int
}

// SummaryResult is a trailing-window category breakdown.
type SummaryResult struct {
	Days   int
	Total  decimal.Decimal
	Count  int
	Totals []domain.CategoryTotal
}
