package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is a single persisted expense record. Records are immutable after
// creation; a correction supersedes the old record rather than mutating it.
type Expense struct {
	ID          uuid.UUID
	UserHash    string
	Amount      decimal.Decimal
	Description string
	Category    Category
	// MessageID is the inbound message id used as the idempotency key.
	// Duplicate webhook deliveries carry the same MessageID and must not
	// create a second record.
	MessageID string
	CreatedAt time.Time
}

// ParsedItem is one (amount, description) pair extracted from free text.
type ParsedItem struct {
	Amount      decimal.Decimal
	Description string
}

// CategoryTotal is one row of a summary breakdown.
type CategoryTotal struct {
	Category Category
	Total    decimal.Decimal
	Count    int
}

// RouteDecision is the 4-tuple returned to the caller for every message.
// Reply is guaranteed to fit the channel length cap after formatting.
// Amount and Category are populated only when Intent.LogsExpense().
type RouteDecision struct {
	Reply    string
	Intent   Intent
	Category *Category
	Amount   *decimal.Decimal
}

// AIResult is the validated output of the AI adapter. When Failover is true
// every other field must be ignored and the rule engine used instead.
type AIResult struct {
	Intent   Intent
	Amount   *decimal.Decimal
	Note     string
	Category Category
	Tips     []string
	Failover bool
	Reason   string
}
