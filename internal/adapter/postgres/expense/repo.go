// Package expense implements the expense repository using PostgreSQL.
// Inserts are idempotent on (message_id, item_no) so a redelivered
// webhook event never produces duplicate rows.
package expense

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	postgres "github.com/finbrain/finbrain/internal/adapter/postgres"
	"github.com/finbrain/finbrain/internal/domain"
)

const table = "expenses"

var columns = []string{"id", "user_hash", "amount", "description", "category", "message_id", "item_no", "created_at"}

// Repo provides expense persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// New creates a new expense repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// CreateBatch inserts all expenses in a single statement. Rows that collide
// with an already-stored (message_id, item_no) pair are skipped, so calling
// this twice with the same message is safe. Returns the number of rows
// actually inserted: 0 means the whole message was a redelivery.
func (r *Repo) CreateBatch(ctx context.Context, expenses []domain.Expense) (int, error) {
	if len(expenses) == 0 {
		return 0, nil
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	insert := r.sb.Insert(table).Columns(columns...)
	for i, e := range expenses {
		insert = insert.Values(e.ID, e.UserHash, e.Amount, e.Description, e.Category, e.MessageID, i, e.CreatedAt)
	}
	insert = insert.Suffix("ON CONFLICT (message_id, item_no) DO NOTHING")

	sql, args, err := insert.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert expenses: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, postgres.MapError(err, "expense", expenses[0].MessageID)
	}

	return int(tag.RowsAffected()), nil
}

// DeleteLatest removes the most recent expense for a user and returns it.
// Returns domain.ErrNotFound if the user has no expenses.
func (r *Repo) DeleteLatest(ctx context.Context, userHash string) (*domain.Expense, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	// squirrel has no DELETE ... RETURNING with a correlated subquery, so
	// this one is plain SQL.
	sql := `DELETE FROM expenses
		WHERE id = (
			SELECT id FROM expenses
			WHERE user_hash = $1
			ORDER BY created_at DESC, item_no DESC
			LIMIT 1
		)
		RETURNING id, user_hash, amount, description, category, message_id, created_at`

	var e domain.Expense
	err := q.QueryRow(ctx, sql, userHash).Scan(
		&e.ID, &e.UserHash, &e.Amount, &e.Description, &e.Category, &e.MessageID, &e.CreatedAt,
	)
	if err != nil {
		return nil, postgres.MapError(err, "expense", userHash)
	}

	return &e, nil
}

// DeleteOlderThan removes all expenses created before the threshold, for
// all users. Used by the retention cleanup job. Returns the number of
// deleted rows; deleting from an already-clean table is not an error.
func (r *Repo) DeleteOlderThan(ctx context.Context, threshold time.Time) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	del := r.sb.Delete(table).Where(sq.Lt{"created_at": threshold})

	sql, args, err := del.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build retention delete: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("delete old expenses: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// MonthlyStats returns the total amount and row count for a user since
// monthStart.
func (r *Repo) MonthlyStats(ctx context.Context, userHash string, monthStart time.Time) (decimal.Decimal, int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	query := r.sb.
		Select("COALESCE(SUM(amount), 0)", "COUNT(*)").
		From(table).
		Where(sq.Eq{"user_hash": userHash}).
		Where(sq.GtOrEq{"created_at": monthStart})

	sql, args, err := query.ToSql()
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("build monthly stats: %w", err)
	}

	var total decimal.Decimal
	var count int
	if err := q.QueryRow(ctx, sql, args...).Scan(&total, &count); err != nil {
		return decimal.Zero, 0, postgres.MapError(err, "expense", userHash)
	}

	return total, count, nil
}

// CategoryTotals returns per-category totals for a user since the given
// time, largest first. Returns an empty slice when nothing matches.
func (r *Repo) CategoryTotals(ctx context.Context, userHash string, since time.Time) ([]domain.CategoryTotal, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	query := r.sb.
		Select("category", "COALESCE(SUM(amount), 0)", "COUNT(*)").
		From(table).
		Where(sq.Eq{"user_hash": userHash}).
		Where(sq.GtOrEq{"created_at": since}).
		GroupBy("category").
		OrderBy("SUM(amount) DESC")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build category totals: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "expense", userHash)
	}
	defer rows.Close()

	var totals []domain.CategoryTotal
	for rows.Next() {
		var t domain.CategoryTotal
		if err := rows.Scan(&t.Category, &t.Total, &t.Count); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "expense", userHash)
	}

	return totals, nil
}
