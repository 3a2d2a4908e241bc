package expense

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	postgres "github.com/finbrain/finbrain/internal/adapter/postgres"
	"github.com/finbrain/finbrain/internal/domain"
)

// testPool connects to the database named by TEST_DATABASE_DSN, applies
// migrations, and truncates the expenses table. Tests are skipped when the
// variable is unset so the suite stays runnable without a database.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	ctx := context.Background()
	require.NoError(t, postgres.Migrate(ctx, dsn))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, "TRUNCATE expenses")
	require.NoError(t, err)

	return pool
}

func newExpense(userHash, messageID, desc string, amount int64, at time.Time) domain.Expense {
	return domain.Expense{
		ID:          uuid.New(),
		UserHash:    userHash,
		Amount:      decimal.NewFromInt(amount),
		Description: desc,
		Category:    domain.CategoryFood,
		MessageID:   messageID,
		CreatedAt:   at,
	}
}

const testHash = "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"

func TestRepo_CreateBatch_Idempotent(t *testing.T) {
	pool := testPool(t)
	repo := New(pool)
	ctx := context.Background()

	batch := []domain.Expense{
		newExpense(testHash, "mid.1", "coffee", 100, time.Now()),
		newExpense(testHash, "mid.1", "burger", 300, time.Now()),
	}

	inserted, err := repo.CreateBatch(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	// Redelivery: identical message id, fresh row ids.
	for i := range batch {
		batch[i].ID = uuid.New()
	}
	inserted, err = repo.CreateBatch(ctx, batch)
	require.NoError(t, err)
	assert.Zero(t, inserted, "redelivered message must insert nothing")
}

func TestRepo_MonthlyStats(t *testing.T) {
	pool := testPool(t)
	repo := New(pool)
	ctx := context.Background()

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	_, err := repo.CreateBatch(ctx, []domain.Expense{
		newExpense(testHash, "mid.2", "coffee", 100, now),
		newExpense(testHash, "mid.3", "lunch", 250, now),
	})
	require.NoError(t, err)

	total, count, err := repo.MonthlyStats(ctx, testHash, monthStart)
	require.NoError(t, err)
	assert.Equal(t, "350", total.String())
	assert.Equal(t, 2, count)

	// Unknown user sees zeros, not an error.
	total, count, err = repo.MonthlyStats(ctx, "b"+testHash[1:], monthStart)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
	assert.Zero(t, count)
}

func TestRepo_CategoryTotals(t *testing.T) {
	pool := testPool(t)
	repo := New(pool)
	ctx := context.Background()

	now := time.Now().UTC()
	transport := newExpense(testHash, "mid.4", "bus", 50, now)
	transport.Category = domain.CategoryTransport

	_, err := repo.CreateBatch(ctx, []domain.Expense{
		newExpense(testHash, "mid.5", "coffee", 100, now),
		newExpense(testHash, "mid.6", "lunch", 250, now),
	})
	require.NoError(t, err)
	_, err = repo.CreateBatch(ctx, []domain.Expense{transport})
	require.NoError(t, err)

	totals, err := repo.CategoryTotals(ctx, testHash, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, totals, 2)

	// Largest category first.
	assert.Equal(t, domain.CategoryFood, totals[0].Category)
	assert.Equal(t, "350", totals[0].Total.String())
	assert.Equal(t, 2, totals[0].Count)
	assert.Equal(t, domain.CategoryTransport, totals[1].Category)
}

func TestRepo_DeleteLatest(t *testing.T) {
	pool := testPool(t)
	repo := New(pool)
	ctx := context.Background()

	now := time.Now().UTC()
	_, err := repo.CreateBatch(ctx, []domain.Expense{
		newExpense(testHash, "mid.7", "coffee", 100, now.Add(-time.Minute)),
	})
	require.NoError(t, err)
	_, err = repo.CreateBatch(ctx, []domain.Expense{
		newExpense(testHash, "mid.8", "dinner", 400, now),
	})
	require.NoError(t, err)

	removed, err := repo.DeleteLatest(ctx, testHash)
	require.NoError(t, err)
	assert.Equal(t, "dinner", removed.Description)
	assert.Equal(t, "400", removed.Amount.String())

	removed, err = repo.DeleteLatest(ctx, testHash)
	require.NoError(t, err)
	assert.Equal(t, "coffee", removed.Description)

	_, err = repo.DeleteLatest(ctx, testHash)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
