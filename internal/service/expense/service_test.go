package expense

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbrain/finbrain/internal/domain"
)

// expenseRepoMock is a hand-rolled mock with func fields per method.
type expenseRepoMock struct {
	CreateBatchFunc    func(ctx context.Context, expenses []domain.Expense) (int, error)
	MonthlyStatsFunc   func(ctx context.Context, userHash string, monthStart time.Time) (decimal.Decimal, int, error)
	CategoryTotalsFunc func(ctx context.Context, userHash string, since time.Time) ([]domain.CategoryTotal, error)
	DeleteLatestFunc   func(ctx context.Context, userHash string) (*domain.Expense, error)

	createBatchCalls int
}

func (m *expenseRepoMock) CreateBatch(ctx context.Context, expenses []domain.Expense) (int, error) {
	m.createBatchCalls++
	return m.CreateBatchFunc(ctx, expenses)
}

func (m *expenseRepoMock) MonthlyStats(ctx context.Context, userHash string, monthStart time.Time) (decimal.Decimal, int, error) {
	return m.MonthlyStatsFunc(ctx, userHash, monthStart)
}

func (m *expenseRepoMock) CategoryTotals(ctx context.Context, userHash string, since time.Time) ([]domain.CategoryTotal, error) {
	return m.CategoryTotalsFunc(ctx, userHash, since)
}

func (m *expenseRepoMock) DeleteLatest(ctx context.Context, userHash string) (*domain.Expense, error) {
	return m.DeleteLatestFunc(ctx, userHash)
}

// txRunnerStub runs the function without a real transaction.
type txRunnerStub struct{}

func (txRunnerStub) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(mock *expenseRepoMock) *Service {
	return &Service{
		expenses: mock,
		tx:       txRunnerStub{},
		log:      slog.Default(),
		now:      func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) },
	}
}

func item(amount, desc string) domain.ParsedItem {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		panic(err)
	}
	return domain.ParsedItem{Amount: d, Description: desc}
}

func TestLog_Success(t *testing.T) {
	t.Parallel()

	mock := &expenseRepoMock{
		CreateBatchFunc: func(ctx context.Context, expenses []domain.Expense) (int, error) {
			if len(expenses) != 2 {
				t.Errorf("batch size: got %d, want 2", len(expenses))
			}
			for _, e := range expenses {
				if e.MessageID != "mid-1" {
					t.Errorf("message id: got %q, want %q", e.MessageID, "mid-1")
				}
				if !e.Category.IsValid() {
					t.Errorf("category %q is not valid", e.Category)
				}
			}
			return len(expenses), nil
		},
		MonthlyStatsFunc: func(ctx context.Context, userHash string, monthStart time.Time) (decimal.Decimal, int, error) {
			want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
			if !monthStart.Equal(want) {
				t.Errorf("month start: got %v, want %v", monthStart, want)
			}
			return decimal.NewFromInt(400), 5, nil
		},
	}

	svc := newTestService(mock)
	res, err := svc.Log(context.Background(), "hash-a", []domain.ParsedItem{
		item("100", "coffee"),
		item("300", "burger"),
	}, "mid-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Items != 2 {
		t.Errorf("items: got %d, want 2", res.Items)
	}
	if !res.Total.Equal(decimal.NewFromInt(400)) {
		t.Errorf("total: got %s, want 400", res.Total)
	}
	if res.Category != domain.CategoryFood {
		t.Errorf("category: got %q, want food", res.Category)
	}
	if res.Duplicate {
		t.Error("fresh insert must not be marked duplicate")
	}
	if res.MonthlyCount != 5 {
		t.Errorf("monthly count: got %d, want 5", res.MonthlyCount)
	}
}

func TestLog_DuplicateDelivery(t *testing.T) {
	t.Parallel()

	mock := &expenseRepoMock{
		CreateBatchFunc: func(ctx context.Context, expenses []domain.Expense) (int, error) {
			return 0, nil // all rows conflicted on message id
		},
		MonthlyStatsFunc: func(ctx context.Context, userHash string, monthStart time.Time) (decimal.Decimal, int, error) {
			return decimal.NewFromInt(100), 1, nil
		},
	}

	svc := newTestService(mock)
	res, err := svc.Log(context.Background(), "hash-a",
		[]domain.ParsedItem{item("100", "coffee")}, "mid-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Duplicate {
		t.Error("zero inserts must be reported as a duplicate delivery")
	}
	if res.MonthlyCount != 1 {
		t.Errorf("monthly count: got %d, want 1", res.MonthlyCount)
	}
}

func TestLog_EmptyItems(t *testing.T) {
	t.Parallel()

	svc := newTestService(&expenseRepoMock{})
	_, err := svc.Log(context.Background(), "hash-a", nil, "mid-1")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("want validation error, got %v", err)
	}
}

func TestLog_MissingMessageID(t *testing.T) {
	t.Parallel()

	svc := newTestService(&expenseRepoMock{})
	_, err := svc.Log(context.Background(), "hash-a",
		[]domain.ParsedItem{item("100", "coffee")}, "")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("want validation error, got %v", err)
	}
}

func TestLog_RepoError(t *testing.T) {
	t.Parallel()

	boom := errors.New("db down")
	mock := &expenseRepoMock{
		CreateBatchFunc: func(ctx context.Context, expenses []domain.Expense) (int, error) {
			return 0, boom
		},
	}

	svc := newTestService(mock)
	_, err := svc.Log(context.Background(), "hash-a",
		[]domain.ParsedItem{item("100", "coffee")}, "mid-1")
	if !errors.Is(err, boom) {
		t.Errorf("want wrapped repo error, got %v", err)
	}
}

func TestSummary_Aggregates(t *testing.T) {
	t.Parallel()

	mock := &expenseRepoMock{
		CategoryTotalsFunc: func(ctx context.Context, userHash string, since time.Time) ([]domain.CategoryTotal, error) {
			wantSince := time.Date(2025, 6, 8, 10, 0, 0, 0, time.UTC)
			if !since.Equal(wantSince) {
				t.Errorf("since: got %v, want %v", since, wantSince)
			}
			return []domain.CategoryTotal{
				{Category: domain.CategoryFood, Total: decimal.NewFromInt(700), Count: 3},
				{Category: domain.CategoryTransport, Total: decimal.NewFromInt(250), Count: 1},
			}, nil
		},
	}

	svc := newTestService(mock)
	res, err := svc.Summary(context.Background(), "hash-a", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Days != SummaryWindowDays {
		t.Errorf("days: got %d, want %d", res.Days, SummaryWindowDays)
	}
	if !res.Total.Equal(decimal.NewFromInt(950)) {
		t.Errorf("total: got %s, want 950", res.Total)
	}
	if res.Count != 4 {
		t.Errorf("count: got %d, want 4", res.Count)
	}
}

func TestUndo_Success(t *testing.T) {
	t.Parallel()

	removed := &domain.Expense{Amount: decimal.NewFromInt(100), Description: "coffee"}
	mock := &expenseRepoMock{
		DeleteLatestFunc: func(ctx context.Context, userHash string) (*domain.Expense, error) {
			return removed, nil
		},
	}

	svc := newTestService(mock)
	got, err := svc.Undo(context.Background(), "hash-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != removed {
		t.Error("expected the removed expense back")
	}
}

func TestUndo_NothingToUndo(t *testing.T) {
	t.Parallel()

	mock := &expenseRepoMock{
		DeleteLatestFunc: func(ctx context.Context, userHash string) (*domain.Expense, error) {
			return nil, domain.ErrNotFound
		},
	}

	svc := newTestService(mock)
	_, err := svc.Undo(context.Background(), "hash-a")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}
