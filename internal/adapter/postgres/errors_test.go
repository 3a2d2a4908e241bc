package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/finbrain/finbrain/internal/domain"
)

func TestMapError_Nil(t *testing.T) {
	t.Parallel()

	got := MapError(nil, "expense", "mid.123")
	if got != nil {
		t.Errorf("MapError(nil) = %v, want nil", got)
	}
}

func TestMapError_NoRows(t *testing.T) {
	t.Parallel()

	got := MapError(pgx.ErrNoRows, "expense", "mid.123")

	if got == nil {
		t.Fatal("MapError(ErrNoRows) = nil, want error")
	}
	if !errors.Is(got, domain.ErrNotFound) {
		t.Errorf("MapError(ErrNoRows) does not wrap domain.ErrNotFound: %v", got)
	}
	if want := "expense mid.123: not found"; got.Error() != want {
		t.Errorf("MapError(ErrNoRows).Error() = %q, want %q", got.Error(), want)
	}
}

func TestMapError_ContextErrorsPassThrough(t *testing.T) {
	t.Parallel()

	for _, ctxErr := range []error{context.DeadlineExceeded, context.Canceled} {
		got := MapError(ctxErr, "expense", "mid.123")
		if !errors.Is(got, ctxErr) {
			t.Errorf("MapError(%v) does not wrap the original error: %v", ctxErr, got)
		}
		if errors.Is(got, domain.ErrNotFound) {
			t.Errorf("MapError(%v) must not map to domain errors: %v", ctxErr, got)
		}
	}
}

func TestMapError_PgCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want error
	}{
		{"23505", domain.ErrAlreadyExists},
		{"23503", domain.ErrNotFound},
		{"23514", domain.ErrValidation},
		{"40001", domain.ErrConflict},
	}

	for _, tt := range tests {
		pgErr := &pgconn.PgError{Code: tt.code}
		got := MapError(pgErr, "expense", "mid.123")
		if !errors.Is(got, tt.want) {
			t.Errorf("MapError(code %s) = %v, want wrap of %v", tt.code, got, tt.want)
		}
	}
}

func TestMapError_UnknownWrapped(t *testing.T) {
	t.Parallel()

	orig := fmt.Errorf("connection refused")
	got := MapError(orig, "expense", "mid.123")

	if !errors.Is(got, orig) {
		t.Errorf("MapError(unknown) does not wrap the original error: %v", got)
	}
}
