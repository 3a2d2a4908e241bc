package ctxutil

import (
	"context"
)

type ctxKey string

const (
	userHashKey  ctxKey = "user_hash"
	requestIDKey ctxKey = "request_id"
)

// WithUserHash stores the hashed user identifier in the context.
// Only the hash ever travels through request-scoped state; raw platform
// identifiers must not be placed in the context.
func WithUserHash(ctx context.Context, hash string) context.Context {
	return context.WithValue(ctx, userHashKey, hash)
}

// UserHashFromCtx extracts the hashed user identifier from the context.
// Returns "" and false if the value is missing or empty.
func UserHashFromCtx(ctx context.Context) (string, bool) {
	h, ok := ctx.Value(userHashKey).(string)
	if !ok || h == "" {
		return "", false
	}
	return h, true
}

// WithRequestID stores the request correlation ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request correlation ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
