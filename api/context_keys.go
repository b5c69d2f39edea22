package api

import (
	"context"
)

// contextKey is a private type to prevent context key collisions across packages.
type contextKey string

const (
	// ContextKeyRequestID stores the unique request identifier (string)
	ContextKeyRequestID contextKey = "request_id"

	// ContextKeyUsername stores the authenticated username (string)
	ContextKeyUsername contextKey = "username"
)

// WithRequestID returns a copy of ctx carrying the request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// requestIDFrom returns the request ID in ctx, or "" when there is none.
func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}

// WithUsername returns a copy of ctx carrying the authenticated username.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, ContextKeyUsername, username)
}

// GetUsername extracts the username from the context.
// Returns the username and true if found, empty string and false otherwise.
func GetUsername(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(ContextKeyUsername).(string)
	return username, ok && username != ""
}
