// Package middleware provides the HTTP middleware chain for the API server:
// request logging, CORS, Prometheus metrics, and bearer-token auth.
package middleware

import "context"

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const userIDKey contextKey = "user_id"

// WithUserID returns a context carrying the authenticated user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID extracts the authenticated user ID from the context, or the
// empty string when the request is unauthenticated.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}
