// Package identity carries the caller's identity through the request
// context: the authenticated client id on client routes and the admin
// flag on admin routes.
package identity

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const (
	clientKey ctxKey = "fisiocan.client_id"
	adminKey  ctxKey = "fisiocan.is_admin"
)

// WithClientID stores the client id in context.
func WithClientID(ctx context.Context, clientID uuid.UUID) context.Context {
	return context.WithValue(ctx, clientKey, clientID)
}

// ClientIDFromContext extracts the client id if present.
func ClientIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	val := ctx.Value(clientKey)
	if val == nil {
		return uuid.Nil, false
	}
	clientID, ok := val.(uuid.UUID)
	return clientID, ok && clientID != uuid.Nil
}

// WithAdmin marks the context as an authenticated admin session.
func WithAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, adminKey, true)
}

// IsAdmin reports whether the context belongs to an admin session.
func IsAdmin(ctx context.Context) bool {
	val, ok := ctx.Value(adminKey).(bool)
	return ok && val
}
