// Package identity carries the authenticated user through the request
// context, replacing an ambient security context with an explicit value.
package identity

import (
	"context"

	"github.com/toymall/user-service/internal/domain"
)

type contextKey struct{}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// FromContext returns the authenticated user, or false when the request is
// unauthenticated.
func FromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(contextKey{}).(*domain.User)
	return user, ok
}
