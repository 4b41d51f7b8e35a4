// Package repository defines the persistence ports consumed by the use
// cases. Adapters live in subpackages.
package repository

import (
	"context"

	"github.com/toymall/user-service/internal/domain"
)

// UserCommandPort is the write side of user persistence.
type UserCommandPort interface {
	// RegisterUser persists a new user. A duplicate email surfaces as an
	// already-exists error from the storage constraint, not a pre-check.
	RegisterUser(ctx context.Context, user *domain.User) error
	// UpdateUser persists changes to an existing user.
	UpdateUser(ctx context.Context, user *domain.User) error
}

// UserQueryPort is the read side of user persistence.
type UserQueryPort interface {
	// FindByEmail returns apperrors.ErrNotFound when no user has the email.
	FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error)
	// FindByID returns apperrors.ErrNotFound when no user has the id.
	FindByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email domain.Email) (bool, error)
}
