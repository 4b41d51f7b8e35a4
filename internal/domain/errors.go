package domain

import (
	"net/http"

	apperrors "github.com/toymall/user-service/pkg/errors"
)

// InvalidEmail is returned when an email string fails format validation.
func InvalidEmail(reason string) *apperrors.AppError {
	return &apperrors.AppError{
		Code:    "INVALID_EMAIL",
		Message: reason,
		Status:  http.StatusBadRequest,
		Err:     apperrors.ErrInvalidInput,
	}
}

// InvalidPassword is returned when a raw password violates the password
// policy. The message aggregates every violated rule.
func InvalidPassword(reason string) *apperrors.AppError {
	return &apperrors.AppError{
		Code:    "INVALID_PASSWORD",
		Message: reason,
		Status:  http.StatusBadRequest,
		Err:     apperrors.ErrInvalidInput,
	}
}

// InvalidCredentials is returned on login failure. The message is the same
// for an unknown email and a wrong password so callers cannot probe which
// accounts exist.
func InvalidCredentials() *apperrors.AppError {
	return &apperrors.AppError{
		Code:    "INVALID_CREDENTIALS",
		Message: "email or password incorrect",
		Status:  http.StatusUnauthorized,
		Err:     apperrors.ErrUnauthorized,
	}
}

// AccountDisabled is returned when credentials are correct but the account is
// not active. Being specific here is fine: the password already matched, so
// the account's existence is no longer secret.
func AccountDisabled() *apperrors.AppError {
	return &apperrors.AppError{
		Code:    "ACCOUNT_DISABLED",
		Message: "account disabled",
		Status:  http.StatusForbidden,
		Err:     apperrors.ErrForbidden,
	}
}

// RoleRequired is returned when an operation would leave a user with no
// roles, or remove a role the user does not hold.
func RoleRequired(reason string) *apperrors.AppError {
	return &apperrors.AppError{
		Code:    "ROLE_REQUIRED",
		Message: reason,
		Status:  http.StatusConflict,
		Err:     apperrors.ErrConflict,
	}
}

// Persistence wraps a storage failure. The cause is never exposed to clients.
func Persistence(err error) *apperrors.AppError {
	return &apperrors.AppError{
		Code:    "USER_PERSISTENCE",
		Message: "failed to persist user data",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}
