package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/toymall/user-service/internal/domain"
	"github.com/toymall/user-service/pkg/database"
	apperrors "github.com/toymall/user-service/pkg/errors"
)

// UserRepository implements the user command and query ports using
// PostgreSQL. It takes database.DBTX so tests can substitute a pgxmock pool.
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a PostgreSQL-backed user repository.
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, email, password_hash, roles, status, created_at, updated_at"

// RegisterUser inserts a new user. Email uniqueness is enforced by the
// database constraint; a violation surfaces as an already-exists error so the
// concurrent-registration race has no application-level window.
func (r *UserRepository) RegisterUser(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, roles, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		u.ID().Value(),
		u.Email().Value(),
		u.Password().Value(),
		rolesToStrings(u.Roles()),
		string(u.Status()),
		u.CreatedAt(),
		u.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "email", u.Email().Value())
		}
		return domain.Persistence(fmt.Errorf("insert user: %w", err))
	}

	return nil
}

// UpdateUser persists the current state of an existing user.
func (r *UserRepository) UpdateUser(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET email = $1, password_hash = $2, roles = $3, status = $4, updated_at = $5
		WHERE id = $6`

	ct, err := r.db.Exec(ctx, query,
		u.Email().Value(),
		u.Password().Value(),
		rolesToStrings(u.Roles()),
		string(u.Status()),
		u.UpdatedAt(),
		u.ID().Value(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "email", u.Email().Value())
		}
		return domain.Persistence(fmt.Errorf("update user: %w", err))
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", u.ID().Value())
	}

	return nil
}

// FindByEmail retrieves a user by normalized email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(ctx, query, email.Value())
}

// FindByID retrieves a user by id.
func (r *UserRepository) FindByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(ctx, query, id.Value())
}

// ExistsByEmail reports whether a user with the given email exists.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email domain.Email) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email.Value(),
	).Scan(&exists)
	if err != nil {
		return false, domain.Persistence(fmt.Errorf("check user exists: %w", err))
	}
	return exists, nil
}

func (r *UserRepository) scanUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var (
		id           string
		email        string
		passwordHash string
		roles        []string
		status       string
		createdAt    time.Time
		updatedAt    time.Time
	)

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&id, &email, &passwordHash, &roles, &status, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, domain.Persistence(fmt.Errorf("scan user: %w", err))
	}

	return reconstitute(id, email, passwordHash, roles, status, createdAt, updatedAt)
}

// reconstitute rebuilds the aggregate from a row. A row that fails to map is
// corrupt storage, reported as a persistence fault.
func reconstitute(id, email, passwordHash string, roles []string, status string, createdAt, updatedAt time.Time) (*domain.User, error) {
	userID, err := domain.ParseUserID(id)
	if err != nil {
		return nil, domain.Persistence(fmt.Errorf("parse user id %q: %w", id, err))
	}

	userEmail, err := domain.NewEmail(email)
	if err != nil {
		return nil, domain.Persistence(fmt.Errorf("stored email %q: %w", email, err))
	}

	userRoles := make([]domain.Role, 0, len(roles))
	for _, raw := range roles {
		role, err := domain.ParseRole(raw)
		if err != nil {
			return nil, domain.Persistence(fmt.Errorf("stored role: %w", err))
		}
		userRoles = append(userRoles, role)
	}

	userStatus, err := domain.ParseStatus(status)
	if err != nil {
		return nil, domain.Persistence(fmt.Errorf("stored status: %w", err))
	}

	return domain.Reconstitute(
		userID, userEmail, domain.NewEncodedPassword(passwordHash),
		userRoles, userStatus, createdAt, updatedAt,
	), nil
}

func rolesToStrings(roles []domain.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// isUniqueViolation checks for a PostgreSQL unique constraint violation
// (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
