package service

import (
	"context"
	"log/slog"

	"github.com/toymall/user-service/internal/auth"
	"github.com/toymall/user-service/internal/domain"
	"github.com/toymall/user-service/internal/event"
	"github.com/toymall/user-service/internal/repository"
	apperrors "github.com/toymall/user-service/pkg/errors"
)

// RegisterCommand carries the raw registration input.
type RegisterCommand struct {
	Email    string
	Password string
	Role     string
}

// RegisterService is the registration use case.
type RegisterService struct {
	commands repository.UserCommandPort
	encoder  auth.PasswordEncoder
	events   event.Publisher
	logger   *slog.Logger
}

// NewRegisterService creates the registration use case.
func NewRegisterService(commands repository.UserCommandPort, encoder auth.PasswordEncoder, events event.Publisher, logger *slog.Logger) *RegisterService {
	return &RegisterService{
		commands: commands,
		encoder:  encoder,
		events:   events,
		logger:   logger,
	}
}

// Execute validates the input, hashes the password, and persists a new ACTIVE
// user with the single initial role. No duplicate-email pre-check happens
// here: uniqueness is enforced by the storage constraint, which closes the
// concurrent-registration race an existence check would leave open.
func (s *RegisterService) Execute(ctx context.Context, cmd RegisterCommand) (*domain.User, error) {
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return nil, err
	}

	rawPassword, err := domain.NewRawPassword(cmd.Password)
	if err != nil {
		return nil, err
	}

	role, err := domain.ParseRole(cmd.Role)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	encoded, err := s.encoder.Encode(rawPassword)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := domain.Register(email, encoded, role)

	if err := s.commands.RegisterUser(ctx, user); err != nil {
		return nil, err
	}

	// Event delivery is best-effort; a broker outage must not fail a
	// registration that is already durable.
	if err := s.events.PublishUserRegistered(ctx, user); err != nil {
		s.logger.WarnContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID().Value()),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID().Value()),
		slog.String("role", cmd.Role),
	)

	return user, nil
}
