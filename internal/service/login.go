package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/toymall/user-service/internal/auth"
	"github.com/toymall/user-service/internal/domain"
	"github.com/toymall/user-service/internal/repository"
	apperrors "github.com/toymall/user-service/pkg/errors"
)

// LoginCommand carries the raw login input.
type LoginCommand struct {
	Email    string
	Password string
}

// TokenPair is the login result: a short-lived access token, a longer-lived
// refresh token, and the access expiry in seconds.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// LoginService is the login use case.
type LoginService struct {
	queries repository.UserQueryPort
	encoder auth.PasswordEncoder
	tokens  *auth.TokenProvider
	logger  *slog.Logger
}

// NewLoginService creates the login use case.
func NewLoginService(queries repository.UserQueryPort, encoder auth.PasswordEncoder, tokens *auth.TokenProvider, logger *slog.Logger) *LoginService {
	return &LoginService{
		queries: queries,
		encoder: encoder,
		tokens:  tokens,
		logger:  logger,
	}
}

// Execute verifies credentials and issues a token pair. Unknown email and
// wrong password yield the identical generic error so the endpoint cannot be
// used to probe which accounts exist. A disabled account gets a specific
// error, but only after the password matched.
func (s *LoginService) Execute(ctx context.Context, cmd LoginCommand) (*TokenPair, error) {
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return nil, err
	}

	rawPassword, err := domain.NewRawPassword(cmd.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.queries.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.InfoContext(ctx, "login failed: unknown email")
			return nil, domain.InvalidCredentials()
		}
		return nil, err
	}

	if !s.encoder.Matches(rawPassword, user.Password()) {
		s.logger.InfoContext(ctx, "login failed: password mismatch",
			slog.String("user_id", user.ID().Value()),
		)
		return nil, domain.InvalidCredentials()
	}

	if !user.IsActive() {
		s.logger.InfoContext(ctx, "login rejected: account not active",
			slog.String("user_id", user.ID().Value()),
			slog.String("status", string(user.Status())),
		)
		return nil, domain.AccountDisabled()
	}

	accessToken, err := s.tokens.CreateAccessToken(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	refreshToken, err := s.tokens.CreateRefreshToken(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID().Value()),
	)

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.tokens.AccessTokenExpirationSeconds(),
	}, nil
}
