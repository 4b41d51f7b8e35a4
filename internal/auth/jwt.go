package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/toymall/user-service/internal/domain"
)

// Token types carried in the tokenType claim.
const (
	TokenTypeAccess  = "ACCESS"
	TokenTypeRefresh = "REFRESH"
)

const minSecretLength = 32

// Claims is the JWT claims set for both access and refresh tokens. The two
// differ only by TokenType and expiry.
type Claims struct {
	Email     string   `json:"email"`
	Roles     []string `json:"role"`
	TokenType string   `json:"tokenType"`
	jwt.RegisteredClaims
}

// Config holds the signing key and token lifetimes. The key is loaded once at
// startup and never rotated during the process lifetime.
type Config struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Validate enforces the configuration contract: a secret of at least 32
// bytes, a positive access lifetime, and a refresh lifetime that exceeds it.
func (c Config) Validate() error {
	if len(c.Secret) < minSecretLength {
		return fmt.Errorf("jwt secret must be at least %d bytes, got %d", minSecretLength, len(c.Secret))
	}
	if c.AccessTTL <= 0 {
		return fmt.Errorf("jwt access token lifetime must be positive, got %s", c.AccessTTL)
	}
	if c.RefreshTTL <= c.AccessTTL {
		return fmt.Errorf("jwt refresh token lifetime (%s) must exceed access token lifetime (%s)", c.RefreshTTL, c.AccessTTL)
	}
	return nil
}

// TokenProvider signs and validates HS256 bearer tokens with a single
// process-wide symmetric key. Safe for concurrent use.
type TokenProvider struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *slog.Logger
}

// NewTokenProvider validates the configuration and creates a provider.
func NewTokenProvider(cfg Config, logger *slog.Logger) (*TokenProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &TokenProvider{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		logger:     logger,
	}, nil
}

// CreateAccessToken signs an access token embedding the user's id, email, and
// full current role set.
func (p *TokenProvider) CreateAccessToken(user *domain.User) (string, error) {
	return p.createToken(user, TokenTypeAccess, p.accessTTL)
}

// CreateRefreshToken signs a refresh token. It carries the same claims as an
// access token; only the tokenType and expiry differ.
func (p *TokenProvider) CreateRefreshToken(user *domain.User) (string, error) {
	return p.createToken(user, TokenTypeRefresh, p.refreshTTL)
}

func (p *TokenProvider) createToken(user *domain.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()

	roles := user.Roles()
	roleStrings := make([]string, len(roles))
	for i, r := range roles {
		roleStrings[i] = string(r)
	}

	claims := &Claims{
		Email:     user.Email().Value(),
		Roles:     roleStrings,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID().Value(),
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// ValidateToken reports whether the token has a valid signature and has not
// expired. Expired and malformed tokens are distinguished only in logs; both
// collapse to false for the caller.
func (p *TokenProvider) ValidateToken(tokenString string) bool {
	_, err := p.parse(tokenString)
	if err == nil {
		return true
	}

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		p.logger.Debug("token rejected: expired")
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		p.logger.Warn("token rejected: invalid signature")
	default:
		p.logger.Debug("token rejected: malformed", slog.String("error", err.Error()))
	}
	return false
}

// EmailFromToken extracts the email claim. The token is re-validated; an
// invalid or expired token returns an error rather than stale claims.
func (p *TokenProvider) EmailFromToken(tokenString string) (string, error) {
	claims, err := p.parse(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Email, nil
}

// UserIDFromToken extracts the subject claim.
func (p *TokenProvider) UserIDFromToken(tokenString string) (string, error) {
	claims, err := p.parse(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// RolesFromToken extracts the role claim.
func (p *TokenProvider) RolesFromToken(tokenString string) ([]string, error) {
	claims, err := p.parse(tokenString)
	if err != nil {
		return nil, err
	}
	return claims.Roles, nil
}

// TokenTypeFromToken extracts the tokenType claim.
func (p *TokenProvider) TokenTypeFromToken(tokenString string) (string, error) {
	claims, err := p.parse(tokenString)
	if err != nil {
		return "", err
	}
	return claims.TokenType, nil
}

// AccessTokenExpirationSeconds exposes the configured access TTL for response
// payloads, so clients know when to refresh.
func (p *TokenProvider) AccessTokenExpirationSeconds() int64 {
	return int64(p.accessTTL.Seconds())
}

func (p *TokenProvider) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithIssuer(p.issuer))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
