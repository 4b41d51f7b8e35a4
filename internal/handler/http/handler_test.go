package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/toymall/user-service/internal/auth"
	"github.com/toymall/user-service/internal/domain"
	"github.com/toymall/user-service/internal/service"
	apperrors "github.com/toymall/user-service/pkg/errors"
	"github.com/toymall/user-service/pkg/health"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Mock ports ---

type mockCommandPort struct {
	mock.Mock
}

func (m *mockCommandPort) RegisterUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockCommandPort) UpdateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type mockQueryPort struct {
	mock.Mock
}

func (m *mockQueryPort) FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockQueryPort) FindByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockQueryPort) ExistsByEmail(ctx context.Context, email domain.Email) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// stubEncoder avoids bcrypt cost in handler tests.
type stubEncoder struct{}

func (stubEncoder) Encode(raw domain.RawPassword) (domain.EncodedPassword, error) {
	return domain.NewEncodedPassword("enc:" + raw.Value()), nil
}

func (stubEncoder) Matches(raw domain.RawPassword, encoded domain.EncodedPassword) bool {
	return encoded.Value() == "enc:"+raw.Value()
}

// --- Fixture ---

type fixture struct {
	router   http.Handler
	commands *mockCommandPort
	queries  *mockQueryPort
	tokens   *auth.TokenProvider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	commands := new(mockCommandPort)
	queries := new(mockQueryPort)
	events := new(mockPublisher)
	events.On("PublishUserRegistered", mock.Anything, mock.Anything).Return(nil).Maybe()

	tokens, err := auth.NewTokenProvider(auth.Config{
		Secret:     "test-secret-key-that-is-long-enough!",
		Issuer:     "user-service",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: time.Hour,
	}, testLogger())
	require.NoError(t, err)

	registerSvc := service.NewRegisterService(commands, stubEncoder{}, events, testLogger())
	loginSvc := service.NewLoginService(queries, stubEncoder{}, tokens, testLogger())

	router := NewRouter(registerSvc, loginSvc, queries, tokens, health.NewHandler(), testLogger(), CORSConfig{
		Environment: "development",
	})

	return &fixture{router: router, commands: commands, queries: queries, tokens: tokens}
}

func (f *fixture) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func activeUser(t *testing.T, emailStr, password string) *domain.User {
	t.Helper()
	email, err := domain.NewEmail(emailStr)
	require.NoError(t, err)
	return domain.Register(email, domain.NewEncodedPassword("enc:"+password), domain.RoleBuyer)
}

// ============================================================================
// Registration Endpoint Tests
// ============================================================================

func TestRegisterEndpoint_Success(t *testing.T) {
	f := newFixture(t)
	f.commands.On("RegisterUser", mock.Anything, mock.Anything).Return(nil)

	rec := f.do(t, http.MethodPost, "/api/v1/users", map[string]string{
		"email":    "test@example.com",
		"password": "Test1234!",
		"role":     "BUYER",
	}, nil)

	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Data UserResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Data.ID)
	assert.Equal(t, "test@example.com", body.Data.Email)
	assert.Equal(t, []string{"BUYER"}, body.Data.Roles)
	assert.Equal(t, "ACTIVE", body.Data.Status)
}

func TestRegisterEndpoint_ValidationError(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/users", map[string]string{
		"email": "not-an-email",
	}, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
	f.commands.AssertNotCalled(t, "RegisterUser", mock.Anything, mock.Anything)
}

func TestRegisterEndpoint_WeakPassword(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/users", map[string]string{
		"email":    "test@example.com",
		"password": "alllowercase1",
		"role":     "BUYER",
	}, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_PASSWORD")
}

func TestRegisterEndpoint_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.commands.On("RegisterUser", mock.Anything, mock.Anything).
		Return(apperrors.AlreadyExists("user", "email", "test@example.com"))

	rec := f.do(t, http.MethodPost, "/api/v1/users", map[string]string{
		"email":    "test@example.com",
		"password": "Test1234!",
		"role":     "BUYER",
	}, nil)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "ALREADY_EXISTS")
}

func TestRegisterEndpoint_RejectsNonJSON(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewBufferString("email=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

// ============================================================================
// Login Endpoint Tests
// ============================================================================

func TestLoginEndpoint_Success(t *testing.T) {
	f := newFixture(t)
	user := activeUser(t, "test@example.com", "Test1234!")
	f.queries.On("FindByEmail", mock.Anything, user.Email()).Return(user, nil)

	rec := f.do(t, http.MethodPost, "/api/v1/users/login", map[string]string{
		"email":    "test@example.com",
		"password": "Test1234!",
	}, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data service.TokenPair `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Data.AccessToken)
	assert.NotEmpty(t, body.Data.RefreshToken)
	assert.Equal(t, int64(900), body.Data.ExpiresIn)
	assert.True(t, f.tokens.ValidateToken(body.Data.AccessToken))
}

func TestLoginEndpoint_InvalidCredentials(t *testing.T) {
	f := newFixture(t)
	email, err := domain.NewEmail("ghost@example.com")
	require.NoError(t, err)
	f.queries.On("FindByEmail", mock.Anything, email).Return(nil, apperrors.ErrNotFound)

	rec := f.do(t, http.MethodPost, "/api/v1/users/login", map[string]string{
		"email":    "ghost@example.com",
		"password": "Test1234!",
	}, nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "email or password incorrect")
}

func TestLoginEndpoint_DisabledAccount(t *testing.T) {
	f := newFixture(t)
	user := activeUser(t, "test@example.com", "Test1234!")
	user.Deactivate()
	f.queries.On("FindByEmail", mock.Anything, user.Email()).Return(user, nil)

	rec := f.do(t, http.MethodPost, "/api/v1/users/login", map[string]string{
		"email":    "test@example.com",
		"password": "Test1234!",
	}, nil)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "account disabled")
}

// ============================================================================
// Authenticated Endpoint Tests
// ============================================================================

func TestMeEndpoint_Success(t *testing.T) {
	f := newFixture(t)
	user := activeUser(t, "test@example.com", "Test1234!")
	f.queries.On("FindByEmail", mock.Anything, user.Email()).Return(user, nil)

	token, err := f.tokens.CreateAccessToken(user)
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/api/v1/users/me", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test@example.com")
}

func TestMeEndpoint_NoToken(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/users/me", nil, nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
}

func TestMeEndpoint_InvalidToken(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/users/me", nil, map[string]string{
		"Authorization": "Bearer not-a-real-token",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeEndpoint_ExpiredToken(t *testing.T) {
	f := newFixture(t)

	shortLived, err := auth.NewTokenProvider(auth.Config{
		Secret:     "test-secret-key-that-is-long-enough!",
		Issuer:     "user-service",
		AccessTTL:  time.Millisecond,
		RefreshTTL: 2 * time.Millisecond,
	}, testLogger())
	require.NoError(t, err)

	user := activeUser(t, "test@example.com", "Test1234!")
	token, err := shortLived.CreateAccessToken(user)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	rec := f.do(t, http.MethodGet, "/api/v1/users/me", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
