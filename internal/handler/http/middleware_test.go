package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/toymall/user-service/internal/auth"
	"github.com/toymall/user-service/internal/domain"
	"github.com/toymall/user-service/internal/identity"
	apperrors "github.com/toymall/user-service/pkg/errors"
)

func newAuthnTestProvider(t *testing.T) *auth.TokenProvider {
	t.Helper()
	provider, err := auth.NewTokenProvider(auth.Config{
		Secret:     "test-secret-key-that-is-long-enough!",
		Issuer:     "user-service",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: time.Hour,
	}, testLogger())
	require.NoError(t, err)
	return provider
}

// identityProbe records whether an identity reached the handler.
func identityProbe(sawUser **domain.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := identity.FromContext(r.Context()); ok {
			*sawUser = user
		}
		w.WriteHeader(http.StatusOK)
	})
}

// ============================================================================
// Authentication Filter Tests
// ============================================================================

func TestAuthentication_AttachesIdentity(t *testing.T) {
	tokens := newAuthnTestProvider(t)
	queries := new(mockQueryPort)
	user := activeUser(t, "test@example.com", "Test1234!")
	queries.On("FindByEmail", mock.Anything, user.Email()).Return(user, nil)

	token, err := tokens.CreateAccessToken(user)
	require.NoError(t, err)

	var sawUser *domain.User
	handler := Authentication(tokens, queries, testLogger())(identityProbe(&sawUser))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, sawUser)
	assert.True(t, sawUser.Equals(user))
}

func TestAuthentication_NoHeaderFallsThrough(t *testing.T) {
	tokens := newAuthnTestProvider(t)
	queries := new(mockQueryPort)

	var sawUser *domain.User
	handler := Authentication(tokens, queries, testLogger())(identityProbe(&sawUser))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// Request proceeds unauthenticated; it is never rejected here.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, sawUser)
	queries.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestAuthentication_MalformedHeaderFallsThrough(t *testing.T) {
	tokens := newAuthnTestProvider(t)
	queries := new(mockQueryPort)

	var sawUser *domain.User
	handler := Authentication(tokens, queries, testLogger())(identityProbe(&sawUser))

	// Prefix match is case-sensitive: "bearer" must not be accepted.
	for _, header := range []string{"bearer abc", "Basic abc", "Bearer", "Token abc"} {
		sawUser = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, "header %q", header)
		assert.Nil(t, sawUser, "header %q", header)
	}
}

func TestAuthentication_InvalidTokenFallsThrough(t *testing.T) {
	tokens := newAuthnTestProvider(t)
	queries := new(mockQueryPort)

	var sawUser *domain.User
	handler := Authentication(tokens, queries, testLogger())(identityProbe(&sawUser))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage.token.value")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, sawUser)
	queries.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestAuthentication_LookupFailureFallsThrough(t *testing.T) {
	tokens := newAuthnTestProvider(t)
	queries := new(mockQueryPort)
	user := activeUser(t, "test@example.com", "Test1234!")
	queries.On("FindByEmail", mock.Anything, user.Email()).Return(nil, apperrors.ErrNotFound)

	token, err := tokens.CreateAccessToken(user)
	require.NoError(t, err)

	var sawUser *domain.User
	handler := Authentication(tokens, queries, testLogger())(identityProbe(&sawUser))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// A lookup failure never aborts the request; it only fails to establish identity.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, sawUser)
}

// ============================================================================
// RequireAuthenticated / RequireRole Tests
// ============================================================================

func TestRequireAuthenticated(t *testing.T) {
	handler := RequireAuthenticated(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	user := activeUser(t, "test@example.com", "Test1234!")
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(identity.WithUser(req.Context(), user))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(domain.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	buyer := activeUser(t, "buyer@example.com", "Test1234!")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(identity.WithUser(req.Context(), buyer))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := activeUser(t, "admin@example.com", "Test1234!")
	admin.AddRole(domain.RoleAdmin)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(identity.WithUser(req.Context(), admin))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// ============================================================================
// CORS Tests
// ============================================================================

func TestCORS_Preflight(t *testing.T) {
	handler := CORS(CORSConfig{Environment: "development"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_RestrictsOrigins(t *testing.T) {
	handler := CORS(CORSConfig{
		Environment:    "production",
		AllowedOrigins: []string{"https://app.toymall.dev"},
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.toymall.dev")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "https://app.toymall.dev", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
