package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/toymall/user-service/internal/auth"
	"github.com/toymall/user-service/internal/domain"
	"github.com/toymall/user-service/internal/identity"
	"github.com/toymall/user-service/internal/repository"
	"github.com/toymall/user-service/pkg/logger"
)

const bearerPrefix = "Bearer "

// Authentication extracts a bearer token, validates it, and loads the user
// into the request context. It never rejects a request: a missing, invalid,
// or unresolvable token just leaves the request unauthenticated, and the
// downstream access-control layer decides what that means.
func Authentication(tokens *auth.TokenProvider, queries repository.UserQueryPort, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			token := header[len(bearerPrefix):]
			if !tokens.ValidateToken(token) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()

			emailClaim, err := tokens.EmailFromToken(token)
			if err != nil {
				log.DebugContext(ctx, "authentication skipped: unreadable email claim",
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}

			email, err := domain.NewEmail(emailClaim)
			if err != nil {
				log.WarnContext(ctx, "authentication skipped: malformed email claim")
				next.ServeHTTP(w, r)
				return
			}

			user, err := queries.FindByEmail(ctx, email)
			if err != nil {
				log.WarnContext(ctx, "authentication skipped: identity lookup failed",
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx = identity.WithUser(ctx, user)
			ctx = logger.WithUserID(ctx, user.ID().Value())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuthenticated rejects requests that carry no identity with 401.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := identity.FromContext(r.Context()); !ok {
			writeJSON(w, http.StatusUnauthorized, response{
				Error: &errorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects authenticated requests whose user lacks the role.
func RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := identity.FromContext(r.Context())
			if !ok {
				writeJSON(w, http.StatusUnauthorized, response{
					Error: &errorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
				})
				return
			}
			if !user.HasRole(role) {
				writeJSON(w, http.StatusForbidden, response{
					Error: &errorResponse{Code: "FORBIDDEN", Message: "insufficient role"},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// CORSConfig holds configuration for the CORS middleware.
type CORSConfig struct {
	AllowedOrigins []string
	Environment    string
}

// CORS sets Cross-Origin Resource Sharing headers. Development (or an
// explicit "*") allows any origin; otherwise the request Origin is matched
// against the configured list.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	allowWildcard := cfg.Environment == "development"
	originSet := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			allowWildcard = true
		}
		originSet[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if allowWildcard {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else if origin != "" {
				if _, ok := originSet[origin]; ok {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Vary", "Origin")
				}
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Correlation-ID")
			w.Header().Set("Access-Control-Max-Age", "3600")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
