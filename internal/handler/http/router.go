package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/toymall/user-service/internal/auth"
	"github.com/toymall/user-service/internal/repository"
	"github.com/toymall/user-service/internal/service"
	"github.com/toymall/user-service/pkg/health"
	"github.com/toymall/user-service/pkg/middleware"
)

// NewRouter creates a chi router with all user service routes registered.
func NewRouter(
	registerService *service.RegisterService,
	loginService *service.LoginService,
	queries repository.UserQueryPort,
	tokens *auth.TokenProvider,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing("user"))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("user"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	authHandler := NewAuthHandler(registerService, loginService, logger)
	userHandler := NewUserHandler()

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(Authentication(tokens, queries, logger))

		// Public
		r.Post("/", authHandler.Register)
		r.Post("/login", authHandler.Login)

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(RequireAuthenticated)
			r.Get("/me", userHandler.Me)
		})
	})

	return r
}
