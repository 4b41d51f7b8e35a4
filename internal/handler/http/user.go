package http

import (
	"net/http"

	"github.com/toymall/user-service/internal/identity"
)

// UserHandler handles endpoints about the authenticated user.
type UserHandler struct{}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Me handles GET /api/v1/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "user not authenticated"},
		})
		return
	}

	writeJSON(w, http.StatusOK, response{Data: toUserResponse(user)})
}
