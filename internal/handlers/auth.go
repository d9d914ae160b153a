package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/warrantydesk/warrantydesk/internal/api"
	"github.com/warrantydesk/warrantydesk/internal/claims"
	"github.com/warrantydesk/warrantydesk/internal/database"
	"github.com/warrantydesk/warrantydesk/internal/middleware"
	"github.com/warrantydesk/warrantydesk/internal/utils"
)

// UserLookup finds staff accounts for login
type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*database.User, error)
	GetUser(ctx context.Context, id uint) (*database.User, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	jwtAuth *middleware.JWTAuthMiddleware
	users   UserLookup
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(jwtAuth *middleware.JWTAuthMiddleware, users UserLookup) *AuthHandler {
	return &AuthHandler{
		jwtAuth: jwtAuth,
		users:   users,
	}
}

// SetupRoutes sets up authentication routes
func (h *AuthHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/auth/login", h.handleLogin)
	mux.HandleFunc("/auth/verify", h.handleVerify)
}

// handleLogin handles POST /auth/login
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req api.LoginRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := api.Validate(req); errs != nil {
		api.RespondValidationError(w, errs)
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, claims.ErrNotFound) {
		log.Printf("AuthHandler: Failed to look up user '%s': %v", utils.EscapeForLogging(req.Email, 254), err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}
	if user == nil || !user.Active || !middleware.CheckPassword(req.Password, user.PasswordHash) {
		log.Printf("AuthHandler: Failed login attempt for user '%s' from %s", utils.EscapeForLogging(req.Email, 254), r.RemoteAddr)
		api.RespondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, expiresAt, err := h.jwtAuth.GenerateToken(user)
	if err != nil {
		log.Printf("AuthHandler: Failed to generate token for user '%s': %v", req.Email, err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	log.Printf("AuthHandler: User '%s' logged in successfully from %s", user.Email, r.RemoteAddr)

	api.RespondJSON(w, http.StatusOK, api.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      api.UserToInfo(*user),
	})
}

// handleVerify handles GET /auth/verify - verifies if the current token is valid
func (h *AuthHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		api.RespondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	user, err := h.users.GetUser(r.Context(), actor.UserID)
	if err != nil || !user.Active {
		api.RespondError(w, http.StatusUnauthorized, "Account is no longer active")
		return
	}

	api.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"valid": true,
		"user":  api.UserToInfo(*user),
	})
}
