package handlers

import (
	"context"
	"errors"
	"net/http"

	"legalchat-backend/internal/auth"
	"legalchat-backend/internal/metrics"
	"legalchat-backend/internal/models"
	"legalchat-backend/internal/services"
	"legalchat-backend/pkg/httputil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthService defines the interface expected from the auth service.
type AuthService interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.User, *models.Session, error)
	Login(ctx context.Context, email, password string) (*models.User, *models.Session, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
	Status(ctx context.Context, sessionID uuid.UUID) services.StatusResult
	Bot() *services.BotIdentity
}

type AuthHandler struct {
	authService AuthService
	cookies     auth.CookieConfig
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

func NewAuthHandler(authSvc AuthService, cookies auth.CookieConfig, m *metrics.Metrics, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authSvc,
		cookies:     cookies,
		metrics:     m,
		logger:      logger.Named("auth_handler"),
	}
}

// HandleSignup handles POST /api/signup. A successful signup is also a login.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, sess, err := h.authService.Signup(r.Context(), req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	h.metrics.SignupCompleted(user.UserType)

	if err := h.cookies.SetSessionCookie(w, sess.ID, user.ID, sess.ExpiresAt); err != nil {
		h.logger.Error("Error issuing session cookie after signup", zap.Stringer("user_id", user.ID), zap.Error(err))
		httputil.RespondError(w, http.StatusInternalServerError, "Error logging in after registration")
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, models.SignupResponse{
		Message: "Registration successful",
		User:    models.NewUserResponse(user),
	})
}

// HandleLogin handles POST /api/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.Email == "" || req.Password == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, sess, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.metrics.LoginAttempt("invalid")
		} else {
			h.metrics.LoginAttempt("error")
		}
		respondServiceError(w, h.logger, err)
		return
	}
	h.metrics.LoginAttempt("success")

	if err := h.cookies.SetSessionCookie(w, sess.ID, user.ID, sess.ExpiresAt); err != nil {
		h.logger.Error("Error issuing session cookie", zap.Stringer("user_id", user.ID), zap.Error(err))
		httputil.RespondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.AuthResponse{
		Message: "Login successful",
		User:    models.NewUserResponse(user),
		BotUser: h.authService.Bot().Summary(),
	})
}

// HandleLogout handles POST /api/logout. Calling it without a session still succeeds.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := auth.SessionIDFromContext(r.Context())
	if err := h.authService.Logout(r.Context(), sessionID); err != nil {
		h.logger.Error("Logout failed", zap.Stringer("session_id", sessionID), zap.Error(err))
		httputil.RespondError(w, http.StatusInternalServerError, "Error logging out")
		return
	}
	h.cookies.ClearSessionCookie(w)
	httputil.RespondJSON(w, http.StatusOK, models.MessageResponse{Message: "Logout successful"})
}

// HandleStatus handles GET /api/auth/status.
func (h *AuthHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := auth.SessionIDFromContext(r.Context())
	status := h.authService.Status(r.Context(), sessionID)

	resp := models.AuthStatusResponse{IsAuthenticated: status.Authenticated}
	if status.Authenticated {
		user := models.NewUserResponse(status.User)
		resp.User = &user
		resp.BotUser = status.Bot.Summary()
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}
