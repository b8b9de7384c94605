package handlers

import (
	"errors"
	"net/http"

	"legalchat-backend/internal/services"
	"legalchat-backend/pkg/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// respondServiceError maps the service error taxonomy onto HTTP status codes.
// Internal failures never leak their cause to the caller.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var status int
	switch {
	case errors.Is(err, services.ErrAlreadyAuthenticated):
		status = http.StatusForbidden // 403
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrConflict):
		status = http.StatusBadRequest // 400
	case errors.Is(err, services.ErrAuth):
		status = http.StatusUnauthorized // 401
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound // 404
	default:
		logger.Error("Request failed", zap.Error(err))
		httputil.RespondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	message := http.StatusText(status)
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		message = svcErr.Error()
	}
	httputil.RespondError(w, status, message)
}

// uuidParam parses a chi path parameter. ok is false for malformed ids.
func uuidParam(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
