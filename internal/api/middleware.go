package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"legalchat-backend/internal/auth"
	"legalchat-backend/internal/models"
	"legalchat-backend/internal/services"
	"legalchat-backend/pkg/httputil"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionResolver turns a session id into its live user.
type SessionResolver interface {
	ResolveSession(ctx context.Context, sessionID uuid.UUID) (*models.User, error)
}

// SessionMiddleware attaches the user of a valid session cookie to the request context.
// Requests without a usable session continue anonymously. Stale cookies are cleared;
// a lookup failure leaves the cookie in place.
func SessionMiddleware(cookies auth.CookieConfig, sessions SessionResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := cookies.ReadSessionCookie(r)
			if err != nil {
				if !auth.IsNoCookie(err) {
					logger.Debug("Session middleware: rejecting cookie", zap.Error(err))
					cookies.ClearSessionCookie(w)
				}
				next.ServeHTTP(w, r)
				return
			}

			user, err := sessions.ResolveSession(r.Context(), claims.SessionID)
			switch {
			case err == nil && user.ID == claims.UserID:
				next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), user, claims.SessionID)))
			case err == nil, errors.Is(err, services.ErrAuth):
				cookies.ClearSessionCookie(w)
				next.ServeHTTP(w, r)
			default:
				// The session may still be valid; keep the cookie and serve the request anonymously.
				logger.Error("Session middleware: resolving session failed", zap.Error(err))
				next.ServeHTTP(w, r)
			}
		})
	}
}

// RequireAuthenticated rejects requests without a live session with 401.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserFromContext(r.Context()); !ok {
			httputil.RespondError(w, http.StatusUnauthorized, services.ErrNotAuthenticated.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAnonymous rejects requests that already carry a live session with 403.
func RequireAnonymous(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserFromContext(r.Context()); ok {
			httputil.RespondError(w, http.StatusForbidden, services.ErrAlreadyAuthenticated.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger is a zap access log in place of chi's middleware.Logger.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("HTTP request",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("remote_ip", r.RemoteAddr),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
