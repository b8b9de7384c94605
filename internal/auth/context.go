package auth

import (
	"context"

	"legalchat-backend/internal/models"

	"github.com/google/uuid"
)

// contextKey is a custom type used for context keys to avoid collisions.
type contextKey string

const (
	userKey      contextKey = "user"
	sessionIDKey contextKey = "sessionID"
)

// WithSession stores the authenticated user and their session id on the context.
func WithSession(ctx context.Context, user *models.User, sessionID uuid.UUID) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// UserFromContext returns the authenticated user, if the request carried a live session.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}

// GetUserIDFromContext retrieves the authenticated user's id.
// Returns the ID and true if found, otherwise uuid.Nil and false.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	user, ok := UserFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return user.ID, true
}

// SessionIDFromContext retrieves the current session id.
func SessionIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(sessionIDKey).(uuid.UUID)
	return id, ok
}
