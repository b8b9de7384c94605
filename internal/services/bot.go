package services

import (
	"context"
	"errors"
	"fmt"

	"legalchat-backend/internal/auth"
	"legalchat-backend/internal/models"
	"legalchat-backend/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BotIdentity is the reserved account every assistant message is attributed to.
// It is resolved once at startup and never changes afterwards.
type BotIdentity struct {
	ID        uuid.UUID
	Email     string
	FirstName string
	LastName  string
}

// Summary returns the public representation sent to clients as botUser.
func (b *BotIdentity) Summary() *models.UserResponse {
	return &models.UserResponse{
		ID:        b.ID,
		Email:     b.Email,
		FirstName: b.FirstName,
		LastName:  b.LastName,
		UserType:  models.UserTypeChatbot,
	}
}

// BotConfig names the reserved account.
type BotConfig struct {
	Email     string
	FirstName string
	LastName  string
}

// EnsureBotUser looks up the reserved account by email and creates it when absent.
// The account gets a random password nobody knows, and Login refuses chatbot users anyway.
func EnsureBotUser(ctx context.Context, st store.Store, cfg BotConfig, logger *zap.Logger) (*BotIdentity, error) {
	user, err := st.GetUserByEmail(ctx, cfg.Email)
	switch {
	case err == nil:
		if user.UserType != models.UserTypeChatbot {
			return nil, fmt.Errorf("user %s exists but is not a chatbot account (type %q)", cfg.Email, user.UserType)
		}
		logger.Info("Bot user found", zap.Stringer("bot_id", user.ID))
		return botFromUser(user), nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("looking up bot user: %w", err)
	}

	secret, err := auth.RandomSecret(32)
	if err != nil {
		return nil, err
	}
	hashed, err := auth.HashPassword(secret)
	if err != nil {
		return nil, err
	}

	user, err = st.CreateUser(ctx, store.CreateUserParams{
		ID:             uuid.New(),
		FirstName:      cfg.FirstName,
		LastName:       cfg.LastName,
		Email:          cfg.Email,
		HashedPassword: hashed,
		UserType:       models.UserTypeChatbot,
	})
	if errors.Is(err, store.ErrDuplicate) {
		// Another instance won the race; use its row.
		user, err = st.GetUserByEmail(ctx, cfg.Email)
	}
	if err != nil {
		return nil, fmt.Errorf("creating bot user: %w", err)
	}

	logger.Info("Bot user created", zap.Stringer("bot_id", user.ID), zap.String("email", user.Email))
	return botFromUser(user), nil
}

func botFromUser(u *models.User) *BotIdentity {
	return &BotIdentity{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}
