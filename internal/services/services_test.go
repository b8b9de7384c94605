package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"legalchat-backend/internal/models"
	"legalchat-backend/internal/store/sqlite"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	auth          *AuthService
	conversations *ConversationService
	messages      *MessageService
	bot           *BotIdentity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := sqlite.New(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(st.Close)

	logger := zap.NewNop()
	bot, err := EnsureBotUser(context.Background(), st, BotConfig{
		Email: "bot@houyemai.com", FirstName: "HouyemAI", LastName: "Assistant",
	}, logger)
	require.NoError(t, err)

	convs := NewConversationService(st, logger)
	return &fixture{
		auth:          NewAuthService(st, bot, time.Hour, logger),
		conversations: convs,
		messages:      NewMessageService(st, convs, bot, logger),
		bot:           bot,
	}
}

func (f *fixture) signup(t *testing.T, email string) *models.User {
	t.Helper()
	user, _, err := f.auth.Signup(context.Background(), models.SignupRequest{
		FirstName: "Sami", LastName: "Trabelsi", Email: email, Password: "pw-123456", UserType: models.UserTypeClient,
	})
	require.NoError(t, err)
	return user
}

func strPtr(s string) *string { return &s }

func TestEnsureBotUser_Idempotent(t *testing.T) {
	st, err := sqlite.New(":memory:", zap.NewNop())
	require.NoError(t, err)
	defer st.Close()

	cfg := BotConfig{Email: "bot@houyemai.com", FirstName: "HouyemAI", LastName: "Assistant"}
	first, err := EnsureBotUser(context.Background(), st, cfg, zap.NewNop())
	require.NoError(t, err)
	second, err := EnsureBotUser(context.Background(), st, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.UserTypeChatbot, first.Summary().UserType)
}

func TestSignup_StartsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, sess, err := f.auth.Signup(ctx, models.SignupRequest{
		FirstName: "Leila", LastName: "Haddad", Email: "  Leila@Example.com ", Password: "secret",
		UserType: "Lawyer", BarNumber: strPtr("TN-42"),
	})
	require.NoError(t, err)
	assert.Equal(t, "leila@example.com", user.Email)
	assert.Equal(t, models.UserTypeLawyer, user.UserType)

	status := f.auth.Status(ctx, sess.ID)
	assert.True(t, status.Authenticated)
	assert.Equal(t, user.ID, status.User.ID)
	assert.Equal(t, f.bot.ID, status.Bot.ID)
}

func TestSignup_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signup(t, "taken@example.com")

	tests := []struct {
		name string
		req  models.SignupRequest
		want error
	}{
		{"missing first name", models.SignupRequest{LastName: "L", Email: "a@b.c", Password: "p", UserType: "client"}, ErrValidation},
		{"bad email", models.SignupRequest{FirstName: "F", LastName: "L", Email: "nope", Password: "p", UserType: "client"}, ErrValidation},
		{"unknown type", models.SignupRequest{FirstName: "F", LastName: "L", Email: "a@b.c", Password: "p", UserType: "judge"}, ErrValidation},
		{"chatbot type", models.SignupRequest{FirstName: "F", LastName: "L", Email: "a@b.c", Password: "p", UserType: "chatbot"}, ErrValidation},
		{"lawyer without bar number", models.SignupRequest{FirstName: "F", LastName: "L", Email: "a@b.c", Password: "p", UserType: "lawyer", BarNumber: strPtr("  ")}, ErrValidation},
		{"password over 72 bytes", models.SignupRequest{FirstName: "F", LastName: "L", Email: "long@b.c", Password: strings.Repeat("x", 80), UserType: "student"}, ErrValidation},
		{"duplicate email", models.SignupRequest{FirstName: "F", LastName: "L", Email: "TAKEN@example.com", Password: "p", UserType: "client"}, ErrEmailTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.auth.Signup(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.signup(t, "sami@example.com")

	got, sess, err := f.auth.Login(ctx, "SAMI@example.com", "pw-123456")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	resolved, err := f.auth.ResolveSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	_, _, wrongPassword := f.auth.Login(ctx, "sami@example.com", "nope")
	_, _, unknownUser := f.auth.Login(ctx, "ghost@example.com", "pw-123456")
	_, _, botLogin := f.auth.Login(ctx, f.bot.Email, "anything")
	for _, err := range []error{wrongPassword, unknownUser, botLogin} {
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, "Invalid credentials", err.Error())
	}

	require.NoError(t, f.auth.Logout(ctx, sess.ID))
	require.NoError(t, f.auth.Logout(ctx, sess.ID), "logout is idempotent")
	_, err = f.auth.ResolveSession(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.False(t, f.auth.Status(ctx, sess.ID).Authenticated)
}

func TestResolveSession_Expired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signup(t, "sami@example.com")
	_, sess, err := f.auth.Login(ctx, "sami@example.com", "pw-123456")
	require.NoError(t, err)

	f.auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = f.auth.ResolveSession(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	f.auth.now = time.Now
	_, err = f.auth.ResolveSession(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotAuthenticated, "expired session row is removed")
}

func TestConversations_OwnershipIsIndistinguishableFromAbsence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.signup(t, "owner@example.com")
	intruder := f.signup(t, "intruder@example.com")

	conv, err := f.conversations.Create(ctx, owner.ID, "New Chat")
	require.NoError(t, err)

	_, foreignErr := f.conversations.Update(ctx, conv.ID, intruder.ID, strPtr("Mine now"), nil)
	_, missingErr := f.conversations.Update(ctx, uuid.New(), owner.ID, strPtr("Whatever"), nil)
	assert.ErrorIs(t, foreignErr, ErrConversationNotFound)
	assert.ErrorIs(t, missingErr, ErrConversationNotFound)
	assert.Equal(t, missingErr.Error(), foreignErr.Error())

	_, err = f.conversations.Delete(ctx, conv.ID, intruder.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.conversations.Update(ctx, conv.ID, owner.ID, nil, nil)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.conversations.Create(ctx, owner.ID, "   ")
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := f.conversations.Update(ctx, conv.ID, owner.ID, strPtr("Lease dispute"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Lease dispute", updated.Title)

	deleted, err := f.conversations.Delete(ctx, conv.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, deleted.ID)
}

func TestMessages_BotAttributionAndOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.signup(t, "owner@example.com")
	conv, err := f.conversations.Create(ctx, owner.ID, "New Chat")
	require.NoError(t, err)

	turns := []struct{ role, content string }{
		{"chatbot", "Mar7ba! I am your AI legal assistant. How can I help you today?"},
		{"user", "What is the limitation period?"},
		{"CHATBOT", "It depends on the claim."},
	}
	for _, turn := range turns {
		_, err := f.messages.Create(ctx, owner.ID, models.CreateMessageRequest{
			ConversationID: conv.ID, MessageContent: turn.content, SenderRole: turn.role,
		})
		require.NoError(t, err)
	}

	msgs, err := f.messages.List(ctx, owner.ID, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for i, m := range msgs {
		assert.Equal(t, turns[i].content, m.MessageContent)
		assert.Equal(t, models.MessageTypeText, m.MessageType)
		if m.SenderRole == models.SenderRoleChatbot {
			assert.Equal(t, f.bot.ID, m.SenderID)
		} else {
			assert.Equal(t, owner.ID, m.SenderID)
		}
		if i > 0 {
			assert.False(t, m.SentAt.Before(msgs[i-1].SentAt))
		}
	}
}

func TestMessages_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.signup(t, "owner@example.com")
	other := f.signup(t, "other@example.com")
	conv, err := f.conversations.Create(ctx, owner.ID, "New Chat")
	require.NoError(t, err)

	_, err = f.messages.Create(ctx, owner.ID, models.CreateMessageRequest{ConversationID: conv.ID, MessageContent: "hi", SenderRole: "system"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.messages.Create(ctx, owner.ID, models.CreateMessageRequest{ConversationID: conv.ID, MessageContent: "hi", SenderRole: "user", MessageType: "image"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.messages.Create(ctx, owner.ID, models.CreateMessageRequest{ConversationID: conv.ID, SenderRole: "user"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.messages.Create(ctx, other.ID, models.CreateMessageRequest{ConversationID: conv.ID, MessageContent: "hi", SenderRole: "user"})
	assert.ErrorIs(t, err, ErrConversationNotFound)
	_, err = f.messages.List(ctx, other.ID, conv.ID)
	assert.ErrorIs(t, err, ErrConversationNotFound)

	msg, err := f.messages.Create(ctx, owner.ID, models.CreateMessageRequest{ConversationID: conv.ID, MessageContent: "hi", SenderRole: "user"})
	require.NoError(t, err)
	_, err = f.messages.Delete(ctx, other.ID, msg.ID)
	assert.ErrorIs(t, err, ErrMessageNotFound)
	_, err = f.messages.Delete(ctx, owner.ID, msg.ID)
	assert.NoError(t, err)
}

func TestInternalErrorHidesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := internalError("list conversations", cause)
	assert.Equal(t, "Internal server error", err.Error())
	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, cause)
}
