package sqlite

import (
	"context"
	"testing"
	"time"

	"legalchat-backend/internal/models"
	"legalchat-backend/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func createTestUser(t *testing.T, s *SQLiteStore, email, userType string) *models.User {
	t.Helper()
	params := store.CreateUserParams{
		ID:             uuid.New(),
		FirstName:      "Amira",
		LastName:       "Ben Salah",
		Email:          email,
		HashedPassword: "hash",
		UserType:       userType,
	}
	if userType == models.UserTypeLawyer {
		bar := "TN-1234"
		params.BarNumber = &bar
	}
	u, err := s.CreateUser(context.Background(), params)
	require.NoError(t, err)
	return u
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := createTestUser(t, s, "amira@example.com", models.UserTypeLawyer)
	require.NotNil(t, u.BarNumber)
	assert.Equal(t, "TN-1234", *u.BarNumber)
	assert.Nil(t, u.PhoneNumber)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := s.GetUserByEmail(ctx, "amira@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.CreateUser(ctx, store.CreateUserParams{
		ID: uuid.New(), FirstName: "X", LastName: "Y", Email: "amira@example.com",
		HashedPassword: "h", UserType: models.UserTypeClient,
	})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := createTestUser(t, s, "c@example.com", models.UserTypeClient)

	expires := time.Now().Add(time.Hour)
	sess, err := s.CreateSession(ctx, store.CreateSessionParams{ID: uuid.New(), UserID: u.ID, ExpiresAt: expires})
	require.NoError(t, err)
	assert.WithinDuration(t, expires, sess.ExpiresAt, time.Millisecond)
	assert.False(t, sess.Expired(time.Now()))

	got, err := s.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.UserID)

	require.NoError(t, s.DeleteSession(ctx, sess.ID))
	assert.ErrorIs(t, s.DeleteSession(ctx, sess.ID), store.ErrNotFound)
	_, err = s.GetSession(ctx, sess.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestConversationsAreOwnerScoped(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	owner := createTestUser(t, s, "owner@example.com", models.UserTypeClient)
	other := createTestUser(t, s, "other@example.com", models.UserTypeStudent)

	first, err := s.CreateConversation(ctx, store.CreateConversationParams{ID: uuid.New(), UserID: owner.ID, Title: "First", Status: models.ConversationStatusActive})
	require.NoError(t, err)
	second, err := s.CreateConversation(ctx, store.CreateConversationParams{ID: uuid.New(), UserID: owner.ID, Title: "Second", Status: models.ConversationStatusActive})
	require.NoError(t, err)

	list, err := s.ListConversationsByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, first.ID, list[1].ID)

	empty, err := s.ListConversationsByOwner(ctx, other.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = s.GetConversationByIDAndOwner(ctx, first.ID, other.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	title := "Renamed"
	_, err = s.UpdateConversation(ctx, store.UpdateConversationParams{ID: first.ID, UserID: other.ID, Title: &title})
	assert.ErrorIs(t, err, store.ErrNotFound)

	updated, err := s.UpdateConversation(ctx, store.UpdateConversationParams{ID: first.ID, UserID: owner.ID, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, models.ConversationStatusActive, updated.Status)

	unchanged, err := s.UpdateConversation(ctx, store.UpdateConversationParams{ID: first.ID, UserID: owner.ID})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", unchanged.Title)

	_, err = s.DeleteConversation(ctx, first.ID, other.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMessagesOrderingAndCascade(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	owner := createTestUser(t, s, "owner@example.com", models.UserTypeClient)
	bot := createTestUser(t, s, "bot@example.com", models.UserTypeChatbot)

	conv, err := s.CreateConversation(ctx, store.CreateConversationParams{ID: uuid.New(), UserID: owner.ID, Title: "New Chat", Status: models.ConversationStatusActive})
	require.NoError(t, err)

	contents := []struct {
		sender uuid.UUID
		role   string
		text   string
	}{
		{bot.ID, models.SenderRoleChatbot, "greeting"},
		{owner.ID, models.SenderRoleUser, "question"},
		{bot.ID, models.SenderRoleChatbot, "answer"},
	}
	var ids []uuid.UUID
	for _, c := range contents {
		m, err := s.CreateMessage(ctx, store.CreateMessageParams{
			ID: uuid.New(), ConversationID: conv.ID, SenderID: c.sender,
			MessageType: models.MessageTypeText, MessageContent: c.text, SenderRole: c.role,
		})
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}

	msgs, err := s.ListMessagesByConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for i, m := range msgs {
		assert.Equal(t, ids[i], m.ID)
		assert.Equal(t, contents[i].text, m.MessageContent)
	}
	assert.Equal(t, models.UserTypeChatbot, msgs[0].UserType)
	assert.Equal(t, "Amira", msgs[1].FirstName)

	_, err = s.DeleteMessage(ctx, ids[1], bot.ID)
	assert.ErrorIs(t, err, store.ErrNotFound, "only the sender may delete")
	deleted, err := s.DeleteMessage(ctx, ids[1], owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "question", deleted.MessageContent)

	removed, err := s.DeleteConversation(ctx, conv.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, removed.ID)

	msgs, err = s.ListMessagesByConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
