package chatclient

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"legalchat-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBackendClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	srv := newBackend(t)
	c := signedInClient(t, srv, "yasmine@example.com")

	status, err := c.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.IsAuthenticated)
	require.NotNil(t, status.BotUser)
	assert.Equal(t, models.UserTypeChatbot, status.BotUser.UserType)

	conv, err := c.CreateConversation(ctx, PlaceholderTitle)
	require.NoError(t, err)
	assert.Equal(t, PlaceholderTitle, conv.Title)

	msg, err := c.CreateMessage(ctx, models.CreateMessageRequest{
		ConversationID: conv.ID, MessageContent: GreetingText, SenderRole: models.SenderRoleChatbot,
	})
	require.NoError(t, err)
	assert.Equal(t, status.BotUser.ID, msg.SenderID)

	msgs, err := c.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "HouyemAI", msgs[0].FirstName)

	renamed, err := c.UpdateConversationTitle(ctx, conv.ID, "Tenancy deposit dispute")
	require.NoError(t, err)
	assert.Equal(t, "Tenancy deposit dispute", renamed.Title)

	require.NoError(t, c.DeleteConversation(ctx, conv.ID))

	err = c.DeleteConversation(ctx, conv.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Conversation not found or not authorized", apiErr.Message)
}

func TestBackendClientUnauthenticated(t *testing.T) {
	srv := newBackend(t)
	c, err := NewBackendClient(srv.URL, time.Second, zap.NewNop())
	require.NoError(t, err)

	_, err = c.ListConversations(context.Background())
	assert.True(t, errors.Is(err, ErrNotAuthenticated))

	_, err = c.Login(context.Background(), "nobody@example.com", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
}

func TestBackendClientSessionTokenCarriesSession(t *testing.T) {
	ctx := context.Background()
	srv := newBackend(t)
	first := signedInClient(t, srv, "carry@example.com")

	token := first.SessionToken()
	require.NotEmpty(t, token)

	second, err := NewBackendClient(srv.URL, time.Second, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, second.SessionToken())
	second.SetSessionToken(token)

	status, err := second.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.IsAuthenticated)
	assert.Equal(t, "carry@example.com", status.User.Email)

	require.NoError(t, second.Logout(ctx))
	status, err = first.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.IsAuthenticated, "logout ends the shared server-side session")
}

func TestNewBackendClientRejectsBadURL(t *testing.T) {
	_, err := NewBackendClient("localhost:5000", time.Second, zap.NewNop())
	assert.Error(t, err)
}

func TestQueryClient(t *testing.T) {
	svc := newAnswerService(t)
	q := NewQueryClient(svc.URL, zap.NewNop())

	resp, err := q.Query(context.Background(), models.QueryRequest{Query: "What is a lease?", TopK: DefaultTopK})
	require.NoError(t, err)
	assert.Equal(t, "The general limitation period is fifteen years.", resp.Answer)
	require.Len(t, resp.RetrievedDocuments, 1)

	sent := svc.lastRequest(t)
	assert.Equal(t, 30, sent.TopK)
	assert.NotNil(t, sent.Memory, "memory is always an array on the wire")

	svc.failWith(http.StatusBadGateway)
	_, err = q.Query(context.Background(), models.QueryRequest{Query: "again", TopK: DefaultTopK})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestQueryClientDefaultsMissingDocuments(t *testing.T) {
	svc := newAnswerService(t)
	svc.mu.Lock()
	svc.docs = nil
	svc.mu.Unlock()

	resp, err := NewQueryClient(svc.URL, zap.NewNop()).Query(context.Background(), models.QueryRequest{Query: "q", TopK: 1})
	require.NoError(t, err)
	assert.NotNil(t, resp.RetrievedDocuments)
	assert.Empty(t, resp.RetrievedDocuments)
}

func TestAPIErrorIs(t *testing.T) {
	assert.ErrorIs(t, &APIError{StatusCode: http.StatusUnauthorized}, ErrNotAuthenticated)
	assert.NotErrorIs(t, &APIError{StatusCode: http.StatusNotFound}, ErrNotAuthenticated)
	assert.Equal(t, "request failed with status 502", (&APIError{StatusCode: 502}).Error())
}
