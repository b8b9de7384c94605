package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"legalchat-backend/internal/auth"
	"legalchat-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Backend is the subset of the legalchat API the Controller drives.
type Backend interface {
	Status(ctx context.Context) (*models.AuthStatusResponse, error)
	ListConversations(ctx context.Context) ([]models.Conversation, error)
	CreateConversation(ctx context.Context, title string) (*models.Conversation, error)
	UpdateConversationTitle(ctx context.Context, id uuid.UUID, title string) (*models.Conversation, error)
	DeleteConversation(ctx context.Context, id uuid.UUID) error
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]models.MessageWithSender, error)
	CreateMessage(ctx context.Context, req models.CreateMessageRequest) (*models.Message, error)
}

var _ Backend = (*BackendClient)(nil)

// BackendClient talks to the legalchat API. The session lives in the cookie jar.
type BackendClient struct {
	baseURL *url.URL
	http    *http.Client
	logger  *zap.Logger
}

// NewBackendClient creates a client for the API rooted at baseURL.
func NewBackendClient(baseURL string, timeout time.Duration, logger *zap.Logger) (*BackendClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q: scheme and host are required", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &BackendClient{
		baseURL: u,
		http:    &http.Client{Jar: jar, Timeout: timeout},
		logger:  logger.Named("backend_client"),
	}, nil
}

// SessionToken returns the current session cookie value, or "" when there is none.
func (c *BackendClient) SessionToken() string {
	for _, ck := range c.http.Jar.Cookies(c.baseURL) {
		if ck.Name == auth.SessionCookieName {
			return ck.Value
		}
	}
	return ""
}

// SetSessionToken restores a session cookie saved by an earlier run.
func (c *BackendClient) SetSessionToken(token string) {
	if token == "" {
		return
	}
	c.http.Jar.SetCookies(c.baseURL, []*http.Cookie{{
		Name:  auth.SessionCookieName,
		Value: token,
		Path:  "/",
	}})
}

// --- Auth ---

func (c *BackendClient) Signup(ctx context.Context, req models.SignupRequest) (*models.SignupResponse, error) {
	var resp models.SignupResponse
	if err := c.do(ctx, http.MethodPost, "/api/signup", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *BackendClient) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/login", models.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *BackendClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout", nil, nil)
}

func (c *BackendClient) Status(ctx context.Context) (*models.AuthStatusResponse, error) {
	var resp models.AuthStatusResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Conversations ---

func (c *BackendClient) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	var convs []models.Conversation
	if err := c.do(ctx, http.MethodGet, "/api/conversations", nil, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

func (c *BackendClient) CreateConversation(ctx context.Context, title string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := c.do(ctx, http.MethodPost, "/api/conversations", models.CreateConversationRequest{Title: title}, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (c *BackendClient) UpdateConversationTitle(ctx context.Context, id uuid.UUID, title string) (*models.Conversation, error) {
	var conv models.Conversation
	body := models.UpdateConversationRequest{Title: &title}
	if err := c.do(ctx, http.MethodPut, "/api/conversations/"+id.String(), body, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (c *BackendClient) DeleteConversation(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/conversations/"+id.String(), nil, nil)
}

// --- Messages ---

func (c *BackendClient) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]models.MessageWithSender, error) {
	var msgs []models.MessageWithSender
	if err := c.do(ctx, http.MethodGet, "/api/messages/"+conversationID.String(), nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *BackendClient) CreateMessage(ctx context.Context, req models.CreateMessageRequest) (*models.Message, error) {
	var msg models.Message
	if err := c.do(ctx, http.MethodPost, "/api/messages", req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// do sends body as JSON and decodes a 2xx response into out (when non-nil).
func (c *BackendClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend response",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}
	var body models.ErrorResponse
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
	} else if text := strings.TrimSpace(string(data)); text != "" {
		apiErr.Message = text
	}
	return apiErr
}
