package chatclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"legalchat-backend/internal/api"
	"legalchat-backend/internal/auth"
	"legalchat-backend/internal/handlers"
	"legalchat-backend/internal/metrics"
	"legalchat-backend/internal/models"
	"legalchat-backend/internal/services"
	"legalchat-backend/internal/store/sqlite"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newBackend starts the real API over an in-memory store.
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()
	st, err := sqlite.New(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(st.Close)

	bot, err := services.EnsureBotUser(context.Background(), st, services.BotConfig{
		Email: "bot@houyemai.com", FirstName: "HouyemAI", LastName: "Assistant",
	}, logger)
	require.NoError(t, err)

	authSvc := services.NewAuthService(st, bot, time.Hour, logger)
	convSvc := services.NewConversationService(st, logger)
	msgSvc := services.NewMessageService(st, convSvc, bot, logger)
	m := metrics.New()
	cookies := auth.CookieConfig{Secret: "test-secret", SameSite: http.SameSiteLaxMode}

	srv := httptest.NewServer(api.NewRouter(api.RouterDependencies{
		AuthHandler:         handlers.NewAuthHandler(authSvc, cookies, m, logger),
		ConversationHandler: handlers.NewConversationHandler(convSvc, m, logger),
		MessageHandler:      handlers.NewMessageHandler(msgSvc, m, logger),
		Sessions:            authSvc,
		Cookies:             cookies,
		Store:               st,
		Metrics:             m,
		Logger:              logger,
	}))
	t.Cleanup(srv.Close)
	return srv
}

// signedInClient returns a BackendClient with a fresh student account.
func signedInClient(t *testing.T, srv *httptest.Server, email string) *BackendClient {
	t.Helper()
	c, err := NewBackendClient(srv.URL, 5*time.Second, zap.NewNop())
	require.NoError(t, err)
	_, err = c.Signup(context.Background(), models.SignupRequest{
		FirstName: "Yasmine", LastName: "Trabelsi", Email: email, Password: "pw-123456", UserType: models.UserTypeStudent,
	})
	require.NoError(t, err)
	return c
}

// answerService fakes POST /query and records what it received.
type answerService struct {
	*httptest.Server

	mu       sync.Mutex
	requests []models.QueryRequest
	status   int
	answer   string
	docs     []models.RetrievedDocument
}

func newAnswerService(t *testing.T) *answerService {
	t.Helper()
	a := &answerService{
		status: http.StatusOK,
		answer: "The general limitation period is fifteen years.",
		docs:   []models.RetrievedDocument{{Header: "COC Art. 402", Content: "Actions are time-barred after fifteen years."}},
	}
	a.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.QueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		a.mu.Lock()
		a.requests = append(a.requests, req)
		status, answer, docs := a.status, a.answer, a.docs
		a.mu.Unlock()

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.QueryResponse{Answer: answer, RetrievedDocuments: docs})
	}))
	t.Cleanup(a.Close)
	return a
}

func (a *answerService) failWith(status int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = status
}

func (a *answerService) lastRequest(t *testing.T) models.QueryRequest {
	t.Helper()
	a.mu.Lock()
	defer a.mu.Unlock()
	require.NotEmpty(t, a.requests)
	return a.requests[len(a.requests)-1]
}

type titleFunc func(ctx context.Context, userMessage, assistantReply string) (string, error)

func (f titleFunc) GenerateTitle(ctx context.Context, userMessage, assistantReply string) (string, error) {
	return f(ctx, userMessage, assistantReply)
}

type notification struct {
	Level   Level
	Message string
}

type recorder struct {
	mu    sync.Mutex
	items []notification
}

func (r *recorder) Notify(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, notification{level, message})
}

func (r *recorder) all() []notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification(nil), r.items...)
}

func (r *recorder) has(level Level) bool {
	for _, n := range r.all() {
		if n.Level == level {
			return true
		}
	}
	return false
}
