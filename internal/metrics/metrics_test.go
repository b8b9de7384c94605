package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/conversations/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/conversations/"+id, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/conversations/{id}", http.MethodGet, "404")))
}

func TestDomainCountersAreExposed(t *testing.T) {
	m := New()
	m.SignupCompleted("lawyer")
	m.LoginAttempt("invalid")
	m.ConversationCreated()
	m.MessageCreated("chatbot")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	for _, want := range []string{
		`legalchat_signups_total{user_type="lawyer"} 1`,
		`legalchat_logins_total{result="invalid"} 1`,
		`legalchat_conversations_created_total 1`,
		`legalchat_messages_created_total{sender_role="chatbot"} 1`,
	} {
		assert.True(t, strings.Contains(body, want), "missing %q", want)
	}
}
