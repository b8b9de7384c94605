package chatclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "Tenant Deposit Rights", "Tenant Deposit Rights"},
		{"quoted", "\"Tenant Deposit Rights\"", "Tenant Deposit Rights"},
		{"trailing punctuation", "Divorce Custody Question.", "Divorce Custody Question"},
		{"label and extra lines", "Title: Inheritance Shares\n\nThis title captures...", "Inheritance Shares"},
		{"too many words", "One Two Three Four Five Six Seven", "One Two Three Four Five"},
		{"too long", "Extraordinarily Comprehensive Administrative Proceedings", "Extraordinarily Comprehensive"},
		{"markdown", "**Labour Contract Termination**", "Labour Contract Termination"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeTitle(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, utf8.RuneCountInString(got), 30)
			assert.LessOrEqual(t, len(strings.Fields(got)), 5)
		})
	}
}

func TestSanitizeTitleRejectsEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\"\"", "...\n"} {
		_, err := SanitizeTitle(raw)
		assert.ErrorIs(t, err, ErrEmptyTitle, "raw %q", raw)
	}
}

func TestOpenAITitleGenerator(t *testing.T) {
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gemini-2.0-flash", body.Model)
		require.Len(t, body.Messages, 1)
		prompt = body.Messages[0].Content

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"\"Limitation Periods in Tunisian Civil Law\"\n"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	gen := NewOpenAITitleGenerator(TitleConfig{BaseURL: srv.URL + "/v1", APIKey: "test-key", Model: "gemini-2.0-flash"})
	title, err := gen.GenerateTitle(context.Background(), "What is the limitation period?", "Fifteen years.")
	require.NoError(t, err)
	assert.Equal(t, "Limitation Periods in Tunisian", title)
	assert.Contains(t, prompt, `starts with this message: "What is the limitation period?"`)
	assert.Contains(t, prompt, `includes this response: "Fifteen years."`)
}

func TestOpenAITitleGeneratorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	gen := NewOpenAITitleGenerator(TitleConfig{BaseURL: srv.URL, APIKey: "k", Model: "m"})
	_, err := gen.GenerateTitle(context.Background(), "q", "a")
	assert.Error(t, err)
}
