package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"legalchat-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	ok, err := CheckPasswordHash("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPasswordHash("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = CheckPasswordHash("anything", "not-a-bcrypt-hash")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRandomSecret(t *testing.T) {
	a, err := RandomSecret(16)
	require.NoError(t, err)
	b, err := RandomSecret(16)
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestSessionToken_RoundTrip(t *testing.T) {
	sid, uid := uuid.New(), uuid.New()
	token, err := NewSessionToken(sid, uid, "secret", time.Now().Add(time.Hour))
	require.NoError(t, err)

	claims, err := ParseSessionToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, sid, claims.SessionID)
	assert.Equal(t, uid, claims.UserID)
}

func TestSessionToken_Rejected(t *testing.T) {
	sid, uid := uuid.New(), uuid.New()

	token, err := NewSessionToken(sid, uid, "secret", time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = ParseSessionToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewSessionToken(sid, uid, "secret", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = ParseSessionToken(expired, "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseSessionToken("garbage", "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	_, ok := GetUserIDFromContext(ctx)
	assert.False(t, ok)

	user := &models.User{ID: uuid.New()}
	sid := uuid.New()
	ctx = WithSession(ctx, user, sid)

	id, ok := GetUserIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user.ID, id)

	gotSID, ok := SessionIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, sid, gotSID)
}

func TestSessionCookie(t *testing.T) {
	cfg := CookieConfig{Secret: "secret", SameSite: http.SameSiteLaxMode}
	sid, uid := uuid.New(), uuid.New()

	rec := httptest.NewRecorder()
	require.NoError(t, cfg.SetSessionCookie(rec, sid, uid, time.Now().Add(time.Hour)))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	claims, err := cfg.ReadSessionCookie(req)
	require.NoError(t, err)
	assert.Equal(t, sid, claims.SessionID)

	_, err = cfg.ReadSessionCookie(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, IsNoCookie(err))

	tampered := httptest.NewRequest(http.MethodGet, "/", nil)
	tampered.AddCookie(&http.Cookie{Name: SessionCookieName, Value: cookies[0].Value + "x"})
	_, err = cfg.ReadSessionCookie(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
