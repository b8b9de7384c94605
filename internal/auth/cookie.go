package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// CookieConfig controls how the session cookie is written.
type CookieConfig struct {
	Secret   string
	Secure   bool
	SameSite http.SameSite
}

// SetSessionCookie writes a signed cookie that references the session until expiresAt.
func (c CookieConfig) SetSessionCookie(w http.ResponseWriter, sessionID, userID uuid.UUID, expiresAt time.Time) error {
	token, err := NewSessionToken(sessionID, userID, c.Secret, expiresAt)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
	return nil
}

// ClearSessionCookie expires the session cookie on the client.
func (c CookieConfig) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

// ReadSessionCookie returns the verified claims of the request's session cookie.
// http.ErrNoCookie is returned when the request carries none.
func (c CookieConfig) ReadSessionCookie(r *http.Request) (*SessionClaims, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, err
	}
	if cookie.Value == "" {
		return nil, http.ErrNoCookie
	}
	claims, err := ParseSessionToken(cookie.Value, c.Secret)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// IsNoCookie reports whether err means the request simply had no session cookie.
func IsNoCookie(err error) bool {
	return errors.Is(err, http.ErrNoCookie)
}
