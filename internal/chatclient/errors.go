package chatclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrEmptyInput       = errors.New("message is empty")
	ErrNoConversation   = errors.New("no conversation selected")
	// ErrBusy is returned while a previous send is still in flight.
	ErrBusy = errors.New("a message is already being sent")
)

// APIError is a non-2xx response from the backend or the answer service.
type APIError struct {
	StatusCode int
	// Message is the server's {"error": ...} text when it sent one.
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// Is lets errors.Is(err, ErrNotAuthenticated) match a 401.
func (e *APIError) Is(target error) bool {
	return target == ErrNotAuthenticated && e.StatusCode == http.StatusUnauthorized
}
