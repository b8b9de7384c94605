package services

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map these onto HTTP status codes.
var (
	ErrValidation = errors.New("validation failed")
	ErrAuth       = errors.New("authentication failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrInternal   = errors.New("internal error")
)

// Error is a service failure with a message that is safe to show to API callers.
type Error struct {
	kind  error
	msg   string
	cause error
}

func (e *Error) Error() string { return e.msg }

// Unwrap exposes both the kind and, for internal failures, the underlying cause.
func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

// Kind returns the taxonomy sentinel the error belongs to.
func (e *Error) Kind() error { return e.kind }

var (
	ErrInvalidCredentials   = &Error{kind: ErrAuth, msg: "Invalid credentials"}
	ErrNotAuthenticated     = &Error{kind: ErrAuth, msg: "Not authenticated"}
	ErrEmailTaken           = &Error{kind: ErrConflict, msg: "User with this email already exists"}
	ErrAlreadyAuthenticated = &Error{kind: ErrConflict, msg: "Already authenticated"}
	ErrConversationNotFound = &Error{kind: ErrNotFound, msg: "Conversation not found or not authorized"}
	ErrMessageNotFound      = &Error{kind: ErrNotFound, msg: "Message not found or not authorized"}
)

func validationError(format string, args ...any) error {
	return &Error{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

// internalError hides the cause from callers; it stays reachable through errors.Is/As for logging.
func internalError(op string, cause error) error {
	return &Error{kind: ErrInternal, msg: "Internal server error", cause: fmt.Errorf("%s: %w", op, cause)}
}
