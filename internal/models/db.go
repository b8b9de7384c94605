package models

import (
	"time"

	"github.com/google/uuid"
)

// User types accepted at signup, plus the reserved type of the assistant account.
const (
	UserTypeLawyer  = "lawyer"
	UserTypeClient  = "client"
	UserTypeStudent = "student"
	UserTypeChatbot = "chatbot"
)

// Sender roles stored on every message.
const (
	SenderRoleUser    = "user"
	SenderRoleChatbot = "chatbot"
)

const (
	MessageTypeText          = "text"
	ConversationStatusActive = "active"
)

// User represents a user in the database.
type User struct {
	ID             uuid.UUID `db:"id"`
	FirstName      string    `db:"first_name"`
	LastName       string    `db:"last_name"`
	Email          string    `db:"email"`
	HashedPassword string    `db:"password"`
	PhoneNumber    *string   `db:"phone_number"` // Nullable
	UserType       string    `db:"user_type"`
	BarNumber      *string   `db:"bar_number"` // Only set for lawyers
	CreatedAt      time.Time `db:"created_at"`
}

// Session is a server-side login session. The cookie only references it.
type Session struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

// Expired reports whether the session is no longer usable at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Conversation is a chat thread owned by exactly one user.
type Conversation struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Message is a single turn in a conversation. Messages are never updated.
type Message struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ConversationID uuid.UUID `db:"conversation_id" json:"conversation_id"`
	SenderID       uuid.UUID `db:"sender_id" json:"sender_id"`
	MessageType    string    `db:"message_type" json:"message_type"`
	MessageContent string    `db:"message_content" json:"message_content"`
	SenderRole     string    `db:"sender_role" json:"sender_role"`
	SentAt         time.Time `db:"sent_at" json:"sent_at"`
}

// MessageWithSender is a message joined with the display fields of its sender.
type MessageWithSender struct {
	Message
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	UserType  string `db:"user_type" json:"user_type"`
}
