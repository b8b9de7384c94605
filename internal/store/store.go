package store

import (
	"context"
	"errors"
	"time"

	db_models "legalchat-backend/internal/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a specific record is not found.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a unique constraint.
var ErrDuplicate = errors.New("record already exists")

// CreateUserParams contains parameters for creating a user. The password must already be hashed.
type CreateUserParams struct {
	ID             uuid.UUID
	FirstName      string
	LastName       string
	Email          string
	HashedPassword string
	PhoneNumber    *string
	UserType       string
	BarNumber      *string
}

// CreateSessionParams contains parameters for creating a login session.
type CreateSessionParams struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ExpiresAt time.Time
}

// CreateConversationParams contains parameters for creating a conversation.
type CreateConversationParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Title  string
	Status string
}

// UpdateConversationParams contains parameters for updating a conversation.
// Rows are matched on both ID and UserID.
type UpdateConversationParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Title  *string // Pointer to allow optional update
	Status *string // Pointer to allow optional update
}

// CreateMessageParams contains parameters for creating a message.
type CreateMessageParams struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	MessageType    string
	MessageContent string
	SenderRole     string
}

// Store defines the interface for database operations.
// This allows for mocking in tests and backend switching (postgres in production, sqlite for dev).
type Store interface {
	// User operations
	GetUserByEmail(ctx context.Context, email string) (*db_models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*db_models.User, error)
	CreateUser(ctx context.Context, arg CreateUserParams) (*db_models.User, error)

	// Session operations
	CreateSession(ctx context.Context, arg CreateSessionParams) (*db_models.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*db_models.Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error

	// Conversation operations, all scoped by owner
	CreateConversation(ctx context.Context, arg CreateConversationParams) (*db_models.Conversation, error)
	ListConversationsByOwner(ctx context.Context, userID uuid.UUID) ([]db_models.Conversation, error)
	GetConversationByIDAndOwner(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*db_models.Conversation, error)
	UpdateConversation(ctx context.Context, arg UpdateConversationParams) (*db_models.Conversation, error)
	DeleteConversation(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*db_models.Conversation, error)

	// Message operations. No ownership checks happen here.
	CreateMessage(ctx context.Context, arg CreateMessageParams) (*db_models.Message, error)
	ListMessagesByConversation(ctx context.Context, conversationID uuid.UUID) ([]db_models.MessageWithSender, error)
	DeleteMessage(ctx context.Context, id uuid.UUID, senderID uuid.UUID) (*db_models.Message, error)

	Ping(ctx context.Context) error
	Close()
}
