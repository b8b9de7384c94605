package models

import (
	"time"

	"github.com/google/uuid"
)

// --- Request Structs ---

// SignupRequest defines the expected body for the signup endpoint.
type SignupRequest struct {
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	UserType    string  `json:"userType"`
	BarNumber   *string `json:"barNumber,omitempty"`
}

// LoginRequest defines the expected body for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateConversationRequest defines the body for POST /api/conversations.
type CreateConversationRequest struct {
	Title string `json:"title"`
}

// UpdateConversationRequest defines the body for PUT /api/conversations/{id}.
// Both fields are optional but at least one must be present.
type UpdateConversationRequest struct {
	Title  *string `json:"title,omitempty"`
	Status *string `json:"status,omitempty"`
}

// CreateMessageRequest defines the body for POST /api/messages.
type CreateMessageRequest struct {
	ConversationID uuid.UUID `json:"conversationId"`
	MessageType    string    `json:"messageType,omitempty"`
	MessageContent string    `json:"messageContent"`
	SenderRole     string    `json:"senderRole"`
}

// --- Response Structs ---

// UserResponse defines the user information returned by the API.
// Avoid returning sensitive info like HashedPassword.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	UserType  string    `json:"userType"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// NewUserResponse maps a db user to its public summary.
func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		UserType:  u.UserType,
		CreatedAt: u.CreatedAt,
	}
}

// SignupResponse is returned with 201 after a successful signup.
type SignupResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// AuthResponse defines the response body for a successful login.
type AuthResponse struct {
	Message string        `json:"message"`
	User    UserResponse  `json:"user"`
	BotUser *UserResponse `json:"botUser,omitempty"`
}

// AuthStatusResponse is returned by GET /api/auth/status.
type AuthStatusResponse struct {
	IsAuthenticated bool          `json:"isAuthenticated"`
	User            *UserResponse `json:"user,omitempty"`
	BotUser         *UserResponse `json:"botUser,omitempty"`
}

// MessageResponse is a generic acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse defines the standard structure for API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}
