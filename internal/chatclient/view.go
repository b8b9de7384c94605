package chatclient

import (
	"time"

	"legalchat-backend/internal/models"

	"github.com/google/uuid"
)

// LoadState tracks whether a conversation's messages have been fetched.
type LoadState int

const (
	Unloaded LoadState = iota
	MessagesLoading
	Ready
)

func (s LoadState) String() string {
	switch s {
	case MessagesLoading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "unloaded"
	}
}

// ViewMessage is a message as the client shows it. ID is uuid.Nil until the
// backend has accepted the message; LocalID is unique within a Controller.
type ViewMessage struct {
	LocalID    uint64
	ID         uuid.UUID
	SenderRole string
	Content    string
	SentAt     time.Time
}

// ConversationView is the client's copy of a conversation and its messages.
type ConversationView struct {
	models.Conversation
	State    LoadState
	Messages []ViewMessage
}

func (v *ConversationView) clone() ConversationView {
	out := *v
	out.Messages = append([]ViewMessage(nil), v.Messages...)
	return out
}

func (v *ConversationView) indexOf(localID uint64) int {
	for i := range v.Messages {
		if v.Messages[i].LocalID == localID {
			return i
		}
	}
	return -1
}

// remove drops the message with localID. It reports whether anything was removed.
func (v *ConversationView) remove(localID uint64) bool {
	i := v.indexOf(localID)
	if i < 0 {
		return false
	}
	v.Messages = append(v.Messages[:i], v.Messages[i+1:]...)
	return true
}

// confirm records the server id and timestamp of a persisted message.
func (v *ConversationView) confirm(localID uint64, saved *models.Message) {
	if i := v.indexOf(localID); i >= 0 && saved != nil {
		v.Messages[i].ID = saved.ID
		v.Messages[i].SentAt = saved.SentAt
	}
}

// viewCache holds conversations most recent first, the order the backend lists them.
type viewCache struct {
	convs []*ConversationView
}

func (c *viewCache) get(id uuid.UUID) *ConversationView {
	for _, v := range c.convs {
		if v.ID == id {
			return v
		}
	}
	return nil
}

func (c *viewCache) prepend(v *ConversationView) {
	c.convs = append([]*ConversationView{v}, c.convs...)
}

func (c *viewCache) remove(id uuid.UUID) {
	for i, v := range c.convs {
		if v.ID == id {
			c.convs = append(c.convs[:i], c.convs[i+1:]...)
			return
		}
	}
}

// reset replaces the cache with freshly listed conversations, none loaded.
func (c *viewCache) reset(convs []models.Conversation) {
	c.convs = make([]*ConversationView, 0, len(convs))
	for _, conv := range convs {
		c.convs = append(c.convs, &ConversationView{Conversation: conv, State: Unloaded})
	}
}
