// Package chatclient drives a chat session against the legalchat backend and
// the answer service: the conversation list, the selected conversation, the
// send flow with optimistic display, and background title generation.
package chatclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"legalchat-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	PlaceholderTitle = "New Chat"
	GreetingText     = "Mar7ba! I am your AI legal assistant. How can I help you today?"
	// contextWindowSize is how many prior messages are sent as memory.
	contextWindowSize = 10
)

// TurnResult is what a successful Send produced.
type TurnResult struct {
	UserMessage      ViewMessage
	AssistantMessage ViewMessage
	Documents        []models.RetrievedDocument
}

// Controller owns the client-side view of a user's conversations.
// All methods are safe for concurrent use. At most one Send runs at a time, and
// while it runs its conversation cannot be reloaded, cleared or deleted (ErrBusy).
type Controller struct {
	backend  Backend
	answerer Answerer
	titles   TitleGenerator
	notifier Notifier
	logger   *zap.Logger
	topK     int
	now      func() time.Time

	mu           sync.Mutex
	view         viewCache
	selected     uuid.UUID
	sending      bool
	sendingConv  uuid.UUID
	documents    []models.RetrievedDocument
	bot          *models.UserResponse
	user         *models.UserResponse
	nextLocalID  uint64
	titlePending map[uuid.UUID]bool

	titleJobs sync.WaitGroup
}

type ControllerDeps struct {
	Backend  Backend
	Answerer Answerer
	Titles   TitleGenerator
	Notifier Notifier
	Logger   *zap.Logger
	// TopK defaults to DefaultTopK.
	TopK int
}

func NewController(deps ControllerDeps) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}
	topK := deps.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Controller{
		backend:      deps.Backend,
		answerer:     deps.Answerer,
		titles:       deps.Titles,
		notifier:     notifier,
		logger:       logger.Named("chat_controller"),
		topK:         topK,
		now:          time.Now,
		titlePending: make(map[uuid.UUID]bool),
	}
}

// --- Accessors ---

// Conversations returns a snapshot of the conversation list, most recent first.
func (c *Controller) Conversations() []ConversationView {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ConversationView, 0, len(c.view.convs))
	for _, v := range c.view.convs {
		out = append(out, v.clone())
	}
	return out
}

// Selected returns the selected conversation id, or uuid.Nil.
func (c *Controller) Selected() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Messages returns a snapshot of the messages of conversation id.
func (c *Controller) Messages(id uuid.UUID) []ViewMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v := c.view.get(id); v != nil {
		return append([]ViewMessage(nil), v.Messages...)
	}
	return nil
}

// Conversation returns a snapshot of conversation id.
func (c *Controller) Conversation(id uuid.UUID) (ConversationView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v := c.view.get(id); v != nil {
		return v.clone(), true
	}
	return ConversationView{}, false
}

// Sending reports whether a send is in flight.
func (c *Controller) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// Documents returns the documents retrieved for the latest answer.
func (c *Controller) Documents() []models.RetrievedDocument {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.RetrievedDocument(nil), c.documents...)
}

// User returns the signed-in user as reported by Bootstrap.
func (c *Controller) User() *models.UserResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// Bot returns the assistant's public identity, when the backend reported one.
func (c *Controller) Bot() *models.UserResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bot
}

// Wait blocks until background title jobs have finished.
func (c *Controller) Wait() {
	c.titleJobs.Wait()
}

// --- Lifecycle ---

// Bootstrap checks the session and loads the conversation list. A user with
// no conversations gets a fresh one; otherwise the most recent is selected.
func (c *Controller) Bootstrap(ctx context.Context) error {
	status, err := c.backend.Status(ctx)
	if err != nil {
		c.notifier.Notify(LevelError, "Error fetching data")
		return fmt.Errorf("checking session: %w", err)
	}
	if !status.IsAuthenticated {
		return ErrNotAuthenticated
	}

	convs, err := c.backend.ListConversations(ctx)
	if err != nil {
		c.notifier.Notify(LevelError, "Error fetching data")
		return fmt.Errorf("listing conversations: %w", err)
	}

	c.mu.Lock()
	c.user = status.User
	c.bot = status.BotUser
	c.view.reset(convs)
	c.selected = uuid.Nil
	c.mu.Unlock()

	c.logger.Info("session bootstrapped", zap.Int("conversations", len(convs)))

	if len(convs) == 0 {
		return c.CreateNewChat(ctx)
	}
	return c.Select(ctx, convs[0].ID)
}

// Select makes id the active conversation, loading its messages on first use.
func (c *Controller) Select(ctx context.Context, id uuid.UUID) error {
	c.mu.Lock()
	v := c.view.get(id)
	if v == nil {
		c.mu.Unlock()
		return ErrNoConversation
	}
	c.selected = id
	needsLoad := v.State == Unloaded
	c.mu.Unlock()

	if needsLoad {
		return c.LoadMessages(ctx, id)
	}
	return nil
}

// LoadMessages replaces the view's messages of id with the backend's.
// On failure the previous messages and state are kept.
func (c *Controller) LoadMessages(ctx context.Context, id uuid.UUID) error {
	c.mu.Lock()
	v := c.view.get(id)
	if v == nil {
		c.mu.Unlock()
		return ErrNoConversation
	}
	if c.busyWith(id) {
		c.mu.Unlock()
		return ErrBusy
	}
	prev := v.State
	v.State = MessagesLoading
	c.mu.Unlock()

	msgs, err := c.backend.ListMessages(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		v.State = prev
		c.notifier.Notify(LevelError, "Error fetching messages")
		return fmt.Errorf("loading messages: %w", err)
	}
	v.Messages = make([]ViewMessage, 0, len(msgs))
	for _, m := range msgs {
		v.Messages = append(v.Messages, ViewMessage{
			LocalID:    c.allocLocalID(),
			ID:         m.ID,
			SenderRole: m.SenderRole,
			Content:    m.MessageContent,
			SentAt:     m.SentAt,
		})
	}
	v.State = Ready
	return nil
}

// CreateNewChat creates a conversation titled "New Chat" with the assistant's
// greeting, puts it first in the list and selects it.
func (c *Controller) CreateNewChat(ctx context.Context) error {
	conv, err := c.backend.CreateConversation(ctx, PlaceholderTitle)
	if err != nil {
		c.notifier.Notify(LevelError, "Error creating new chat")
		return fmt.Errorf("creating conversation: %w", err)
	}

	greeting, err := c.backend.CreateMessage(ctx, models.CreateMessageRequest{
		ConversationID: conv.ID,
		MessageType:    models.MessageTypeText,
		MessageContent: GreetingText,
		SenderRole:     models.SenderRoleChatbot,
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	v := &ConversationView{Conversation: *conv, State: Ready, Messages: []ViewMessage{}}
	if greeting != nil {
		v.Messages = append(v.Messages, ViewMessage{
			LocalID:    c.allocLocalID(),
			ID:         greeting.ID,
			SenderRole: greeting.SenderRole,
			Content:    greeting.MessageContent,
			SentAt:     greeting.SentAt,
		})
	}
	c.view.prepend(v)
	c.selected = conv.ID

	if err != nil {
		// The conversation exists without its greeting; keep it, as the backend does.
		c.notifier.Notify(LevelError, "Error creating new chat")
		return fmt.Errorf("creating greeting: %w", err)
	}
	return nil
}

// ClearChat resets conversation id to the greeting and placeholder title.
// The backend keeps the old messages; a new greeting and the title are persisted.
func (c *Controller) ClearChat(ctx context.Context, id uuid.UUID) error {
	c.mu.Lock()
	v := c.view.get(id)
	if v == nil {
		c.mu.Unlock()
		return ErrNoConversation
	}
	if c.busyWith(id) {
		c.mu.Unlock()
		return ErrBusy
	}
	v.Messages = []ViewMessage{c.newViewMessage(models.SenderRoleChatbot, GreetingText)}
	v.Title = PlaceholderTitle
	v.State = Ready
	greetingLocalID := v.Messages[0].LocalID
	c.mu.Unlock()

	var errs []error
	saved, err := c.backend.CreateMessage(ctx, models.CreateMessageRequest{
		ConversationID: id,
		MessageType:    models.MessageTypeText,
		MessageContent: GreetingText,
		SenderRole:     models.SenderRoleChatbot,
	})
	if err != nil {
		errs = append(errs, fmt.Errorf("persisting greeting: %w", err))
	} else {
		c.mu.Lock()
		v.confirm(greetingLocalID, saved)
		c.mu.Unlock()
	}

	if _, err := c.backend.UpdateConversationTitle(ctx, id, PlaceholderTitle); err != nil {
		errs = append(errs, fmt.Errorf("resetting title: %w", err))
	}

	if len(errs) > 0 {
		c.notifier.Notify(LevelError, "Error clearing chat")
		return errors.Join(errs...)
	}
	return nil
}

// DeleteChat deletes conversation id. If it was selected, the first remaining
// conversation is selected and loaded; with none left nothing is selected.
func (c *Controller) DeleteChat(ctx context.Context, id uuid.UUID) error {
	c.mu.Lock()
	busy := c.busyWith(id)
	c.mu.Unlock()
	if busy {
		return ErrBusy
	}

	if err := c.backend.DeleteConversation(ctx, id); err != nil {
		c.notifier.Notify(LevelError, "Error deleting conversation")
		return fmt.Errorf("deleting conversation: %w", err)
	}

	c.mu.Lock()
	c.view.remove(id)
	wasSelected := c.selected == id
	var next uuid.UUID
	if wasSelected {
		c.selected = uuid.Nil
		if len(c.view.convs) > 0 {
			next = c.view.convs[0].ID
		}
	}
	c.mu.Unlock()

	c.notifier.Notify(LevelSuccess, "Conversation deleted")

	if wasSelected && next != uuid.Nil {
		c.mu.Lock()
		c.selected = next
		c.mu.Unlock()
		return c.LoadMessages(ctx, next)
	}
	return nil
}

// --- Send ---

// Send runs one turn: the user's message is shown and persisted, the answer
// service is asked with the recent history, and the answer is shown and
// persisted. A failed answer removes the user's message from the view only.
func (c *Controller) Send(ctx context.Context, input string) (*TurnResult, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return nil, ErrEmptyInput
	}

	c.mu.Lock()
	conv := c.view.get(c.selected)
	if conv == nil {
		c.mu.Unlock()
		return nil, ErrNoConversation
	}
	if c.sending {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	userMsg := c.newViewMessage(models.SenderRoleUser, text)
	conv.Messages = append(conv.Messages, userMsg)
	c.sending = true
	c.sendingConv = conv.ID
	convID := conv.ID
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.sending = false
		c.sendingConv = uuid.Nil
		c.mu.Unlock()
	}()

	saved, err := c.backend.CreateMessage(ctx, models.CreateMessageRequest{
		ConversationID: convID,
		MessageType:    models.MessageTypeText,
		MessageContent: text,
		SenderRole:     models.SenderRoleUser,
	})
	if err != nil {
		c.notifier.Notify(LevelError, "Error sending message")
		return nil, fmt.Errorf("persisting message: %w", err)
	}

	c.mu.Lock()
	conv.confirm(userMsg.LocalID, saved)
	userMsg.ID, userMsg.SentAt = saved.ID, saved.SentAt
	memory := contextWindow(conv.Messages, userMsg.LocalID)
	c.mu.Unlock()

	resp, err := c.answerer.Query(ctx, models.QueryRequest{Query: text, TopK: c.topK, Memory: memory})
	if err != nil {
		c.mu.Lock()
		conv.remove(userMsg.LocalID)
		c.mu.Unlock()
		c.logger.Warn("answer service failed", zap.Stringer("conversation_id", convID), zap.Error(err))
		c.notifier.Notify(LevelError, "Error sending message")
		return nil, fmt.Errorf("querying answer service: %w", err)
	}

	docs := resp.RetrievedDocuments
	if docs == nil {
		docs = []models.RetrievedDocument{}
	}

	c.mu.Lock()
	c.documents = docs
	answer := c.newViewMessage(models.SenderRoleChatbot, resp.Answer)
	conv.Messages = append(conv.Messages, answer)
	needsTitle := conv.Title == PlaceholderTitle && !c.titlePending[convID]
	if needsTitle {
		c.titlePending[convID] = true
	}
	c.mu.Unlock()

	savedAnswer, err := c.backend.CreateMessage(ctx, models.CreateMessageRequest{
		ConversationID: convID,
		MessageType:    models.MessageTypeText,
		MessageContent: resp.Answer,
		SenderRole:     models.SenderRoleChatbot,
	})
	if err != nil {
		c.logger.Warn("failed to persist answer", zap.Stringer("conversation_id", convID), zap.Error(err))
		c.notifier.Notify(LevelError, "Error saving response")
	} else {
		c.mu.Lock()
		conv.confirm(answer.LocalID, savedAnswer)
		answer.ID, answer.SentAt = savedAnswer.ID, savedAnswer.SentAt
		c.mu.Unlock()
	}

	if needsTitle {
		c.titleJobs.Add(1)
		go c.deriveTitle(context.WithoutCancel(ctx), convID, text, resp.Answer)
	}

	return &TurnResult{
		UserMessage:      userMsg,
		AssistantMessage: answer,
		Documents:        append([]models.RetrievedDocument(nil), docs...),
	}, nil
}

// deriveTitle names a placeholder-titled conversation after its first exchange.
// Failures leave the placeholder in place.
func (c *Controller) deriveTitle(ctx context.Context, convID uuid.UUID, userMessage, answer string) {
	defer c.titleJobs.Done()
	defer func() {
		c.mu.Lock()
		delete(c.titlePending, convID)
		c.mu.Unlock()
	}()

	if c.titles == nil {
		return
	}

	title, err := c.titles.GenerateTitle(ctx, userMessage, answer)
	if err == nil {
		title, err = SanitizeTitle(title)
	}
	if err != nil {
		c.logger.Warn("title generation failed", zap.Stringer("conversation_id", convID), zap.Error(err))
		c.notifier.Notify(LevelWarning, "Could not generate a title for this chat")
		return
	}

	if _, err := c.backend.UpdateConversationTitle(ctx, convID, title); err != nil {
		c.logger.Warn("failed to save title", zap.Stringer("conversation_id", convID), zap.Error(err))
		c.notifier.Notify(LevelWarning, "Could not save the chat title")
		return
	}

	c.mu.Lock()
	if v := c.view.get(convID); v != nil {
		v.Title = title
	}
	c.mu.Unlock()
	c.logger.Debug("conversation titled", zap.Stringer("conversation_id", convID), zap.String("title", title))
}

// contextWindow maps the last messages before the one with localID onto the
// answer service's memory format.
func contextWindow(msgs []ViewMessage, localID uint64) []models.MemoryMessage {
	end := len(msgs)
	for i := range msgs {
		if msgs[i].LocalID == localID {
			end = i
			break
		}
	}
	start := end - contextWindowSize
	if start < 0 {
		start = 0
	}
	memory := make([]models.MemoryMessage, 0, end-start)
	for _, m := range msgs[start:end] {
		memory = append(memory, models.MemoryMessage{
			Role:    models.MemoryRoleFor(m.SenderRole),
			Content: m.Content,
		})
	}
	return memory
}

// newViewMessage must be called with mu held.
// busyWith reports whether a Send into conversation id is in flight. Callers hold c.mu.
func (c *Controller) busyWith(id uuid.UUID) bool {
	return c.sending && c.sendingConv == id
}

func (c *Controller) newViewMessage(role, content string) ViewMessage {
	return ViewMessage{
		LocalID:    c.allocLocalID(),
		SenderRole: role,
		Content:    content,
		SentAt:     c.now(),
	}
}

func (c *Controller) allocLocalID() uint64 {
	c.nextLocalID++
	return c.nextLocalID
}
