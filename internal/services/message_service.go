package services

import (
	"context"
	"errors"
	"strings"

	"legalchat-backend/internal/models"
	"legalchat-backend/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MessageService persists conversation turns. Chatbot turns are always attributed to the bot identity.
type MessageService struct {
	store         store.Store
	conversations *ConversationService
	bot           *BotIdentity
	logger        *zap.Logger
}

func NewMessageService(s store.Store, conversations *ConversationService, bot *BotIdentity, logger *zap.Logger) *MessageService {
	return &MessageService{
		store:         s,
		conversations: conversations,
		bot:           bot,
		logger:        logger.Named("message_service"),
	}
}

func (s *MessageService) Create(ctx context.Context, callerID uuid.UUID, req models.CreateMessageRequest) (*models.Message, error) {
	role := strings.ToLower(strings.TrimSpace(req.SenderRole))
	if req.ConversationID == uuid.Nil || strings.TrimSpace(req.MessageContent) == "" || role == "" {
		return nil, validationError("Conversation ID, message content, and sender role are required")
	}

	var senderID uuid.UUID
	switch role {
	case models.SenderRoleUser:
		senderID = callerID
	case models.SenderRoleChatbot:
		senderID = s.bot.ID
	default:
		return nil, validationError(`senderRole must be either "user" or "chatbot"`)
	}

	messageType := strings.ToLower(strings.TrimSpace(req.MessageType))
	if messageType == "" {
		messageType = models.MessageTypeText
	}
	if messageType != models.MessageTypeText {
		return nil, validationError("Unsupported messageType %q", req.MessageType)
	}

	if err := s.conversations.Authorize(ctx, req.ConversationID, callerID); err != nil {
		return nil, err
	}

	msg, err := s.store.CreateMessage(ctx, store.CreateMessageParams{
		ID:             uuid.New(),
		ConversationID: req.ConversationID,
		SenderID:       senderID,
		MessageType:    messageType,
		MessageContent: req.MessageContent,
		SenderRole:     role,
	})
	if err != nil {
		s.logger.Error("Error creating message", zap.Stringer("conversation_id", req.ConversationID), zap.Error(err))
		return nil, internalError("create message", err)
	}
	return msg, nil
}

// List returns the conversation's messages in send order, after checking ownership.
func (s *MessageService) List(ctx context.Context, callerID, conversationID uuid.UUID) ([]models.MessageWithSender, error) {
	if err := s.conversations.Authorize(ctx, conversationID, callerID); err != nil {
		return nil, err
	}

	msgs, err := s.store.ListMessagesByConversation(ctx, conversationID)
	if err != nil {
		s.logger.Error("Error listing messages", zap.Stringer("conversation_id", conversationID), zap.Error(err))
		return nil, internalError("list messages", err)
	}
	return msgs, nil
}

// Delete removes a message the caller sent.
func (s *MessageService) Delete(ctx context.Context, callerID, messageID uuid.UUID) (*models.Message, error) {
	msg, err := s.store.DeleteMessage(ctx, messageID, callerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrMessageNotFound
		}
		s.logger.Error("Error deleting message", zap.Stringer("message_id", messageID), zap.Error(err))
		return nil, internalError("delete message", err)
	}
	return msg, nil
}
