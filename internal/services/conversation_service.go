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

// ConversationService enforces ownership for every conversation read and write.
type ConversationService struct {
	store  store.Store
	logger *zap.Logger
}

func NewConversationService(s store.Store, logger *zap.Logger) *ConversationService {
	return &ConversationService{store: s, logger: logger.Named("conversation_service")}
}

func (s *ConversationService) Create(ctx context.Context, ownerID uuid.UUID, title string) (*models.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, validationError("Title is required")
	}

	conv, err := s.store.CreateConversation(ctx, store.CreateConversationParams{
		ID:     uuid.New(),
		UserID: ownerID,
		Title:  title,
		Status: models.ConversationStatusActive,
	})
	if err != nil {
		s.logger.Error("Error creating conversation", zap.Stringer("user_id", ownerID), zap.Error(err))
		return nil, internalError("create conversation", err)
	}
	return conv, nil
}

// List returns the owner's conversations, newest first.
func (s *ConversationService) List(ctx context.Context, ownerID uuid.UUID) ([]models.Conversation, error) {
	convs, err := s.store.ListConversationsByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("Error listing conversations", zap.Stringer("user_id", ownerID), zap.Error(err))
		return nil, internalError("list conversations", err)
	}
	return convs, nil
}

func (s *ConversationService) Get(ctx context.Context, id, ownerID uuid.UUID) (*models.Conversation, error) {
	conv, err := s.store.GetConversationByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, s.mapStoreError("get conversation", id, err)
	}
	return conv, nil
}

// Update changes title and/or status. At least one must be given.
func (s *ConversationService) Update(ctx context.Context, id, ownerID uuid.UUID, title, status *string) (*models.Conversation, error) {
	if title == nil && status == nil {
		return nil, validationError("No fields to update")
	}
	if title != nil && strings.TrimSpace(*title) == "" {
		return nil, validationError("Title must not be empty")
	}
	if status != nil && strings.TrimSpace(*status) == "" {
		return nil, validationError("Status must not be empty")
	}

	conv, err := s.store.UpdateConversation(ctx, store.UpdateConversationParams{
		ID:     id,
		UserID: ownerID,
		Title:  trimmedOrNil(title),
		Status: trimmedOrNil(status),
	})
	if err != nil {
		return nil, s.mapStoreError("update conversation", id, err)
	}
	return conv, nil
}

// Delete removes the conversation and, through the cascade, its messages.
func (s *ConversationService) Delete(ctx context.Context, id, ownerID uuid.UUID) (*models.Conversation, error) {
	conv, err := s.store.DeleteConversation(ctx, id, ownerID)
	if err != nil {
		return nil, s.mapStoreError("delete conversation", id, err)
	}
	s.logger.Info("Conversation deleted", zap.Stringer("conversation_id", id), zap.Stringer("user_id", ownerID))
	return conv, nil
}

// Authorize is the single ownership predicate used by the message endpoints.
func (s *ConversationService) Authorize(ctx context.Context, conversationID, callerID uuid.UUID) error {
	_, err := s.Get(ctx, conversationID, callerID)
	return err
}

// mapStoreError folds "missing" and "not yours" into the same error.
func (s *ConversationService) mapStoreError(op string, id uuid.UUID, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrConversationNotFound
	}
	s.logger.Error("Conversation store failure", zap.String("op", op), zap.Stringer("conversation_id", id), zap.Error(err))
	return internalError(op, err)
}
