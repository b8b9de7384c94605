package handlers

import (
	"context"
	"net/http"

	"legalchat-backend/internal/auth"
	"legalchat-backend/internal/metrics"
	"legalchat-backend/internal/models"
	"legalchat-backend/internal/services"
	"legalchat-backend/pkg/httputil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MessageService defines the message operations the handlers need.
type MessageService interface {
	Create(ctx context.Context, callerID uuid.UUID, req models.CreateMessageRequest) (*models.Message, error)
	List(ctx context.Context, callerID, conversationID uuid.UUID) ([]models.MessageWithSender, error)
	Delete(ctx context.Context, callerID, messageID uuid.UUID) (*models.Message, error)
}

type MessageHandler struct {
	service MessageService
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewMessageHandler(svc MessageService, m *metrics.Metrics, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{service: svc, metrics: m, logger: logger.Named("message_handler")}
}

// HandleCreateMessage handles POST /api/messages.
func (h *MessageHandler) HandleCreateMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req models.CreateMessageRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	msg, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	h.metrics.MessageCreated(msg.SenderRole)
	httputil.RespondJSON(w, http.StatusCreated, msg)
}

// HandleListMessages handles GET /api/messages/{id}, where id is the conversation id.
// The route shares its wildcard name with DELETE /api/messages/{id}.
func (h *MessageHandler) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	conversationID, ok := uuidParam(r, "id")
	if !ok {
		respondServiceError(w, h.logger, services.ErrConversationNotFound)
		return
	}

	msgs, err := h.service.List(r.Context(), userID, conversationID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, msgs)
}

// HandleDeleteMessage handles DELETE /api/messages/{id}. Only the sender may delete.
func (h *MessageHandler) HandleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	id, ok := uuidParam(r, "id")
	if !ok {
		respondServiceError(w, h.logger, services.ErrMessageNotFound)
		return
	}

	if _, err := h.service.Delete(r.Context(), userID, id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models.MessageResponse{Message: "Message deleted"})
}
