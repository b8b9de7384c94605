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

// ConversationService defines the conversation operations the handlers need.
type ConversationService interface {
	Create(ctx context.Context, ownerID uuid.UUID, title string) (*models.Conversation, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]models.Conversation, error)
	Get(ctx context.Context, id, ownerID uuid.UUID) (*models.Conversation, error)
	Update(ctx context.Context, id, ownerID uuid.UUID, title, status *string) (*models.Conversation, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) (*models.Conversation, error)
}

type ConversationHandler struct {
	service ConversationService
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewConversationHandler(svc ConversationService, m *metrics.Metrics, logger *zap.Logger) *ConversationHandler {
	return &ConversationHandler{service: svc, metrics: m, logger: logger.Named("conversation_handler")}
}

// HandleCreateConversation handles POST /api/conversations.
func (h *ConversationHandler) HandleCreateConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req models.CreateConversationRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	conv, err := h.service.Create(r.Context(), userID, req.Title)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	h.metrics.ConversationCreated()
	httputil.RespondJSON(w, http.StatusCreated, conv)
}

// HandleListConversations handles GET /api/conversations. Newest first.
func (h *ConversationHandler) HandleListConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	convs, err := h.service.List(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, convs)
}

// HandleGetConversation handles GET /api/conversations/{id}.
func (h *ConversationHandler) HandleGetConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	id, ok := uuidParam(r, "id")
	if !ok {
		respondServiceError(w, h.logger, services.ErrConversationNotFound)
		return
	}

	conv, err := h.service.Get(r.Context(), id, userID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, conv)
}

// HandleUpdateConversation handles PUT /api/conversations/{id}.
func (h *ConversationHandler) HandleUpdateConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	id, ok := uuidParam(r, "id")
	if !ok {
		respondServiceError(w, h.logger, services.ErrConversationNotFound)
		return
	}

	var req models.UpdateConversationRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	conv, err := h.service.Update(r.Context(), id, userID, req.Title, req.Status)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, conv)
}

// HandleDeleteConversation handles DELETE /api/conversations/{id}.
func (h *ConversationHandler) HandleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	id, ok := uuidParam(r, "id")
	if !ok {
		respondServiceError(w, h.logger, services.ErrConversationNotFound)
		return
	}

	if _, err := h.service.Delete(r.Context(), id, userID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models.MessageResponse{Message: "Conversation deleted"})
}
