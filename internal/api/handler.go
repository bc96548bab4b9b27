package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/RichardoC/parentpal/internal/auth"
	"github.com/RichardoC/parentpal/internal/db"
	"github.com/RichardoC/parentpal/internal/llm"
	"github.com/RichardoC/parentpal/internal/metrics"
	"github.com/RichardoC/parentpal/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	saveTimeout = 10 * time.Second

	msgUnauthorized = "Unauthorized"
	msgNotFound     = "Not Found"
	msgServerError  = "An error occurred while processing your request"
	msgStreamError  = "An error occurred."
	msgDiverged     = "Messages do not continue the stored chat"
)

// ChatStore is the persistence the handlers need; *db.Database implements it.
type ChatStore interface {
	SaveChat(ctx context.Context, chat *models.Chat) error
	GetChatByID(ctx context.Context, id string) (*models.Chat, error)
	GetChatsByUserID(ctx context.Context, userID string) ([]models.ChatSummary, error)
	DeleteChatByID(ctx context.Context, id string) error
}

type Handler struct {
	store  ChatStore
	llm    *llm.Service
	logger *zap.Logger
}

func NewHandler(store ChatStore, llmService *llm.Service, logger *zap.Logger) *Handler {
	return &Handler{
		store:  store,
		llm:    llmService,
		logger: logger,
	}
}

type ChatRequest struct {
	ID       string           `json:"id"`
	Messages []models.Message `json:"messages"`
}

// HandleChat streams the model's reply to the posted conversation and, once
// the stream has finished, persists input and reply under the session user.
func (h *Handler) HandleChat(c *gin.Context) {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		c.String(http.StatusUnauthorized, msgUnauthorized)
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Invalid request body")
		return
	}

	messages := models.NonEmpty(req.Messages)
	if len(messages) == 0 {
		c.String(http.StatusBadRequest, "No messages")
		return
	}

	chatID := req.ID
	if chatID == "" {
		chatID = uuid.NewString()
	} else {
		existing, err := h.store.GetChatByID(c.Request.Context(), chatID)
		switch {
		case err == nil && !existing.OwnedBy(session.UserID):
			c.String(http.StatusUnauthorized, msgUnauthorized)
			return
		case err == nil && !models.Extends(messages, existing.Messages):
			// Edits and regenerations would be dropped by the append-only store.
			c.String(http.StatusConflict, msgDiverged)
			return
		case err != nil && !errors.Is(err, db.ErrNotFound):
			h.logger.Error("Failed to load chat", zap.Error(err), zap.String("chat_id", chatID))
			c.String(http.StatusInternalServerError, msgServerError)
			return
		}
	}

	c.Header("X-Chat-Id", chatID)
	stream := newDataStream(c)
	messageID := uuid.NewString()
	if err := stream.StartStep(messageID); err != nil {
		return
	}

	result, err := h.llm.StreamChat(c.Request.Context(), messages, stream.Text)
	if err != nil {
		h.logger.Error("Failed to stream chat",
			zap.Error(err),
			zap.String("chat_id", chatID),
			zap.String("user_id", session.UserID))
		_ = stream.Error(msgStreamError)
		return
	}
	result.Messages[0].ID = messageID

	_ = stream.FinishStep(result.FinishReason, result.Usage)
	_ = stream.Finish(result.FinishReason, result.Usage)

	h.saveChat(c.Request.Context(), &models.Chat{
		ID:       chatID,
		UserID:   session.UserID,
		Messages: append(messages, models.NonEmpty(result.Messages)...),
	})
}

// saveChat runs after the reply is complete. A failure is logged and counted
// but never reaches the client, whose response has already been sent.
func (h *Handler) saveChat(ctx context.Context, chat *models.Chat) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()

	if err := h.store.SaveChat(ctx, chat); err != nil {
		metrics.ChatSaveFailuresTotal.Inc()
		h.logger.Error("Failed to save chat",
			zap.Error(err),
			zap.String("chat_id", chat.ID),
			zap.String("user_id", chat.UserID))
		return
	}
	h.logger.Debug("Saved chat",
		zap.String("chat_id", chat.ID),
		zap.Int("messages", len(chat.Messages)))
}

// ownedChat resolves ?id= to a chat the session user owns, writing the error
// response itself when it cannot.
func (h *Handler) ownedChat(c *gin.Context) (*models.Chat, bool) {
	id := c.Query("id")
	if id == "" {
		c.String(http.StatusNotFound, msgNotFound)
		return nil, false
	}

	session, ok := auth.SessionFromContext(c)
	if !ok {
		c.String(http.StatusUnauthorized, msgUnauthorized)
		return nil, false
	}

	chat, err := h.store.GetChatByID(c.Request.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		c.String(http.StatusNotFound, msgNotFound)
		return nil, false
	}
	if err != nil {
		h.logger.Error("Failed to get chat", zap.Error(err), zap.String("chat_id", id))
		c.String(http.StatusInternalServerError, msgServerError)
		return nil, false
	}

	if !chat.OwnedBy(session.UserID) {
		c.String(http.StatusUnauthorized, msgUnauthorized)
		return nil, false
	}
	return chat, true
}

func (h *Handler) GetChat(c *gin.Context) {
	chat, ok := h.ownedChat(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, chat)
}

func (h *Handler) DeleteChat(c *gin.Context) {
	chat, ok := h.ownedChat(c)
	if !ok {
		return
	}

	err := h.store.DeleteChatByID(c.Request.Context(), chat.ID)
	if errors.Is(err, db.ErrNotFound) {
		c.String(http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		h.logger.Error("Failed to delete chat", zap.Error(err), zap.String("chat_id", chat.ID))
		c.String(http.StatusInternalServerError, msgServerError)
		return
	}

	metrics.ChatsDeletedTotal.Inc()
	c.String(http.StatusOK, "Chat deleted")
}

func (h *Handler) GetHistory(c *gin.Context) {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		c.String(http.StatusUnauthorized, msgUnauthorized)
		return
	}

	chats, err := h.store.GetChatsByUserID(c.Request.Context(), session.UserID)
	if err != nil {
		h.logger.Error("Failed to get chats",
			zap.Error(err),
			zap.String("user_id", session.UserID))
		c.String(http.StatusInternalServerError, msgServerError)
		return
	}

	h.logger.Debug("Retrieved chats",
		zap.Int("count", len(chats)),
		zap.String("user_id", session.UserID))
	c.JSON(http.StatusOK, chats)
}

func (h *Handler) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, models.DefaultCatalog())
}
