package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DeyvidJesus/gomech-ai-service/internal/http/response"
	"github.com/DeyvidJesus/gomech-ai-service/internal/memory"
	"github.com/DeyvidJesus/gomech-ai-service/internal/models"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
)

type Assistant interface {
	Handle(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error)
}

type Conversations interface {
	History(ctx context.Context, threadID string) ([]memory.Message, error)
	Clear(ctx context.Context, threadID string) error
}

type ActionConfirmer interface {
	Confirm(ctx context.Context, req models.ConfirmRequest) (models.ConfirmResponse, error)
}

type ChatHandler struct {
	log       *logger.Logger
	assistant Assistant
	history   Conversations
	confirmer ActionConfirmer
}

func NewChatHandler(log *logger.Logger, assistant Assistant, history Conversations, confirmer ActionConfirmer) *ChatHandler {
	return &ChatHandler{
		log:       log.With("handler", "chat"),
		assistant: assistant,
		history:   history,
		confirmer: confirmer,
	}
}

// POST /chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	resp, err := h.assistant.Handle(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, resp)
}

// GET /chat/:thread_id/messages
func (h *ChatHandler) Messages(c *gin.Context) {
	threadID := strings.TrimSpace(c.Param("thread_id"))
	msgs, err := h.history.History(c.Request.Context(), threadID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	out := models.HistoryResponse{ThreadID: threadID, Messages: make([]models.ChatMessage, 0, len(msgs))}
	for _, m := range msgs {
		out.Messages = append(out.Messages, models.ChatMessage{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	response.RespondOK(c, out)
}

// DELETE /chat/:thread_id
func (h *ChatHandler) Delete(c *gin.Context) {
	threadID := strings.TrimSpace(c.Param("thread_id"))
	if err := h.history.Clear(c.Request.Context(), threadID); err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"thread_id": threadID, "deleted": true})
}

// POST /action/confirm
func (h *ChatHandler) Confirm(c *gin.Context) {
	var req models.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	resp, err := h.confirmer.Confirm(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, resp)
}
