package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DeyvidJesus/gomech-ai-service/internal/http/response"
	"github.com/DeyvidJesus/gomech-ai-service/internal/knowledge"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
)

type KnowledgeBase interface {
	Index(ctx context.Context, text string, metadata map[string]string) ([]string, error)
	Ask(ctx context.Context, question string) (knowledge.Answer, error)
	Status(ctx context.Context) knowledge.Status
}

type KnowledgeHandler struct {
	log  *logger.Logger
	base KnowledgeBase
}

func NewKnowledgeHandler(log *logger.Logger, base KnowledgeBase) *KnowledgeHandler {
	return &KnowledgeHandler{log: log.With("handler", "knowledge"), base: base}
}

type indexReq struct {
	Text     string            `json:"text" binding:"required"`
	Metadata map[string]string `json:"metadata"`
}

type askReq struct {
	Question string `json:"question" binding:"required"`
}

// POST /knowledge/index
func (h *KnowledgeHandler) Index(c *gin.Context) {
	var req indexReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ids, err := h.base.Index(c.Request.Context(), req.Text, req.Metadata)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"ids": ids, "chunks": len(ids)})
}

// POST /knowledge/ask
func (h *KnowledgeHandler) Ask(c *gin.Context) {
	var req askReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ans, err := h.base.Ask(c.Request.Context(), req.Question)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, ans)
}

// GET /knowledge/status
func (h *KnowledgeHandler) Status(c *gin.Context) {
	response.RespondOK(c, h.base.Status(c.Request.Context()))
}
