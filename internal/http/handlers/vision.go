package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DeyvidJesus/gomech-ai-service/internal/http/response"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
	"github.com/DeyvidJesus/gomech-ai-service/internal/vision"
)

type VisionRunner interface {
	Run(ctx context.Context, req vision.Request) (vision.Outcome, error)
}

type VisionHandler struct {
	log    *logger.Logger
	runner VisionRunner
}

func NewVisionHandler(log *logger.Logger, runner VisionRunner) *VisionHandler {
	return &VisionHandler{log: log.With("handler", "vision"), runner: runner}
}

// POST /vision/analyze
func (h *VisionHandler) Analyze(c *gin.Context) {
	var req vision.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.runner.Run(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}
