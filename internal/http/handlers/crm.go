package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DeyvidJesus/gomech-ai-service/internal/crm"
	"github.com/DeyvidJesus/gomech-ai-service/internal/http/response"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
)

type CRMAnalyzer interface {
	Analyze(ctx context.Context, req crm.AnalyzeRequest) (crm.Analysis, error)
}

type CRMHandler struct {
	log      *logger.Logger
	analyzer CRMAnalyzer
}

func NewCRMHandler(log *logger.Logger, analyzer CRMAnalyzer) *CRMHandler {
	return &CRMHandler{log: log.With("handler", "crm"), analyzer: analyzer}
}

// POST /crm/analyze
func (h *CRMHandler) Analyze(c *gin.Context) {
	var req crm.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.analyzer.Analyze(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /crm/review-reminder
func (h *CRMHandler) ReviewReminder(c *gin.Context) {
	var req crm.ReviewReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	msg, err := crm.ReviewReminder(req)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"message": msg})
}

// POST /crm/satisfaction-survey
func (h *CRMHandler) SatisfactionSurvey(c *gin.Context) {
	var req crm.SatisfactionSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	msg, err := crm.SatisfactionSurvey(req)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"message": msg})
}
