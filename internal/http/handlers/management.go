package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DeyvidJesus/gomech-ai-service/internal/http/response"
	"github.com/DeyvidJesus/gomech-ai-service/internal/management"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
)

// Advisor resolves the operational snapshot and answers open questions.
type Advisor interface {
	Dataset(ctx context.Context, data *management.Dataset) management.Dataset
	Answer(ctx context.Context, question string, data *management.Dataset) (management.Result, error)
}

type ManagementHandler struct {
	log     *logger.Logger
	advisor Advisor
	now     func() time.Time
}

func NewManagementHandler(log *logger.Logger, advisor Advisor) *ManagementHandler {
	return &ManagementHandler{log: log.With("handler", "management"), advisor: advisor, now: time.Now}
}

type reportReq struct {
	ReportType string              `json:"report_type" binding:"required"`
	Format     string              `json:"format"`
	Data       *management.Dataset `json:"data"`
}

type recommendationsReq struct {
	Question string              `json:"question" binding:"required"`
	Data     *management.Dataset `json:"data"`
}

// dataset binds an optional inline snapshot. An empty body loads it from the database.
func (h *ManagementHandler) dataset(c *gin.Context) (management.Dataset, bool) {
	var body management.Dataset
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return management.Dataset{}, false
		}
	}
	return h.advisor.Dataset(c.Request.Context(), &body), true
}

// POST /management/profitability
func (h *ManagementHandler) Profitability(c *gin.Context) {
	d, ok := h.dataset(c)
	if !ok {
		return
	}
	response.RespondOK(c, management.Profitability(d.ServiceOrders))
}

// POST /management/bottlenecks
func (h *ManagementHandler) Bottlenecks(c *gin.Context) {
	d, ok := h.dataset(c)
	if !ok {
		return
	}
	response.RespondOK(c, management.Bottlenecks(d))
}

// POST /management/benchmark
func (h *ManagementHandler) Benchmark(c *gin.Context) {
	d, ok := h.dataset(c)
	if !ok {
		return
	}
	report, err := management.Benchmark(d.Organizations)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, report)
}

// POST /management/insights
func (h *ManagementHandler) Insights(c *gin.Context) {
	d, ok := h.dataset(c)
	if !ok {
		return
	}
	response.RespondOK(c, gin.H{
		"insights":    management.OperationalInsights(d),
		"predictions": management.Predictions(d),
	})
}

// POST /management/report
func (h *ManagementHandler) Report(c *gin.Context) {
	var req reportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	d := h.advisor.Dataset(c.Request.Context(), req.Data)
	rendered, err := management.GenerateReport(req.ReportType, req.Format, d, h.now())
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	if rendered.Format == management.FormatCSV {
		c.Header("Content-Disposition", `attachment; filename="`+rendered.Kind+`.csv"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(rendered.Text))
		return
	}
	response.RespondOK(c, rendered)
}

// POST /management/recommendations
func (h *ManagementHandler) Recommendations(c *gin.Context) {
	var req recommendationsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.advisor.Answer(c.Request.Context(), req.Question, req.Data)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}
