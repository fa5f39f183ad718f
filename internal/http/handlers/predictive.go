package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DeyvidJesus/gomech-ai-service/internal/http/response"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
	"github.com/DeyvidJesus/gomech-ai-service/internal/predictive"
)

type Predictor interface {
	PredictDelay(req predictive.DelayRequest) predictive.DelayPrediction
	PredictBottlenecks(ctx context.Context, req predictive.BottleneckRequest) (predictive.Forecast, error)
	AnalyzePatterns(history []predictive.HistoricalOrder) (predictive.Patterns, error)
	ProactiveAlerts(ctx context.Context, state predictive.AlertState) ([]predictive.Alert, error)
	Train() predictive.TrainResult
}

type PredictiveHandler struct {
	log       *logger.Logger
	predictor Predictor
}

func NewPredictiveHandler(log *logger.Logger, predictor Predictor) *PredictiveHandler {
	return &PredictiveHandler{log: log.With("handler", "predictive"), predictor: predictor}
}

type patternsReq struct {
	History []predictive.HistoricalOrder `json:"history"`
}

// POST /predictive/delay
func (h *PredictiveHandler) Delay(c *gin.Context) {
	var req predictive.DelayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	response.RespondOK(c, h.predictor.PredictDelay(req))
}

// POST /predictive/bottlenecks
func (h *PredictiveHandler) Bottlenecks(c *gin.Context) {
	var req predictive.BottleneckRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}
	forecast, err := h.predictor.PredictBottlenecks(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, forecast)
}

// POST /predictive/patterns
func (h *PredictiveHandler) Patterns(c *gin.Context) {
	var req patternsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	patterns, err := h.predictor.AnalyzePatterns(req.History)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, patterns)
}

// POST /predictive/alerts
func (h *PredictiveHandler) Alerts(c *gin.Context) {
	var state predictive.AlertState
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&state); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}
	alerts, err := h.predictor.ProactiveAlerts(c.Request.Context(), state)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"alerts": alerts, "total": len(alerts)})
}

// POST /predictive/train
func (h *PredictiveHandler) Train(c *gin.Context) {
	response.RespondOK(c, h.predictor.Train())
}
