package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DeyvidJesus/gomech-ai-service/internal/http/response"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
	"github.com/DeyvidJesus/gomech-ai-service/internal/simulation"
)

type Simulator interface {
	Price(ctx context.Context, b *simulation.Baseline, changePercent float64) (simulation.PriceResult, error)
	Capacity(ctx context.Context, b *simulation.Baseline, additional int) (simulation.CapacityResult, error)
	Marketing(ctx context.Context, b *simulation.Baseline, cost, conversion float64) (simulation.MarketingResult, error)
	Compare(ctx context.Context, b *simulation.Baseline, specs []simulation.ScenarioSpec) (simulation.Comparison, error)
	Query(ctx context.Context, question string, b *simulation.Baseline) (simulation.Result, error)
}

type SimulationHandler struct {
	log       *logger.Logger
	simulator Simulator
}

func NewSimulationHandler(log *logger.Logger, simulator Simulator) *SimulationHandler {
	return &SimulationHandler{log: log.With("handler", "simulation"), simulator: simulator}
}

type priceReq struct {
	Baseline           *simulation.Baseline `json:"baseline"`
	PriceChangePercent float64              `json:"price_change_percent"`
}

type capacityReq struct {
	Baseline              *simulation.Baseline `json:"baseline"`
	AdditionalTechnicians int                  `json:"additional_technicians"`
}

type marketingReq struct {
	Baseline           *simulation.Baseline `json:"baseline"`
	CampaignCost       float64              `json:"campaign_cost"`
	ExpectedConversion float64              `json:"expected_conversion"`
}

type compareReq struct {
	Baseline  *simulation.Baseline      `json:"baseline"`
	Scenarios []simulation.ScenarioSpec `json:"scenarios"`
}

type queryReq struct {
	Question string               `json:"question" binding:"required"`
	Baseline *simulation.Baseline `json:"baseline"`
}

// POST /simulation/price
func (h *SimulationHandler) Price(c *gin.Context) {
	var req priceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.simulator.Price(c.Request.Context(), req.Baseline, req.PriceChangePercent)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /simulation/capacity
func (h *SimulationHandler) Capacity(c *gin.Context) {
	var req capacityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.simulator.Capacity(c.Request.Context(), req.Baseline, req.AdditionalTechnicians)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /simulation/marketing
func (h *SimulationHandler) Marketing(c *gin.Context) {
	var req marketingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.simulator.Marketing(c.Request.Context(), req.Baseline, req.CampaignCost, req.ExpectedConversion)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /simulation/compare
func (h *SimulationHandler) Compare(c *gin.Context) {
	var req compareReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.simulator.Compare(c.Request.Context(), req.Baseline, req.Scenarios)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /simulation/query
func (h *SimulationHandler) Query(c *gin.Context) {
	var req queryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.simulator.Query(c.Request.Context(), req.Question, req.Baseline)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}
