package simulation

import (
	"fmt"
	"math"
	"sort"

	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
)

// Model constants.
const (
	priceElasticity      = -0.8
	ordersPerTechMonth   = 20
	repressedDemandShare = 0.3
	saturatedUsage       = 90.0
	costPerLead          = 10.0
	ordersPerNewClient   = 2
)

// Scenario names.
const (
	ScenarioPrice     = "price_change"
	ScenarioCapacity  = "capacity_change"
	ScenarioMarketing = "marketing_campaign"
)

// Baseline is the current state of the shop. Nil fields take the default of
// each scenario.
type Baseline struct {
	MonthlyRevenue      *float64 `json:"monthly_revenue,omitempty"`
	MonthlyOrders       *int     `json:"monthly_orders,omitempty"`
	AvgTicket           *float64 `json:"avg_ticket,omitempty"`
	ProfitMarginPercent *float64 `json:"profit_margin_percent,omitempty"`
	TechnicianCount     *int     `json:"technician_count,omitempty"`
	TechCostMonthly     *float64 `json:"tech_cost_monthly,omitempty"`
}

func (b Baseline) IsZero() bool {
	return b.MonthlyRevenue == nil && b.MonthlyOrders == nil && b.AvgTicket == nil &&
		b.ProfitMarginPercent == nil && b.TechnicianCount == nil && b.TechCostMonthly == nil
}

// Metrics is the common ground used to compare scenarios.
type Metrics struct {
	Scenario       string  `json:"scenario_type"`
	RevenueChange  float64 `json:"revenue_change"`
	NetImpact      float64 `json:"net_impact"`
	ROI            float64 `json:"roi"`
	Recommendation string  `json:"recommendation"`
}

type PriceProjection struct {
	NewAvgTicket         float64 `json:"new_avg_ticket"`
	NewMonthlyOrders     int     `json:"new_monthly_orders"`
	NewMonthlyRevenue    float64 `json:"new_monthly_revenue"`
	RevenueChange        float64 `json:"revenue_change"`
	RevenueChangePercent float64 `json:"revenue_change_percent"`
	NewProfitMargin      float64 `json:"new_profit_margin"`
	ProfitChange         float64 `json:"profit_change"`
}

type PriceResult struct {
	Scenario           string          `json:"scenario"`
	PriceChangePercent float64         `json:"price_change_percent"`
	CurrentAvgTicket   float64         `json:"current_avg_ticket"`
	CurrentRevenue     float64         `json:"current_monthly_revenue"`
	CurrentOrders      int             `json:"current_monthly_orders"`
	Projection         PriceProjection `json:"projection"`
	ImpactLevel        string          `json:"impact_level"`
	Recommendation     string          `json:"recommendation"`
}

func (r PriceResult) Metrics() Metrics {
	return Metrics{
		Scenario:       r.Scenario,
		RevenueChange:  r.Projection.RevenueChange,
		NetImpact:      r.Projection.ProfitChange,
		Recommendation: r.Recommendation,
	}
}

// SimulatePrice applies a constant demand elasticity of -0.8 to a price
// change and assumes costs stay flat.
func SimulatePrice(b Baseline, changePercent float64) PriceResult {
	revenue := floatOr(b.MonthlyRevenue, 0)
	volume := intOr(b.MonthlyOrders, 0)
	ticket := floatOr(b.AvgTicket, 0)
	margin := floatOr(b.ProfitMarginPercent, 40)

	newTicket := ticket * (1 + changePercent/100)
	demandChange := changePercent * priceElasticity
	newVolume := int(float64(volume) * (1 + demandChange/100))
	newRevenue := newTicket * float64(newVolume)
	revenueChange := newRevenue - revenue
	var revenueChangePct float64
	if revenue > 0 {
		revenueChangePct = revenueChange / revenue * 100
	}

	costRatio := (100 - margin) / 100
	currentProfit := revenue * margin / 100
	newProfit := newRevenue - revenue*costRatio
	var newMargin float64
	if newRevenue > 0 {
		newMargin = newProfit / newRevenue * 100
	}

	positive := revenueChange > 0
	level := "NEUTRAL"
	switch {
	case positive:
		level = "POSITIVE"
	case revenueChange < -revenue*0.05:
		level = "NEGATIVE"
	}

	var rec string
	pct := pyNumber(changePercent)
	abs := pyNumber(math.Abs(changePercent))
	switch {
	case changePercent > 0 && positive:
		rec = fmt.Sprintf("✅ Aumento de %s%% é benéfico. Receita aumenta R$ %.2f", pct, revenueChange)
	case changePercent > 0:
		rec = fmt.Sprintf("⚠️ Aumento de %s%% reduz receita devido à queda de demanda", pct)
	case positive:
		rec = fmt.Sprintf("✅ Redução de %s%% atrai mais clientes, aumentando receita", abs)
	default:
		rec = fmt.Sprintf("❌ Redução de %s%% reduz receita significativamente", abs)
	}

	return PriceResult{
		Scenario:           ScenarioPrice,
		PriceChangePercent: changePercent,
		CurrentAvgTicket:   ticket,
		CurrentRevenue:     revenue,
		CurrentOrders:      volume,
		Projection: PriceProjection{
			NewAvgTicket:         round(newTicket, 2),
			NewMonthlyOrders:     newVolume,
			NewMonthlyRevenue:    round(newRevenue, 2),
			RevenueChange:        round(revenueChange, 2),
			RevenueChangePercent: round(revenueChangePct, 2),
			NewProfitMargin:      round(newMargin, 2),
			ProfitChange:         round(newProfit-currentProfit, 2),
		},
		ImpactLevel:    level,
		Recommendation: rec,
	}
}

type CapacityProjection struct {
	NewTechnicians    int      `json:"new_technicians"`
	NewCapacity       int      `json:"new_capacity"`
	NewMonthlyOrders  int      `json:"new_monthly_orders"`
	NewCapacityUsage  float64  `json:"new_capacity_usage"`
	NewMonthlyRevenue float64  `json:"new_monthly_revenue"`
	RevenueChange     float64  `json:"revenue_change"`
	TechCostChange    float64  `json:"tech_cost_change"`
	NetImpact         float64  `json:"net_impact"`
	ROIPercent        float64  `json:"roi_percent"`
	PaybackMonths     *float64 `json:"payback_months"`
}

type CapacityResult struct {
	Scenario              string             `json:"scenario"`
	AdditionalTechnicians int                `json:"additional_technicians"`
	CurrentTechnicians    int                `json:"current_technicians"`
	CurrentCapacityUsage  float64            `json:"current_capacity_usage"`
	Projection            CapacityProjection `json:"projection"`
	IsBeneficial          bool               `json:"is_beneficial"`
	Recommendation        string             `json:"recommendation"`
}

func (r CapacityResult) Metrics() Metrics {
	return Metrics{
		Scenario:       r.Scenario,
		RevenueChange:  r.Projection.RevenueChange,
		NetImpact:      r.Projection.NetImpact,
		ROI:            r.Projection.ROIPercent,
		Recommendation: r.Recommendation,
	}
}

// SimulateCapacity adds (or removes) technicians. A shop at 90% capacity or
// more is assumed to have 30% repressed demand that new hires can absorb.
func SimulateCapacity(b Baseline, additional int) (CapacityResult, error) {
	techs := intOr(b.TechnicianCount, 5)
	orders := intOr(b.MonthlyOrders, 100)
	ticket := floatOr(b.AvgTicket, 500)
	revenue := floatOr(b.MonthlyRevenue, 50000)
	techCost := floatOr(b.TechCostMonthly, 3500)

	if techs <= 0 {
		return CapacityResult{}, fmt.Errorf("%w: technician_count deve ser positivo", apierr.ErrInvalidInput)
	}
	newTechs := techs + additional
	if newTechs < 0 {
		return CapacityResult{}, fmt.Errorf("%w: não é possível remover %d de %d técnico(s)", apierr.ErrInvalidInput, -additional, techs)
	}

	capacity := techs * ordersPerTechMonth
	usage := float64(orders) / float64(capacity) * 100
	newCapacity := newTechs * ordersPerTechMonth

	repressed := 0
	if usage >= saturatedUsage {
		repressed = int(float64(capacity) * repressedDemandShare)
	}
	newOrders := int(float64(orders) * float64(newTechs) / float64(techs))
	if additional > 0 {
		newOrders = orders + repressed
	}
	var newUsage float64
	if newCapacity > 0 {
		newUsage = float64(newOrders) / float64(newCapacity) * 100
	}

	newRevenue := float64(newOrders) * ticket
	revenueChange := newRevenue - revenue
	costChange := float64(newTechs)*techCost - float64(techs)*techCost
	net := revenueChange - costChange
	var roi float64
	if costChange != 0 {
		roi = net / math.Abs(costChange) * 100
	}
	var payback *float64
	if revenueChange > 0 {
		p := round(math.Abs(costChange/revenueChange), 1)
		payback = &p
	}

	beneficial := net > 0
	var rec string
	switch {
	case additional > 0 && beneficial:
		rec = fmt.Sprintf("✅ Contratar %d técnico(s) gera retorno de R$ %.2f/mês", additional, net)
	case additional > 0:
		rec = fmt.Sprintf("❌ Contratar %d técnico(s) não é viável no momento (ROI negativo)", additional)
	case beneficial:
		rec = fmt.Sprintf("⚠️ Reduzir %d técnico(s) economiza R$ %.2f/mês", -additional, math.Abs(costChange))
	default:
		rec = fmt.Sprintf("❌ Reduzir %d técnico(s) prejudica receita significativamente", -additional)
	}

	return CapacityResult{
		Scenario:              ScenarioCapacity,
		AdditionalTechnicians: additional,
		CurrentTechnicians:    techs,
		CurrentCapacityUsage:  round(usage, 1),
		Projection: CapacityProjection{
			NewTechnicians:    newTechs,
			NewCapacity:       newCapacity,
			NewMonthlyOrders:  newOrders,
			NewCapacityUsage:  round(newUsage, 1),
			NewMonthlyRevenue: round(newRevenue, 2),
			RevenueChange:     round(revenueChange, 2),
			TechCostChange:    round(costChange, 2),
			NetImpact:         round(net, 2),
			ROIPercent:        round(roi, 1),
			PaybackMonths:     payback,
		},
		IsBeneficial:   beneficial,
		Recommendation: rec,
	}, nil
}

type MarketingProjection struct {
	LeadsReached      int     `json:"leads_reached"`
	NewClients        int     `json:"new_clients"`
	NewOrders         int     `json:"new_orders"`
	AdditionalRevenue float64 `json:"additional_revenue"`
	AdditionalProfit  float64 `json:"additional_profit"`
	NetProfit         float64 `json:"net_profit"`
	ROIPercent        float64 `json:"roi_percent"`
}

type MarketingResult struct {
	Scenario           string              `json:"scenario"`
	CampaignCost       float64             `json:"campaign_cost"`
	ExpectedConversion float64             `json:"expected_conversion"`
	Projection         MarketingProjection `json:"projection"`
	IsProfitable       bool                `json:"is_profitable"`
	Recommendation     string              `json:"recommendation"`
}

func (r MarketingResult) Metrics() Metrics {
	return Metrics{
		Scenario:       r.Scenario,
		RevenueChange:  r.Projection.AdditionalRevenue,
		NetImpact:      r.Projection.NetProfit,
		ROI:            r.Projection.ROIPercent,
		Recommendation: r.Recommendation,
	}
}

// SimulateMarketing estimates campaign ROI at R$10 per lead and two orders
// per converted client.
func SimulateMarketing(b Baseline, cost, conversion float64) (MarketingResult, error) {
	if cost < 0 || conversion < 0 || conversion > 1 {
		return MarketingResult{}, fmt.Errorf("%w: campaign_cost >= 0 e expected_conversion entre 0 e 1", apierr.ErrInvalidInput)
	}
	ticket := floatOr(b.AvgTicket, 500)
	margin := floatOr(b.ProfitMarginPercent, 40) / 100

	leads := int(cost / costPerLead)
	clients := int(float64(leads) * conversion)
	orders := clients * ordersPerNewClient
	revenue := float64(orders) * ticket
	profit := revenue * margin
	net := profit - cost
	var roi float64
	if cost > 0 {
		roi = net / cost * 100
	}

	profitable := net > 0
	rec := fmt.Sprintf("❌ Campanha não viável. Prejuízo de R$ %.2f", math.Abs(net))
	if profitable {
		rec = fmt.Sprintf("✅ Campanha viável! ROI de %.1f%% (R$ %.2f de lucro líquido)", roi, net)
	}

	return MarketingResult{
		Scenario:           ScenarioMarketing,
		CampaignCost:       cost,
		ExpectedConversion: conversion,
		Projection: MarketingProjection{
			LeadsReached:      leads,
			NewClients:        clients,
			NewOrders:         orders,
			AdditionalRevenue: round(revenue, 2),
			AdditionalProfit:  round(profit, 2),
			NetProfit:         round(net, 2),
			ROIPercent:        round(roi, 1),
		},
		IsProfitable:   profitable,
		Recommendation: rec,
	}, nil
}

type RankedScenario struct {
	Number int `json:"scenario_number"`
	Metrics
}

type Comparison struct {
	Comparison []RankedScenario `json:"comparison"`
	Best       RankedScenario   `json:"best_scenario"`
	Summary    string           `json:"summary"`
}

// Compare ranks scenarios by net impact. Numbers follow input order.
func Compare(metrics []Metrics) (Comparison, error) {
	if len(metrics) < 2 {
		return Comparison{}, fmt.Errorf("%w: é necessário pelo menos 2 cenários para comparar", apierr.ErrInvalidInput)
	}
	ranked := make([]RankedScenario, len(metrics))
	for i, m := range metrics {
		ranked[i] = RankedScenario{Number: i + 1, Metrics: m}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].NetImpact > ranked[j].NetImpact })
	best := ranked[0]
	return Comparison{
		Comparison: ranked,
		Best:       best,
		Summary:    fmt.Sprintf("Cenário %d (%s) apresenta melhor resultado", best.Number, best.Scenario),
	}, nil
}

func round(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}

// pyNumber keeps one decimal for whole numbers (5.0) and prints others as is.
func pyNumber(f float64) string {
	if f == math.Trunc(f) {
		return fmt.Sprintf("%.1f", f)
	}
	return fmt.Sprint(f)
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
