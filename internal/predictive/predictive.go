// Package predictive scores delay risk and projects shop capacity.
package predictive

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
	"github.com/DeyvidJesus/gomech-ai-service/internal/store"
)

const (
	ordersPerTechnician   = 5
	bottleneckThreshold   = 80.0
	mediumRiskThreshold   = 60.0
	defaultForecastDays   = 7
	maxForecastDays       = 90
	defaultCompletionRate = 5.0
	defaultNewOrdersRate  = 7.0
	defaultEstimatedHours = 4.0
	problematicDelayRate  = 30.0
)

var complexServices = map[string]bool{"MOTOR": true, "TRANSMISSAO": true, "SUSPENSAO": true, "CAMBIO": true}

// StatsSource provides the live snapshot used when a request omits fields.
type StatsSource interface {
	Stats(ctx context.Context) (store.OperationalStats, error)
}

// StatsFunc adapts a function to StatsSource.
type StatsFunc func(ctx context.Context) (store.OperationalStats, error)

func (f StatsFunc) Stats(ctx context.Context) (store.OperationalStats, error) { return f(ctx) }

type Service struct {
	stats StatsSource
	log   *logger.Logger
	now   func() time.Time
}

func New(stats StatsSource, log *logger.Logger) *Service {
	return &Service{stats: stats, log: log.With("component", "predictive_agent"), now: time.Now}
}

type DelayRequest struct {
	ID                     string  `json:"id,omitempty"`
	ServiceType            string  `json:"service_type"`
	TechnicianActiveOrders int     `json:"technician_active_orders"`
	PartsAvailable         *bool   `json:"parts_available,omitempty"`
	EstimatedHours         float64 `json:"estimated_hours"`
	DaysOpen               int     `json:"days_open"`
}

type DelayPrediction struct {
	RiskLevel               string   `json:"risk_level"`
	RiskScore               int      `json:"risk_score"`
	ProbabilityDelayPercent int      `json:"probability_delay_percent"`
	RiskMessage             string   `json:"risk_message"`
	RiskFactors             []string `json:"risk_factors"`
	Recommendations         []string `json:"recommendations"`
	EstimatedCompletionDate string   `json:"estimated_completion_date"`
	EstimatedCompletionDays int      `json:"estimated_completion_days"`
}

// PredictDelay adds up the risk factors of one order, capped at 100.
func (s *Service) PredictDelay(req DelayRequest) DelayPrediction {
	kind := strings.ToUpper(strings.TrimSpace(req.ServiceType))
	if kind == "" {
		kind = "GENERAL"
	}
	partsAvailable := req.PartsAvailable == nil || *req.PartsAvailable
	hours := req.EstimatedHours
	if hours <= 0 {
		hours = defaultEstimatedHours
	}

	score := 0
	factors := []string{}
	switch {
	case req.TechnicianActiveOrders > 5:
		score += 30
		factors = append(factors, "Técnico sobrecarregado (>5 OSs ativas)")
	case req.TechnicianActiveOrders > 3:
		score += 15
		factors = append(factors, "Técnico com carga alta (3-5 OSs)")
	}
	if !partsAvailable {
		score += 40
		factors = append(factors, "Peças não disponíveis em estoque")
	}
	if complexServices[kind] {
		score += 20
		factors = append(factors, fmt.Sprintf("Serviço complexo (%s)", kind))
	}
	if hours > 8 {
		score += 15
		factors = append(factors, "Serviço longo (>8 horas estimadas)")
	}
	switch {
	case req.DaysOpen > 7:
		score += 50
		factors = append(factors, "CRÍTICO: OS já está atrasada (>7 dias)")
	case req.DaysOpen > 3:
		score += 25
		factors = append(factors, "ATENÇÃO: OS próxima do prazo (3-7 dias)")
	}
	score = min(score, 100)

	p := DelayPrediction{RiskScore: score, ProbabilityDelayPercent: score, RiskFactors: factors}
	switch {
	case score >= 70:
		p.RiskLevel, p.RiskMessage = "HIGH", "🚨 ALTO RISCO DE ATRASO"
	case score >= 40:
		p.RiskLevel, p.RiskMessage = "MEDIUM", "⚠️ RISCO MODERADO DE ATRASO"
	default:
		p.RiskLevel, p.RiskMessage = "LOW", "✅ BAIXO RISCO DE ATRASO"
	}

	if req.TechnicianActiveOrders > 5 {
		p.Recommendations = append(p.Recommendations, "Redistribuir OSs do técnico")
	}
	if !partsAvailable {
		p.Recommendations = append(p.Recommendations, "Solicitar peças urgentemente")
	}
	if req.DaysOpen > 7 {
		p.Recommendations = append(p.Recommendations, "Priorizar conclusão imediata")
	}
	if complexServices[kind] {
		p.Recommendations = append(p.Recommendations, "Alocar técnico sênior")
	}
	if len(p.Recommendations) == 0 {
		p.Recommendations = []string{"Manter acompanhamento normal"}
	}

	// 8 working hours per day, stretched by the risk score
	p.EstimatedCompletionDays = int(hours / 8 * (1 + float64(score)/100))
	p.EstimatedCompletionDate = s.now().AddDate(0, 0, p.EstimatedCompletionDays).Format("2006-01-02")

	s.log.Info("delay prediction", "order", req.ID, "risk", p.RiskLevel, "score", score)
	return p
}

type BottleneckRequest struct {
	OpenOrders          *int     `json:"open_orders,omitempty"`
	ActiveTechnicians   *int     `json:"active_technicians,omitempty"`
	DailyCompletionRate *float64 `json:"daily_completion_rate,omitempty"`
	DailyNewOrders      *float64 `json:"daily_new_orders,omitempty"`
	LowStockCount       *int     `json:"low_stock_count,omitempty"`
	ForecastDays        int      `json:"forecast_days,omitempty"`
}

type ProjectedDay struct {
	Day                  int     `json:"day"`
	Date                 string  `json:"date"`
	ProjectedOpenOrders  int     `json:"projected_open_orders"`
	CapacityUsagePercent float64 `json:"capacity_usage_percent"`
	BottleneckRisk       string  `json:"bottleneck_risk"`
}

type ForecastAlert struct {
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	DaysUntil int    `json:"days_until"`
}

type ForecastSummary struct {
	CurrentCapacityUsage float64 `json:"current_capacity_usage"`
	ProjectedMaxUsage    float64 `json:"projected_max_usage"`
	RiskLevel            string  `json:"risk_level"`
}

type Forecast struct {
	ForecastDays      int             `json:"forecast_days"`
	Projection        []ProjectedDay  `json:"projection"`
	CriticalDaysCount int             `json:"critical_days_count"`
	Alerts            []ForecastAlert `json:"alerts"`
	Recommendations   []string        `json:"recommendations"`
	Summary           ForecastSummary `json:"summary"`
}

// PredictBottlenecks simulates the open-order queue day by day. Omitted
// inputs come from the live snapshot, or from fixed defaults without one.
func (s *Service) PredictBottlenecks(ctx context.Context, req BottleneckRequest) (Forecast, error) {
	if req.ForecastDays <= 0 {
		req.ForecastDays = defaultForecastDays
	}
	if req.ForecastDays > maxForecastDays {
		return Forecast{}, fmt.Errorf("%w: forecast_days deve ser no máximo %d", apierr.ErrInvalidInput, maxForecastDays)
	}

	open, techs := 0, 1
	completion, arrivals := defaultCompletionRate, defaultNewOrdersRate
	lowStock := 0
	if needsLive(req) {
		live, err := s.live(ctx)
		if err != nil {
			return Forecast{}, err
		}
		if live != nil {
			open, techs = int(live.OpenOrders), live.ActiveTechnicians
			completion, arrivals = live.DailyCompletionRate(), live.DailyNewOrders()
			lowStock = len(live.LowStockItems)
		}
	}
	if req.OpenOrders != nil {
		open = *req.OpenOrders
	}
	if req.ActiveTechnicians != nil {
		techs = *req.ActiveTechnicians
	}
	if req.DailyCompletionRate != nil {
		completion = *req.DailyCompletionRate
	}
	if req.DailyNewOrders != nil {
		arrivals = *req.DailyNewOrders
	}
	if req.LowStockCount != nil {
		lowStock = *req.LowStockCount
	}

	capacity := float64(techs * ordersPerTechnician)
	usage := func(load float64) float64 {
		if capacity <= 0 {
			return 100
		}
		return load / capacity * 100
	}

	f := Forecast{ForecastDays: req.ForecastDays, Alerts: []ForecastAlert{}, Recommendations: []string{}}
	now := s.now()
	load := float64(open)
	var firstCritical *ProjectedDay
	for day := 1; day <= req.ForecastDays; day++ {
		load = load + arrivals - math.Min(completion, load)
		u := usage(load)
		risk := "LOW"
		switch {
		case u > bottleneckThreshold:
			risk = "HIGH"
		case u > mediumRiskThreshold:
			risk = "MEDIUM"
		}
		pd := ProjectedDay{
			Day:                  day,
			Date:                 now.AddDate(0, 0, day).Format("2006-01-02"),
			ProjectedOpenOrders:  int(load),
			CapacityUsagePercent: round1(u),
			BottleneckRisk:       risk,
		}
		f.Projection = append(f.Projection, pd)
		if pd.CapacityUsagePercent > bottleneckThreshold {
			f.CriticalDaysCount++
			if firstCritical == nil {
				first := pd
				firstCritical = &first
			}
		}
		f.Summary.ProjectedMaxUsage = math.Max(f.Summary.ProjectedMaxUsage, pd.CapacityUsagePercent)
	}

	if firstCritical != nil {
		f.Alerts = append(f.Alerts, ForecastAlert{
			Severity:  "HIGH",
			Message:   fmt.Sprintf("Gargalo previsto para %s (capacidade %s%%)", firstCritical.Date, pyFloat(firstCritical.CapacityUsagePercent)),
			DaysUntil: firstCritical.Day,
		})
		f.Recommendations = append(f.Recommendations,
			"Contratar técnico temporário",
			"Redistribuir OSs não urgentes",
			"Aumentar horas extras",
		)
	}
	if lowStock > 0 {
		f.Alerts = append(f.Alerts, ForecastAlert{
			Severity: "MEDIUM",
			Message:  fmt.Sprintf("%d peça(s) com estoque baixo", lowStock),
		})
		f.Recommendations = append(f.Recommendations, fmt.Sprintf("Repor %d itens em falta", lowStock))
	}

	f.Summary.CurrentCapacityUsage = round1(usage(float64(open)))
	f.Summary.RiskLevel = "LOW"
	if f.CriticalDaysCount > 0 {
		f.Summary.RiskLevel = "HIGH"
	}
	s.log.Info("bottleneck forecast", "days", req.ForecastDays, "critical_days", f.CriticalDaysCount)
	return f, nil
}

func needsLive(req BottleneckRequest) bool {
	return req.OpenOrders == nil || req.ActiveTechnicians == nil || req.DailyCompletionRate == nil ||
		req.DailyNewOrders == nil || req.LowStockCount == nil
}

func (s *Service) live(ctx context.Context) (*store.OperationalStats, error) {
	if s.stats == nil {
		return nil, nil
	}
	st, err := s.stats.Stats(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: operational stats: %v", apierr.ErrPersistence, err)
	}
	return &st, nil
}

type HistoricalOrder struct {
	ServiceType string `json:"service_type"`
	Delayed     bool   `json:"delayed"`
}

type ServiceDelay struct {
	ServiceType string  `json:"service_type"`
	DelayRate   float64 `json:"delay_rate"`
	TotalOrders int     `json:"total_orders"`
}

type Patterns struct {
	OverallDelayRate    float64        `json:"overall_delay_rate"`
	TotalOrdersAnalyzed int            `json:"total_orders_analyzed"`
	DelayedOrders       int            `json:"delayed_orders"`
	ProblematicServices []ServiceDelay `json:"problematic_services"`
	Insights            []string       `json:"insights"`
}

// AnalyzePatterns reports the delay rate overall and per service type.
func (s *Service) AnalyzePatterns(history []HistoricalOrder) (Patterns, error) {
	if len(history) == 0 {
		return Patterns{}, fmt.Errorf("%w: dados históricos insuficientes", apierr.ErrInvalidInput)
	}

	type counts struct{ total, delayed int }
	var order []string
	byType := map[string]*counts{}
	delayed := 0
	for _, h := range history {
		kind := h.ServiceType
		if kind == "" {
			kind = "GENERAL"
		}
		c := byType[kind]
		if c == nil {
			c = &counts{}
			byType[kind] = c
			order = append(order, kind)
		}
		c.total++
		if h.Delayed {
			c.delayed++
			delayed++
		}
	}

	problematic := []ServiceDelay{}
	for _, kind := range order {
		c := byType[kind]
		rate := float64(c.delayed) / float64(c.total) * 100
		if rate > problematicDelayRate {
			problematic = append(problematic, ServiceDelay{ServiceType: kind, DelayRate: round1(rate), TotalOrders: c.total})
		}
	}
	sort.SliceStable(problematic, func(i, j int) bool { return problematic[i].DelayRate > problematic[j].DelayRate })

	rate := float64(delayed) / float64(len(history)) * 100
	p := Patterns{
		OverallDelayRate:    round1(rate),
		TotalOrdersAnalyzed: len(history),
		DelayedOrders:       delayed,
		ProblematicServices: firstN(problematic, 5),
		Insights:            []string{},
	}
	if rate > 20 {
		p.Insights = append(p.Insights, fmt.Sprintf("Taxa de atraso alta (%.1f%%). Revisar processos.", rate))
	}
	if len(problematic) > 0 {
		top := problematic[0]
		p.Insights = append(p.Insights, fmt.Sprintf("Serviço %s tem %.1f%% de atrasos", top.ServiceType, top.DelayRate))
	}
	s.log.Info("patterns analyzed", "orders", len(history), "delay_rate", p.OverallDelayRate)
	return p, nil
}

type AlertState struct {
	OrdersNearDeadline    []string `json:"orders_near_deadline,omitempty"`
	LowStockItems         []string `json:"low_stock_items,omitempty"`
	CapacityUsagePercent  *float64 `json:"capacity_usage_percent,omitempty"`
	OverloadedTechnicians []string `json:"overloaded_technicians,omitempty"`
}

type Alert struct {
	Priority    string   `json:"priority"`
	Type        string   `json:"type"`
	Message     string   `json:"message"`
	Action      string   `json:"action"`
	Orders      []string `json:"orders,omitempty"`
	Items       []string `json:"items,omitempty"`
	Technicians []string `json:"technicians,omitempty"`
}

var priorityRank = map[string]int{"HIGH": 0, "MEDIUM": 1, "LOW": 2}

// ProactiveAlerts lists alerts HIGH first. An empty state is filled from the
// live snapshot.
func (s *Service) ProactiveAlerts(ctx context.Context, state AlertState) ([]Alert, error) {
	if state.OrdersNearDeadline == nil && state.LowStockItems == nil && state.CapacityUsagePercent == nil && state.OverloadedTechnicians == nil {
		live, err := s.live(ctx)
		if err != nil {
			return nil, err
		}
		if live != nil {
			state = stateFromStats(*live)
		}
	}

	alerts := []Alert{}
	if n := len(state.OrdersNearDeadline); n > 0 {
		alerts = append(alerts, Alert{
			Priority: "HIGH", Type: "DEADLINE_APPROACHING",
			Message: fmt.Sprintf("%d OS(s) próximas do prazo", n),
			Action:  "Revisar prioridades", Orders: state.OrdersNearDeadline,
		})
	}
	if n := len(state.LowStockItems); n > 0 {
		alerts = append(alerts, Alert{
			Priority: "MEDIUM", Type: "LOW_STOCK",
			Message: fmt.Sprintf("%d peça(s) com estoque baixo", n),
			Action:  "Solicitar reposição", Items: state.LowStockItems,
		})
	}
	if c := state.CapacityUsagePercent; c != nil && *c > bottleneckThreshold {
		alerts = append(alerts, Alert{
			Priority: "HIGH", Type: "HIGH_CAPACITY",
			Message: fmt.Sprintf("Capacidade em %s%%", pyFloat(*c)),
			Action:  "Considerar recursos adicionais",
		})
	}
	if n := len(state.OverloadedTechnicians); n > 0 {
		alerts = append(alerts, Alert{
			Priority: "MEDIUM", Type: "OVERLOADED_STAFF",
			Message: fmt.Sprintf("%d técnico(s) sobrecarregado(s)", n),
			Action:  "Redistribuir carga de trabalho", Technicians: state.OverloadedTechnicians,
		})
	}
	sort.SliceStable(alerts, func(i, j int) bool { return priorityRank[alerts[i].Priority] < priorityRank[alerts[j].Priority] })

	s.log.Info("proactive alerts", "count", len(alerts))
	return alerts, nil
}

func stateFromStats(st store.OperationalStats) AlertState {
	usage := 100.0
	if st.ActiveTechnicians > 0 {
		usage = round1(float64(st.OpenOrders) / float64(st.ActiveTechnicians*ordersPerTechnician) * 100)
	}
	state := AlertState{LowStockItems: st.LowStockItems, CapacityUsagePercent: &usage}
	names := make([]string, 0, len(st.TechnicianLoads))
	for name, load := range st.TechnicianLoads {
		if load > ordersPerTechnician {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	state.OverloadedTechnicians = names
	return state
}

type TrainResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Train is not implemented yet. It always answers pending.
func (s *Service) Train() TrainResult {
	s.log.Info("model training requested")
	return TrainResult{Status: "pending", Message: "Funcionalidade de ML em desenvolvimento"}
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// pyFloat prints a rounded value keeping one decimal on whole numbers (85.0).
func pyFloat(f float64) string {
	if f == math.Trunc(f) {
		return fmt.Sprintf("%.1f", f)
	}
	return fmt.Sprint(f)
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
