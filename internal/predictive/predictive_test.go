package predictive

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
	"github.com/DeyvidJesus/gomech-ai-service/internal/store"
)

func newService(stats StatsSource) *Service {
	s := New(stats, logger.NewNop())
	s.now = func() time.Time { return time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC) }
	return s
}

func ptr[T any](v T) *T { return &v }

func TestPredictDelay(t *testing.T) {
	s := newService(nil)

	tests := []struct {
		name    string
		req     DelayRequest
		level   string
		score   int
		days    int
		factors int
		recs    []string
	}{
		{
			name:  "defaults",
			req:   DelayRequest{},
			level: "LOW", score: 0, days: 0, factors: 0,
			recs: []string{"Manter acompanhamento normal"},
		},
		{
			name:  "moderate",
			req:   DelayRequest{ServiceType: "motor", TechnicianActiveOrders: 4, EstimatedHours: 10},
			level: "MEDIUM", score: 50, days: 1, factors: 3,
			recs: []string{"Alocar técnico sênior"},
		},
		{
			name:  "capped at 100",
			req:   DelayRequest{ServiceType: "CAMBIO", TechnicianActiveOrders: 8, PartsAvailable: ptr(false), EstimatedHours: 16, DaysOpen: 9},
			level: "HIGH", score: 100, days: 4, factors: 5,
			recs: []string{"Redistribuir OSs do técnico", "Solicitar peças urgentemente", "Priorizar conclusão imediata", "Alocar técnico sênior"},
		},
		{
			name:  "near deadline",
			req:   DelayRequest{DaysOpen: 5, PartsAvailable: ptr(true), EstimatedHours: 24},
			level: "MEDIUM", score: 40, days: 4, factors: 2,
			recs: []string{"Manter acompanhamento normal"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := s.PredictDelay(tt.req)
			assert.Equal(t, tt.level, p.RiskLevel)
			assert.Equal(t, tt.score, p.RiskScore)
			assert.Equal(t, tt.score, p.ProbabilityDelayPercent)
			assert.Equal(t, tt.days, p.EstimatedCompletionDays)
			assert.Len(t, p.RiskFactors, tt.factors)
			assert.Equal(t, tt.recs, p.Recommendations)
			assert.Equal(t, time.Date(2025, 6, 10+tt.days, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), p.EstimatedCompletionDate)
		})
	}
}

func TestPredictBottlenecksExplicit(t *testing.T) {
	s := newService(StatsFunc(func(context.Context) (store.OperationalStats, error) {
		t.Fatal("explicit request must not read live stats")
		return store.OperationalStats{}, nil
	}))

	f, err := s.PredictBottlenecks(context.Background(), BottleneckRequest{
		OpenOrders:          ptr(10),
		ActiveTechnicians:   ptr(3),
		DailyCompletionRate: ptr(5.0),
		DailyNewOrders:      ptr(7.0),
		LowStockCount:       ptr(2),
		ForecastDays:        3,
	})
	require.NoError(t, err)

	require.Len(t, f.Projection, 3)
	assert.Equal(t, ProjectedDay{Day: 1, Date: "2025-06-11", ProjectedOpenOrders: 12, CapacityUsagePercent: 80, BottleneckRisk: "MEDIUM"}, f.Projection[0])
	assert.Equal(t, 14, f.Projection[1].ProjectedOpenOrders)
	assert.Equal(t, 93.3, f.Projection[1].CapacityUsagePercent)
	assert.Equal(t, "HIGH", f.Projection[1].BottleneckRisk)
	assert.Equal(t, 2, f.CriticalDaysCount)

	require.Len(t, f.Alerts, 2)
	assert.Equal(t, "Gargalo previsto para 2025-06-12 (capacidade 93.3%)", f.Alerts[0].Message)
	assert.Equal(t, 2, f.Alerts[0].DaysUntil)
	assert.Equal(t, "2 peça(s) com estoque baixo", f.Alerts[1].Message)
	assert.Contains(t, f.Recommendations, "Repor 2 itens em falta")

	assert.Equal(t, 66.7, f.Summary.CurrentCapacityUsage)
	assert.Equal(t, 106.7, f.Summary.ProjectedMaxUsage)
	assert.Equal(t, "HIGH", f.Summary.RiskLevel)
}

func TestPredictBottlenecksLive(t *testing.T) {
	live := store.OperationalStats{OpenOrders: 2, ActiveTechnicians: 2, CompletedLast30Days: 90, CreatedLast30Days: 30}
	s := newService(StatsFunc(func(context.Context) (store.OperationalStats, error) { return live, nil }))

	f, err := s.PredictBottlenecks(context.Background(), BottleneckRequest{})
	require.NoError(t, err)
	assert.Len(t, f.Projection, defaultForecastDays)
	// 1 new order per day against 3 completions keeps the queue near empty
	for _, d := range f.Projection {
		assert.LessOrEqual(t, d.ProjectedOpenOrders, 1)
	}
	assert.Equal(t, "LOW", f.Summary.RiskLevel)
	assert.Empty(t, f.Alerts)

	_, err = s.PredictBottlenecks(context.Background(), BottleneckRequest{ForecastDays: 365})
	assert.ErrorIs(t, err, apierr.ErrInvalidInput)

	broken := newService(StatsFunc(func(context.Context) (store.OperationalStats, error) {
		return store.OperationalStats{}, errors.New("db down")
	}))
	_, err = broken.PredictBottlenecks(context.Background(), BottleneckRequest{})
	assert.ErrorIs(t, err, apierr.ErrPersistence)
}

func TestAnalyzePatterns(t *testing.T) {
	s := newService(nil)

	_, err := s.AnalyzePatterns(nil)
	assert.ErrorIs(t, err, apierr.ErrInvalidInput)

	history := []HistoricalOrder{
		{ServiceType: "MOTOR", Delayed: true},
		{ServiceType: "MOTOR", Delayed: true},
		{ServiceType: "MOTOR"},
		{ServiceType: "FREIOS", Delayed: true},
		{ServiceType: "FREIOS"},
		{ServiceType: "REVISAO"},
		{ServiceType: "REVISAO"},
		{},
	}
	p, err := s.AnalyzePatterns(history)
	require.NoError(t, err)

	assert.Equal(t, 8, p.TotalOrdersAnalyzed)
	assert.Equal(t, 3, p.DelayedOrders)
	assert.Equal(t, 37.5, p.OverallDelayRate)
	assert.Equal(t, []ServiceDelay{
		{ServiceType: "MOTOR", DelayRate: 66.7, TotalOrders: 3},
		{ServiceType: "FREIOS", DelayRate: 50, TotalOrders: 2},
	}, p.ProblematicServices)
	assert.Equal(t, []string{
		"Taxa de atraso alta (37.5%). Revisar processos.",
		"Serviço MOTOR tem 66.7% de atrasos",
	}, p.Insights)
}

func TestProactiveAlerts(t *testing.T) {
	s := newService(nil)

	alerts, err := s.ProactiveAlerts(context.Background(), AlertState{
		LowStockItems:         []string{"Filtro"},
		CapacityUsagePercent:  ptr(85.0),
		OverloadedTechnicians: []string{"Carlos"},
		OrdersNearDeadline:    []string{"OS-1", "OS-2"},
	})
	require.NoError(t, err)

	var types []string
	for _, a := range alerts {
		types = append(types, a.Type)
	}
	assert.Equal(t, []string{"DEADLINE_APPROACHING", "HIGH_CAPACITY", "LOW_STOCK", "OVERLOADED_STAFF"}, types)
	assert.Equal(t, "Capacidade em 85.0%", alerts[1].Message)
	assert.Equal(t, "2 OS(s) próximas do prazo", alerts[0].Message)

	live := store.OperationalStats{
		OpenOrders:        12,
		ActiveTechnicians: 2,
		TechnicianLoads:   map[string]int64{"Carlos": 8, "Ana": 4},
		LowStockItems:     []string{"Filtro de óleo"},
	}
	s = newService(StatsFunc(func(context.Context) (store.OperationalStats, error) { return live, nil }))
	alerts, err = s.ProactiveAlerts(context.Background(), AlertState{})
	require.NoError(t, err)
	require.Len(t, alerts, 3)
	assert.Equal(t, "HIGH_CAPACITY", alerts[0].Type)
	assert.Equal(t, "Capacidade em 120.0%", alerts[0].Message)
	assert.Equal(t, []string{"Carlos"}, alerts[2].Technicians)
}

func TestTrain(t *testing.T) {
	assert.Equal(t, TrainResult{Status: "pending", Message: "Funcionalidade de ML em desenvolvimento"}, newService(nil).Train())
}
