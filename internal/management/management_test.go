package management

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeyvidJesus/gomech-ai-service/internal/llm/llmtest"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
	"github.com/DeyvidJesus/gomech-ai-service/internal/store/storetest"
)

func sampleOrders() []ServiceOrder {
	return []ServiceOrder{
		{ServiceType: "REVISAO", TotalValue: 500, LaborCost: 150, PartsCost: 100, Status: "COMPLETED"},
		{ServiceType: "FREIOS", TotalValue: 800, LaborCost: 200, PartsCost: 400, Status: "COMPLETED"},
		{ServiceType: "REVISAO", TotalValue: 300, LaborCost: 100, PartsCost: 50, Status: "IN_PROGRESS", DaysOpen: 10},
		{TotalValue: 100, LaborCost: 100, Status: "PENDING", DaysOpen: 2},
	}
}

func sampleOrgs() []Organization {
	return []Organization{
		{ID: 1, Name: "Centro", MonthlyRevenue: 50000, AvgTicket: 500, CompletedOrders: 100, AvgNPS: 9, TechnicianCount: 5},
		{ID: 2, Name: "Zona Sul", MonthlyRevenue: 20000, AvgTicket: 350, CompletedOrders: 40, AvgNPS: 7, TechnicianCount: 4},
		{ID: 3, MonthlyRevenue: 30000, AvgTicket: 400, CompletedOrders: 60, AvgNPS: 8.5},
	}
}

func TestProfitability(t *testing.T) {
	r := Profitability(sampleOrders())

	require.Len(t, r.Services, 3)
	assert.Equal(t, "REVISAO", r.Services[0].ServiceType)
	assert.Equal(t, 2, r.Services[0].Count)
	assert.InDelta(t, 50.0, r.Services[0].MarginPercent, 1e-9)
	assert.InDelta(t, 200.0, r.Services[0].AvgProfitPerService, 1e-9)
	assert.Equal(t, "FREIOS", r.Services[1].ServiceType)
	assert.InDelta(t, 25.0, r.Services[1].MarginPercent, 1e-9)
	assert.Equal(t, "GENERAL", r.Services[2].ServiceType)
	assert.InDelta(t, 0.0, r.Services[2].MarginPercent, 1e-9)

	assert.Equal(t, "REVISAO", r.TopProfitable.ServiceType)
	assert.Equal(t, "GENERAL", r.LeastProfitable.ServiceType)
	assert.Equal(t, 4, r.TotalServicesAnalyzed)
	assert.InDelta(t, 600.0/1700.0*100, r.OverallMargin, 1e-9)

	empty := Profitability(nil)
	assert.Nil(t, empty.TopProfitable)
	assert.Zero(t, empty.OverallMargin)
}

func TestBottlenecks(t *testing.T) {
	healthy := Bottlenecks(Dataset{Technicians: []Technician{{Name: "Ana", Status: "ACTIVE"}}})
	assert.Equal(t, 100, healthy.OverallHealthScore)
	assert.Equal(t, "HEALTHY", healthy.Status)
	require.Len(t, healthy.Opportunities, 1)
	assert.Equal(t, "idle_capacity", healthy.Opportunities[0].Type)

	inProgress := make([]ServiceOrder, 16)
	for i := range inProgress {
		inProgress[i] = ServiceOrder{Status: "IN_PROGRESS", DaysOpen: 1}
	}
	inProgress[0].DaysOpen = 9

	d := Dataset{
		ServiceOrders: inProgress,
		Technicians: []Technician{
			{Name: "Carlos", ActiveOrders: 6, Status: "ACTIVE"},
			{Name: "Ana", ActiveOrders: 0, Status: "ACTIVE"},
		},
		Inventory: []StockItem{
			{Name: "Filtro", Quantity: 1, MinQuantity: 5},
			{Name: "Correia", Quantity: 10, MinQuantity: 2, LastMovementDays: 200},
		},
	}
	r := Bottlenecks(d)
	assert.Equal(t, 100-15-10-15-20-5, r.OverallHealthScore)
	assert.Equal(t, "CRITICAL", r.Status)
	assert.Equal(t, "🚨 Gargalos críticos identificados", r.StatusMessage)

	var critical []string
	for _, i := range r.Critical {
		critical = append(critical, i.Type)
	}
	assert.Equal(t, []string{"delayed_orders", "overloaded_technicians", "stock_shortage"}, critical)
	require.Len(t, r.Warnings, 2)
	assert.Equal(t, "16 OSs em andamento simultaneamente", r.Warnings[0].Description)
	assert.Empty(t, r.Opportunities, "idle capacity is not reported while someone is overloaded")

	warning := Bottlenecks(Dataset{Inventory: []StockItem{{Quantity: 0, MinQuantity: 1, LastMovementDays: 365}}})
	assert.Equal(t, 75, warning.OverallHealthScore)
	assert.Equal(t, "WARNING", warning.Status)
}

func TestBenchmark(t *testing.T) {
	_, err := Benchmark(sampleOrgs()[:1])
	assert.ErrorIs(t, err, apierr.ErrInvalidInput)

	r, err := Benchmark(sampleOrgs())
	require.NoError(t, err)

	assert.Equal(t, 3, r.Summary.TotalOrganizations)
	assert.InDelta(t, 100000.0/3, r.Summary.AvgMonthlyRevenue, 1e-6)
	assert.Equal(t, "Centro", r.Leaders.HighestRevenue.OrganizationName)
	assert.Equal(t, "Org 3", r.Rankings.ByRevenue[1].OrganizationName)
	assert.Equal(t, 2, r.Rankings.ByRevenue[1].Rank)
	assert.Equal(t, 1, r.Rankings.ByRevenue[1].TechnicianCount)
	assert.Equal(t, "Org 3", r.Leaders.MostProductive.OrganizationName)
	assert.InDelta(t, 60.0, r.Leaders.MostProductive.OrdersPerTechnician, 1e-9)

	require.Len(t, r.Insights, 4)
	assert.Contains(t, r.Insights[0], "R$ 30000.00 de diferença")
	assert.Contains(t, r.Insights[1], "R$ 350.00 a R$ 500.00")
	assert.Contains(t, r.Insights[2], "1 oficina(s) com satisfação abaixo")
	assert.Contains(t, r.Insights[3], "2 oficina(s) com produtividade abaixo")
}

func TestGenerateReport(t *testing.T) {
	now := time.Date(2025, 5, 2, 9, 30, 0, 0, time.UTC)
	d := Dataset{ServiceOrders: sampleOrders(), Organizations: sampleOrgs()}

	csvOut, err := GenerateReport("profitability", "csv", d, now)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(csvOut.Text), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "service_type,count,total_revenue,total_costs,total_profit,margin_percent,avg_revenue_per_service,avg_profit_per_service", lines[0])
	assert.Equal(t, "REVISAO,2,800,400,400,50,400,200", lines[1])

	bench, err := GenerateReport("benchmark", "csv", d, now)
	require.NoError(t, err)
	assert.Contains(t, bench.Text, "1,Centro,50000,500,9,20")

	text, err := GenerateReport("executive", "text", d, now)
	require.NoError(t, err)
	assert.Contains(t, text.Text, "RELATÓRIO EXECUTIVO")
	assert.Contains(t, text.Text, "Data do Relatório: 2025-05-02T09:30:00")
	assert.Contains(t, text.Text, "RENTABILIDADE POR SERVIÇO")
	assert.Contains(t, text.Text, "BENCHMARK INTERNO")

	js, err := GenerateReport("executive", "", d, now)
	require.NoError(t, err)
	summary, ok := js.Data.(ExecutiveSummary)
	require.True(t, ok)
	assert.NotNil(t, summary.Sections.Profitability)
	assert.NotNil(t, summary.Sections.Benchmark)

	for _, tc := range []struct{ kind, format string }{
		{"forecast", "json"},
		{"profitability", "xml"},
		{"bottlenecks", "csv"},
		{"benchmark", "json"},
	} {
		data := d
		if tc.kind == "benchmark" {
			data.Organizations = nil
		}
		_, err := GenerateReport(tc.kind, tc.format, data, now)
		assert.ErrorIs(t, err, apierr.ErrInvalidInput, tc.kind+"/"+tc.format)
	}
}

func TestOperationalInsights(t *testing.T) {
	assert.Equal(t, "📊 Dados operacionais dentro da normalidade.", OperationalInsights(Dataset{}))

	d := Dataset{
		OrdersToday:      &DayOrders{Count: 0},
		MonthlyTicket:    &MonthlyTicket{Count: 100, AvgTicket: 250, TotalRevenue: 25000},
		RecurrentClients: &RecurrentClients{Count: 10, TotalOrders: 20},
		TopParts:         []PartUsage{{Name: "Filtro de óleo", UsageCount: 12, Quantity: 30}, {Name: "Vela", UsageCount: 3, Quantity: 9}},
		StatusCounts:     map[string]int{"PENDING": 15, "IN_PROGRESS": 8},
	}
	out := OperationalInsights(d)
	assert.Contains(t, out, "Nenhuma OS concluída hoje")
	assert.Contains(t, out, "Ticket médio de R$ 250.00 está baixo")
	assert.Contains(t, out, "+R$ 2500.00/mês")
	assert.Contains(t, out, "10 clientes recorrentes (média de 2.0 OSs cada)")
	assert.Contains(t, out, "Implementar programa de fidelidade")
	assert.Contains(t, out, "Filtro de óleo (12 vezes)")
	assert.Contains(t, out, "23 OSs em aberto (15 pendentes, 8 em andamento)")

	pred := Predictions(d)
	assert.Contains(t, pred, "OSs estimadas: 105")
	assert.Contains(t, pred, "Faturamento projetado: R$ 26250.00")
	assert.Contains(t, pred, "+R$ 1250.00 (5.0%)")
	assert.Contains(t, pred, "Filtro de óleo: ~33 unidades")
	assert.Contains(t, pred, "Vela: ~9 unidades")
}

type staticLoader struct {
	d   Dataset
	err error
}

func (s staticLoader) Load(context.Context) (Dataset, error) { return s.d, s.err }

func TestAnswerCommands(t *testing.T) {
	provider := llmtest.New("não deveria ser chamado")
	r := New(provider, staticLoader{d: Dataset{ServiceOrders: sampleOrders(), Organizations: sampleOrgs()}}, logger.NewNop())
	r.now = func() time.Time { return time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	tests := []struct {
		question string
		contains string
	}{
		{"Quais serviços têm maior margem?", "🏆 **Serviço Mais Lucrativo:** REVISAO"},
		{"Identifique gargalos", "**Score de Saúde:** 85/100"},
		{"Faça um benchmark das oficinas", "• **Maior Faturamento:** Centro"},
		{"Exportar relatório de lucros em csv", "```csv\nservice_type,count"},
		{"Exportar relatório operacional em json", "\"overall_health_score\": 85"},
		{"Gere um relatório", "RELATÓRIO EXECUTIVO"},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			res, err := r.Answer(ctx, tt.question, nil)
			require.NoError(t, err)
			assert.Contains(t, res.Reply, tt.contains)
		})
	}
	assert.Empty(t, provider.Requests())
}

func TestAnswerInlineDataWins(t *testing.T) {
	r := New(llmtest.New("x"), staticLoader{err: errors.New("must not load")}, logger.NewNop())

	res, err := r.Answer(context.Background(), "ranking entre oficinas", &Dataset{Organizations: sampleOrgs()[:1]})
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "pelo menos 2 organizações")

	res, err = r.Answer(context.Background(), "onde está a sobrecarga?", nil)
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "preciso de dados operacionais")
}

func TestAnswerAdvice(t *testing.T) {
	provider := llmtest.New("Ofereça pacotes de revisão.")
	d := Dataset{MonthlyTicket: &MonthlyTicket{Count: 10, AvgTicket: 900, TotalRevenue: 9000}}
	r := New(provider, staticLoader{d: d}, logger.NewNop())

	res, err := r.Answer(context.Background(), "Como aumentar a receita?", nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Reply, "Ofereça pacotes de revisão."))
	assert.Contains(t, res.Reply, "Ticket médio de R$ 900.00 está ótimo")

	reqs := provider.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].Prompt, "Dados disponíveis para análise:")
	assert.Contains(t, reqs[0].System, "consultor de negócios")

	failing := New(&llmtest.Scripted{Err: errors.New("down")}, nil, logger.NewNop())
	res, err = failing.Answer(context.Background(), "Dicas?", nil)
	require.NoError(t, err)
	assert.Equal(t, replyFallback, res.Reply)
}

func TestDBLoader(t *testing.T) {
	db := storetest.DB(t)
	storetest.SeedShop(t, db)

	d, err := NewDBLoader(db).Load(context.Background())
	require.NoError(t, err)

	require.Len(t, d.ServiceOrders, 3)
	assert.Equal(t, map[string]int{"IN_PROGRESS": 1, "PENDING": 1, "COMPLETED": 1}, d.StatusCounts)
	assert.Equal(t, []Technician{
		{Name: "Ana", ActiveOrders: 0, Status: "ACTIVE"},
		{Name: "Carlos", ActiveOrders: 2, Status: "ACTIVE"},
	}, d.Technicians)
	require.Len(t, d.Inventory, 2)
	assert.Equal(t, "Filtro de óleo", d.Inventory[0].Name)
	assert.Equal(t, 1, d.MonthlyTicket.Count)
	assert.InDelta(t, 120.0, d.MonthlyTicket.AvgTicket, 1e-9)
	assert.Equal(t, RecurrentClients{Count: 1, TotalOrders: 2}, *d.RecurrentClients)
	assert.Empty(t, d.TopParts)
	assert.Empty(t, d.Organizations)

	report := Bottlenecks(d)
	assert.Equal(t, 80, report.OverallHealthScore)

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"os_status"`)
}
