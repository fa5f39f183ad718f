package management

import (
	"fmt"
	"sort"

	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
)

var ErrNotEnoughOrganizations = fmt.Errorf("%w: é necessário dados de pelo menos 2 organizações para benchmark", apierr.ErrInvalidInput)

type OrgMetrics struct {
	Rank                  int     `json:"rank,omitempty"`
	OrganizationID        uint    `json:"organization_id"`
	OrganizationName      string  `json:"organization_name"`
	MonthlyRevenue        float64 `json:"monthly_revenue"`
	AvgTicket             float64 `json:"avg_ticket"`
	CompletedOrders       int     `json:"completed_orders"`
	AvgCompletionTimeDays float64 `json:"avg_completion_time_days"`
	ClientSatisfaction    float64 `json:"client_satisfaction"`
	TechnicianCount       int     `json:"technician_count"`
	RevenuePerTechnician  float64 `json:"revenue_per_technician"`
	OrdersPerTechnician   float64 `json:"orders_per_technician"`
}

type BenchmarkSummary struct {
	TotalOrganizations int     `json:"total_organizations"`
	AvgMonthlyRevenue  float64 `json:"avg_monthly_revenue"`
	AvgTicket          float64 `json:"avg_ticket"`
	AvgSatisfaction    float64 `json:"avg_satisfaction"`
	AvgOrdersPerMonth  float64 `json:"avg_orders_per_month"`
}

type BenchmarkRankings struct {
	ByRevenue      []OrgMetrics `json:"by_revenue"`
	ByTicket       []OrgMetrics `json:"by_ticket"`
	BySatisfaction []OrgMetrics `json:"by_satisfaction"`
	ByProductivity []OrgMetrics `json:"by_productivity"`
}

type BenchmarkLeaders struct {
	HighestRevenue      OrgMetrics `json:"highest_revenue"`
	HighestTicket       OrgMetrics `json:"highest_ticket"`
	HighestSatisfaction OrgMetrics `json:"highest_satisfaction"`
	MostProductive      OrgMetrics `json:"most_productive"`
}

type BenchmarkReport struct {
	Summary  BenchmarkSummary  `json:"summary"`
	Rankings BenchmarkRankings `json:"rankings"`
	Leaders  BenchmarkLeaders  `json:"leaders"`
	Insights []string          `json:"insights"`
}

// Benchmark compares organizations of a multi-tenant installation.
func Benchmark(orgs []Organization) (BenchmarkReport, error) {
	if len(orgs) < 2 {
		return BenchmarkReport{}, ErrNotEnoughOrganizations
	}

	metrics := make([]OrgMetrics, 0, len(orgs))
	var sum BenchmarkSummary
	for _, o := range orgs {
		name := o.Name
		if name == "" {
			name = fmt.Sprintf("Org %d", o.ID)
		}
		techs := o.TechnicianCount
		if techs < 1 {
			techs = 1
		}
		m := OrgMetrics{
			OrganizationID:        o.ID,
			OrganizationName:      name,
			MonthlyRevenue:        o.MonthlyRevenue,
			AvgTicket:             o.AvgTicket,
			CompletedOrders:       o.CompletedOrders,
			AvgCompletionTimeDays: o.AvgCompletionTimeDays,
			ClientSatisfaction:    o.AvgNPS,
			TechnicianCount:       techs,
			RevenuePerTechnician:  o.MonthlyRevenue / float64(techs),
			OrdersPerTechnician:   float64(o.CompletedOrders) / float64(techs),
		}
		metrics = append(metrics, m)
		sum.AvgMonthlyRevenue += m.MonthlyRevenue
		sum.AvgTicket += m.AvgTicket
		sum.AvgSatisfaction += m.ClientSatisfaction
		sum.AvgOrdersPerMonth += float64(m.CompletedOrders)
	}
	n := float64(len(metrics))
	summary := BenchmarkSummary{
		TotalOrganizations: len(metrics),
		AvgMonthlyRevenue:  sum.AvgMonthlyRevenue / n,
		AvgTicket:          sum.AvgTicket / n,
		AvgSatisfaction:    sum.AvgSatisfaction / n,
		AvgOrdersPerMonth:  sum.AvgOrdersPerMonth / n,
	}

	rankings := BenchmarkRankings{
		ByRevenue:      rank(metrics, func(m OrgMetrics) float64 { return m.MonthlyRevenue }),
		ByTicket:       rank(metrics, func(m OrgMetrics) float64 { return m.AvgTicket }),
		BySatisfaction: rank(metrics, func(m OrgMetrics) float64 { return m.ClientSatisfaction }),
		ByProductivity: rank(metrics, func(m OrgMetrics) float64 { return m.OrdersPerTechnician }),
	}
	return BenchmarkReport{
		Summary:  summary,
		Rankings: rankings,
		Leaders: BenchmarkLeaders{
			HighestRevenue:      rankings.ByRevenue[0],
			HighestTicket:       rankings.ByTicket[0],
			HighestSatisfaction: rankings.BySatisfaction[0],
			MostProductive:      rankings.ByProductivity[0],
		},
		Insights: benchmarkInsights(metrics, summary),
	}, nil
}

func rank(metrics []OrgMetrics, key func(OrgMetrics) float64) []OrgMetrics {
	out := make([]OrgMetrics, len(metrics))
	copy(out, metrics)
	sort.SliceStable(out, func(i, j int) bool { return key(out[i]) > key(out[j]) })
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func benchmarkInsights(metrics []OrgMetrics, s BenchmarkSummary) []string {
	insights := []string{}

	minRev, maxRev := metrics[0].MonthlyRevenue, metrics[0].MonthlyRevenue
	minTicket, maxTicket := metrics[0].AvgTicket, metrics[0].AvgTicket
	var prodSum float64
	for _, m := range metrics {
		minRev, maxRev = min(minRev, m.MonthlyRevenue), max(maxRev, m.MonthlyRevenue)
		minTicket, maxTicket = min(minTicket, m.AvgTicket), max(maxTicket, m.AvgTicket)
		prodSum += m.OrdersPerTechnician
	}

	if gap := maxRev - minRev; gap > s.AvgMonthlyRevenue*0.5 {
		insights = append(insights, fmt.Sprintf("💡 Há grande variação no faturamento (R$ %.2f de diferença). Oficinas com menor desempenho podem aprender com as líderes.", gap))
	}
	if maxTicket > minTicket*1.3 {
		insights = append(insights, fmt.Sprintf("🎯 Ticket médio varia de R$ %.2f a R$ %.2f. Oficinas com menor ticket podem revisar precificação.", minTicket, maxTicket))
	}

	avgProd := prodSum / float64(len(metrics))
	var lowSatisfaction, lowProductivity int
	for _, m := range metrics {
		if m.ClientSatisfaction < s.AvgSatisfaction*0.9 {
			lowSatisfaction++
		}
		if m.OrdersPerTechnician < avgProd*0.8 {
			lowProductivity++
		}
	}
	if lowSatisfaction > 0 {
		insights = append(insights, fmt.Sprintf("⚠️ %d oficina(s) com satisfação abaixo da média. Investir em qualidade do atendimento.", lowSatisfaction))
	}
	if lowProductivity > 0 {
		insights = append(insights, fmt.Sprintf("📊 %d oficina(s) com produtividade abaixo da média. Revisar processos e distribuição de trabalho.", lowProductivity))
	}
	return insights
}
