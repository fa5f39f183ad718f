package management

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
)

// Report kinds and output formats.
const (
	ReportProfitability = "profitability"
	ReportBottlenecks   = "bottlenecks"
	ReportBenchmark     = "benchmark"
	ReportExecutive     = "executive"

	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatText = "text"
)

// Rendered holds a report either as a JSON-ready value or as text (csv/text).
type Rendered struct {
	Kind   string `json:"report_type"`
	Format string `json:"format"`
	Data   any    `json:"data,omitempty"`
	Text   string `json:"text,omitempty"`
}

type ExecutiveSections struct {
	Profitability     *ProfitabilityReport `json:"profitability,omitempty"`
	OperationalHealth BottleneckReport     `json:"operational_health"`
	Benchmark         *BenchmarkReport     `json:"benchmark,omitempty"`
}

type ExecutiveSummary struct {
	ReportDate string            `json:"report_date"`
	ReportType string            `json:"report_type"`
	Sections   ExecutiveSections `json:"sections"`
}

// GenerateReport builds a report of kind in format. CSV is only available
// for the tabular reports.
func GenerateReport(kind, format string, d Dataset, now time.Time) (Rendered, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatCSV && format != FormatText {
		return Rendered{}, fmt.Errorf("%w: formato desconhecido: %s", apierr.ErrInvalidInput, format)
	}
	out := Rendered{Kind: kind, Format: format}

	switch kind {
	case ReportProfitability:
		r := Profitability(d.ServiceOrders)
		switch format {
		case FormatCSV:
			out.Text = profitabilityCSV(r)
		case FormatText:
			out.Text = ProfitabilityText(r)
		default:
			out.Data = r
		}
	case ReportBottlenecks:
		r := Bottlenecks(d)
		switch format {
		case FormatCSV:
			return Rendered{}, fmt.Errorf("%w: relatório de gargalos não suporta csv", apierr.ErrInvalidInput)
		case FormatText:
			out.Text = BottlenecksText(r)
		default:
			out.Data = r
		}
	case ReportBenchmark:
		r, err := Benchmark(d.Organizations)
		if err != nil {
			return Rendered{}, err
		}
		switch format {
		case FormatCSV:
			out.Text = benchmarkCSV(r)
		case FormatText:
			out.Text = BenchmarkText(r)
		default:
			out.Data = r
		}
	case ReportExecutive:
		summary := Executive(d, now)
		switch format {
		case FormatCSV:
			return Rendered{}, fmt.Errorf("%w: relatório executivo não suporta csv", apierr.ErrInvalidInput)
		case FormatText:
			out.Text = ExecutiveText(summary)
		default:
			out.Data = summary
		}
	default:
		return Rendered{}, fmt.Errorf("%w: tipo de relatório desconhecido: %s", apierr.ErrInvalidInput, kind)
	}
	return out, nil
}

func Executive(d Dataset, now time.Time) ExecutiveSummary {
	s := ExecutiveSummary{
		ReportDate: now.Format("2006-01-02T15:04:05"),
		ReportType: "executive_summary",
		Sections:   ExecutiveSections{OperationalHealth: Bottlenecks(d)},
	}
	if len(d.ServiceOrders) > 0 {
		p := Profitability(d.ServiceOrders)
		s.Sections.Profitability = &p
	}
	if b, err := Benchmark(d.Organizations); err == nil {
		s.Sections.Benchmark = &b
	}
	return s
}

func profitabilityCSV(r ProfitabilityReport) string {
	rows := [][]string{{"service_type", "count", "total_revenue", "total_costs", "total_profit", "margin_percent", "avg_revenue_per_service", "avg_profit_per_service"}}
	for _, s := range r.Services {
		rows = append(rows, []string{
			s.ServiceType, strconv.Itoa(s.Count), num(s.TotalRevenue), num(s.TotalCosts),
			num(s.TotalProfit), num(s.MarginPercent), num(s.AvgRevenuePerService), num(s.AvgProfitPerService),
		})
	}
	return writeCSV(rows)
}

func benchmarkCSV(r BenchmarkReport) string {
	rows := [][]string{{"rank", "organization_name", "monthly_revenue", "avg_ticket", "client_satisfaction", "orders_per_technician"}}
	for _, m := range r.Rankings.ByRevenue {
		rows = append(rows, []string{
			strconv.Itoa(m.Rank), m.OrganizationName, num(m.MonthlyRevenue), num(m.AvgTicket),
			num(m.ClientSatisfaction), num(m.OrdersPerTechnician),
		})
	}
	return writeCSV(rows)
}

func writeCSV(rows [][]string) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.WriteAll(rows)
	return buf.String()
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func ProfitabilityText(r ProfitabilityReport) string {
	lines := []string{
		strings.Repeat("=", 60),
		"📊 RELATÓRIO DE RENTABILIDADE POR SERVIÇO",
		strings.Repeat("=", 60),
		fmt.Sprintf("\nTotal de serviços analisados: %d", r.TotalServicesAnalyzed),
		fmt.Sprintf("Margem geral: %.2f%%\n", r.OverallMargin),
		"\n🏆 SERVIÇOS MAIS RENTÁVEIS:",
	}
	for i, s := range firstN(r.Services, 5) {
		lines = append(lines,
			fmt.Sprintf("\n%d. %s", i+1, s.ServiceType),
			fmt.Sprintf("   Quantidade: %d serviços", s.Count),
			fmt.Sprintf("   Receita Total: R$ %.2f", s.TotalRevenue),
			fmt.Sprintf("   Custo Total: R$ %.2f", s.TotalCosts),
			fmt.Sprintf("   Lucro Total: R$ %.2f", s.TotalProfit),
			fmt.Sprintf("   Margem: %.2f%%", s.MarginPercent),
			fmt.Sprintf("   Lucro Médio por Serviço: R$ %.2f", s.AvgProfitPerService),
		)
	}
	return strings.Join(lines, "\n")
}

func BottlenecksText(r BottleneckReport) string {
	lines := []string{
		strings.Repeat("=", 60),
		"🔍 ANÁLISE DE GARGALOS OPERACIONAIS",
		strings.Repeat("=", 60),
		"\nStatus: " + r.StatusMessage,
		fmt.Sprintf("Score de Saúde: %d/100\n", r.OverallHealthScore),
	}
	section := func(title string, issues []Issue, withImpact bool) {
		if len(issues) == 0 {
			return
		}
		lines = append(lines, title)
		for _, i := range issues {
			lines = append(lines, "\n• "+i.Description)
			if withImpact {
				lines = append(lines, "  Impacto: "+i.Impact)
			}
			lines = append(lines, "  Recomendação: "+i.Recommendation)
		}
	}
	section("\n🚨 PROBLEMAS CRÍTICOS:", r.Critical, true)
	section("\n⚠️ PONTOS DE ATENÇÃO:", r.Warnings, true)
	section("\n💡 OPORTUNIDADES:", r.Opportunities, false)
	return strings.Join(lines, "\n")
}

func BenchmarkText(r BenchmarkReport) string {
	l := r.Leaders
	lines := []string{
		strings.Repeat("=", 60),
		"📈 BENCHMARK INTERNO ENTRE OFICINAS",
		strings.Repeat("=", 60),
		fmt.Sprintf("\nTotal de organizações: %d", r.Summary.TotalOrganizations),
		fmt.Sprintf("Faturamento médio: R$ %.2f", r.Summary.AvgMonthlyRevenue),
		fmt.Sprintf("Ticket médio: R$ %.2f", r.Summary.AvgTicket),
		fmt.Sprintf("Satisfação média: %.1f\n", r.Summary.AvgSatisfaction),
		"\n🏆 LÍDERES:",
		"\n• Maior Faturamento: " + l.HighestRevenue.OrganizationName,
		fmt.Sprintf("  R$ %.2f/mês", l.HighestRevenue.MonthlyRevenue),
		"\n• Maior Ticket Médio: " + l.HighestTicket.OrganizationName,
		fmt.Sprintf("  R$ %.2f", l.HighestTicket.AvgTicket),
		"\n• Maior Satisfação: " + l.HighestSatisfaction.OrganizationName,
		fmt.Sprintf("  %.1f pontos", l.HighestSatisfaction.ClientSatisfaction),
		"\n• Mais Produtiva: " + l.MostProductive.OrganizationName,
		fmt.Sprintf("  %.1f OSs/técnico", l.MostProductive.OrdersPerTechnician),
	}
	if len(r.Insights) > 0 {
		lines = append(lines, "\n\n💡 INSIGHTS:")
		for _, i := range r.Insights {
			lines = append(lines, "• "+i)
		}
	}
	return strings.Join(lines, "\n")
}

func ExecutiveText(s ExecutiveSummary) string {
	lines := []string{
		strings.Repeat("=", 70),
		"📊 RELATÓRIO EXECUTIVO - GESTÃO ESTRATÉGICA",
		strings.Repeat("=", 70),
		fmt.Sprintf("\nData do Relatório: %s\n", s.ReportDate),
	}
	if s.Sections.Profitability != nil {
		lines = append(lines, ProfitabilityText(*s.Sections.Profitability), "\n")
	}
	lines = append(lines, BottlenecksText(s.Sections.OperationalHealth), "\n")
	if s.Sections.Benchmark != nil {
		lines = append(lines, BenchmarkText(*s.Sections.Benchmark), "\n")
	}
	return strings.Join(lines, "\n")
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
