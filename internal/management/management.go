// Package management runs the strategic analyses for shop owners:
// profitability, bottlenecks, benchmark, reports and free-form advice.
package management

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/DeyvidJesus/gomech-ai-service/internal/llm"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
)

var (
	profitabilityWords = []string{"maior margem", "mais lucrativ", "rentabilidade", "margem de lucro"}
	bottleneckWords    = []string{"gargalo", "problema operacional", "bottleneck", "atraso", "sobrecarga"}
	benchmarkWords     = []string{"benchmark", "comparar", "comparação", "ranking", "posição"}
	reportWords        = []string{"relatório", "relatorio", "exportar"}
)

// DatasetLoader builds the snapshot when the caller does not send one.
type DatasetLoader interface {
	Load(ctx context.Context) (Dataset, error)
}

type Result struct {
	Reply string `json:"reply"`
}

type Responder struct {
	provider llm.LLMProvider
	loader   DatasetLoader
	log      *logger.Logger
	now      func() time.Time
}

func New(provider llm.LLMProvider, loader DatasetLoader, log *logger.Logger) *Responder {
	return &Responder{
		provider: provider,
		loader:   loader,
		log:      log.With("component", "recommendation_agent"),
		now:      time.Now,
	}
}

// Dataset returns data when it carries anything, otherwise the loaded snapshot.
func (r *Responder) Dataset(ctx context.Context, data *Dataset) Dataset {
	if !data.Empty() {
		return *data
	}
	if r.loader == nil {
		return Dataset{}
	}
	loaded, err := r.loader.Load(ctx)
	if err != nil {
		r.log.Warn("operational snapshot unavailable", "error", err)
		return Dataset{}
	}
	return loaded
}

// Answer handles the management commands recognized in question and falls
// back to model advice enriched with rule-based insights.
func (r *Responder) Answer(ctx context.Context, question string, data *Dataset) (Result, error) {
	r.log.Info("recommendation question", "question", question)
	d := r.Dataset(ctx, data)
	q := strings.ToLower(question)

	switch {
	case containsAny(q, profitabilityWords):
		if len(d.ServiceOrders) == 0 {
			return Result{Reply: "📊 Para analisar rentabilidade, preciso de dados de ordens de serviço. Por favor, forneça os dados necessários."}, nil
		}
		return Result{Reply: profitabilityReply(Profitability(d.ServiceOrders))}, nil

	case containsAny(q, bottleneckWords):
		if d.Empty() {
			return Result{Reply: "🔍 Para identificar gargalos, preciso de dados operacionais. Por favor, forneça os dados necessários."}, nil
		}
		return Result{Reply: bottlenecksReply(Bottlenecks(d))}, nil

	case containsAny(q, benchmarkWords):
		b, err := Benchmark(d.Organizations)
		if err != nil {
			return Result{Reply: "📈 Para benchmark, preciso de dados de pelo menos 2 organizações. Esse recurso está disponível apenas para ambientes multi-tenant."}, nil
		}
		return Result{Reply: benchmarkReply(b)}, nil

	case containsAny(q, reportWords):
		if d.Empty() {
			return Result{Reply: "📊 Para gerar relatórios, preciso de dados operacionais. Por favor, forneça os dados necessários."}, nil
		}
		return r.reportReply(q, d), nil
	}

	return r.advise(ctx, question, d)
}

func (r *Responder) reportReply(q string, d Dataset) Result {
	kind, format := ReportExecutive, FormatText
	switch {
	case strings.Contains(q, "rentabilidade") || strings.Contains(q, "lucr"):
		kind = ReportProfitability
	case strings.Contains(q, "gargalo") || strings.Contains(q, "operacion"):
		kind = ReportBottlenecks
	case strings.Contains(q, "benchmark") || strings.Contains(q, "compar"):
		kind = ReportBenchmark
	}
	switch {
	case strings.Contains(q, "csv"):
		format = FormatCSV
	case strings.Contains(q, "json"):
		format = FormatJSON
	}

	rep, err := GenerateReport(kind, format, d, r.now())
	if err != nil {
		return Result{Reply: "⚠️ " + strings.TrimPrefix(err.Error(), "invalid input: ")}
	}
	switch format {
	case FormatJSON:
		body, _ := json.MarshalIndent(rep.Data, "", "  ")
		return Result{Reply: "```json\n" + string(body) + "\n```"}
	case FormatCSV:
		return Result{Reply: "```csv\n" + rep.Text + "\n```"}
	default:
		return Result{Reply: rep.Text}
	}
}

func (r *Responder) advise(ctx context.Context, question string, d Dataset) (Result, error) {
	var statsContext string
	if !d.Empty() {
		statsContext = "\n\n📊 **Análise dos Dados Atuais:**\n" + OperationalInsights(d)
		if p := Predictions(d); p != "" {
			statsContext += "\n\n" + p
		}
	}
	prompt := question
	if statsContext != "" {
		prompt = question + "\n\nDados disponíveis para análise:" + statsContext
	}

	reply, err := llm.Ask(ctx, r.provider, advisorPrompt, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		r.log.Error("recommendation failed", "error", err)
		return Result{Reply: replyFallback}, nil
	}
	reply = strings.TrimSpace(reply)
	if statsContext != "" {
		reply += "\n\n" + statsContext
	}
	return Result{Reply: reply}, nil
}

func profitabilityReply(p ProfitabilityReport) string {
	var b strings.Builder
	b.WriteString("📊 **ANÁLISE DE RENTABILIDADE POR SERVIÇO**\n\n")
	if top := p.TopProfitable; top != nil {
		fmt.Fprintf(&b, "🏆 **Serviço Mais Lucrativo:** %s\n", top.ServiceType)
		fmt.Fprintf(&b, "   • Margem: %.2f%%\n", top.MarginPercent)
		fmt.Fprintf(&b, "   • Lucro Total: R$ %.2f\n", top.TotalProfit)
		fmt.Fprintf(&b, "   • Receita Total: R$ %.2f\n", top.TotalRevenue)
		fmt.Fprintf(&b, "   • Quantidade: %d serviços\n\n", top.Count)
	}
	b.WriteString("📈 **TOP 5 SERVIÇOS POR MARGEM:**\n\n")
	for i, s := range firstN(p.Services, 5) {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, s.ServiceType)
		fmt.Fprintf(&b, "   • Margem: %.2f%%\n", s.MarginPercent)
		fmt.Fprintf(&b, "   • Lucro Médio: R$ %.2f\n", s.AvgProfitPerService)
		fmt.Fprintf(&b, "   • Quantidade: %d serviços\n\n", s.Count)
	}
	fmt.Fprintf(&b, "\n💡 **Margem Geral:** %.2f%%\n", p.OverallMargin)
	fmt.Fprintf(&b, "📊 **Total Analisado:** %d serviços", p.TotalServicesAnalyzed)
	return b.String()
}

func bottlenecksReply(r BottleneckReport) string {
	var b strings.Builder
	b.WriteString("🔍 **ANÁLISE DE GARGALOS OPERACIONAIS**\n\n")
	b.WriteString(r.StatusMessage + "\n")
	fmt.Fprintf(&b, "**Score de Saúde:** %d/100\n\n", r.OverallHealthScore)

	if len(r.Critical) > 0 {
		b.WriteString("🚨 **PROBLEMAS CRÍTICOS:**\n\n")
		for _, i := range r.Critical {
			fmt.Fprintf(&b, "• **%s**\n  💥 Impacto: %s\n  💡 Recomendação: %s\n\n", i.Description, i.Impact, i.Recommendation)
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("⚠️ **PONTOS DE ATENÇÃO:**\n\n")
		for _, i := range r.Warnings {
			fmt.Fprintf(&b, "• **%s**\n  ⚡ Impacto: %s\n  💡 Recomendação: %s\n\n", i.Description, i.Impact, i.Recommendation)
		}
	}
	if len(r.Opportunities) > 0 {
		b.WriteString("💡 **OPORTUNIDADES:**\n\n")
		for _, i := range r.Opportunities {
			fmt.Fprintf(&b, "• %s\n  ✨ Recomendação: %s\n\n", i.Description, i.Recommendation)
		}
	}
	if len(r.Critical) == 0 && len(r.Warnings) == 0 {
		b.WriteString("✅ Parabéns! Não foram identificados gargalos críticos ou avisos importantes.\n")
		b.WriteString("Continue mantendo a operação saudável! 🚀")
	}
	return b.String()
}

func benchmarkReply(r BenchmarkReport) string {
	l := r.Leaders
	var b strings.Builder
	b.WriteString("📈 **BENCHMARK INTERNO ENTRE OFICINAS**\n\n")
	fmt.Fprintf(&b, "**Total de Organizações:** %d\n\n", r.Summary.TotalOrganizations)
	b.WriteString("🏆 **LÍDERES POR CATEGORIA:**\n\n")
	fmt.Fprintf(&b, "• **Maior Faturamento:** %s\n  R$ %.2f/mês\n\n", l.HighestRevenue.OrganizationName, l.HighestRevenue.MonthlyRevenue)
	fmt.Fprintf(&b, "• **Maior Ticket Médio:** %s\n  R$ %.2f\n\n", l.HighestTicket.OrganizationName, l.HighestTicket.AvgTicket)
	fmt.Fprintf(&b, "• **Maior Satisfação:** %s\n  %.1f pontos\n\n", l.HighestSatisfaction.OrganizationName, l.HighestSatisfaction.ClientSatisfaction)
	fmt.Fprintf(&b, "• **Mais Produtiva:** %s\n  %.1f OSs/técnico\n\n", l.MostProductive.OrganizationName, l.MostProductive.OrdersPerTechnician)
	if len(r.Insights) > 0 {
		b.WriteString("💡 **INSIGHTS:**\n\n")
		for _, i := range r.Insights {
			b.WriteString("• " + i + "\n")
		}
	}
	b.WriteString("\n📊 **MÉDIAS GERAIS:**\n")
	fmt.Fprintf(&b, "• Faturamento Médio: R$ %.2f\n", r.Summary.AvgMonthlyRevenue)
	fmt.Fprintf(&b, "• Ticket Médio: R$ %.2f\n", r.Summary.AvgTicket)
	fmt.Fprintf(&b, "• Satisfação Média: %.1f pontos", r.Summary.AvgSatisfaction)
	return b.String()
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
