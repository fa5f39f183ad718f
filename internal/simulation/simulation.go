// Package simulation runs "what if" scenarios over the shop's monthly numbers.
package simulation

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/DeyvidJesus/gomech-ai-service/internal/llm"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
	"github.com/DeyvidJesus/gomech-ai-service/internal/store"
)

const systemPrompt = `Você é um consultor de negócios especializado em análise de cenários "E se...".

Analise a pergunta do usuário e forneça insights sobre o impacto potencial da mudança proposta.

Use os dados operacionais fornecidos para contextualizar sua resposta.

Seja específico, quantitativo quando possível, e sempre inclua:
1. Impacto esperado
2. Riscos e benefícios
3. Recomendação final`

const replyFallback = "❌ Não foi possível processar a simulação agora. Tente novamente em instantes."

var (
	priceWords    = []string{"preço", "preco", "valor", "cobrar"}
	priceDown     = []string{"reduzir", "diminuir", "baixar", "descontar"}
	staffWords    = []string{"técnico", "tecnico", "contratar", "funcionário", "funcionario"}
	staffDown     = []string{"demitir", "reduzir", "menos"}
	percentRe     = regexp.MustCompile(`(\d+)%`)
	firstNumberRe = regexp.MustCompile(`(\d+)`)
)

// StatsSource provides the live snapshot used when a request carries no
// baseline.
type StatsSource interface {
	Stats(ctx context.Context) (store.OperationalStats, error)
}

type Service struct {
	provider llm.LLMProvider
	stats    StatsSource
	log      *logger.Logger
}

func New(provider llm.LLMProvider, stats StatsSource, log *logger.Logger) *Service {
	return &Service{provider: provider, stats: stats, log: log.With("component", "simulation_agent")}
}

// ScenarioSpec selects one scenario for Compare.
type ScenarioSpec struct {
	Type                  string  `json:"type"`
	PriceChangePercent    float64 `json:"price_change_percent,omitempty"`
	AdditionalTechnicians int     `json:"additional_technicians,omitempty"`
	CampaignCost          float64 `json:"campaign_cost,omitempty"`
	ExpectedConversion    float64 `json:"expected_conversion,omitempty"`
}

type Result struct {
	Reply string `json:"reply"`
}

// Baseline returns the given baseline, or one built from live stats when it
// is missing or empty.
func (s *Service) Baseline(ctx context.Context, b *Baseline) (Baseline, error) {
	if b != nil && !b.IsZero() {
		return *b, nil
	}
	if s.stats == nil {
		return Baseline{}, nil
	}
	st, err := s.stats.Stats(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return Baseline{}, ctx.Err()
		}
		return Baseline{}, fmt.Errorf("%w: operational stats: %v", apierr.ErrPersistence, err)
	}
	return FromStats(st), nil
}

// FromStats maps the last 30 days of activity to a monthly baseline. Zero
// values are left unset so scenario defaults apply.
func FromStats(st store.OperationalStats) Baseline {
	var b Baseline
	if st.RevenueLast30Days > 0 {
		v := st.RevenueLast30Days
		b.MonthlyRevenue = &v
	}
	if st.CompletedLast30Days > 0 {
		v := int(st.CompletedLast30Days)
		b.MonthlyOrders = &v
	}
	if st.AverageTicket > 0 {
		v := st.AverageTicket
		b.AvgTicket = &v
	}
	if st.ActiveTechnicians > 0 {
		v := st.ActiveTechnicians
		b.TechnicianCount = &v
	}
	return b
}

func (s *Service) Price(ctx context.Context, b *Baseline, changePercent float64) (PriceResult, error) {
	base, err := s.Baseline(ctx, b)
	if err != nil {
		return PriceResult{}, err
	}
	return SimulatePrice(base, changePercent), nil
}

func (s *Service) Capacity(ctx context.Context, b *Baseline, additional int) (CapacityResult, error) {
	base, err := s.Baseline(ctx, b)
	if err != nil {
		return CapacityResult{}, err
	}
	return SimulateCapacity(base, additional)
}

func (s *Service) Marketing(ctx context.Context, b *Baseline, cost, conversion float64) (MarketingResult, error) {
	base, err := s.Baseline(ctx, b)
	if err != nil {
		return MarketingResult{}, err
	}
	return SimulateMarketing(base, cost, conversion)
}

// Compare runs every scenario against the same baseline and ranks them.
func (s *Service) Compare(ctx context.Context, b *Baseline, specs []ScenarioSpec) (Comparison, error) {
	if len(specs) < 2 {
		return Compare(nil)
	}
	base, err := s.Baseline(ctx, b)
	if err != nil {
		return Comparison{}, err
	}
	metrics := make([]Metrics, 0, len(specs))
	for i, spec := range specs {
		m, err := run(base, spec)
		if err != nil {
			return Comparison{}, fmt.Errorf("cenário %d: %w", i+1, err)
		}
		metrics = append(metrics, m)
	}
	return Compare(metrics)
}

func run(base Baseline, spec ScenarioSpec) (Metrics, error) {
	switch strings.ToLower(strings.TrimSpace(spec.Type)) {
	case "price", ScenarioPrice:
		return SimulatePrice(base, spec.PriceChangePercent).Metrics(), nil
	case "capacity", ScenarioCapacity:
		r, err := SimulateCapacity(base, spec.AdditionalTechnicians)
		return r.Metrics(), err
	case "marketing", ScenarioMarketing:
		r, err := SimulateMarketing(base, spec.CampaignCost, spec.ExpectedConversion)
		return r.Metrics(), err
	default:
		return Metrics{}, fmt.Errorf("%w: tipo de cenário desconhecido %q", apierr.ErrInvalidInput, spec.Type)
	}
}

// Query answers a free-form "what if" question. Price and staffing questions
// that carry a number are simulated directly; everything else goes to the
// model with the baseline as context.
func (s *Service) Query(ctx context.Context, question string, b *Baseline) (Result, error) {
	base, err := s.Baseline(ctx, b)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		s.log.Warn("baseline unavailable, using defaults", "error", err)
		base = Baseline{}
	}

	lower := strings.ToLower(question)
	switch {
	case containsAny(lower, priceWords):
		if m := percentRe.FindStringSubmatch(question); m != nil {
			pct, _ := strconv.ParseFloat(m[1], 64)
			if containsAny(lower, priceDown) {
				pct = -pct
			}
			return Result{Reply: FormatPrice(SimulatePrice(base, pct))}, nil
		}
	case containsAny(lower, staffWords):
		if m := firstNumberRe.FindStringSubmatch(question); m != nil {
			techs, _ := strconv.Atoi(m[1])
			if containsAny(lower, staffDown) {
				techs = -techs
			}
			if r, err := SimulateCapacity(base, techs); err == nil {
				return Result{Reply: FormatCapacity(r)}, nil
			}
		}
	}

	data, _ := json.Marshal(base)
	reply, err := llm.Ask(ctx, s.provider, systemPrompt, fmt.Sprintf("Pergunta: %s\n\nDados atuais: %s", question, data))
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		s.log.Error("what-if analysis failed", "error", err)
		return Result{Reply: replyFallback}, nil
	}
	return Result{Reply: reply}, nil
}

func FormatPrice(r PriceResult) string {
	p := r.Projection
	var b strings.Builder
	fmt.Fprintf(&b, "🎲 **SIMULAÇÃO: Mudança de Preço %+.1f%%**\n\n", r.PriceChangePercent)
	b.WriteString("📊 **Projeção:**\n")
	fmt.Fprintf(&b, "• Novo Ticket Médio: R$ %.2f\n", p.NewAvgTicket)
	fmt.Fprintf(&b, "• Nova Receita Mensal: R$ %.2f\n", p.NewMonthlyRevenue)
	fmt.Fprintf(&b, "• Mudança na Receita: R$ %+.2f (%+.1f%%)\n", p.RevenueChange, p.RevenueChangePercent)
	fmt.Fprintf(&b, "• Nova Margem: %.1f%%\n\n", p.NewProfitMargin)
	b.WriteString("💡 **Recomendação:**\n")
	b.WriteString(r.Recommendation)
	return b.String()
}

func FormatCapacity(r CapacityResult) string {
	p := r.Projection
	var b strings.Builder
	fmt.Fprintf(&b, "🎲 **SIMULAÇÃO: %+d Técnico(s)**\n\n", r.AdditionalTechnicians)
	b.WriteString("📊 **Projeção:**\n")
	fmt.Fprintf(&b, "• Nova Capacidade: %d OSs/mês\n", p.NewCapacity)
	fmt.Fprintf(&b, "• Uso de Capacidade: %.1f%%\n", p.NewCapacityUsage)
	fmt.Fprintf(&b, "• Nova Receita: R$ %.2f\n", p.NewMonthlyRevenue)
	fmt.Fprintf(&b, "• Impacto Líquido: R$ %+.2f/mês\n", p.NetImpact)
	fmt.Fprintf(&b, "• ROI: %+.1f%%\n\n", p.ROIPercent)
	b.WriteString("💡 **Recomendação:**\n")
	b.WriteString(r.Recommendation)
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
