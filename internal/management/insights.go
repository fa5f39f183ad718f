package management

import (
	"fmt"
	"strings"
)

// OperationalInsights turns the shop indicators into short, rule-based hints.
func OperationalInsights(d Dataset) string {
	var out []string

	if t := d.OrdersToday; t != nil {
		if t.Count == 0 {
			out = append(out, "⚠️ **Alerta**: Nenhuma OS concluída hoje. Verifique o andamento dos trabalhos.")
		} else if t.Count >= 5 {
			out = append(out, fmt.Sprintf("✅ **Ótimo desempenho**: %d OSs concluídas hoje, gerando R$ %.2f", t.Count, t.Revenue))
		}
	}

	if m := d.MonthlyTicket; m != nil {
		avg := m.AvgTicket
		switch {
		case avg < 300:
			increase := avg * 0.10 * float64(m.Count)
			out = append(out,
				fmt.Sprintf("💡 **Oportunidade**: Ticket médio de R$ %.2f está baixo. Considere:", avg),
				"   • Oferecer serviços adicionais (revisão completa, limpeza)",
				"   • Revisar markup das peças (ideal: 30-50%)",
				"   • Sugerir manutenções preventivas",
				fmt.Sprintf("   📈 **Projeção**: Aumentando ticket médio em 10%% → +R$ %.2f/mês", increase),
			)
		case avg > 800:
			out = append(out, fmt.Sprintf("🌟 **Excelente**: Ticket médio de R$ %.2f está ótimo!", avg))
		default:
			out = append(out, fmt.Sprintf("📊 Ticket médio atual: R$ %.2f", avg))
		}
	}

	if rc := d.RecurrentClients; rc != nil && rc.Count > 0 {
		rate := float64(rc.TotalOrders) / float64(rc.Count)
		out = append(out, fmt.Sprintf("🔄 **Fidelização**: %d clientes recorrentes (média de %.1f OSs cada)", rc.Count, rate))
		if rate < 2.5 {
			out = append(out,
				"💡 **Sugestão**: Para aumentar recorrência:",
				"   • Implementar programa de fidelidade",
				"   • Enviar lembretes de revisão por WhatsApp",
				"   • Oferecer desconto na 3ª OS",
			)
		}
	}

	if len(d.TopParts) > 0 {
		top := d.TopParts[0]
		out = append(out,
			fmt.Sprintf("🔧 **Peça mais usada**: %s (%d vezes)", top.Name, top.UsageCount),
			"   💡 Mantenha estoque adequado desta peça para evitar rupturas",
		)
	}

	if d.StatusCounts != nil {
		pending, inProgress := d.StatusCounts["PENDING"], d.StatusCounts["IN_PROGRESS"]
		if open := pending + inProgress; open > 20 {
			out = append(out,
				fmt.Sprintf("⚠️ **Atenção**: %d OSs em aberto (%d pendentes, %d em andamento)", open, pending, inProgress),
				"   • Considere priorizar as mais antigas",
				"   • Verifique se há gargalos na equipe",
			)
		}
	}

	if len(out) == 0 {
		return "📊 Dados operacionais dentro da normalidade."
	}
	return strings.Join(out, "\n")
}

// Predictions projects next month assuming 5% order growth and 10% extra
// part demand.
func Predictions(d Dataset) string {
	var out []string
	if m := d.MonthlyTicket; m != nil && m.Count > 0 {
		projectedOrders := int(float64(m.Count) * 1.05)
		projectedRevenue := float64(projectedOrders) * m.AvgTicket
		growth := projectedRevenue - m.TotalRevenue
		var pct float64
		if m.TotalRevenue > 0 {
			pct = growth / m.TotalRevenue * 100
		}
		out = append(out,
			"📈 **Projeção para próximo mês:**",
			fmt.Sprintf("   • OSs estimadas: %d (crescimento de 5%%)", projectedOrders),
			fmt.Sprintf("   • Faturamento projetado: R$ %.2f", projectedRevenue),
			fmt.Sprintf("   • Crescimento esperado: +R$ %.2f (%.1f%%)", growth, pct),
		)
	}
	if len(d.TopParts) > 0 {
		out = append(out, "\n🔧 **Previsão de demanda de peças (próximo mês):**")
		for _, p := range firstN(d.TopParts, 3) {
			out = append(out, fmt.Sprintf("   • %s: ~%d unidades", p.Name, int(float64(p.Quantity)*1.1)))
		}
	}
	return strings.Join(out, "\n")
}
