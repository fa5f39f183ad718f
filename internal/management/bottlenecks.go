package management

import "fmt"

// Health thresholds and penalties.
const (
	delayedOrderDays     = 7
	maxInProgressOrders  = 15
	maxTechnicianOrders  = 5
	slowInventoryDays    = 180
	healthyScore         = 80
	warningScore         = 60
	penaltyDelayed       = 15
	penaltyCapacity      = 10
	penaltyOverloaded    = 15
	penaltyStockShortage = 20
	penaltySlowInventory = 5
)

type Issue struct {
	Type           string `json:"type"`
	Severity       string `json:"severity"`
	Count          int    `json:"count"`
	Description    string `json:"description"`
	Impact         string `json:"impact"`
	Recommendation string `json:"recommendation"`
}

type BottleneckReport struct {
	Critical           []Issue `json:"critical"`
	Warnings           []Issue `json:"warnings"`
	Opportunities      []Issue `json:"opportunities"`
	OverallHealthScore int     `json:"overall_health_score"`
	Status             string  `json:"status"`
	StatusMessage      string  `json:"status_message"`
}

// Bottlenecks scores operational health starting from 100 and deducting a
// fixed penalty per detected problem.
func Bottlenecks(d Dataset) BottleneckReport {
	r := BottleneckReport{Critical: []Issue{}, Warnings: []Issue{}, Opportunities: []Issue{}, OverallHealthScore: 100}

	var longPending, inProgress int
	for _, o := range d.ServiceOrders {
		if (o.Status == "PENDING" || o.Status == "IN_PROGRESS") && o.DaysOpen > delayedOrderDays {
			longPending++
		}
		if o.Status == "IN_PROGRESS" {
			inProgress++
		}
	}
	if longPending > 0 {
		r.Critical = append(r.Critical, Issue{
			Type:           "delayed_orders",
			Severity:       "HIGH",
			Count:          longPending,
			Description:    fmt.Sprintf("%d OSs pendentes há mais de 7 dias", longPending),
			Impact:         "Insatisfação do cliente e perda de receita",
			Recommendation: "Priorizar conclusão de OSs antigas e revisar capacidade da equipe",
		})
		r.OverallHealthScore -= penaltyDelayed
	}
	if inProgress > maxInProgressOrders {
		r.Warnings = append(r.Warnings, Issue{
			Type:           "capacity_issue",
			Severity:       "MEDIUM",
			Count:          inProgress,
			Description:    fmt.Sprintf("%d OSs em andamento simultaneamente", inProgress),
			Impact:         "Possível sobrecarga da equipe",
			Recommendation: "Considerar contratação temporária ou redistribuição de trabalho",
		})
		r.OverallHealthScore -= penaltyCapacity
	}

	var overloaded, idle int
	for _, t := range d.Technicians {
		switch {
		case t.ActiveOrders > maxTechnicianOrders:
			overloaded++
		case t.ActiveOrders == 0 && t.Status == "ACTIVE":
			idle++
		}
	}
	if overloaded > 0 {
		r.Critical = append(r.Critical, Issue{
			Type:           "overloaded_technicians",
			Severity:       "HIGH",
			Count:          overloaded,
			Description:    fmt.Sprintf("%d técnico(s) com mais de 5 OSs ativas", overloaded),
			Impact:         "Risco de erros e atrasos",
			Recommendation: "Redistribuir OSs e revisar balanceamento de carga",
		})
		r.OverallHealthScore -= penaltyOverloaded
	} else if idle > 0 {
		r.Opportunities = append(r.Opportunities, Issue{
			Type:           "idle_capacity",
			Severity:       "LOW",
			Count:          idle,
			Description:    fmt.Sprintf("%d técnico(s) disponível(is)", idle),
			Impact:         "Capacidade ociosa",
			Recommendation: "Alocar novos serviços ou realizar manutenções preventivas",
		})
	}

	var shortage, slow int
	for _, i := range d.Inventory {
		if i.Quantity <= i.MinQuantity {
			shortage++
		}
		if i.LastMovementDays > slowInventoryDays {
			slow++
		}
	}
	if shortage > 0 {
		r.Critical = append(r.Critical, Issue{
			Type:           "stock_shortage",
			Severity:       "HIGH",
			Count:          shortage,
			Description:    fmt.Sprintf("%d peça(s) em falta ou abaixo do mínimo", shortage),
			Impact:         "Atrasos em serviços por falta de peças",
			Recommendation: "Reposição urgente de estoque e revisão de pontos de reposição",
		})
		r.OverallHealthScore -= penaltyStockShortage
	}
	if slow > 0 {
		r.Warnings = append(r.Warnings, Issue{
			Type:           "slow_inventory",
			Severity:       "MEDIUM",
			Count:          slow,
			Description:    fmt.Sprintf("%d peça(s) sem movimentação há mais de 6 meses", slow),
			Impact:         "Capital parado e possível obsolescência",
			Recommendation: "Promover liquidação ou devolver ao fornecedor",
		})
		r.OverallHealthScore -= penaltySlowInventory
	}

	switch {
	case r.OverallHealthScore >= healthyScore:
		r.Status, r.StatusMessage = "HEALTHY", "✅ Operação saudável"
	case r.OverallHealthScore >= warningScore:
		r.Status, r.StatusMessage = "WARNING", "⚠️ Alguns pontos de atenção"
	default:
		r.Status, r.StatusMessage = "CRITICAL", "🚨 Gargalos críticos identificados"
	}
	return r
}
