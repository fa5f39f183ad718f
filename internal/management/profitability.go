package management

import "sort"

type ServiceProfit struct {
	ServiceType          string  `json:"service_type"`
	Count                int     `json:"count"`
	TotalRevenue         float64 `json:"total_revenue"`
	TotalCosts           float64 `json:"total_costs"`
	TotalProfit          float64 `json:"total_profit"`
	MarginPercent        float64 `json:"margin_percent"`
	AvgRevenuePerService float64 `json:"avg_revenue_per_service"`
	AvgProfitPerService  float64 `json:"avg_profit_per_service"`
	LaborCost            float64 `json:"labor_cost"`
	PartsCost            float64 `json:"parts_cost"`
}

type ProfitabilityReport struct {
	Services              []ServiceProfit `json:"service_profitability"`
	TopProfitable         *ServiceProfit  `json:"top_profitable"`
	LeastProfitable       *ServiceProfit  `json:"least_profitable"`
	TotalServicesAnalyzed int             `json:"total_services_analyzed"`
	OverallMargin         float64         `json:"overall_margin"`
}

// Profitability groups orders by service type and ranks the groups by
// margin, highest first. Ties keep first-appearance order.
func Profitability(orders []ServiceOrder) ProfitabilityReport {
	index := map[string]int{}
	var groups []ServiceProfit
	for _, o := range orders {
		kind := o.ServiceType
		if kind == "" {
			kind = "GENERAL"
		}
		i, ok := index[kind]
		if !ok {
			i = len(groups)
			index[kind] = i
			groups = append(groups, ServiceProfit{ServiceType: kind})
		}
		g := &groups[i]
		g.Count++
		g.TotalRevenue += o.TotalValue
		g.TotalCosts += o.LaborCost + o.PartsCost
		g.LaborCost += o.LaborCost
		g.PartsCost += o.PartsCost
	}

	report := ProfitabilityReport{Services: []ServiceProfit{}}
	var revenue, profit float64
	for _, g := range groups {
		g.TotalProfit = g.TotalRevenue - g.TotalCosts
		if g.TotalRevenue > 0 {
			g.MarginPercent = g.TotalProfit / g.TotalRevenue * 100
		}
		g.AvgRevenuePerService = g.TotalRevenue / float64(g.Count)
		g.AvgProfitPerService = g.TotalProfit / float64(g.Count)
		report.Services = append(report.Services, g)
		report.TotalServicesAnalyzed += g.Count
		revenue += g.TotalRevenue
		profit += g.TotalProfit
	}
	sort.SliceStable(report.Services, func(i, j int) bool {
		return report.Services[i].MarginPercent > report.Services[j].MarginPercent
	})

	if n := len(report.Services); n > 0 {
		top, least := report.Services[0], report.Services[n-1]
		report.TopProfitable, report.LeastProfitable = &top, &least
	}
	if revenue > 0 {
		report.OverallMargin = profit / revenue * 100
	}
	return report
}
