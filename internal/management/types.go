package management

// Dataset is the operational snapshot every analysis runs on. Callers may
// send it inline or let the service load it from the database.
type Dataset struct {
	ServiceOrders []ServiceOrder `json:"service_orders,omitempty"`
	Technicians   []Technician   `json:"technicians,omitempty"`
	Inventory     []StockItem    `json:"inventory,omitempty"`
	Organizations []Organization `json:"organizations,omitempty"`

	OrdersToday      *DayOrders        `json:"os_today,omitempty"`
	MonthlyTicket    *MonthlyTicket    `json:"monthly_ticket,omitempty"`
	RecurrentClients *RecurrentClients `json:"recurrent_clients,omitempty"`
	TopParts         []PartUsage       `json:"top_parts,omitempty"`
	StatusCounts     map[string]int    `json:"os_status,omitempty"`
}

func (d *Dataset) Empty() bool {
	return d == nil || (len(d.ServiceOrders) == 0 && len(d.Technicians) == 0 && len(d.Inventory) == 0 &&
		len(d.Organizations) == 0 && d.OrdersToday == nil && d.MonthlyTicket == nil &&
		d.RecurrentClients == nil && len(d.TopParts) == 0 && len(d.StatusCounts) == 0)
}

type ServiceOrder struct {
	ServiceType string  `json:"service_type"`
	Status      string  `json:"status"`
	TotalValue  float64 `json:"total_value"`
	LaborCost   float64 `json:"labor_cost"`
	PartsCost   float64 `json:"parts_cost"`
	DaysOpen    int     `json:"days_open"`
}

type Technician struct {
	Name         string `json:"name"`
	ActiveOrders int    `json:"active_orders"`
	Status       string `json:"status"`
}

type StockItem struct {
	Name             string `json:"name"`
	Quantity         int    `json:"quantity"`
	MinQuantity      int    `json:"min_quantity"`
	LastMovementDays int    `json:"last_movement_days"`
}

type Organization struct {
	ID                    uint    `json:"organization_id"`
	Name                  string  `json:"organization_name"`
	MonthlyRevenue        float64 `json:"monthly_revenue"`
	AvgTicket             float64 `json:"avg_ticket"`
	CompletedOrders       int     `json:"completed_orders"`
	AvgCompletionTimeDays float64 `json:"avg_completion_time_days"`
	AvgNPS                float64 `json:"avg_nps"`
	TechnicianCount       int     `json:"technician_count"`
}

type DayOrders struct {
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

type MonthlyTicket struct {
	Count        int     `json:"count"`
	AvgTicket    float64 `json:"avg_ticket"`
	TotalRevenue float64 `json:"total_revenue"`
}

type RecurrentClients struct {
	Count       int `json:"count"`
	TotalOrders int `json:"total_orders"`
}

type PartUsage struct {
	Name       string `json:"name"`
	UsageCount int    `json:"usage_count"`
	Quantity   int    `json:"quantity"`
}
