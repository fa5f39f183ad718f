package management

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/DeyvidJesus/gomech-ai-service/internal/store"
)

const topPartsLimit = 5

// DBLoader builds a Dataset from the shop database.
type DBLoader struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDBLoader(db *gorm.DB) *DBLoader {
	return &DBLoader{db: db, now: time.Now}
}

func (l *DBLoader) Load(ctx context.Context) (Dataset, error) {
	now := l.now()
	q := l.db.WithContext(ctx)

	var orders []store.ServiceOrder
	if err := q.Order("id").Find(&orders).Error; err != nil {
		return Dataset{}, fmt.Errorf("load service orders: %w", err)
	}

	d := Dataset{StatusCounts: map[string]int{}}
	open := map[string]bool{}
	for _, s := range store.OpenStatuses {
		open[s] = true
	}

	loads := map[string]int{}
	perClient := map[uint]int{}
	monthStart := now.AddDate(0, 0, -30)
	today := now.Format("2006-01-02")
	var month MonthlyTicket
	var day DayOrders

	for _, o := range orders {
		days := 0
		if open[o.Status] {
			days = int(now.Sub(o.CreatedAt).Hours() / 24)
			if o.TechnicianName != "" {
				loads[o.TechnicianName]++
			}
		}
		if o.TechnicianName != "" {
			if _, ok := loads[o.TechnicianName]; !ok {
				loads[o.TechnicianName] = 0
			}
		}
		d.ServiceOrders = append(d.ServiceOrders, ServiceOrder{
			ServiceType: o.ServiceType,
			Status:      o.Status,
			TotalValue:  o.TotalCost,
			LaborCost:   o.LaborCost,
			PartsCost:   o.PartsCost,
			DaysOpen:    days,
		})
		d.StatusCounts[o.Status]++
		perClient[o.ClientID]++

		if o.Status == "COMPLETED" {
			done := completedAt(o)
			if !done.Before(monthStart) {
				month.Count++
				month.TotalRevenue += o.TotalCost
			}
			if done.Format("2006-01-02") == today {
				day.Count++
				day.Revenue += o.TotalCost
			}
		}
	}

	names := make([]string, 0, len(loads))
	for name := range loads {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		d.Technicians = append(d.Technicians, Technician{Name: name, ActiveOrders: loads[name], Status: "ACTIVE"})
	}

	if month.Count > 0 {
		month.AvgTicket = month.TotalRevenue / float64(month.Count)
	}
	d.MonthlyTicket = &month
	d.OrdersToday = &day

	var recurrent RecurrentClients
	for _, n := range perClient {
		if n > 1 {
			recurrent.Count++
			recurrent.TotalOrders += n
		}
	}
	d.RecurrentClients = &recurrent

	stock, err := loadStock(q, now)
	if err != nil {
		return Dataset{}, err
	}
	d.Inventory = stock

	if err := q.Table("service_order_items").
		Select("description AS name, COUNT(*) AS usage_count, COALESCE(SUM(quantity), 0) AS quantity").
		Where("type = ?", "PART").
		Group("description").
		Order("usage_count DESC, name").
		Limit(topPartsLimit).
		Scan(&d.TopParts).Error; err != nil {
		return Dataset{}, fmt.Errorf("load top parts: %w", err)
	}

	d.Organizations, err = l.organizations(q, orders, monthStart)
	if err != nil {
		return Dataset{}, err
	}
	return d, nil
}

func loadStock(q *gorm.DB, now time.Time) ([]StockItem, error) {
	var rows []struct {
		Name           string
		Quantity       int
		MinimumStock   int
		LastMovementAt *time.Time
		CreatedAt      time.Time
	}
	if err := q.Table("inventory_items").
		Select("parts.name, inventory_items.quantity, inventory_items.minimum_stock, inventory_items.last_movement_at, inventory_items.created_at").
		Joins("JOIN parts ON parts.id = inventory_items.part_id").
		Order("parts.name").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	items := make([]StockItem, 0, len(rows))
	for _, r := range rows {
		last := r.CreatedAt
		if r.LastMovementAt != nil {
			last = *r.LastMovementAt
		}
		items = append(items, StockItem{
			Name:             r.Name,
			Quantity:         r.Quantity,
			MinQuantity:      r.MinimumStock,
			LastMovementDays: int(now.Sub(last).Hours() / 24),
		})
	}
	return items, nil
}

func (l *DBLoader) organizations(q *gorm.DB, orders []store.ServiceOrder, since time.Time) ([]Organization, error) {
	var orgs []store.Organization
	if err := q.Order("id").Find(&orgs).Error; err != nil {
		return nil, fmt.Errorf("load organizations: %w", err)
	}
	if len(orgs) < 2 {
		return nil, nil
	}

	type acc struct {
		revenue, completionDays float64
		completed               int
		techs                   map[string]bool
	}
	byOrg := map[uint]*acc{}
	for _, o := range orders {
		if o.OrganizationID == nil {
			continue
		}
		a := byOrg[*o.OrganizationID]
		if a == nil {
			a = &acc{techs: map[string]bool{}}
			byOrg[*o.OrganizationID] = a
		}
		if o.TechnicianName != "" {
			a.techs[o.TechnicianName] = true
		}
		if o.Status == "COMPLETED" && !completedAt(o).Before(since) {
			a.completed++
			a.revenue += o.TotalCost
			a.completionDays += completedAt(o).Sub(o.CreatedAt).Hours() / 24
		}
	}

	out := make([]Organization, 0, len(orgs))
	for _, org := range orgs {
		m := Organization{ID: org.ID, Name: org.Name, TechnicianCount: 1}
		if a := byOrg[org.ID]; a != nil {
			m.MonthlyRevenue = a.revenue
			m.CompletedOrders = a.completed
			if len(a.techs) > 0 {
				m.TechnicianCount = len(a.techs)
			}
			if a.completed > 0 {
				m.AvgTicket = a.revenue / float64(a.completed)
				m.AvgCompletionTimeDays = a.completionDays / float64(a.completed)
			}
		}
		out = append(out, m)
	}
	return out, nil
}

func completedAt(o store.ServiceOrder) time.Time {
	if o.CompletedAt != nil {
		return *o.CompletedAt
	}
	return o.UpdatedAt
}
