package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var OpenStatuses = []string{"PENDING", "IN_PROGRESS", "WAITING_PARTS", "WAITING_APPROVAL"}

// OperationalStats is a snapshot of the shop used by the recommendation,
// predictive and simulation responders.
type OperationalStats struct {
	OpenOrders          int64            `json:"open_orders"`
	InProgressOrders    int64            `json:"in_progress_orders"`
	DelayedOrders       int64            `json:"delayed_orders"`
	ActiveTechnicians   int              `json:"active_technicians"`
	TechnicianLoads     map[string]int64 `json:"technician_loads"`
	LowStockItems       []string         `json:"low_stock_items"`
	CompletedLast30Days int64            `json:"completed_last_30_days"`
	CreatedLast30Days   int64            `json:"created_last_30_days"`
	RevenueLast30Days   float64          `json:"revenue_last_30_days"`
	AverageTicket       float64          `json:"average_ticket"`
}

func (s OperationalStats) DailyCompletionRate() float64 {
	return float64(s.CompletedLast30Days) / 30
}

func (s OperationalStats) DailyNewOrders() float64 {
	return float64(s.CreatedLast30Days) / 30
}

func Stats(ctx context.Context, db *gorm.DB, now time.Time) (OperationalStats, error) {
	stats := OperationalStats{TechnicianLoads: map[string]int64{}, LowStockItems: []string{}}
	q := db.WithContext(ctx)

	open := q.Model(&ServiceOrder{}).Where("status IN ?", OpenStatuses)
	if err := open.Count(&stats.OpenOrders).Error; err != nil {
		return stats, fmt.Errorf("count open orders: %w", err)
	}
	if err := q.Model(&ServiceOrder{}).Where("status = ?", "IN_PROGRESS").Count(&stats.InProgressOrders).Error; err != nil {
		return stats, fmt.Errorf("count in progress orders: %w", err)
	}
	if err := q.Model(&ServiceOrder{}).
		Where("status IN ? AND created_at < ?", OpenStatuses, now.AddDate(0, 0, -7)).
		Count(&stats.DelayedOrders).Error; err != nil {
		return stats, fmt.Errorf("count delayed orders: %w", err)
	}

	// Technician load over open orders
	var loads []struct {
		TechnicianName string
		Total          int64
	}
	if err := q.Model(&ServiceOrder{}).
		Select("technician_name, COUNT(*) AS total").
		Where("status IN ? AND technician_name <> ''", OpenStatuses).
		Group("technician_name").
		Scan(&loads).Error; err != nil {
		return stats, fmt.Errorf("technician loads: %w", err)
	}
	for _, l := range loads {
		stats.TechnicianLoads[l.TechnicianName] = l.Total
	}
	stats.ActiveTechnicians = len(loads)
	if stats.ActiveTechnicians == 0 {
		stats.ActiveTechnicians = 1
	}

	// Low stock
	if err := q.Table("inventory_items").
		Select("parts.name").
		Joins("JOIN parts ON parts.id = inventory_items.part_id").
		Where("inventory_items.quantity <= inventory_items.minimum_stock").
		Order("parts.name").
		Scan(&stats.LowStockItems).Error; err != nil {
		return stats, fmt.Errorf("low stock items: %w", err)
	}

	since := now.AddDate(0, 0, -30)
	if err := q.Model(&ServiceOrder{}).Where("created_at >= ?", since).Count(&stats.CreatedLast30Days).Error; err != nil {
		return stats, fmt.Errorf("count created orders: %w", err)
	}
	var revenue struct {
		Total int64
		Sum   float64
	}
	if err := q.Model(&ServiceOrder{}).
		Select("COUNT(*) AS total, COALESCE(SUM(total_cost), 0) AS sum").
		Where("status = ? AND updated_at >= ?", "COMPLETED", since).
		Scan(&revenue).Error; err != nil {
		return stats, fmt.Errorf("revenue: %w", err)
	}
	stats.CompletedLast30Days = revenue.Total
	stats.RevenueLast30Days = revenue.Sum
	if revenue.Total > 0 {
		stats.AverageTicket = revenue.Sum / float64(revenue.Total)
	}
	return stats, nil
}
