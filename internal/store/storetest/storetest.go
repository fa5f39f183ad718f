// Package storetest opens throwaway sqlite databases for package tests.
package storetest

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
	"github.com/DeyvidJesus/gomech-ai-service/internal/store"
)

// DB returns a migrated sqlite database that lives for the duration of t.
func DB(t testing.TB) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gomech.db")
	db, err := store.Open(context.Background(), store.Options{Driver: "sqlite", DSN: path + "?_foreign_keys=on"}, logger.NewNop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SeedShop inserts a small shop: two clients, vehicles, orders and stock.
func SeedShop(t testing.TB, db *gorm.DB) {
	t.Helper()
	clients := []store.Client{
		{Name: "João Silva", Phone: "11999990000"},
		{Name: "Maria Souza", Phone: "11988880000"},
	}
	mustCreate(t, db, &clients)

	vehicles := []store.Vehicle{
		{ClientID: clients[0].ID, LicensePlate: "ABC1D23", Brand: "Fiat", Model: "Uno"},
		{ClientID: clients[1].ID, LicensePlate: "XYZ9K88", Brand: "VW", Model: "Gol"},
	}
	mustCreate(t, db, &vehicles)

	orders := []store.ServiceOrder{
		{ClientID: clients[0].ID, VehicleID: vehicles[0].ID, Description: "Troca de óleo", ServiceType: "REVISAO", TechnicianName: "Carlos", Status: "IN_PROGRESS", LaborCost: 100, PartsCost: 80, TotalCost: 180},
		{ClientID: clients[1].ID, VehicleID: vehicles[1].ID, Description: "Freios", ServiceType: "FREIOS", TechnicianName: "Carlos", Status: "PENDING", LaborCost: 200, PartsCost: 300, TotalCost: 500},
		{ClientID: clients[1].ID, VehicleID: vehicles[1].ID, Description: "Alinhamento", ServiceType: "SUSPENSAO", TechnicianName: "Ana", Status: "COMPLETED", LaborCost: 120, PartsCost: 0, TotalCost: 120},
	}
	mustCreate(t, db, &orders)

	parts := []store.Part{
		{Name: "Filtro de óleo", SKU: "FO-001", Category: "FILTROS", UnitCost: 20, SalePrice: 35},
		{Name: "Pastilha de freio", SKU: "PF-002", Category: "FREIOS", UnitCost: 60, SalePrice: 110},
	}
	mustCreate(t, db, &parts)

	items := []store.InventoryItem{
		{PartID: parts[0].ID, Location: "A1", Quantity: 2, MinimumStock: 5, UnitCost: 20},
		{PartID: parts[1].ID, Location: "B2", Quantity: 30, MinimumStock: 5, UnitCost: 60},
	}
	mustCreate(t, db, &items)
}

func mustCreate(t testing.TB, db *gorm.DB, value any) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
}
