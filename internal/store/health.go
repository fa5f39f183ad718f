package store

import (
	"context"

	"gorm.io/gorm"
)

const (
	healthNotConfigured = "banco de dados não configurado"
	healthUnreachable   = "banco de dados inacessível"
)

type Health struct {
	Reachable     bool             `json:"reachable"`
	Error         string           `json:"error,omitempty"`
	Tables        map[string]int64 `json:"tables"`
	MissingTables []string         `json:"missing_tables"`

	// Cause is the driver error behind Error. It is logged, never serialized.
	Cause error `json:"-"`
}

// Inspect never fails: problems are reported in the returned Health.
func Inspect(ctx context.Context, db *gorm.DB) Health {
	h := Health{Tables: map[string]int64{}, MissingTables: []string{}}
	if db == nil {
		h.Error = healthNotConfigured
		h.MissingTables = append(h.MissingTables, ExpectedTables...)
		return h
	}
	if err := ping(ctx, db); err != nil {
		h.Error = healthUnreachable
		h.Cause = err
		h.MissingTables = append(h.MissingTables, ExpectedTables...)
		return h
	}
	h.Reachable = true

	migrator := db.WithContext(ctx).Migrator()
	for _, table := range ExpectedTables {
		if !migrator.HasTable(table) {
			h.MissingTables = append(h.MissingTables, table)
			continue
		}
		var count int64
		if err := db.WithContext(ctx).Table(table).Count(&count).Error; err != nil {
			h.MissingTables = append(h.MissingTables, table)
			continue
		}
		h.Tables[table] = count
	}
	return h
}

// Healthy is true when the database is reachable and every expected table exists.
func (h Health) Healthy() bool {
	return h.Reachable && len(h.MissingTables) == 0
}
