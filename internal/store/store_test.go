package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
	"github.com/DeyvidJesus/gomech-ai-service/internal/store"
	"github.com/DeyvidJesus/gomech-ai-service/internal/store/storetest"
)

func TestSanitizeSelect(t *testing.T) {
	allowed := store.QueryableTables

	cases := []struct {
		name    string
		sql     string
		wantErr bool
	}{
		{"simple select", "SELECT name FROM clients", false},
		{"join on allowed tables", "select c.name, count(*) from clients c join vehicles v on v.client_id = c.id group by c.name", false},
		{"schema qualified", `SELECT * FROM public."service_orders"`, false},
		{"trailing semicolon", "SELECT 1 FROM parts;", false},
		{"no table", "SELECT 1", false},
		{"empty", "   ", true},
		{"not a select", "UPDATE clients SET name = 'x'", true},
		{"destructive inside select", "SELECT * FROM clients WHERE 1=1 OR DROP", true},
		{"stacked statements", "SELECT * FROM clients; DELETE FROM clients", true},
		{"chat tables are private", "SELECT content FROM messages", true},
		{"users are private", "SELECT * FROM clients JOIN users ON users.id = clients.id", true},
		{"comma join", "SELECT clients.name, users.email FROM clients, users", true},
		{"aliased comma join", "SELECT c.name, u.email, u.password FROM clients c, users u", true},
		{"comma join after join", "SELECT * FROM clients c JOIN vehicles v ON v.client_id = c.id, messages m", true},
		{"comma join of allowed tables", "SELECT c.name, v.plate FROM clients c, vehicles v WHERE v.client_id = c.id", false},
		{"subquery in from list", "SELECT * FROM clients c, (SELECT email FROM users) u", true},
		{"subquery in where", "SELECT name FROM clients WHERE id IN (SELECT id FROM users)", true},
		{"parenthesized join", "SELECT * FROM (clients c JOIN users u ON u.id = c.id)", true},
		{"comment between from and table", "SELECT * FROM/**/users", true},
		{"extract is not a table", "SELECT EXTRACT(MONTH FROM created_at) AS m, COUNT(*) FROM service_orders GROUP BY m", false},
		{"table name inside literal", "SELECT name FROM clients WHERE notes = 'from users'", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.SanitizeSelect(tc.sql, allowed)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, store.ErrUnsafeSQL))
				assert.True(t, errors.Is(err, apierr.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestReaderQuery(t *testing.T) {
	db := storetest.DB(t)
	storetest.SeedShop(t, db)
	reader := store.NewReader(db)
	ctx := context.Background()

	rs, err := reader.Query(ctx, "SELECT status, COUNT(*) AS total FROM service_orders GROUP BY status ORDER BY status")
	require.NoError(t, err)
	assert.Equal(t, []string{"status", "total"}, rs.Columns)
	require.Len(t, rs.Rows, 3)
	assert.Equal(t, "COMPLETED", rs.Rows[0]["status"])

	_, err = reader.Query(ctx, "DELETE FROM clients")
	assert.ErrorIs(t, err, apierr.ErrInvalidInput)

	var clients int64
	require.NoError(t, db.Model(&store.Client{}).Count(&clients).Error)
	assert.Equal(t, int64(2), clients)

	schema := reader.SchemaSummary(ctx)
	assert.Contains(t, schema, "service_orders(")
	assert.NotContains(t, schema, "messages(")
}

func TestSchemaSummaryRetriesAfterCancelledRequest(t *testing.T) {
	db := storetest.DB(t)
	reader := store.NewReader(db)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	reader.SchemaSummary(cancelled)

	schema := reader.SchemaSummary(context.Background())
	assert.Contains(t, schema, "clients(")
	assert.Contains(t, schema, "inventory_movements(")
}

func TestInspect(t *testing.T) {
	db := storetest.DB(t)
	storetest.SeedShop(t, db)

	h := store.Inspect(context.Background(), db)
	assert.True(t, h.Healthy())
	assert.Equal(t, int64(2), h.Tables["clients"])
	assert.Empty(t, h.MissingTables)

	require.NoError(t, db.Migrator().DropTable(&store.Message{}))
	h = store.Inspect(context.Background(), db)
	assert.False(t, h.Healthy())
	assert.Equal(t, []string{"messages"}, h.MissingTables)

	nilHealth := store.Inspect(context.Background(), nil)
	assert.False(t, nilHealth.Reachable)
	assert.Len(t, nilHealth.MissingTables, len(store.ExpectedTables))
}

func TestInspectHidesDriverError(t *testing.T) {
	db := storetest.DB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	h := store.Inspect(context.Background(), db)
	assert.False(t, h.Reachable)
	require.Error(t, h.Cause)
	assert.Equal(t, "banco de dados inacessível", h.Error)

	body, err := json.Marshal(h)
	require.NoError(t, err)
	assert.NotContains(t, string(body), h.Cause.Error())
}

func TestStats(t *testing.T) {
	db := storetest.DB(t)
	storetest.SeedShop(t, db)

	stats, err := store.Stats(context.Background(), db, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.OpenOrders)
	assert.Equal(t, int64(1), stats.InProgressOrders)
	assert.Equal(t, map[string]int64{"Carlos": 2}, stats.TechnicianLoads)
	assert.Equal(t, 1, stats.ActiveTechnicians)
	assert.Equal(t, []string{"Filtro de óleo"}, stats.LowStockItems)
	assert.Equal(t, int64(1), stats.CompletedLast30Days)
	assert.InDelta(t, 120.0, stats.AverageTicket, 0.001)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := store.Open(context.Background(), store.Options{Driver: "oracle"}, logger.NewNop())
	require.Error(t, err)
}
