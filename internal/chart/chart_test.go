package chart

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeyvidJesus/gomech-ai-service/internal/llm"
	"github.com/DeyvidJesus/gomech-ai-service/internal/llm/llmtest"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
	"github.com/DeyvidJesus/gomech-ai-service/internal/store"
	"github.com/DeyvidJesus/gomech-ai-service/internal/store/storetest"
)

var shopRows = []map[string]any{
	{"status": "PENDING", "total": int64(4), "revenue": 100.0},
	{"status": "IN_PROGRESS", "total": int64(2), "revenue": 250.0},
	{"status": "COMPLETED", "total": int64(7), "revenue": 900.0},
}

func TestColumnTypes(t *testing.T) {
	f := NewFrame([]map[string]any{
		{"name": "a", "n": 1.0, "day": "2025-01-02", "price": "10.5"},
		{"name": "b", "n": 2.0, "day": "2025-01-03", "price": "7"},
	})
	types := f.Types()
	assert.ElementsMatch(t, []string{"n", "price"}, types.Numeric)
	assert.Equal(t, []string{"name"}, types.Categorical)
	assert.Equal(t, []string{"day"}, types.Datetime)
}

func TestRequirementsMet(t *testing.T) {
	f := NewFrame(shopRows)
	tests := []struct {
		plan Plan
		want bool
	}{
		{Plan{ChartType: TypeBar, X: "status", Y: "total"}, true},
		{Plan{ChartType: TypeBar, X: "status", Y: "status"}, false},
		{Plan{ChartType: TypeStackedBar, X: "status", Y: "total"}, false},
		{Plan{ChartType: TypePie, X: "status", Y: "revenue"}, true},
		{Plan{ChartType: TypeScatter, X: "total", Y: "revenue"}, true},
		{Plan{ChartType: TypeHistogram, X: "revenue"}, true},
		{Plan{ChartType: TypeHistogram, X: "status"}, false},
		{Plan{ChartType: TypeHeatmap}, true},
		{Plan{ChartType: TypeBoxplot, X: "status", Y: "total"}, true},
		{Plan{ChartType: TypeLine, X: "missing", Y: "total"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.plan.ChartType+"/"+tt.plan.X+"/"+tt.plan.Y, func(t *testing.T) {
			assert.Equal(t, tt.want, RequirementsMet(tt.plan, f))
		})
	}
}

func TestRenderEveryType(t *testing.T) {
	f := NewFrame(shopRows)
	plans := []Plan{
		{ChartType: TypeBar, X: "status", Y: "total", Title: "OS por status"},
		{ChartType: TypeStackedBar, X: "status", Y: "total", Hue: "status"},
		{ChartType: TypeLine, X: "status", Y: "revenue"},
		{ChartType: TypeScatter, X: "total", Y: "revenue"},
		{ChartType: TypeHistogram, X: "revenue"},
		{ChartType: TypeBoxplot, X: "status", Y: "revenue"},
		{ChartType: TypeHeatmap},
		{ChartType: TypePie, X: "status", Y: "total"},
	}
	for _, p := range plans {
		t.Run(p.ChartType, func(t *testing.T) {
			data, err := Renderer{}.Render(p, f)
			require.NoError(t, err)
			img, err := png.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, canvasWidth, img.Bounds().Dx())
		})
	}
}

func TestRunWithInlineData(t *testing.T) {
	provider := llmtest.New(`{"chart_type": "BAR", "title": "OS", "x": "status", "y": "total",
		"data": [{"status": "PENDING", "total": 4}, {"status": "COMPLETED", "total": 7}],
		"explanation": "Quantidade de OS por status."}`)
	r := New(provider, nil, Renderer{}, logger.NewNop())

	res, err := r.Run(context.Background(), "gráfico de barras com esses dados")
	require.NoError(t, err)
	assert.Equal(t, "Quantidade de OS por status.", res.Reply)
	assert.Equal(t, MimePNG, res.ImageMime)
	raw, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
}

func TestRunWithSQLAndExplanation(t *testing.T) {
	db := storetest.DB(t)
	storetest.SeedShop(t, db)
	provider := &llmtest.Scripted{Func: func(req *llm.LLMRequest) (string, error) {
		if req.JSON {
			return `{"chart_type": "pie", "x": "status", "y": "total",
				"sql": "SELECT status, COUNT(*) AS total FROM service_orders GROUP BY status"}`, nil
		}
		return "O gráfico mostra a distribuição das OS.", nil
	}}
	r := New(provider, store.NewReader(db), Renderer{}, logger.NewNop())

	res, err := r.Run(context.Background(), "pizza de OS por status")
	require.NoError(t, err)
	assert.Equal(t, "O gráfico mostra a distribuição das OS.", res.Reply)
	assert.NotEmpty(t, res.ImageBase64)
}

func TestRunSuggestsWhenColumnsDoNotFit(t *testing.T) {
	provider := llmtest.New(`{"chart_type": "scatter", "x": "status", "y": "total",
		"data": [{"status": "PENDING", "total": 4}, {"status": "COMPLETED", "total": 7}]}`)
	r := New(provider, nil, Renderer{}, logger.NewNop())

	res, err := r.Run(context.Background(), "dispersão")
	require.NoError(t, err)
	assert.Empty(t, res.ImageBase64)
	assert.True(t, strings.HasPrefix(res.Reply, "Não consegui identificar colunas suficientes"))
	assert.Contains(t, res.Suggestions, "Barras: x=status, y=total")
	require.NotNil(t, res.Columns)
	assert.Equal(t, []string{"total"}, res.Columns.Numeric)
}

func TestRunFailures(t *testing.T) {
	ctx := context.Background()

	r := New(llmtest.New("sem json"), nil, Renderer{}, logger.NewNop())
	res, err := r.Run(ctx, "gráfico")
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "Não consegui planejar a visualização")

	r = New(llmtest.New(`{"chart_type": "radar", "data": [{"a": 1}]}`), nil, Renderer{}, logger.NewNop())
	res, err = r.Run(ctx, "gráfico")
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "radar")

	r = New(llmtest.New(`{"chart_type": "bar", "x": "a", "y": "b"}`), nil, Renderer{}, logger.NewNop())
	res, err = r.Run(ctx, "gráfico")
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "Plano não contém sql nem dados inline")

	db := storetest.DB(t)
	r = New(llmtest.New(`{"chart_type": "bar", "x": "a", "y": "b", "sql": "SELECT * FROM users"}`), store.NewReader(db), Renderer{}, logger.NewNop())
	res, err = r.Run(ctx, "gráfico")
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "Falha ao obter dados")
	assert.Contains(t, res.Reply, "users")

	r = New(llmtest.New(`{"chart_type": "bar", "x": "status", "y": "total", "sql": "SELECT status, COUNT(*) AS total FROM service_orders GROUP BY status"}`), store.NewReader(db), Renderer{}, logger.NewNop())
	res, err = r.Run(ctx, "gráfico")
	require.NoError(t, err)
	assert.Equal(t, "Consulta retornou vazio. Não há dados para plotar.", res.Reply)
}
