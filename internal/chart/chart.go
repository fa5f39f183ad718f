// Package chart plans, queries and renders charts requested in natural language.
package chart

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/DeyvidJesus/gomech-ai-service/internal/llm"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
	"github.com/DeyvidJesus/gomech-ai-service/internal/prompts"
	"github.com/DeyvidJesus/gomech-ai-service/internal/store"
)

const (
	MimePNG      = "image/png"
	defaultReply = "Aqui está o gráfico solicitado."
)

type Querier interface {
	Query(ctx context.Context, sql string) (*store.ResultSet, error)
	SchemaSummary(ctx context.Context) string
}

type Result struct {
	Reply       string       `json:"reply"`
	ImageBase64 string       `json:"image_base64,omitempty"`
	ImageMime   string       `json:"image_mime,omitempty"`
	Suggestions []string     `json:"suggestions,omitempty"`
	Columns     *ColumnTypes `json:"columns_by_type,omitempty"`
	Plan        *Plan        `json:"plan,omitempty"`
}

type Responder struct {
	provider llm.LLMProvider
	db       Querier
	renderer Renderer
	log      *logger.Logger
}

func New(provider llm.LLMProvider, db Querier, renderer Renderer, log *logger.Logger) *Responder {
	return &Responder{provider: provider, db: db, renderer: renderer, log: log.With("component", "chart_agent")}
}

// Run goes from question to PNG. Every failure becomes a reply; only a
// finished context is returned as an error.
func (r *Responder) Run(ctx context.Context, question string) (Result, error) {
	plan, err := r.plan(ctx, question)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		r.log.Warn("chart planning failed", "error", err)
		return Result{Reply: fmt.Sprintf("Não consegui planejar a visualização automaticamente: %s", publicDetail(err))}, nil
	}

	frame, err := r.frame(ctx, plan)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		r.log.Warn("chart data failed", "sql", plan.SQL, "error", err)
		return Result{Reply: fmt.Sprintf("Falha ao obter dados: %s", publicDetail(err)), Plan: plan}, nil
	}
	if frame.Empty() {
		return Result{Reply: "Consulta retornou vazio. Não há dados para plotar.", Plan: plan}, nil
	}

	if !RequirementsMet(*plan, frame) {
		types := frame.Types()
		return Result{
			Reply:       SuggestionsText(frame, *plan),
			Suggestions: Suggestions(frame),
			Columns:     &types,
			Plan:        plan,
		}, nil
	}

	png, err := r.renderer.Render(*plan, frame)
	if err != nil {
		r.log.Warn("chart render failed", "chart_type", plan.ChartType, "error", err)
		return Result{Reply: fmt.Sprintf("Falha ao renderizar gráfico: %s", err), Plan: plan}, nil
	}

	caption := strings.TrimSpace(plan.Explanation)
	if caption == "" {
		caption = r.explain(ctx, plan, frame)
	}
	r.log.Info("chart rendered", "chart_type", plan.ChartType, "rows", len(frame.Rows), "bytes", len(png))
	return Result{
		Reply:       caption,
		ImageBase64: base64.StdEncoding.EncodeToString(png),
		ImageMime:   MimePNG,
		Plan:        plan,
	}, nil
}

func (r *Responder) plan(ctx context.Context, question string) (*Plan, error) {
	schema := ""
	if r.db != nil {
		schema = r.db.SchemaSummary(ctx)
	}
	resp, err := r.provider.Generate(ctx, &llm.LLMRequest{
		System:      prompts.ChartPlannerPrompt,
		Prompt:      fmt.Sprintf("Pedido do usuário: %s\n\nEsquema (opcional):\n%s", question, schema),
		Temperature: 0,
		JSON:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apierr.ErrInvocation, err)
	}
	plan, err := prompts.ParseJSON[Plan](resp.Content)
	if err != nil {
		return nil, err
	}
	if err := plan.Normalize(); err != nil {
		return nil, err
	}
	return plan, nil
}

func (r *Responder) frame(ctx context.Context, plan *Plan) (Frame, error) {
	if strings.TrimSpace(plan.SQL) != "" {
		if r.db == nil {
			return Frame{}, errors.New("DATABASE_URL não configurado para executar SQL")
		}
		rs, err := r.db.Query(ctx, plan.SQL)
		if err != nil {
			return Frame{}, err
		}
		return Frame{Columns: rs.Columns, Rows: rs.Rows}, nil
	}
	if len(plan.Data) > 0 {
		return NewFrame(plan.Data), nil
	}
	return Frame{}, errors.New("Plano não contém sql nem dados inline")
}

func (r *Responder) explain(ctx context.Context, plan *Plan, f Frame) string {
	planJSON, _ := json.Marshal(plan)
	reply, err := llm.Ask(ctx, r.provider, prompts.ChartExplainPrompt,
		fmt.Sprintf("Plano: %s\nResumo dos dados (describe):\n%s", planJSON, Describe(f)))
	if err != nil || strings.TrimSpace(reply) == "" {
		return defaultReply
	}
	return strings.TrimSpace(reply)
}

// Describe summarizes each column the way a dataframe describe would.
func Describe(f Frame) string {
	var b strings.Builder
	types := f.Types()
	for _, col := range types.Numeric {
		vals := f.Floats(col)
		lo, hi := minMax(vals)
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		fmt.Fprintf(&b, "%s: count=%d mean=%.2f min=%.2f max=%.2f\n", col, len(vals), sum/float64(max(len(vals), 1)), lo, hi)
	}
	for _, col := range append(types.Categorical, types.Datetime...) {
		distinct := map[string]bool{}
		for _, row := range f.Rows {
			distinct[label(row[col])] = true
		}
		fmt.Fprintf(&b, "%s: count=%d unique=%d\n", col, len(f.Rows), len(distinct))
	}
	return b.String()
}

// publicDetail keeps validation messages and hides internal causes.
func publicDetail(err error) string {
	if errors.Is(err, apierr.ErrInvalidInput) {
		return err.Error()
	}
	if errors.Is(err, apierr.ErrPersistence) || errors.Is(err, apierr.ErrInvocation) || errors.Is(err, apierr.ErrUnavailable) {
		return "erro interno"
	}
	return err.Error()
}
