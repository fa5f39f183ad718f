// Package sqlqa answers questions about the shop by writing and running a
// read-only query.
package sqlqa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DeyvidJesus/gomech-ai-service/internal/llm"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
	"github.com/DeyvidJesus/gomech-ai-service/internal/prompts"
	"github.com/DeyvidJesus/gomech-ai-service/internal/store"
)

const (
	replyQueryFailed = "Não consegui consultar os dados da oficina agora. Tente reformular a pergunta."
	replyUnsafe      = "Só posso executar consultas de leitura sobre clientes, veículos, ordens de serviço, peças e estoque."
	promptRowLimit   = 50
)

// Querier is the read-only access the responder needs.
type Querier interface {
	Query(ctx context.Context, sql string) (*store.ResultSet, error)
	SchemaSummary(ctx context.Context) string
}

type Result struct {
	Reply string           `json:"reply"`
	SQL   string           `json:"sql,omitempty"`
	Rows  *store.ResultSet `json:"rows,omitempty"`
}

type Responder struct {
	provider llm.LLMProvider
	db       Querier
	log      *logger.Logger
}

func New(provider llm.LLMProvider, db Querier, log *logger.Logger) *Responder {
	return &Responder{provider: provider, db: db, log: log.With("component", "sql_agent")}
}

// Answer returns a best-effort reply. Only a finished context is an error.
func (r *Responder) Answer(ctx context.Context, question string) (Result, error) {
	r.log.Info("data question", "question", question)

	query, rs, err := r.Run(ctx, question)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		r.log.Warn("data query failed", "sql", query, "error", err)
		if errors.Is(err, store.ErrUnsafeSQL) {
			return Result{Reply: replyUnsafe, SQL: query}, nil
		}
		return Result{Reply: replyQueryFailed, SQL: query}, nil
	}

	reply, err := r.summarize(ctx, question, rs)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		r.log.Warn("summary failed", "error", err)
		reply = fmt.Sprintf("A consulta retornou %d registro(s).", len(rs.Rows))
	}
	return Result{Reply: reply, SQL: query, Rows: rs}, nil
}

// Run writes the SQL for question and executes it.
func (r *Responder) Run(ctx context.Context, question string) (string, *store.ResultSet, error) {
	resp, err := r.provider.Generate(ctx, &llm.LLMRequest{
		System:      fmt.Sprintf(prompts.SQLWriterPrompt, r.db.SchemaSummary(ctx)),
		Prompt:      question,
		Temperature: 0,
	})
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", apierr.ErrInvocation, err)
	}
	query := prompts.ExtractSQL(resp.Content)
	rs, err := r.db.Query(ctx, query)
	if err != nil {
		return query, nil, err
	}
	return query, rs, nil
}

func (r *Responder) summarize(ctx context.Context, question string, rs *store.ResultSet) (string, error) {
	rows := rs.Rows
	if len(rows) > promptRowLimit {
		rows = rows[:promptRowLimit]
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf("Pergunta: %s\n\nColunas: %v\nResultados (%d linhas): %s", question, rs.Columns, len(rs.Rows), data)
	return llm.Ask(ctx, r.provider, prompts.SQLSummaryPrompt, prompt)
}
