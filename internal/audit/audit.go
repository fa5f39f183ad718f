// Package audit answers security, privacy and audit-trail questions.
package audit

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/DeyvidJesus/gomech-ai-service/internal/llm"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
)

const maxListedEvents = 10

var operationNames = map[string]string{
	"CREATE": "Criação",
	"UPDATE": "Atualização",
	"DELETE": "Exclusão",
	"READ":   "Leitura",
	"LOGIN":  "Login",
	"LOGOUT": "Logout",
}

var (
	accessWords     = []string{"acessos", "quem acessou", "login", "histórico"}
	lgpdWords       = []string{"lgpd", "exclusão", "dados pessoais"}
	protectionWords = []string{"protege", "segurança", "seguro", "criptografia"}
	blockchainWords = []string{"blockchain", "rastreab"}
	monitoringWords = []string{"monitoramento", "auditoria", "rastreio", "log"}
)

// Backend is the audit data source.
type Backend interface {
	Events(ctx context.Context, filter EventFilter) ([]Event, error)
	LGPDStatus(ctx context.Context, email string) (LGPDStatus, error)
}

type Result struct {
	Reply string `json:"reply"`
}

type Responder struct {
	provider llm.LLMProvider
	backend  Backend
	log      *logger.Logger
}

func New(provider llm.LLMProvider, backend Backend, log *logger.Logger) *Responder {
	return &Responder{provider: provider, backend: backend, log: log.With("component", "audit_agent")}
}

// Answer enriches the question with FAQ sections and live audit data before
// asking the model. Backend failures only shrink the context.
func (r *Responder) Answer(ctx context.Context, question, userEmail string) (Result, error) {
	r.log.Info("audit question", "question", question)

	extra := r.BuildContext(ctx, question, userEmail)
	reply, err := llm.Ask(ctx, r.provider, fmt.Sprintf(systemPrompt, extra), question)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		r.log.Error("audit answer failed", "error", err)
		return Result{Reply: replyFallback}, nil
	}
	return Result{Reply: strings.TrimSpace(reply)}, nil
}

// BuildContext selects the FAQ sections and backend data relevant to question.
func (r *Responder) BuildContext(ctx context.Context, question, userEmail string) string {
	q := strings.ToLower(question)
	var b strings.Builder

	if containsAny(q, accessWords) {
		if userEmail == "" {
			b.WriteString("\n\n⚠️ Não foi possível identificar seu email para consultar acessos específicos.")
		} else {
			events, err := r.backend.Events(ctx, EventFilter{UserEmail: userEmail, DaysBack: 30})
			if err != nil {
				r.log.Warn("audit events unavailable", "error", err)
			}
			b.WriteString("\n\n" + FormatEvents(events))
		}
	}

	if containsAny(q, lgpdWords) {
		if userEmail != "" {
			status, err := r.backend.LGPDStatus(ctx, userEmail)
			if err != nil {
				r.log.Warn("lgpd status unavailable", "error", err)
			} else if status.PendingRequests > 0 {
				b.WriteString("\n\n📋 **Status LGPD:**\n")
				fmt.Fprintf(&b, "• Solicitações pendentes: %d\n", status.PendingRequests)
				if status.DeletionScheduled {
					fmt.Fprintf(&b, "• Exclusão agendada para: %s\n", status.DeletionDate)
				}
			}
		}
		b.WriteString("\n\n" + faqLGPD)
	}

	if containsAny(q, protectionWords) {
		b.WriteString("\n\n" + faqProtection)
	}
	if containsAny(q, blockchainWords) {
		b.WriteString("\n\n" + faqBlockchain)
	}

	if containsAny(q, monitoringWords) {
		b.WriteString("\n\n" + faqAccess)
		recent, err := r.backend.Events(ctx, EventFilter{DaysBack: 7})
		if err != nil {
			r.log.Warn("recent audit events unavailable", "error", err)
		}
		if len(recent) > 0 {
			b.WriteString("\n\n" + operationStats(recent))
		}
	}
	return b.String()
}

// FormatEvents renders at most ten events for the model context.
func FormatEvents(events []Event) string {
	if len(events) == 0 {
		return "📋 Nenhum evento de auditoria encontrado no período especificado."
	}
	lines := []string{"📋 **Eventos de Auditoria Recentes:**\n"}
	for i, e := range events {
		if i == maxListedEvents {
			break
		}
		op := e.Operation
		if name, ok := operationNames[op]; ok {
			op = name
		}
		lines = append(lines,
			fmt.Sprintf("• **%s** - %s em %s", orDefault(e.OccurredAt, "Data desconhecida"), op, e.ModuleName),
			fmt.Sprintf("  👤 Usuário: %s", orDefault(e.UserEmail, "Usuário desconhecido")),
		)
		if ref := e.BlockchainReference; ref != "" {
			if len(ref) > 16 {
				ref = ref[:16]
			}
			lines = append(lines, fmt.Sprintf("  🔗 Blockchain: %s...", ref))
		}
		lines = append(lines, "")
	}
	if len(events) > maxListedEvents {
		lines = append(lines, fmt.Sprintf("_... e mais %d eventos_", len(events)-maxListedEvents))
	}
	return strings.Join(lines, "\n")
}

func operationStats(events []Event) string {
	counts := map[string]int{}
	for _, e := range events {
		counts[orDefault(e.Operation, "Desconhecido")]++
	}
	ops := make([]string, 0, len(counts))
	for op := range counts {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool {
		if counts[ops[i]] != counts[ops[j]] {
			return counts[ops[i]] > counts[ops[j]]
		}
		return ops[i] < ops[j]
	})

	var b strings.Builder
	b.WriteString("📊 **Estatísticas (últimos 7 dias):**\n")
	fmt.Fprintf(&b, "• Total de eventos auditados: %d\n", len(events))
	for _, op := range ops {
		fmt.Fprintf(&b, "• %s: %d eventos\n", op, counts[op])
	}
	return b.String()
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
