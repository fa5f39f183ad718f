// Package crm analyzes customer messages and drafts follow-up texts.
package crm

import (
	"context"
	"fmt"
	"strings"

	"github.com/DeyvidJesus/gomech-ai-service/internal/llm"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
)

type Sentiment string

const (
	Positive Sentiment = "POSITIVE"
	Neutral  Sentiment = "NEUTRAL"
	Negative Sentiment = "NEGATIVE"
)

// Message types understood by the classifier.
const (
	TypeSatisfaction   = "SATISFACTION"
	TypeComplaint      = "COMPLAINT"
	TypeSuggestion     = "SUGGESTION"
	TypeCompliment     = "COMPLIMENT"
	TypeQuestion       = "QUESTION"
	TypeReviewReminder = "REVIEW_REMINDER"
	TypeAppointment    = "APPOINTMENT"
	TypeOther          = "OTHER"
)

var MessageTypes = []string{
	TypeSatisfaction, TypeComplaint, TypeSuggestion, TypeCompliment,
	TypeQuestion, TypeReviewReminder, TypeAppointment, TypeOther,
}

// Actions accepted by Analyze.
const (
	ActionAnalyze  = "analyze"
	ActionRespond  = "respond"
	ActionClassify = "classify"
)

const replyFallback = "Olá! Recebemos sua mensagem e vamos retornar em breve. Obrigado pelo contato!"

type AnalyzeRequest struct {
	Message    string `json:"message" binding:"required"`
	ClientName string `json:"client_name,omitempty"`
	Action     string `json:"action,omitempty"`
}

type Analysis struct {
	Sentiment         Sentiment `json:"sentiment"`
	SentimentScore    float64   `json:"sentiment_score"`
	MessageType       string    `json:"message_type"`
	IsUrgent          bool      `json:"is_urgent"`
	Analysis          string    `json:"analysis"`
	SuggestedResponse string    `json:"suggested_response,omitempty"`
	Recommendations   []string  `json:"recommendations"`
}

type Responder struct {
	provider llm.LLMProvider
	log      *logger.Logger
}

func New(provider llm.LLMProvider, log *logger.Logger) *Responder {
	return &Responder{provider: provider, log: log.With("component", "crm_agent")}
}

// Analyze scores the message, classifies it and, for analyze and respond,
// drafts a reply.
func (r *Responder) Analyze(ctx context.Context, req AnalyzeRequest) (Analysis, error) {
	if strings.TrimSpace(req.Message) == "" {
		return Analysis{}, fmt.Errorf("%w: message não pode ser vazio", apierr.ErrInvalidInput)
	}
	action := strings.ToLower(strings.TrimSpace(req.Action))
	if action == "" {
		action = ActionAnalyze
	}
	switch action {
	case ActionAnalyze, ActionRespond, ActionClassify:
	default:
		return Analysis{}, fmt.Errorf("%w: ação desconhecida: %s", apierr.ErrInvalidInput, req.Action)
	}

	sentiment, score := ScoreSentiment(req.Message)
	urgent := IsUrgent(req.Message)
	msgType, err := r.classify(ctx, req.Message)
	if err != nil {
		return Analysis{}, err
	}

	out := Analysis{
		Sentiment:      sentiment,
		SentimentScore: score,
		MessageType:    msgType,
		IsUrgent:       urgent,
		Analysis:       fmt.Sprintf("Sentimento: %s (%.2f), Tipo: %s", sentiment, score, msgType),
	}
	if action != ActionClassify {
		out.SuggestedResponse, err = r.respond(ctx, req, out)
		if err != nil {
			return Analysis{}, err
		}
	}
	out.Recommendations = Recommendations(out)

	r.log.Info("crm analysis", "sentiment", sentiment, "type", msgType, "urgent", urgent)
	return out, nil
}

func (r *Responder) classify(ctx context.Context, message string) (string, error) {
	raw, err := llm.Ask(ctx, r.provider, classifyPrompt, "Mensagem: "+message)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		r.log.Warn("crm classification failed", "error", err)
		return TypeOther, nil
	}
	return NormalizeType(raw), nil
}

func (r *Responder) respond(ctx context.Context, req AnalyzeRequest, a Analysis) (string, error) {
	client := "Cliente não identificado"
	if req.ClientName != "" {
		client = "Nome: " + req.ClientName
	}
	urgent := "Não"
	if a.IsUrgent {
		urgent = "Sim"
	}
	system := fmt.Sprintf(responsePrompt, client, a.MessageType, a.Sentiment, urgent)

	reply, err := llm.Ask(ctx, r.provider, system, "Mensagem do cliente: "+req.Message)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		r.log.Warn("crm response failed", "error", err)
		return replyFallback, nil
	}
	if reply = strings.TrimSpace(reply); reply == "" {
		return replyFallback, nil
	}
	return reply, nil
}

// NormalizeType maps raw model output onto MessageTypes, defaulting to OTHER.
func NormalizeType(raw string) string {
	t := strings.ToUpper(strings.Trim(strings.TrimSpace(raw), "*`\"'. "))
	for _, known := range MessageTypes {
		if t == known {
			return t
		}
	}
	return TypeOther
}

// Recommendations lists follow-up hints for the attendant.
func Recommendations(a Analysis) []string {
	recs := []string{}
	if a.IsUrgent {
		recs = append(recs, "⚠️ URGENTE - Responder imediatamente")
	}
	if a.Sentiment == Negative {
		recs = append(recs, "😞 Cliente insatisfeito - Priorizar atendimento")
	}
	if a.MessageType == TypeComplaint {
		recs = append(recs, "📢 Reclamação - Encaminhar para gerente")
	}
	if a.Sentiment == Positive {
		recs = append(recs, "✅ Cliente satisfeito - Agradecer e pedir avaliação")
	}
	return recs
}
