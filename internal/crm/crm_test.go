package crm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeyvidJesus/gomech-ai-service/internal/llm"
	"github.com/DeyvidJesus/gomech-ai-service/internal/llm/llmtest"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
)

func TestScoreSentiment(t *testing.T) {
	tests := []struct {
		text      string
		sentiment Sentiment
		score     float64
	}{
		{"Serviço excelente, muito obrigado!", Positive, 1},
		{"Atendimento péssimo e demorado", Negative, 1},
		{"Quero saber o horário de funcionamento", Neutral, 0.5},
		{"Ótimo preço mas teve demora", Neutral, 0.5},
		{"Excelente e rápido, porém caro", Positive, 2.0 / 3.0},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			s, score := ScoreSentiment(tt.text)
			assert.Equal(t, tt.sentiment, s)
			assert.InDelta(t, tt.score, score, 1e-9)
		})
	}
}

func TestIsUrgent(t *testing.T) {
	assert.True(t, IsUrgent("O carro está PARADO na estrada"))
	assert.True(t, IsUrgent("meu carro não liga"))
	assert.False(t, IsUrgent("Gostaria de agendar uma revisão"))
}

func TestNormalizeType(t *testing.T) {
	assert.Equal(t, TypeComplaint, NormalizeType(" complaint\n"))
	assert.Equal(t, TypeReviewReminder, NormalizeType("**REVIEW_REMINDER**"))
	assert.Equal(t, TypeOther, NormalizeType("ANGRY"))
}

func TestAnalyze(t *testing.T) {
	provider := &llmtest.Scripted{Func: func(req *llm.LLMRequest) (string, error) {
		if strings.HasPrefix(req.Prompt, "Mensagem: ") {
			return "COMPLAINT", nil
		}
		return "Sentimos muito, João. Vamos resolver hoje.", nil
	}}
	r := New(provider, logger.NewNop())

	got, err := r.Analyze(context.Background(), AnalyzeRequest{
		Message:    "Serviço péssimo, o carro voltou quebrado. Urgente!",
		ClientName: "João",
	})
	require.NoError(t, err)

	assert.Equal(t, Negative, got.Sentiment)
	assert.True(t, got.IsUrgent)
	assert.Equal(t, TypeComplaint, got.MessageType)
	assert.Equal(t, "Sentimos muito, João. Vamos resolver hoje.", got.SuggestedResponse)
	assert.Equal(t, []string{
		"⚠️ URGENTE - Responder imediatamente",
		"😞 Cliente insatisfeito - Priorizar atendimento",
		"📢 Reclamação - Encaminhar para gerente",
	}, got.Recommendations)
	assert.Equal(t, "Sentimento: NEGATIVE (1.00), Tipo: COMPLAINT", got.Analysis)

	reqs := provider.Requests()
	require.Len(t, reqs, 2)
	assert.Contains(t, reqs[1].System, "Nome: João")
	assert.Contains(t, reqs[1].System, "**É URGENTE:** Sim")
}

func TestAnalyzeClassifyOnly(t *testing.T) {
	provider := llmtest.New("COMPLIMENT")
	r := New(provider, logger.NewNop())

	got, err := r.Analyze(context.Background(), AnalyzeRequest{Message: "Parabéns pelo atendimento", Action: "classify"})
	require.NoError(t, err)
	assert.Empty(t, got.SuggestedResponse)
	assert.Equal(t, Positive, got.Sentiment)
	assert.Equal(t, []string{"✅ Cliente satisfeito - Agradecer e pedir avaliação"}, got.Recommendations)
	assert.Len(t, provider.Requests(), 1)
}

func TestAnalyzeModelFailure(t *testing.T) {
	r := New(&llmtest.Scripted{Err: errors.New("down")}, logger.NewNop())

	got, err := r.Analyze(context.Background(), AnalyzeRequest{Message: "Qual o horário?"})
	require.NoError(t, err)
	assert.Equal(t, TypeOther, got.MessageType)
	assert.Equal(t, replyFallback, got.SuggestedResponse)
	assert.Empty(t, got.Recommendations)
}

func TestAnalyzeInvalid(t *testing.T) {
	r := New(llmtest.New("OTHER"), logger.NewNop())

	_, err := r.Analyze(context.Background(), AnalyzeRequest{Message: "  "})
	assert.ErrorIs(t, err, apierr.ErrInvalidInput)

	_, err = r.Analyze(context.Background(), AnalyzeRequest{Message: "oi", Action: "delete"})
	assert.ErrorIs(t, err, apierr.ErrInvalidInput)
}

func TestTemplates(t *testing.T) {
	reminder, err := ReviewReminder(ReviewReminderRequest{ClientName: "Ana", VehicleModel: "Onix", LastServiceKM: 40000, CurrentKM: 50500})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reminder, "Olá, Ana!"))
	assert.Contains(t, reminder, "seu Onix já rodou 10500 km")

	_, err = ReviewReminder(ReviewReminderRequest{ClientName: "Ana", VehicleModel: "Onix", LastServiceKM: 10, CurrentKM: 5})
	assert.ErrorIs(t, err, apierr.ErrInvalidInput)

	survey, err := SatisfactionSurvey(SatisfactionSurveyRequest{ClientName: "Ana", ServiceOrderNumber: "OS-123"})
	require.NoError(t, err)
	assert.Contains(t, survey, "serviço #OS-123")

	_, err = SatisfactionSurvey(SatisfactionSurveyRequest{ClientName: "Ana"})
	assert.ErrorIs(t, err, apierr.ErrInvalidInput)
}
