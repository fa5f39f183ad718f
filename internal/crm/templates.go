package crm

import (
	"fmt"
	"strings"

	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
)

const classifyPrompt = `Você é um classificador de mensagens de clientes para uma oficina mecânica.

Analise a mensagem e classifique em uma das categorias:
- **SATISFACTION** - Avaliação de satisfação, feedback positivo
- **COMPLAINT** - Reclamação, problema, insatisfação
- **SUGGESTION** - Sugestão de melhoria
- **COMPLIMENT** - Elogio, agradecimento
- **QUESTION** - Dúvida, pergunta sobre serviços
- **REVIEW_REMINDER** - Cliente perguntando sobre revisão
- **APPOINTMENT** - Agendamento de serviço
- **OTHER** - Outros

Responda APENAS com a categoria em maiúsculas.`

const responsePrompt = `Você é um assistente de CRM para a oficina GoMech.

Gere uma resposta PROFISSIONAL, AMIGÁVEL e PERSONALIZADA para o cliente.

**DIRETRIZES:**
- Seja cordial e empático
- Use linguagem clara e acessível
- Seja breve (máx 3-4 linhas)
- Inclua call-to-action quando apropriado
- Não use emojis em excesso
- Se for reclamação, demonstre empatia e ofereça solução

**CONTEXTO DO CLIENTE:**
%s

**TIPO DE MENSAGEM:** %s
**SENTIMENTO:** %s
**É URGENTE:** %s`

type ReviewReminderRequest struct {
	ClientName    string `json:"client_name" binding:"required"`
	VehicleModel  string `json:"vehicle_model" binding:"required"`
	LastServiceKM int    `json:"last_service_km"`
	CurrentKM     int    `json:"current_km"`
}

type SatisfactionSurveyRequest struct {
	ClientName         string `json:"client_name" binding:"required"`
	ServiceOrderNumber string `json:"service_order_number" binding:"required"`
}

// ReviewReminder drafts the preventive maintenance reminder.
func ReviewReminder(req ReviewReminderRequest) (string, error) {
	if strings.TrimSpace(req.ClientName) == "" || strings.TrimSpace(req.VehicleModel) == "" {
		return "", fmt.Errorf("%w: client_name e vehicle_model são obrigatórios", apierr.ErrInvalidInput)
	}
	if req.CurrentKM < req.LastServiceKM {
		return "", fmt.Errorf("%w: current_km menor que last_service_km", apierr.ErrInvalidInput)
	}
	return fmt.Sprintf(`Olá, %s! 😊

Notamos que seu %s já rodou %d km desde a última revisão.

🔧 Que tal agendar uma revisão preventiva? Cuidar do seu veículo evita problemas maiores e garante sua segurança!

📅 Podemos agendar um horário para você?

Responda SIM para agendar ou ligue (11) 1234-5678.

Equipe GoMech`, req.ClientName, req.VehicleModel, req.CurrentKM-req.LastServiceKM), nil
}

func SatisfactionSurvey(req SatisfactionSurveyRequest) (string, error) {
	if strings.TrimSpace(req.ClientName) == "" || strings.TrimSpace(req.ServiceOrderNumber) == "" {
		return "", fmt.Errorf("%w: client_name e service_order_number são obrigatórios", apierr.ErrInvalidInput)
	}
	return fmt.Sprintf(`Olá, %s!

Agradecemos pela confiança em nossos serviços! 🙏

Gostaríamos de saber: como foi sua experiência com o serviço #%s?

📊 De 0 a 10, quanto você nos recomendaria?

Sua opinião é muito importante para nós!

Equipe GoMech`, req.ClientName, req.ServiceOrderNumber), nil
}
