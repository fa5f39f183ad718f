package knowledge

import (
	"fmt"
	"strings"
)

const enhancedQuery = `Como assistente especializado em dados de oficina mecânica, responda a seguinte pergunta
baseado nos dados disponíveis na base de conhecimento:

%s

Se a pergunta for sobre análises, forneça insights detalhados.
Se for sobre dados específicos, seja preciso nos números.
Sempre contextualize sua resposta com informações relevantes dos dados.`

const standardSystemPrompt = `Você é um assistente de IA para uma oficina mecânica chamada GoMech.

Responda perguntas sobre:
- Gestão de oficina mecânica
- Análise de dados de serviços automotivos
- Relatórios de vendas e clientes
- Operações de manutenção veicular

Seja profissional, preciso e útil. Se não tiver dados específicos,
forneça orientações gerais baseadas em boas práticas do setor.`

const replyFallback = "Não foi possível processar a pergunta agora. Tente novamente em instantes."

func ragSystemPrompt(sources []Source) string {
	var b strings.Builder
	b.WriteString("Use os trechos abaixo da base de conhecimento para responder. ")
	b.WriteString("Se a resposta não estiver neles, diga que não sabe.\n\n")
	for i, s := range sources {
		fmt.Fprintf(&b, "[%d] %s\n\n", i+1, strings.TrimSpace(s.Content))
	}
	return strings.TrimRight(b.String(), "\n")
}
