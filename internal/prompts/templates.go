package prompts

import (
	"encoding/json"
	"fmt"
	"strings"
)

const RouterSystemPrompt = `Você é o roteador de mensagens do assistente GoMech, um sistema de gestão de oficinas mecânicas.
Classifique a mensagem do usuário em EXATAMENTE um destes rótulos:

- action: comandos que alteram dados (cadastrar, criar, abrir, atualizar, marcar, adicionar, incluir).
  Ex.: "Cadastre o cliente João Silva", "Marque a OS 123 como concluída", "Adicione 10 unidades ao estoque".
- data-query: perguntas que precisam de dados reais da oficina (clientes, veículos, ordens de serviço, peças, estoque).
  Ex.: "Quantas OS estão abertas?", "Qual o cliente com mais veículos?".
- visualization: pedidos de gráfico, visualização, dashboard ou comparação visual dos dados.
  Ex.: "Mostre um gráfico de OS por status".
- external-search: tutoriais, vídeos, notícias ou informações externas à oficina.
  Ex.: "Como trocar a correia dentada?", "Vídeo sobre freio ABS".
- audit: auditoria, LGPD, privacidade, blockchain, acessos e conformidade.
  Ex.: "Quem acessou os dados do cliente?", "Como a LGPD é aplicada?".
- recommendation: recomendações de gestão, lucratividade, gargalos, previsões, simulações e relacionamento com clientes.
  Ex.: "Quais serviços dão mais lucro?", "E se eu aumentar o preço em 10%?".
- chat: conversa geral, explicações ou qualquer coisa que não se encaixe acima.

Regras de desempate (ordem de prioridade):
1. Comandos de ação explícitos vencem tudo.
2. Menções concretas a dados da oficina vencem pedidos genéricos.
3. Pedidos explícitos de gráfico ou tutorial vêm em seguida.
4. Conversa, conformidade e recomendações por último.

Responda apenas com o rótulo, sem pontuação.`

const ActionParserPrompt = `Você é um parser de intenções de comandos para o sistema GoMech.

Analise a mensagem do usuário e identifique se é um COMANDO DE AÇÃO.

**COMANDOS SUPORTADOS:**
%s
**EXTRAÇÃO DE PARÂMETROS:**
Extraia todos os parâmetros possíveis da mensagem: IDs (veículo, cliente, OS, peça), nomes (cliente, técnico, peça),
números (quantidade, preço, quilometragem), status (pendente, concluída, etc), datas e descrições.

**FORMATO DE RESPOSTA:**
Se for um comando, responda em JSON:
{"is_command": true, "action": "nome_do_comando", "params": {"param1": "valor1"}, "missing_params": ["param3"]}

Se NÃO for um comando, responda:
{"is_command": false}

Seja preciso na extração de parâmetros. Se o usuário mencionar um ID, capture-o. Se mencionar um nome, capture-o.`

const ChatSystemPrompt = `Você é o assistente virtual do GoMech, sistema de gestão para oficinas mecânicas.
Responda em português, de forma clara e objetiva, ajudando com dúvidas sobre a oficina, manutenção de veículos
e uso do sistema.`

const FallbackMessage = "Desculpe, não consegui processar sua solicitação. Pode reformular a pergunta?"

// PageContextSuffix appends the advisory page hint to a classification prompt.
func PageContextSuffix(pageContext string) string {
	pageContext = strings.TrimSpace(pageContext)
	if pageContext == "" {
		return ""
	}
	return fmt.Sprintf("\n\n[Contexto da página atual (apenas dica, não substitui palavras-chave explícitas): %s]", pageContext)
}

// ParseJSON decodes the first JSON object found in an LLM answer into T.
func ParseJSON[T any](content string) (*T, error) {
	jsonContent := ExtractJSON(content)
	if jsonContent == "" {
		return nil, fmt.Errorf("no valid JSON found in response")
	}

	var out T
	if err := json.Unmarshal([]byte(jsonContent), &out); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &out, nil
}

// ExtractJSON strips markdown fences and returns the outermost object.
func ExtractJSON(content string) string {
	content = strings.TrimSpace(content)

	// Remove markdown code blocks if present
	if _, after, ok := strings.Cut(content, "```json"); ok {
		content, _, _ = strings.Cut(after, "```")
	} else if _, after, ok := strings.Cut(content, "```"); ok {
		content, _, _ = strings.Cut(after, "```")
	}

	start := strings.Index(content, "{")
	if start == -1 {
		return ""
	}

	end := strings.LastIndex(content, "}")
	if end == -1 || end <= start {
		return ""
	}

	return content[start : end+1]
}
