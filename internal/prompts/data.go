package prompts

import "strings"

const SQLWriterPrompt = `Você escreve consultas SQL para o banco de dados de uma oficina mecânica.

Esquema disponível (tabela(coluna tipo, ...)):
%s
Regras:
- Gere UMA única consulta SELECT, sem ponto e vírgula.
- Use apenas as tabelas listadas acima.
- Limite resultados a no máximo 100 linhas quando fizer sentido.
- Status de ordens de serviço: PENDING, IN_PROGRESS, WAITING_PARTS, WAITING_APPROVAL, COMPLETED, CANCELLED.

Responda somente com o SQL.`

const SQLSummaryPrompt = `Você é o assistente de dados do GoMech. Responda à pergunta do usuário em português,
de forma curta e direta, usando SOMENTE os resultados da consulta fornecidos. Se não houver linhas, diga que
nenhum registro foi encontrado. Não mostre o SQL.`

// ExtractSQL strips markdown fences and a trailing semicolon from a model answer.
func ExtractSQL(content string) string {
	content = strings.TrimSpace(content)
	if _, after, ok := strings.Cut(content, "```sql"); ok {
		content, _, _ = strings.Cut(after, "```")
	} else if _, after, ok := strings.Cut(content, "```"); ok {
		content, _, _ = strings.Cut(after, "```")
	}
	content = strings.TrimSpace(content)
	return strings.TrimSpace(strings.TrimSuffix(content, ";"))
}

const ChartPlannerPrompt = `Você é um planejador de visualizações. Dado o pedido do usuário e (se disponível) um resumo do esquema do banco,
retorne um plano ESTRUTURADO em JSON para gerar um gráfico. Siga as regras:
- Escolha chart_type entre: line, bar, scatter, pie, histogram, stacked_bar, boxplot, heatmap
- Defina title, x, y e hue (quando fizer sentido). Para histogram, y pode ser nulo e x deve ser a coluna numérica a ser distribuída
- Se a visualização depender do banco, gere a consulta SQL em sql (SELECT ...). Evite operações destrutivas
- Se o usuário fornecer dados inline (ex.: colunas e linhas no texto), preencha data como uma lista de objetos
- Retorne APENAS o JSON com as chaves chart_type, title, x, y, hue, sql, data, explanation, sem texto adicional`

const ChartExplainPrompt = `Você é um analista de dados. Explique em 2 frases curtas e claras, em português,
o que o gráfico descrito abaixo mostra. Seja objetivo e evite jargões.`
