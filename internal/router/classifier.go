package router

import (
	"context"
	"strings"

	"github.com/DeyvidJesus/gomech-ai-service/internal/llm"
	"github.com/DeyvidJesus/gomech-ai-service/internal/prompts"
)

// Classifier produces a raw label for a message. Output is normalized by Router.
type Classifier interface {
	Classify(ctx context.Context, text, pageContext string) (string, error)
}

type LLMClassifier struct {
	provider llm.LLMProvider
	model    string
}

func NewLLMClassifier(provider llm.LLMProvider, model string) *LLMClassifier {
	return &LLMClassifier{provider: provider, model: model}
}

func (c *LLMClassifier) Classify(ctx context.Context, text, pageContext string) (string, error) {
	resp, err := c.provider.Generate(ctx, &llm.LLMRequest{
		System:      prompts.RouterSystemPrompt,
		Prompt:      text + prompts.PageContextSuffix(pageContext),
		Temperature: 0,
		MaxTokens:   10,
		Model:       c.model,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

type rule struct {
	label    Label
	match    func(folded string) bool
	keywords []string
}

// KeywordClassifier is a deterministic rule engine over the same keywords the
// model prompt lists. Rules are checked in tie-break order.
type KeywordClassifier struct {
	rules []rule
}

var actionVerbs = map[string]bool{
	"cadastre": true, "cadastrar": true, "crie": true, "criar": true, "abra": true, "abrir": true,
	"atualize": true, "atualizar": true, "marque": true, "marcar": true, "adicione": true,
	"adicionar": true, "inclua": true, "incluir": true, "registre": true, "registrar": true,
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{rules: []rule{
		{label: LabelAction, match: isCommand},
		{label: LabelDataQuery, keywords: []string{
			"quantos", "quantas", "quantidade de", "liste", "listar", "lista de", "total de",
			"qual cliente", "quais clientes", "qual o cliente", "quais os clientes", "quais ordens",
			"qual veiculo", "quais veiculos", "faturamento", "em estoque", "estoque atual",
		}},
		{label: LabelVisualization, keywords: []string{
			"grafico", "visualiza", "dashboard", "plot", "histograma", "pizza", "barras",
		}},
		{label: LabelExternalSearch, keywords: []string{
			"tutorial", "video", "youtube", "como trocar", "como fazer", "passo a passo", "noticia",
		}},
		{label: LabelAudit, keywords: []string{
			"auditoria", "lgpd", "privacidade", "blockchain", "quem acessou", "acessos", "conformidade", "consentimento",
		}},
		{label: LabelRecommendation, keywords: []string{
			"recomend", "lucrativ", "lucro", "gargalo", "previs", "simula", "e se eu", "benchmark",
			"satisfacao", "fideliz", "atraso", "capacidade",
		}},
	}}
}

func (k *KeywordClassifier) Classify(_ context.Context, text, _ string) (string, error) {
	folded := Fold(text)
	for _, r := range k.rules {
		if r.match != nil && r.match(folded) {
			return string(r.label), nil
		}
		for _, kw := range r.keywords {
			if strings.Contains(folded, kw) {
				return string(r.label), nil
			}
		}
	}
	return string(LabelChat), nil
}

func isCommand(folded string) bool {
	folded = strings.TrimPrefix(folded, "por favor")
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '!'
	})
	return len(fields) > 0 && actionVerbs[fields[0]]
}

var accents = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a",
	"é", "e", "ê", "e",
	"í", "i",
	"ó", "o", "ô", "o", "õ", "o",
	"ú", "u", "ü", "u",
	"ç", "c",
)

// Fold lower-cases and strips Portuguese diacritics.
func Fold(s string) string {
	return accents.Replace(strings.ToLower(strings.TrimSpace(s)))
}
