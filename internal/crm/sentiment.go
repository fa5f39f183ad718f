package crm

import "strings"

var positiveKeywords = []string{
	"ótimo", "excelente", "perfeito", "maravilhoso", "amo", "adorei", "amei",
	"top", "show", "legal", "bom", "boa", "obrigado", "obrigada", "parabéns",
	"satisfeito", "satisfeita", "feliz", "recomendo", "melhor", "qualidade",
	"rápido", "rápida", "eficiente", "profissional", "atencioso", "educado",
}

var negativeKeywords = []string{
	"péssimo", "horrível", "ruim", "terrível", "decepcionado", "decepcionada",
	"insatisfeito", "insatisfeita", "problema", "reclamação", "demora", "demorado",
	"caro", "errado", "erro", "falha", "não funciona", "quebrado", "defeito",
	"nunca", "pior", "mau", "má", "desorganizado", "bagunça", "desrespeito",
	"mal", "mal atendido", "grosseiro", "grosseira", "incompetente",
}

var urgentKeywords = []string{
	"urgente", "emergência", "quebrado", "parado", "não funciona", "não liga",
	"vazamento", "acidente", "perigo", "risco", "imediato", "agora", "já",
}

// ScoreSentiment counts keyword hits (substring match). A positive share of
// at least 0.6 is POSITIVE, at most 0.4 NEGATIVE, anything else NEUTRAL 0.5.
func ScoreSentiment(text string) (Sentiment, float64) {
	lower := strings.ToLower(text)
	pos := countHits(lower, positiveKeywords)
	neg := countHits(lower, negativeKeywords)
	total := pos + neg
	if total == 0 {
		return Neutral, 0.5
	}
	ratio := float64(pos) / float64(total)
	switch {
	case ratio >= 0.6:
		return Positive, ratio
	case ratio <= 0.4:
		return Negative, 1 - ratio
	default:
		return Neutral, 0.5
	}
}

func IsUrgent(text string) bool {
	return countHits(strings.ToLower(text), urgentKeywords) > 0
}

func countHits(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}
