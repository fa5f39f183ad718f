package router

import "strings"

// Label is the destination of a message. The set is closed.
type Label string

const (
	LabelDataQuery      Label = "data-query"
	LabelVisualization  Label = "visualization"
	LabelChat           Label = "chat"
	LabelExternalSearch Label = "external-search"
	LabelAudit          Label = "audit"
	LabelRecommendation Label = "recommendation"
	LabelAction         Label = "action"
)

var Labels = []Label{
	LabelAction,
	LabelDataQuery,
	LabelVisualization,
	LabelExternalSearch,
	LabelAudit,
	LabelRecommendation,
	LabelChat,
}

// legacy answers of the first router prompt
var synonyms = map[string]Label{
	"sql":       LabelDataQuery,
	"data":      LabelDataQuery,
	"dados":     LabelDataQuery,
	"grafico":   LabelVisualization,
	"gráfico":   LabelVisualization,
	"chart":     LabelVisualization,
	"web":       LabelExternalSearch,
	"search":    LabelExternalSearch,
	"acao":      LabelAction,
	"ação":      LabelAction,
	"auditoria": LabelAudit,
}

// Normalize maps raw model output onto the label set. ok is false when the
// output names nothing in the set.
func Normalize(raw string) (Label, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.Trim(s, " \t\r\n\"'`.,;:!?*")
	s = strings.ReplaceAll(s, "_", "-")
	if s == "" {
		return LabelChat, false
	}
	for _, l := range Labels {
		if s == string(l) {
			return l, true
		}
	}
	if l, ok := synonyms[s]; ok {
		return l, true
	}
	return LabelChat, false
}
