package chart

import (
	"fmt"
	"strings"
)

const (
	TypeLine       = "line"
	TypeBar        = "bar"
	TypeScatter    = "scatter"
	TypePie        = "pie"
	TypeHistogram  = "histogram"
	TypeStackedBar = "stacked_bar"
	TypeBoxplot    = "boxplot"
	TypeHeatmap    = "heatmap"
)

var chartTypes = []string{TypeLine, TypeBar, TypeScatter, TypePie, TypeHistogram, TypeStackedBar, TypeBoxplot, TypeHeatmap}

// Plan is the structured visualization request produced by the planner model.
type Plan struct {
	ChartType   string           `json:"chart_type"`
	Title       string           `json:"title,omitempty"`
	X           string           `json:"x,omitempty"`
	Y           string           `json:"y,omitempty"`
	Hue         string           `json:"hue,omitempty"`
	SQL         string           `json:"sql,omitempty"`
	Data        []map[string]any `json:"data,omitempty"`
	Explanation string           `json:"explanation,omitempty"`
}

// Normalize lower-cases the chart type and checks it is supported.
func (p *Plan) Normalize() error {
	p.ChartType = strings.ToLower(strings.TrimSpace(p.ChartType))
	for _, t := range chartTypes {
		if p.ChartType == t {
			return nil
		}
	}
	return fmt.Errorf("tipo de gráfico não suportado: %s", p.ChartType)
}

// RequirementsMet reports whether the frame has suitable columns for the plan.
func RequirementsMet(p Plan, f Frame) bool {
	switch p.ChartType {
	case TypeHeatmap:
		return len(f.Types().Numeric) >= 2
	case TypeHistogram:
		return f.IsNumeric(p.X)
	case TypePie, TypeBoxplot:
		return f.IsCategorical(p.X) && f.IsNumeric(p.Y)
	case TypeScatter:
		return f.IsNumeric(p.X) && f.IsNumeric(p.Y)
	case TypeBar, TypeStackedBar, TypeLine:
		xOK := f.Has(p.X)
		yOK := f.IsNumeric(p.Y)
		if p.ChartType == TypeStackedBar {
			return xOK && yOK && f.IsCategorical(p.Hue)
		}
		return xOK && yOK
	default:
		return false
	}
}

// SuggestionsText explains which charts the frame could support.
func SuggestionsText(f Frame, p Plan) string {
	types := f.Types()
	num, cat, date := types.Numeric, types.Categorical, types.Datetime

	var suggestions []string
	if len(cat) > 0 && len(num) > 0 {
		var hue []string
		for _, c := range cat {
			if c != p.X {
				hue = append(hue, c)
			}
		}
		suggestions = append(suggestions,
			fmt.Sprintf("Barras: x em %s, y em %s", few(cat), few(num)),
			fmt.Sprintf("Barras empilhadas: x em %s, y em %s, hue em %s", few(cat), few(num), few(hue)),
			fmt.Sprintf("Boxplot: x em %s, y em %s", few(cat), few(num)),
		)
	}
	if len(date) > 0 && len(num) > 0 {
		suggestions = append(suggestions, fmt.Sprintf("Linha: x em %s, y em %s", few(date), few(num)))
	}
	if len(num) >= 2 {
		suggestions = append(suggestions,
			fmt.Sprintf("Dispersão: x e y em %s", few(num)),
			fmt.Sprintf("Heatmap: correlação entre %d variáveis numéricas (%s)", len(num), few(num)),
		)
	}
	if len(num) > 0 {
		suggestions = append(suggestions, fmt.Sprintf("Histograma: x em %s", few(num)))
	}
	if len(cat) > 0 && len(num) > 0 {
		suggestions = append(suggestions, fmt.Sprintf("Pizza: rótulos em %s e valores em %s", few(cat), few(num)))
	}

	var examples []string
	if len(cat) > 0 && len(num) > 0 {
		examples = append(examples, fmt.Sprintf("Faça um gráfico de barras com x=%s e y=%s", cat[0], num[0]))
	}
	if len(date) > 0 && len(num) > 0 {
		examples = append(examples, fmt.Sprintf("Faça um gráfico de linha com x=%s e y=%s", date[0], num[0]))
	}
	if len(num) >= 2 {
		examples = append(examples, fmt.Sprintf("Faça um gráfico de dispersão com x=%s e y=%s", num[0], num[1]))
	}
	if len(cat) > 0 && len(num) > 0 {
		examples = append(examples, fmt.Sprintf("Faça um boxplot de y=%s por x=%s", num[0], cat[0]))
	}

	var b strings.Builder
	b.WriteString("Não consegui identificar colunas suficientes para montar o gráfico solicitado.\n\nOpções sugeridas:")
	if len(suggestions) > 0 {
		b.WriteString("\n- " + strings.Join(suggestions, "\n- "))
	} else {
		b.WriteString("\n(Não foi possível sugerir sem colunas adequadas)")
	}
	if len(examples) > 0 {
		b.WriteString("\n\nExemplos de prompts:\n- " + strings.Join(examples, "\n- "))
	}
	return b.String()
}

// Suggestions is the short form of SuggestionsText.
func Suggestions(f Frame) []string {
	types := f.Types()
	num, cat, date := types.Numeric, types.Categorical, types.Datetime
	out := []string{}
	if len(cat) > 0 && len(num) > 0 {
		hue := cat[min(1, len(cat)-1)]
		out = append(out,
			fmt.Sprintf("Barras: x=%s, y=%s", cat[0], num[0]),
			fmt.Sprintf("Barras empilhadas: x=%s, y=%s, hue=%s", cat[0], num[0], hue),
		)
	}
	if len(date) > 0 && len(num) > 0 {
		out = append(out, fmt.Sprintf("Linha: x=%s, y=%s", date[0], num[0]))
	}
	if len(num) >= 2 {
		out = append(out, fmt.Sprintf("Dispersão: x=%s, y=%s", num[0], num[1]), "Heatmap de correlação entre colunas numéricas")
	}
	if len(cat) > 0 && len(num) > 0 {
		out = append(out,
			fmt.Sprintf("Boxplot: x=%s, y=%s", cat[0], num[0]),
			fmt.Sprintf("Pizza: rótulos=%s, valores=%s", cat[0], num[0]),
		)
	}
	if len(num) > 0 {
		out = append(out, fmt.Sprintf("Histograma: x=%s", num[0]))
	}
	return out
}

func few(items []string) string {
	if len(items) > 3 {
		items = items[:3]
	}
	return "[" + strings.Join(items, ", ") + "]"
}
