package chart

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Frame is tabular data in column order.
type Frame struct {
	Columns []string
	Rows    []map[string]any
}

// NewFrame builds a frame from inline rows. Columns follow first appearance.
func NewFrame(rows []map[string]any) Frame {
	var cols []string
	seen := map[string]bool{}
	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			if !seen[k] {
				keys = append(keys, k)
			}
		}
		// map order is random; keep it stable within a row
		sort.Strings(keys)
		for _, k := range keys {
			seen[k] = true
			cols = append(cols, k)
		}
	}
	return Frame{Columns: cols, Rows: rows}
}

func (f Frame) Empty() bool { return len(f.Rows) == 0 }

func (f Frame) Has(col string) bool {
	if col == "" {
		return false
	}
	for _, c := range f.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// ColumnTypes groups columns by kind. A column with only nulls is categorical.
type ColumnTypes struct {
	Numeric     []string `json:"numeric"`
	Categorical []string `json:"categorical"`
	Datetime    []string `json:"datetime"`
}

func (f Frame) Types() ColumnTypes {
	out := ColumnTypes{Numeric: []string{}, Categorical: []string{}, Datetime: []string{}}
	for _, col := range f.Columns {
		switch f.kind(col) {
		case kindNumeric:
			out.Numeric = append(out.Numeric, col)
		case kindDatetime:
			out.Datetime = append(out.Datetime, col)
		default:
			out.Categorical = append(out.Categorical, col)
		}
	}
	return out
}

type kind int

const (
	kindCategorical kind = iota
	kindNumeric
	kindDatetime
)

func (f Frame) kind(col string) kind {
	numeric, datetime, values := true, true, 0
	for _, row := range f.Rows {
		v, ok := row[col]
		if !ok || v == nil {
			continue
		}
		values++
		if _, ok := toFloat(v); !ok {
			numeric = false
		}
		if _, ok := toTime(v); !ok {
			datetime = false
		}
	}
	switch {
	case values == 0:
		return kindCategorical
	case numeric:
		return kindNumeric
	case datetime:
		return kindDatetime
	default:
		return kindCategorical
	}
}

func (f Frame) IsNumeric(col string) bool     { return f.Has(col) && f.kind(col) == kindNumeric }
func (f Frame) IsCategorical(col string) bool { return f.Has(col) && f.kind(col) == kindCategorical }
func (f Frame) IsDatetime(col string) bool    { return f.Has(col) && f.kind(col) == kindDatetime }

// Floats returns the numeric values of col, skipping nulls.
func (f Frame) Floats(col string) []float64 {
	out := make([]float64, 0, len(f.Rows))
	for _, row := range f.Rows {
		if v, ok := toFloat(row[col]); ok {
			out = append(out, v)
		}
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint64:
		return float64(t), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return n, err == nil
	default:
		return 0, false
	}
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

func label(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		if ts, ok := toTime(t); ok && len(t) > 10 {
			return ts.Format("2006-01-02")
		}
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.Format("2006-01-02")
	default:
		return fmt.Sprint(v)
	}
}
