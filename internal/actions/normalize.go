package actions

import (
	"math"
	"strconv"
	"strings"
)

var statusMapping = map[string]string{
	"pendente":             "PENDING",
	"em andamento":         "IN_PROGRESS",
	"aguardando peças":     "WAITING_PARTS",
	"aguardando pecas":     "WAITING_PARTS",
	"aguardando aprovação": "WAITING_APPROVAL",
	"aguardando aprovacao": "WAITING_APPROVAL",
	"concluída":            "COMPLETED",
	"concluida":            "COMPLETED",
	"concluído":            "COMPLETED",
	"concluido":            "COMPLETED",
	"cancelada":            "CANCELLED",
	"cancelado":            "CANCELLED",
}

var numericFields = map[string]bool{
	"id":                true,
	"vehicleId":         true,
	"clientId":          true,
	"serviceOrderId":    true,
	"partId":            true,
	"quantity":          true,
	"unitCost":          true,
	"salePrice":         true,
	"unitPrice":         true,
	"laborCost":         true,
	"partsCost":         true,
	"discount":          true,
	"currentKilometers": true,
	"minimumStock":      true,
	"markup":            true,
}

// NormalizeStatus maps a free-text status to the backend enum. Unknown values
// are upper-cased, so canonical values map to themselves.
func NormalizeStatus(status string) string {
	trimmed := strings.TrimSpace(status)
	if mapped, ok := statusMapping[strings.ToLower(trimmed)]; ok {
		return mapped
	}
	return strings.ToUpper(trimmed)
}

func isFloatField(field string) bool {
	lower := strings.ToLower(field)
	return strings.Contains(lower, "cost") || strings.Contains(lower, "price")
}

// Coerce converts numeric-looking values of known numeric fields. Fields named
// like cost/price, or strings with a decimal point, become float64; the rest
// become int64. Values that cannot be converted are returned unchanged.
func Coerce(field string, value any) any {
	if !numericFields[field] {
		return value
	}
	floatField := isFloatField(field)

	switch v := value.(type) {
	case string:
		s := strings.TrimSpace(v)
		if strings.Contains(s, ".") || floatField {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f
			}
			return value
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		return value
	case float64:
		if floatField || v != math.Trunc(v) {
			return v
		}
		return int64(v)
	case int:
		if floatField {
			return float64(v)
		}
		return int64(v)
	case int64:
		if floatField {
			return float64(v)
		}
		return v
	default:
		return value
	}
}

// Enrich returns a copy of raw with status normalized and numeric fields coerced.
func Enrich(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for key, value := range raw {
		if value == nil {
			continue
		}
		if key == "status" {
			if s, ok := value.(string); ok {
				out[key] = NormalizeStatus(s)
				continue
			}
		}
		out[key] = Coerce(key, value)
	}
	return out
}
