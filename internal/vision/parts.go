package vision

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed parts.yaml
var partsYAML []byte

type PartInfo struct {
	Name            string   `yaml:"name" json:"-"`
	Category        string   `yaml:"category" json:"category"`
	Alternatives    []string `yaml:"alternatives" json:"alternatives"`
	AveragePrice    string   `yaml:"average_price" json:"average_price"`
	Brands          []string `yaml:"brands" json:"brands"`
	LifespanKM      string   `yaml:"lifespan_km" json:"lifespan_km"`
	VehicleSpecific string   `yaml:"-" json:"vehicle_specific,omitempty"`
}

type VehicleInfo struct {
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  any    `json:"year"`
}

type PartSuggestion struct {
	PartName       string    `json:"part_name"`
	Suggestion     *PartInfo `json:"suggestion,omitempty"`
	Message        string    `json:"message"`
	Recommendation string    `json:"recommendation,omitempty"`
}

var (
	partsOnce sync.Once
	parts     []PartInfo
	partsErr  error
)

func knownParts() ([]PartInfo, error) {
	partsOnce.Do(func() {
		var file struct {
			Parts []PartInfo `yaml:"parts"`
		}
		if err := yaml.Unmarshal(partsYAML, &file); err != nil {
			partsErr = fmt.Errorf("failed to parse parts catalog: %w", err)
			return
		}
		parts = file.Parts
	})
	return parts, partsErr
}

// SuggestPart looks up replacement options for an identified part.
func SuggestPart(identified string, vehicle *VehicleInfo) (PartSuggestion, error) {
	known, err := knownParts()
	if err != nil {
		return PartSuggestion{}, err
	}
	lower := strings.ToLower(identified)
	for _, p := range known {
		if !strings.Contains(lower, p.Name) {
			continue
		}
		info := p
		if vehicle != nil {
			info.VehicleSpecific = strings.TrimSpace(fmt.Sprintf("%s %s %v", vehicle.Make, vehicle.Model, orEmpty(vehicle.Year)))
		}
		return PartSuggestion{
			PartName:   p.Name,
			Suggestion: &info,
			Message:    "Sugestões encontradas para " + p.Name,
		}, nil
	}
	return PartSuggestion{
		PartName:       identified,
		Message:        "Peça identificada, mas sem sugestões específicas no banco de dados",
		Recommendation: "Consultar fornecedor com código da peça",
	}, nil
}

func orEmpty(v any) any {
	if v == nil {
		return ""
	}
	return v
}
