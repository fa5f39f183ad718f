// Package vision inspects photos of vehicle parts with a multimodal model.
package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/DeyvidJesus/gomech-ai-service/internal/llm"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
)

// Actions accepted by Run.
const (
	ActionAnalyze      = "analyze"
	ActionDetectDamage = "detect_damage"
	ActionSuggestPart  = "suggest_part"
	ActionExtractCode  = "extract_code"
)

const (
	analysisMaxTokens = 1000
	ocrMaxTokens      = 300
	notSpecified      = "Não especificado"
	noCodeMarker      = "NENHUM CÓDIGO"
)

var (
	severityOutOfFive = regexp.MustCompile(`(?:Gravidade|gravidade).*?(\d)/5`)
	severityAny       = regexp.MustCompile(`(?:Gravidade|gravidade).*?(\d)`)
)

type Service struct {
	provider llm.LLMProvider
	model    string
	log      *logger.Logger
}

// New builds the responder. model overrides the provider default when set.
func New(provider llm.LLMProvider, model string, log *logger.Logger) *Service {
	return &Service{provider: provider, model: model, log: log.With("component", "vision_agent")}
}

type Analysis struct {
	RawAnalysis       string `json:"raw_analysis"`
	IdentifiedPart    string `json:"identified_part"`
	Condition         string `json:"condition"`
	Problems          string `json:"problems"`
	Severity          int    `json:"severity"`
	Recommendation    string `json:"recommendation"`
	SafetyRisk        string `json:"safety_risk"`
	EstimatedLifespan string `json:"estimated_lifespan"`
}

type DamageReport struct {
	DamageLevel       string   `json:"damage_level"`
	DamageMessage     string   `json:"damage_message"`
	SeverityScore     int      `json:"severity_score"`
	RecommendedAction string   `json:"recommended_action"`
	FullAnalysis      Analysis `json:"full_analysis"`
}

type CodeExtraction struct {
	CodesFound int      `json:"codes_found"`
	Codes      []string `json:"codes"`
	RawText    string   `json:"raw_text"`
	Message    string   `json:"message"`
}

type RequestContext struct {
	PartContext    string       `json:"part_context,omitempty"`
	IdentifiedPart string       `json:"identified_part,omitempty"`
	VehicleInfo    *VehicleInfo `json:"vehicle_info,omitempty"`
}

type Request struct {
	Action      string          `json:"action"`
	ImageBase64 string          `json:"image_base64"`
	Context     *RequestContext `json:"context,omitempty"`
}

// Outcome carries exactly one of the per-action results.
type Outcome struct {
	Action     string          `json:"action"`
	Message    string          `json:"message,omitempty"`
	Analysis   *Analysis       `json:"analysis,omitempty"`
	Damage     *DamageReport   `json:"damage,omitempty"`
	Suggestion *PartSuggestion `json:"suggestion,omitempty"`
	Codes      *CodeExtraction `json:"codes,omitempty"`
}

// Run dispatches a request by action.
func (s *Service) Run(ctx context.Context, req Request) (Outcome, error) {
	rc := RequestContext{}
	if req.Context != nil {
		rc = *req.Context
	}
	action := strings.ToLower(strings.TrimSpace(req.Action))
	s.log.Info("👁️ vision request", "action", action)

	switch action {
	case ActionAnalyze:
		a, err := s.Analyze(ctx, req.ImageBase64, rc.PartContext)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Action: action, Message: "Imagem analisada com sucesso!", Analysis: &a}, nil
	case ActionDetectDamage:
		d, err := s.DetectDamage(ctx, req.ImageBase64)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Action: action, Message: d.DamageMessage, Damage: &d}, nil
	case ActionSuggestPart:
		p, err := SuggestPart(rc.IdentifiedPart, rc.VehicleInfo)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Action: action, Message: p.Message, Suggestion: &p}, nil
	case ActionExtractCode:
		c, err := s.ExtractCodes(ctx, req.ImageBase64)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Action: action, Message: c.Message, Codes: &c}, nil
	default:
		return Outcome{}, fmt.Errorf("%w: ação desconhecida: %s", apierr.ErrInvalidInput, req.Action)
	}
}

// Analyze asks the model for a structured inspection of a part photo.
func (s *Service) Analyze(ctx context.Context, imageBase64, partContext string) (Analysis, error) {
	prompt := analysisPrompt
	if strings.TrimSpace(partContext) != "" {
		prompt += "\n\n**Contexto adicional:** " + partContext
	}
	text, err := s.look(ctx, imageBase64, prompt, analysisMaxTokens)
	if err != nil {
		return Analysis{}, err
	}
	a := ParseAnalysis(text)
	s.log.Info("👁️ image analyzed", "part", a.IdentifiedPart, "severity", a.Severity)
	return a, nil
}

// Describe returns the raw analysis text, used when a chat message carries an
// image.
func (s *Service) Describe(ctx context.Context, imageBase64 string) (string, error) {
	a, err := s.Analyze(ctx, imageBase64, "")
	if err != nil {
		return "", err
	}
	return a.RawAnalysis, nil
}

// DetectDamage maps the analysis severity to a damage level.
func (s *Service) DetectDamage(ctx context.Context, imageBase64 string) (DamageReport, error) {
	a, err := s.Analyze(ctx, imageBase64, "")
	if err != nil {
		return DamageReport{}, err
	}
	r := DamageReport{SeverityScore: a.Severity, FullAnalysis: a}
	switch {
	case a.Severity >= 4:
		r.DamageLevel, r.DamageMessage, r.RecommendedAction = "CRITICAL", "🚨 CRÍTICO: Substituição imediata necessária", "REPLACE_IMMEDIATELY"
	case a.Severity == 3:
		r.DamageLevel, r.DamageMessage, r.RecommendedAction = "DAMAGE", "⚠️ DANO: Requer atenção em breve", "SCHEDULE_REPLACEMENT"
	case a.Severity == 2:
		r.DamageLevel, r.DamageMessage, r.RecommendedAction = "WEAR", "👀 DESGASTE: Monitorar condição", "MONITOR"
	default:
		r.DamageLevel, r.DamageMessage, r.RecommendedAction = "NORMAL", "✅ NORMAL: Peça em bom estado", "NO_ACTION"
	}
	return r, nil
}

// ExtractCodes reads part numbers and engraved text from the photo.
func (s *Service) ExtractCodes(ctx context.Context, imageBase64 string) (CodeExtraction, error) {
	text, err := s.look(ctx, imageBase64, ocrPrompt, ocrMaxTokens)
	if err != nil {
		return CodeExtraction{}, err
	}
	codes := ParseCodes(text)
	s.log.Info("🔍 codes extracted", "count", len(codes))

	msg := "Nenhum código visível na imagem"
	if len(codes) > 0 {
		msg = fmt.Sprintf("%d código(s) encontrado(s)", len(codes))
	}
	return CodeExtraction{CodesFound: len(codes), Codes: codes, RawText: text, Message: msg}, nil
}

func (s *Service) look(ctx context.Context, imageBase64, prompt string, maxTokens int) (string, error) {
	img, err := DecodeImage(imageBase64)
	if err != nil {
		return "", err
	}
	resp, err := s.provider.Generate(ctx, &llm.LLMRequest{
		Prompt:    prompt,
		Images:    []llm.Image{img},
		MaxTokens: maxTokens,
		Model:     s.model,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		s.log.Error("vision model call failed", "error", err)
		return "", fmt.Errorf("%w: vision: %v", apierr.ErrInvocation, err)
	}
	return resp.Content, nil
}

// DecodeImage accepts raw base64 or a data URL. The MIME type comes from the
// data URL, then from the content, defaulting to JPEG.
func DecodeImage(encoded string) (llm.Image, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return llm.Image{}, fmt.Errorf("%w: image_base64 é obrigatório", apierr.ErrInvalidInput)
	}
	mime := ""
	if strings.HasPrefix(encoded, "data:") {
		header, payload, ok := strings.Cut(encoded, ",")
		if !ok {
			return llm.Image{}, fmt.Errorf("%w: data URL inválida", apierr.ErrInvalidInput)
		}
		mime = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		encoded = payload
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(encoded); err != nil {
			return llm.Image{}, fmt.Errorf("%w: imagem não está em base64", apierr.ErrInvalidInput)
		}
	}
	if !strings.HasPrefix(mime, "image/") {
		mime = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}
	return llm.Image{MIME: mime, Data: data}, nil
}

// ParseAnalysis pulls the numbered sections out of the model's answer.
func ParseAnalysis(text string) Analysis {
	return Analysis{
		RawAnalysis:       text,
		IdentifiedPart:    ExtractField(text, "Identificação"),
		Condition:         ExtractField(text, "Condição"),
		Problems:          ExtractField(text, "Problemas Visíveis"),
		Severity:          ExtractSeverity(text),
		Recommendation:    ExtractField(text, "Recomendação"),
		SafetyRisk:        ExtractField(text, "Risco"),
		EstimatedLifespan: ExtractField(text, "Estimativa de Vida Útil"),
	}
}

// ExtractField returns what follows the first colon on the first line naming
// the field.
func ExtractField(text, field string) string {
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, field) {
			continue
		}
		_, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(strings.ReplaceAll(value, "**", ""))
		if value == "" {
			return notSpecified
		}
		return value
	}
	return notSpecified
}

// ExtractSeverity reads a 1-5 grade, falling back to keywords.
func ExtractSeverity(text string) int {
	for _, re := range []*regexp.Regexp{severityOutOfFive, severityAny} {
		if m := re.FindStringSubmatch(text); m != nil {
			n, _ := strconv.Atoi(m[1])
			return n
		}
	}
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "crítico", "perigoso", "imediato", "urgente"):
		return 5
	case containsAny(lower, "danificado", "problema", "defeito"):
		return 4
	case containsAny(lower, "desgastado", "gasto", "atenção"):
		return 3
	case containsAny(lower, "usado", "normal", "bom"):
		return 2
	default:
		return 1
	}
}

// ParseCodes keeps one code per non-empty line, skipping bullet lines.
func ParseCodes(text string) []string {
	if strings.Contains(strings.ToUpper(text), noCodeMarker) {
		return []string{}
	}
	codes := []string{}
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "-") {
			continue
		}
		if line = strings.TrimSpace(line); line != "" {
			codes = append(codes, line)
		}
	}
	return codes
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
