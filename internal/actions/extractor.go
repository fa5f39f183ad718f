package actions

import (
	"context"
	"fmt"

	"github.com/DeyvidJesus/gomech-ai-service/internal/llm"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
	"github.com/DeyvidJesus/gomech-ai-service/internal/prompts"
)

// ParsedIntent is the raw classification of a message against the catalog.
type ParsedIntent struct {
	IsCommand     bool           `json:"is_command"`
	Action        string         `json:"action"`
	Params        map[string]any `json:"params"`
	MissingParams []string       `json:"missing_params"`
}

// Extractor classifies a message as a catalog command and pulls its parameters.
type Extractor interface {
	Extract(ctx context.Context, message string, catalog *Catalog) (ParsedIntent, error)
}

// ExtractorFunc adapts a plain function, e.g. a rule engine in tests.
type ExtractorFunc func(ctx context.Context, message string, catalog *Catalog) (ParsedIntent, error)

func (f ExtractorFunc) Extract(ctx context.Context, message string, catalog *Catalog) (ParsedIntent, error) {
	return f(ctx, message, catalog)
}

type LLMExtractor struct {
	provider llm.LLMProvider
	log      *logger.Logger
}

func NewLLMExtractor(provider llm.LLMProvider, log *logger.Logger) *LLMExtractor {
	return &LLMExtractor{provider: provider, log: log.With("component", "action_parser")}
}

// Extract treats malformed model output as "not a command". Only a cancelled
// or expired context is returned as an error.
func (e *LLMExtractor) Extract(ctx context.Context, message string, catalog *Catalog) (ParsedIntent, error) {
	resp, err := e.provider.Generate(ctx, &llm.LLMRequest{
		System:      fmt.Sprintf(prompts.ActionParserPrompt, catalog.PromptSection()),
		Prompt:      message,
		Temperature: 0,
		JSON:        true,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ParsedIntent{}, ctx.Err()
		}
		e.log.Error("intent extraction failed", "error", err)
		return ParsedIntent{IsCommand: false}, nil
	}

	parsed, err := prompts.ParseJSON[ParsedIntent](resp.Content)
	if err != nil {
		e.log.Warn("could not parse intent", "error", err)
		return ParsedIntent{IsCommand: false}, nil
	}
	if parsed.Params == nil {
		parsed.Params = map[string]any{}
	}
	return *parsed, nil
}
