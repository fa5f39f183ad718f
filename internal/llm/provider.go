package llm

import (
	"context"

	"github.com/tmc/langchaingo/llms"
)

// LLMProvider defines the interface for LLM providers
type LLMProvider interface {
	Generate(ctx context.Context, request *LLMRequest) (*LLMResponse, error)
}

// LLMRequest represents the structured request to LLM
type LLMRequest struct {
	System      string
	History     []llms.ChatMessage
	Prompt      string
	Images      []Image
	MaxTokens   int
	Temperature float64
	JSON        bool
	Model       string
}

// Image is an inline image sent alongside the prompt.
type Image struct {
	MIME string
	Data []byte
}

// LLMResponse represents the raw response from LLM
type LLMResponse struct {
	Content string
	Usage   *Usage
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Ask is a shortcut for a single system+user exchange.
func Ask(ctx context.Context, provider LLMProvider, system, prompt string) (string, error) {
	resp, err := provider.Generate(ctx, &LLMRequest{System: system, Prompt: prompt})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
