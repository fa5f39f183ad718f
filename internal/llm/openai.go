package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

var ErrNotConfigured = errors.New("OPENAI_API_KEY not configured")

type OpenAIProvider struct {
	client  *openai.LLM
	opts    []openai.Option
	model   string
	timeout time.Duration
}

func NewOpenAIProvider(apiKey, baseURL, model string, timeout time.Duration) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}
	return &OpenAIProvider{client: client, opts: opts, model: model, timeout: timeout}, nil
}

// Embedder returns an embedder on the same account using model.
func (p *OpenAIProvider) Embedder(model string) (embeddings.Embedder, error) {
	opts := append([]openai.Option{}, p.opts...)
	if model != "" {
		opts = append(opts, openai.WithEmbeddingModel(model))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}
	return embeddings.NewEmbedder(client)
}

func (p *OpenAIProvider) Generate(ctx context.Context, request *LLMRequest) (*LLMResponse, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	// Build message list: system, history, then the current turn
	messages := make([]llms.MessageContent, 0, len(request.History)+2)
	if request.System != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, request.System))
	}
	for _, msg := range request.History {
		messages = append(messages, llms.TextParts(msg.GetType(), msg.GetContent()))
	}
	human := llms.TextParts(llms.ChatMessageTypeHuman, request.Prompt)
	for _, img := range request.Images {
		human.Parts = append(human.Parts, llms.BinaryPart(img.MIME, img.Data))
	}
	messages = append(messages, human)

	opts := []llms.CallOption{llms.WithTemperature(request.Temperature)}
	if request.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(request.MaxTokens))
	}
	if request.JSON {
		opts = append(opts, llms.WithJSONMode())
	}
	if request.Model != "" && request.Model != p.model {
		opts = append(opts, llms.WithModel(request.Model))
	}

	resp, err := p.client.GenerateContent(ctx, messages, opts...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("openai call: %w", ctx.Err())
		}
		return nil, fmt.Errorf("openai call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}

	choice := resp.Choices[0]
	return &LLMResponse{
		Content: choice.Content,
		Usage: &Usage{
			InputTokens:  intInfo(choice.GenerationInfo, "PromptTokens"),
			OutputTokens: intInfo(choice.GenerationInfo, "CompletionTokens"),
		},
	}, nil
}

func intInfo(info map[string]any, key string) int {
	if v, ok := info[key].(int); ok {
		return v
	}
	return 0
}
