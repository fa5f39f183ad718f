package llm

import (
	"context"
	"fmt"

	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
)

// Unconfigured stands in when no API key is set. Every call fails as unavailable.
type Unconfigured struct{}

func (Unconfigured) Generate(context.Context, *LLMRequest) (*LLMResponse, error) {
	return nil, fmt.Errorf("%w: %v", apierr.ErrUnavailable, ErrNotConfigured)
}
