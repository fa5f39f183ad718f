// Package llmtest provides a deterministic LLM provider for tests.
package llmtest

import (
	"context"
	"sync"
	"time"

	"github.com/DeyvidJesus/gomech-ai-service/internal/llm"
)

// Scripted answers from Func when set, otherwise pops Responses in order and
// repeats the last one. Every request is recorded.
type Scripted struct {
	Responses []string
	Err       error
	Delay     time.Duration
	Func      func(req *llm.LLMRequest) (string, error)

	mu       sync.Mutex
	requests []llm.LLMRequest
	next     int
}

func New(responses ...string) *Scripted {
	return &Scripted{Responses: responses}
}

func (s *Scripted) Generate(ctx context.Context, request *llm.LLMRequest) (*llm.LLMResponse, error) {
	s.mu.Lock()
	s.requests = append(s.requests, *request)
	s.mu.Unlock()

	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Func != nil {
		content, err := s.Func(request)
		if err != nil {
			return nil, err
		}
		return &llm.LLMResponse{Content: content}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Responses) == 0 {
		return &llm.LLMResponse{Content: ""}, nil
	}
	idx := s.next
	if idx >= len(s.Responses) {
		idx = len(s.Responses) - 1
	} else {
		s.next++
	}
	return &llm.LLMResponse{Content: s.Responses[idx]}, nil
}

// Requests returns a copy of what the provider has seen.
func (s *Scripted) Requests() []llm.LLMRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llm.LLMRequest, len(s.requests))
	copy(out, s.requests)
	return out
}
