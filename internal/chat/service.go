package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DeyvidJesus/gomech-ai-service/internal/llm"
	"github.com/DeyvidJesus/gomech-ai-service/internal/memory"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
	"github.com/DeyvidJesus/gomech-ai-service/internal/prompts"
	"github.com/DeyvidJesus/gomech-ai-service/internal/workerpool"
)

var (
	ErrThreadNotFound     = fmt.Errorf("%w: conversa não encontrada", apierr.ErrNotFound)
	ErrConversationCreate = errors.New("failed to create conversation")
	ErrModelTimeout       = fmt.Errorf("%w: Tempo esgotado ao consultar modelo", apierr.ErrTimeout)
	ErrEmptyReply         = fmt.Errorf("%w: Resposta inesperada do modelo", apierr.ErrInvocation)
)

type Request struct {
	ThreadID    string
	Message     string
	UserID      string
	PageContext string
}

type Reply struct {
	Reply    string
	ThreadID string
}

type Options struct {
	Timeout time.Duration
	Model   string
}

// Service answers free-form messages and keeps the transcript of each thread.
type Service struct {
	memory   *memory.Manager
	provider llm.LLMProvider
	locks    *memory.LockRegistry
	pool     *workerpool.Pool
	timeout  time.Duration
	model    string
	log      *logger.Logger
}

func NewService(mem *memory.Manager, provider llm.LLMProvider, locks *memory.LockRegistry, pool *workerpool.Pool, opts Options, log *logger.Logger) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Service{
		memory:   mem,
		provider: provider,
		locks:    locks,
		pool:     pool,
		timeout:  opts.Timeout,
		model:    opts.Model,
		log:      log.With("component", "chat"),
	}
}

func (s *Service) Reply(ctx context.Context, req Request) (Reply, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return Reply{}, fmt.Errorf("%w: message não pode ser vazia", apierr.ErrInvalidInput)
	}

	threadID, err := s.resolveThread(ctx, req)
	if err != nil {
		return Reply{}, err
	}

	release, err := s.locks.Acquire(ctx, threadID)
	if err != nil {
		if errors.Is(err, memory.ErrRegistryFull) {
			return Reply{}, err
		}
		return Reply{}, deadlineError(err)
	}
	defer release()

	history, err := s.memory.History(ctx, threadID)
	if err != nil {
		return Reply{}, fmt.Errorf("%w: %v", apierr.ErrPersistence, err)
	}

	content, err := s.invoke(ctx, &llm.LLMRequest{
		System:      prompts.ChatSystemPrompt + prompts.PageContextSuffix(req.PageContext),
		History:     history,
		Prompt:      message,
		Temperature: 0.7,
		Model:       s.model,
	})
	if err != nil {
		return Reply{}, err
	}

	if err := s.memory.SaveExchange(ctx, threadID, message, content); err != nil {
		s.log.Error("failed to persist exchange", "thread_id", threadID, "error", err)
		return Reply{}, fmt.Errorf("%w: %v", apierr.ErrPersistence, err)
	}

	s.log.Info("chat reply", "thread_id", threadID, "history", len(history))
	return Reply{Reply: content, ThreadID: threadID}, nil
}

// resolveThread creates a conversation for an empty thread id and checks
// that a supplied one exists.
func (s *Service) resolveThread(ctx context.Context, req Request) (string, error) {
	threadID := strings.TrimSpace(req.ThreadID)
	if threadID != "" {
		ok, err := s.memory.Exists(ctx, threadID)
		if err != nil {
			return "", fmt.Errorf("%w: %v", apierr.ErrPersistence, err)
		}
		if !ok {
			return "", ErrThreadNotFound
		}
		return threadID, nil
	}

	if strings.TrimSpace(req.UserID) == "" {
		return "", fmt.Errorf("%w: user_id não pode ser nulo", apierr.ErrInvalidInput)
	}
	threadID = uuid.NewString()
	if err := s.memory.Create(ctx, threadID, req.UserID); err != nil {
		s.log.Error("failed to create conversation", "thread_id", threadID, "error", err)
		return "", apierr.New(http.StatusInternalServerError, "conversation_create_failed", fmt.Errorf("%w: %v", ErrConversationCreate, err))
	}
	s.log.Info("conversation created", "thread_id", threadID, "user_id", req.UserID)
	return threadID, nil
}

func (s *Service) invoke(ctx context.Context, req *llm.LLMRequest) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := workerpool.Submit(callCtx, s.pool, func(ctx context.Context) (*llm.LLMResponse, error) {
		return s.provider.Generate(ctx, req)
	})
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return "", deadlineError(ctx.Err())
	case errors.Is(err, context.DeadlineExceeded) || callCtx.Err() != nil:
		s.log.Warn("model call timed out", "timeout", s.timeout)
		return "", ErrModelTimeout
	default:
		s.log.Error("model call failed", "error", err)
		return "", fmt.Errorf("%w: %v", apierr.ErrInvocation, err)
	}

	content := ""
	if resp != nil {
		content = strings.TrimSpace(resp.Content)
	}
	if content == "" {
		return "", ErrEmptyReply
	}
	return content, nil
}

// History returns the ordered transcript of a thread.
func (s *Service) History(ctx context.Context, threadID string) ([]memory.Message, error) {
	msgs, err := s.memory.Messages(ctx, threadID)
	if errors.Is(err, memory.ErrConversationNotFound) {
		return nil, ErrThreadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apierr.ErrPersistence, err)
	}
	return msgs, nil
}

// Clear deletes a thread and its transcript once no turn is running on it.
func (s *Service) Clear(ctx context.Context, threadID string) error {
	threadID = strings.TrimSpace(threadID)
	exists, err := s.memory.Exists(ctx, threadID)
	if err != nil {
		return fmt.Errorf("%w: %v", apierr.ErrPersistence, err)
	}
	if !exists {
		return ErrThreadNotFound
	}

	release, err := s.locks.Acquire(ctx, threadID)
	if err != nil {
		if errors.Is(err, memory.ErrRegistryFull) {
			return err
		}
		return deadlineError(err)
	}
	defer release()

	err = s.memory.Clear(ctx, threadID)
	if errors.Is(err, memory.ErrConversationNotFound) {
		return ErrThreadNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", apierr.ErrPersistence, err)
	}
	return nil
}

// deadlineError maps the caller's own context ending to a request-level error.
func deadlineError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", apierr.ErrRequestDeadline, err)
	}
	return err
}
