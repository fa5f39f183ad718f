package transport

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/semaphore"

	"github.com/DeyvidJesus/gomech-ai-service/internal/chat"
	"github.com/DeyvidJesus/gomech-ai-service/internal/config"
	"github.com/DeyvidJesus/gomech-ai-service/internal/models"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
)

type stubHandler struct {
	resp models.ChatResponse
	err  error
}

func (s stubHandler) Handle(context.Context, models.ChatRequest) (models.ChatResponse, error) {
	return s.resp, s.err
}

func newTestTransport(h ChatHandler) *NATSTransport {
	return &NATSTransport{
		config:      &config.Config{ChatTimeout: time.Minute},
		handler:     h,
		log:         logger.NewNop(),
		inFlight:    semaphore.NewWeighted(4),
		maxInFlight: 4,
	}
}

// gatedHandler blocks turns for the "slow" thread until release is closed.
type gatedHandler struct {
	release chan struct{}
}

func (g gatedHandler) Handle(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error) {
	if req.ThreadID == "slow" {
		select {
		case <-g.release:
		case <-ctx.Done():
			return models.ChatResponse{}, ctx.Err()
		}
	}
	return models.ChatResponse{Reply: "ok", ThreadID: req.ThreadID}, nil
}

func TestServeDoesNotBlockOnSlowTurn(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	nt := newTestTransport(gatedHandler{release: release})
	replies := make(chan string, 2)
	respond := func(payload []byte) error {
		var resp models.ChatResponse
		if err := json.Unmarshal(payload, &resp); err != nil {
			return err
		}
		replies <- resp.ThreadID
		return nil
	}

	nt.serve([]byte(`{"message":"oi","thread_id":"slow"}`), respond)
	nt.serve([]byte(`{"message":"oi","thread_id":"fast"}`), respond)

	select {
	case id := <-replies:
		assert.Equal(t, "fast", id)
	case <-time.After(2 * time.Second):
		t.Fatal("second request waited for the first")
	}

	close(release)
	assert.Equal(t, "slow", <-replies)
	require.NoError(t, nt.wait(context.Background()))
}

func TestServeBoundsInFlight(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	nt := newTestTransport(gatedHandler{release: release})
	nt.inFlight = semaphore.NewWeighted(1)
	nt.maxInFlight = 1

	nt.serve([]byte(`{"message":"oi","thread_id":"slow"}`), nil)

	queued := make(chan struct{})
	go func() {
		nt.serve([]byte(`{"message":"oi","thread_id":"fast"}`), nil)
		close(queued)
	}()

	select {
	case <-queued:
		t.Fatal("request accepted beyond the in-flight limit")
	case <-time.After(50 * time.Millisecond):
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, nt.wait(ctx))

	close(release)
	<-queued
	require.NoError(t, nt.wait(context.Background()))
}

func TestProcess(t *testing.T) {
	t.Run("reply", func(t *testing.T) {
		nt := newTestTransport(stubHandler{resp: models.ChatResponse{Reply: "Olá!", ThreadID: "t-1"}})

		out := nt.process(context.Background(), []byte(`{"message":"oi","user_id":"1"}`))

		var resp models.ChatResponse
		require.NoError(t, json.Unmarshal(out, &resp))
		assert.Equal(t, "Olá!", resp.Reply)
		assert.Equal(t, "t-1", resp.ThreadID)
	})

	t.Run("malformed request", func(t *testing.T) {
		nt := newTestTransport(stubHandler{})

		out := nt.process(context.Background(), []byte(`{`))

		var reply models.ErrorReply
		require.NoError(t, json.Unmarshal(out, &reply))
		assert.Equal(t, models.ErrorInvalidRequest, reply.Code)
	})

	t.Run("handler error keeps its code", func(t *testing.T) {
		nt := newTestTransport(stubHandler{err: chat.ErrThreadNotFound})

		out := nt.process(context.Background(), []byte(`{"message":"oi","thread_id":"x"}`))

		var reply models.ErrorReply
		require.NoError(t, json.Unmarshal(out, &reply))
		assert.Equal(t, "not_found", reply.Code)
		assert.Contains(t, reply.Error, "conversa não encontrada")
	})

	t.Run("server error is sanitized", func(t *testing.T) {
		nt := newTestTransport(stubHandler{err: chat.ErrModelTimeout})

		out := nt.process(context.Background(), []byte(`{"message":"oi","thread_id":"x"}`))

		var reply models.ErrorReply
		require.NoError(t, json.Unmarshal(out, &reply))
		assert.Equal(t, "timeout", reply.Code)
		assert.Equal(t, "O serviço demorou demais para responder. Tente novamente.", reply.Error)
	})
}

func TestEventSubject(t *testing.T) {
	assert.Equal(t, "assistant.events.action_executed", EventSubject("assistant.events", "action_executed"))
	assert.Equal(t, "assistant.events", EventSubject("assistant.events", " "))
	assert.Equal(t, "assistant.events.x", EventSubject("assistant.events", ".x."))
}
