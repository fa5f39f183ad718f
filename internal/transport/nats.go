package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"golang.org/x/sync/semaphore"

	"github.com/DeyvidJesus/gomech-ai-service/internal/config"
	"github.com/DeyvidJesus/gomech-ai-service/internal/models"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
)

var ErrNotConnected = errors.New("nats connection is not active")

// ChatHandler is the shared entry point for one chat turn.
type ChatHandler interface {
	Handle(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error)
}

type NATSTransport struct {
	conn    *nats.Conn
	sub     *nats.Subscription
	config  *config.Config
	handler ChatHandler
	log     *logger.Logger

	// inFlight bounds concurrently handled chat requests.
	inFlight    *semaphore.Weighted
	maxInFlight int64
}

// NewNATSTransport connects without subscribing, so the connection can serve
// as an event publisher before the chat handler exists.
func NewNATSTransport(cfg *config.Config, log *logger.Logger) (*NATSTransport, error) {
	conn, err := nats.Connect(cfg.NatsURL,
		nats.Name(cfg.ServiceName),
		nats.Timeout(cfg.NatsTimeout),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log = log.With("component", "nats")
	log.Info("🔌 connected to NATS", "url", cfg.NatsURL)

	limit := int64(max(cfg.NatsMaxInFlight, 1))
	return &NATSTransport{
		conn:        conn,
		config:      cfg,
		log:         log,
		inFlight:    semaphore.NewWeighted(limit),
		maxInFlight: limit,
	}, nil
}

// Start joins the chat subject's queue group so replicas share the load.
func (nt *NATSTransport) Start(handler ChatHandler) error {
	nt.handler = handler
	sub, err := nt.conn.QueueSubscribe(nt.config.NatsChatSubject, nt.config.ServiceName, nt.handleChatRequest)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", nt.config.NatsChatSubject, err)
	}
	nt.sub = sub
	nt.log.Info("subscribed", "subject", nt.config.NatsChatSubject, "queue", nt.config.ServiceName)
	return nil
}

// handleChatRequest runs on the subscription's delivery goroutine, so the
// turn itself is handed off and the next message is read right away. Once
// maxInFlight turns are running, delivery waits for a slot.
func (nt *NATSTransport) handleChatRequest(msg *nats.Msg) {
	var respond func([]byte) error
	if msg.Reply != "" {
		respond = msg.Respond
	}
	nt.serve(msg.Data, respond)
}

func (nt *NATSTransport) serve(data []byte, respond func([]byte) error) {
	_ = nt.inFlight.Acquire(context.Background(), 1)
	go func() {
		defer nt.inFlight.Release(1)

		ctx, cancel := context.WithTimeout(context.Background(), nt.config.ChatTimeout)
		defer cancel()

		reply := nt.process(ctx, data)
		if respond == nil {
			return
		}
		if err := respond(reply); err != nil {
			nt.log.Error("failed to send response", "error", err)
		}
	}()
}

// wait blocks until every running turn has replied or ctx ends.
func (nt *NATSTransport) wait(ctx context.Context) error {
	if err := nt.inFlight.Acquire(ctx, nt.maxInFlight); err != nil {
		return err
	}
	nt.inFlight.Release(nt.maxInFlight)
	return nil
}

// process decodes one request and returns the encoded reply, which is either
// a ChatResponse or an ErrorReply.
func (nt *NATSTransport) process(ctx context.Context, data []byte) []byte {
	var request models.ChatRequest
	if err := json.Unmarshal(data, &request); err != nil {
		nt.log.Warn("invalid chat request", "error", err)
		return encodeError(models.ErrorReply{Error: "Formato de requisição inválido", Code: models.ErrorInvalidRequest})
	}

	nt.log.Debug("processing chat request", "thread_id", request.ThreadID)
	response, err := nt.handler.Handle(ctx, request)
	if err != nil {
		e := apierr.From(err)
		if e.Status >= 500 {
			nt.log.Error("chat request failed", "thread_id", request.ThreadID, "error", err)
		}
		return encodeError(models.ErrorReply{Error: apierr.PublicMessage(e), Code: e.Code})
	}

	payload, err := json.Marshal(response)
	if err != nil {
		nt.log.Error("failed to marshal response", "error", err)
		return encodeError(models.ErrorReply{Error: "Erro interno do servidor.", Code: models.ErrorInternal})
	}
	return payload
}

func encodeError(reply models.ErrorReply) []byte {
	payload, _ := json.Marshal(reply)
	return payload
}

// Publish sends event to <events subject>.<event type>.
func (nt *NATSTransport) Publish(ctx context.Context, event models.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !nt.conn.IsConnected() {
		return ErrNotConnected
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return nt.conn.Publish(EventSubject(nt.config.NatsEventsSubject, event.Type), payload)
}

func EventSubject(prefix, eventType string) string {
	eventType = strings.Trim(strings.TrimSpace(eventType), ".")
	if eventType == "" {
		return prefix
	}
	return prefix + "." + eventType
}

// Ping reports whether the connection is usable. Used by /status.
func (nt *NATSTransport) Ping(ctx context.Context) error {
	if !nt.conn.IsConnected() {
		return ErrNotConnected
	}
	return nt.conn.FlushWithContext(ctx)
}

// Close stops taking chat requests, lets running turns reply and then closes
// the connection. It waits at most NatsTimeout.
func (nt *NATSTransport) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), nt.config.NatsTimeout)
	defer cancel()

	if nt.sub != nil {
		if err := nt.sub.Drain(); err != nil {
			nt.log.Warn("failed to drain subscription", "error", err)
		}
		ticker := time.NewTicker(20 * time.Millisecond)
		for nt.sub.IsValid() && ctx.Err() == nil {
			select {
			case <-ctx.Done():
			case <-ticker.C:
			}
		}
		ticker.Stop()
	}
	if nt.inFlight != nil {
		if err := nt.wait(ctx); err != nil {
			nt.log.Warn("closing with chat requests still running", "error", err)
		}
	}
	if nt.conn != nil {
		nt.conn.Close()
		nt.log.Info("NATS connection closed")
	}
	return nil
}
