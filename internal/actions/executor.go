package actions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/DeyvidJesus/gomech-ai-service/internal/models"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
)

const (
	EventActionExecuted = "action.executed"

	maxBackendBody        = 1 << 20
	maxErrorDetail        = 500
	defaultConfirmTimeout = 90 * time.Second
)

var placeholderRe = regexp.MustCompile(`\{(\w+)\}`)

// EventPublisher receives side-effect notifications. Implemented by the NATS
// transport.
type EventPublisher interface {
	Publish(ctx context.Context, event models.Event) error
}

type ExecutorOptions struct {
	BaseURL      string
	Timeout      time.Duration
	HTTPClient   *http.Client
	Signer       *TokenSigner
	Guard        ReplayGuard
	RequireToken bool
	Publisher    EventPublisher
}

type Executor struct {
	catalog      *Catalog
	baseURL      string
	timeout      time.Duration
	client       *http.Client
	signer       *TokenSigner
	guard        ReplayGuard
	requireToken bool
	publisher    EventPublisher
	log          *logger.Logger
}

func NewExecutor(catalog *Catalog, opts ExecutorOptions, log *logger.Logger) *Executor {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultConfirmTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Guard == nil {
		opts.Guard = NewMemoryReplayGuard()
	}
	return &Executor{
		catalog:      catalog,
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		timeout:      opts.Timeout,
		client:       opts.HTTPClient,
		signer:       opts.Signer,
		guard:        opts.Guard,
		requireToken: opts.RequireToken,
		publisher:    opts.Publisher,
		log:          log.With("component", "action_executor"),
	}
}

// Confirm performs the backend mutation for a previously proposed action.
// Backend rejections come back as a response with Status "error"; only
// validation, token, timeout and connectivity failures are returned as errors.
func (e *Executor) Confirm(ctx context.Context, req models.ConfirmRequest) (models.ConfirmResponse, error) {
	cmd, ok := e.catalog.Get(req.Action)
	if !ok {
		return models.ConfirmResponse{}, fmt.Errorf("%w: ação '%s' não é suportada", apierr.ErrInvalidInput, req.Action)
	}

	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = cmd.Method
	}
	if method != cmd.Method {
		return models.ConfirmResponse{}, fmt.Errorf("%w: método %s não corresponde à ação %s", apierr.ErrInvalidInput, method, cmd.Name)
	}

	decoded, _ := DecodeParams(cmd.Name, req.Params)
	values := decoded.Values()
	if missing := Missing(cmd, values); len(missing) > 0 {
		return models.ConfirmResponse{}, fmt.Errorf("%w: parâmetros obrigatórios ausentes: %s", apierr.ErrInvalidInput, strings.Join(missing, ", "))
	}

	path, body := ResolveEndpoint(cmd.Endpoint, values)
	endpoint := strings.TrimSpace(req.Endpoint)
	if endpoint != "" && endpoint != cmd.Endpoint && endpoint != path {
		return models.ConfirmResponse{}, fmt.Errorf("%w: endpoint %s não corresponde à ação %s", apierr.ErrInvalidInput, endpoint, cmd.Name)
	}

	jti, err := e.checkToken(ctx, req.Token, cmd, values)
	if err != nil {
		return models.ConfirmResponse{}, err
	}

	status, payload, err := e.call(ctx, method, path, body, req.UserID)
	if err != nil {
		e.log.Error("backend call failed", "action", cmd.Name, "path", path, "error", err)
		e.releaseToken(jti)
		return models.ConfirmResponse{}, err
	}

	if status < 200 || status >= 300 {
		e.log.Warn("backend rejected action", "action", cmd.Name, "status", status)
		return models.ConfirmResponse{
			Status:        models.StatusError,
			Message:       fmt.Sprintf("❌ Erro ao executar: %s", cmd.Description),
			Error:         backendErrorDetail(payload),
			BackendStatus: status,
		}, nil
	}

	e.log.Info("action executed", "action", cmd.Name, "status", status, "user_id", req.UserID)
	e.publish(ctx, cmd, method, path, status, req.UserID)
	return models.ConfirmResponse{
		Status:        models.StatusSuccess,
		Message:       fmt.Sprintf("✅ %s concluído com sucesso.", capitalize(cmd.Description)),
		Result:        decodeResult(payload),
		BackendStatus: status,
	}, nil
}

// checkToken verifies and reserves the confirm token, returning its id. The
// reservation is released when the backend never answers, so the same token
// can retry a timed out or unreachable confirm.
func (e *Executor) checkToken(ctx context.Context, token string, cmd Command, values map[string]any) (string, error) {
	if token == "" {
		if e.requireToken {
			return "", fmt.Errorf("%w: token de confirmação obrigatório", apierr.ErrForbidden)
		}
		return "", nil
	}
	if e.signer == nil {
		return "", fmt.Errorf("%w: tokens de confirmação não estão habilitados", apierr.ErrForbidden)
	}
	claims, err := e.signer.Verify(token, cmd.Name, cmd.Endpoint, cmd.Method, values)
	if err != nil {
		return "", err
	}
	ttl := e.signer.TTL()
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time) + time.Second
	}
	fresh, err := e.guard.Consume(ctx, claims.ID, ttl)
	if err != nil {
		return "", err
	}
	if !fresh {
		return "", fmt.Errorf("%w: token de confirmação já utilizado", apierr.ErrForbidden)
	}
	return claims.ID, nil
}

func (e *Executor) releaseToken(jti string) {
	if jti == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := e.guard.Release(ctx, jti); err != nil {
		e.log.Warn("failed to release confirm token", "jti", jti, "error", err)
	}
}

func (e *Executor) call(ctx context.Context, method, path string, body map[string]any, userID string) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var reader io.Reader
	if method != http.MethodGet && method != http.MethodDelete {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, e.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", apierr.ErrInvalidInput, err)
	}
	if reader != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	if userID != "" {
		httpReq.Header.Set("X-User-Id", userID)
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return 0, nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBackendBody))
	if err != nil {
		return 0, nil, classifyTransportError(ctx, err)
	}
	return resp.StatusCode, payload, nil
}

func (e *Executor) publish(ctx context.Context, cmd Command, method, path string, status int, userID string) {
	if e.publisher == nil {
		return
	}
	event := models.Event{
		Type:   EventActionExecuted,
		UserID: userID,
		Payload: map[string]any{
			"action":         cmd.Name,
			"method":         method,
			"path":           path,
			"backend_status": status,
		},
		At: time.Now().UTC().Format(time.RFC3339),
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.log.Warn("failed to publish event", "type", event.Type, "error", err)
	}
}

// ResolveEndpoint substitutes {key} placeholders from params and returns the
// remaining params as the request body. Substituted keys never reach the body.
func ResolveEndpoint(template string, params map[string]any) (string, map[string]any) {
	body := make(map[string]any, len(params))
	for k, v := range params {
		body[k] = v
	}
	path := placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		key := match[1 : len(match)-1]
		v, ok := params[key]
		if !ok {
			return match
		}
		delete(body, key)
		return url.PathEscape(FormatValue(v))
	})
	return path, body
}

func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: backend did not answer in time", apierr.ErrTimeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: backend did not answer in time", apierr.ErrTimeout)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: backend unreachable: %v", apierr.ErrUnavailable, err)
}

// backendErrorDetail prefers the backend's own message over the raw body.
func backendErrorDetail(payload []byte) string {
	var parsed map[string]any
	if err := json.Unmarshal(payload, &parsed); err == nil {
		for _, key := range []string{"message", "error", "detail"} {
			if s, ok := parsed[key].(string); ok && s != "" {
				return s
			}
		}
	}
	detail := strings.TrimSpace(string(payload))
	if len(detail) > maxErrorDetail {
		detail = detail[:maxErrorDetail]
	}
	return detail
}

func decodeResult(payload []byte) any {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	var out any
	if err := json.Unmarshal(payload, &out); err != nil {
		return string(payload)
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}
