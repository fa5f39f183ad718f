package actions

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeyvidJesus/gomech-ai-service/internal/models"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
)

type recordedRequest struct {
	Method string
	Path   string
	UserID string
	Body   map[string]any
}

type fakeBackend struct {
	*httptest.Server
	mu       sync.Mutex
	requests []recordedRequest
}

func newFakeBackend(t *testing.T, status int, response string) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}
	fb.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(data, &body)
		fb.mu.Lock()
		fb.requests = append(fb.requests, recordedRequest{Method: r.Method, Path: r.URL.EscapedPath(), UserID: r.Header.Get("X-User-Id"), Body: body})
		fb.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(fb.Close)
	return fb
}

func (fb *fakeBackend) Requests() []recordedRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]recordedRequest{}, fb.requests...)
}

type capturePublisher struct {
	mu     sync.Mutex
	events []models.Event
}

func (p *capturePublisher) Publish(_ context.Context, event models.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func newExecutor(t *testing.T, opts ExecutorOptions) *Executor {
	t.Helper()
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	return NewExecutor(catalog, opts, logger.NewNop())
}

func statusRequest() models.ConfirmRequest {
	return models.ConfirmRequest{
		Action:   "update_service_order_status",
		Endpoint: "/service-orders/{id}/status",
		Method:   "PUT",
		Params:   map[string]any{"id": float64(42), "status": "COMPLETED"},
		UserID:   "7",
	}
}

func TestConfirmResolvesPathPlaceholder(t *testing.T) {
	backend := newFakeBackend(t, http.StatusOK, `{"id": 42, "status": "COMPLETED"}`)
	pub := &capturePublisher{}
	ex := newExecutor(t, ExecutorOptions{BaseURL: backend.URL + "/", Publisher: pub})

	resp, err := ex.Confirm(context.Background(), statusRequest())
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, resp.Status)
	assert.Equal(t, http.StatusOK, resp.BackendStatus)
	assert.Equal(t, map[string]any{"id": float64(42), "status": "COMPLETED"}, resp.Result)

	reqs := backend.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPut, reqs[0].Method)
	assert.Equal(t, "/service-orders/42/status", reqs[0].Path)
	assert.Equal(t, map[string]any{"status": "COMPLETED"}, reqs[0].Body)
	assert.Equal(t, "7", reqs[0].UserID)

	require.Len(t, pub.events, 1)
	assert.Equal(t, EventActionExecuted, pub.events[0].Type)
	assert.Equal(t, "/service-orders/42/status", pub.events[0].Payload["path"])
}

func TestConfirmAcceptsResolvedEndpoint(t *testing.T) {
	backend := newFakeBackend(t, http.StatusOK, ``)
	ex := newExecutor(t, ExecutorOptions{BaseURL: backend.URL})

	req := statusRequest()
	req.Endpoint = "/service-orders/42/status"
	resp, err := ex.Confirm(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, resp.Status)
	assert.Nil(t, resp.Result)
}

func TestConfirmValidation(t *testing.T) {
	backend := newFakeBackend(t, http.StatusOK, `{}`)
	ex := newExecutor(t, ExecutorOptions{BaseURL: backend.URL})

	tests := []struct {
		name   string
		mutate func(r *models.ConfirmRequest)
	}{
		{"unknown action", func(r *models.ConfirmRequest) { r.Action = "drop_tables" }},
		{"wrong method", func(r *models.ConfirmRequest) { r.Method = "DELETE" }},
		{"foreign endpoint", func(r *models.ConfirmRequest) { r.Endpoint = "/admin/users" }},
		{"missing param", func(r *models.ConfirmRequest) { delete(r.Params, "status") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := statusRequest()
			tt.mutate(&req)
			_, err := ex.Confirm(context.Background(), req)
			require.Error(t, err)
			assert.ErrorIs(t, err, apierr.ErrInvalidInput)
		})
	}
	assert.Empty(t, backend.Requests())
}

func TestConfirmBackendRejection(t *testing.T) {
	backend := newFakeBackend(t, http.StatusUnprocessableEntity, `{"message": "OS não encontrada"}`)
	ex := newExecutor(t, ExecutorOptions{BaseURL: backend.URL})

	resp, err := ex.Confirm(context.Background(), statusRequest())
	require.NoError(t, err)
	assert.Equal(t, models.StatusError, resp.Status)
	assert.Equal(t, "OS não encontrada", resp.Error)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.BackendStatus)
}

func TestConfirmTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ex := newExecutor(t, ExecutorOptions{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := ex.Confirm(context.Background(), statusRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrTimeout)
	assert.Equal(t, http.StatusGatewayTimeout, apierr.From(err).Status)
}

func TestConfirmBackendDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	ex := newExecutor(t, ExecutorOptions{BaseURL: url})
	_, err := ex.Confirm(context.Background(), statusRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, apierr.From(err).Status)
}

func TestConfirmTokens(t *testing.T) {
	signer := NewTokenSigner("s3cret", time.Minute)
	pending := &models.PendingAction{
		Action:   "update_service_order_status",
		Endpoint: "/service-orders/{id}/status",
		Method:   "PUT",
		Params:   map[string]any{"id": int64(42), "status": "COMPLETED"},
	}
	token, err := signer.Sign(pending)
	require.NoError(t, err)

	t.Run("single use", func(t *testing.T) {
		backend := newFakeBackend(t, http.StatusOK, `{}`)
		ex := newExecutor(t, ExecutorOptions{BaseURL: backend.URL, Signer: signer, RequireToken: true})

		req := statusRequest()
		req.Token = token
		_, err := ex.Confirm(context.Background(), req)
		require.NoError(t, err)

		_, err = ex.Confirm(context.Background(), req)
		assert.ErrorIs(t, err, apierr.ErrForbidden)
		assert.Len(t, backend.Requests(), 1)
	})

	t.Run("tampered params", func(t *testing.T) {
		backend := newFakeBackend(t, http.StatusOK, `{}`)
		ex := newExecutor(t, ExecutorOptions{BaseURL: backend.URL, Signer: signer})

		req := statusRequest()
		req.Params["id"] = float64(43)
		req.Token = token
		_, err := ex.Confirm(context.Background(), req)
		assert.ErrorIs(t, err, apierr.ErrForbidden)
		assert.ErrorIs(t, err, ErrTokenMismatch)
		assert.Empty(t, backend.Requests())
	})

	t.Run("usable again after a timeout", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()
		ex := newExecutor(t, ExecutorOptions{BaseURL: srv.URL, Signer: signer, RequireToken: true, Timeout: 50 * time.Millisecond})

		req := statusRequest()
		req.Token = token
		_, err := ex.Confirm(context.Background(), req)
		assert.ErrorIs(t, err, apierr.ErrTimeout)

		resp, err := ex.Confirm(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, models.StatusSuccess, resp.Status)

		_, err = ex.Confirm(context.Background(), req)
		assert.ErrorIs(t, err, apierr.ErrForbidden)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("spent by a backend rejection", func(t *testing.T) {
		backend := newFakeBackend(t, http.StatusUnprocessableEntity, `{"message": "inválido"}`)
		ex := newExecutor(t, ExecutorOptions{BaseURL: backend.URL, Signer: signer})

		req := statusRequest()
		req.Token = token
		resp, err := ex.Confirm(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, models.StatusError, resp.Status)

		_, err = ex.Confirm(context.Background(), req)
		assert.ErrorIs(t, err, apierr.ErrForbidden)
	})

	t.Run("required but absent", func(t *testing.T) {
		backend := newFakeBackend(t, http.StatusOK, `{}`)
		ex := newExecutor(t, ExecutorOptions{BaseURL: backend.URL, Signer: signer, RequireToken: true})

		_, err := ex.Confirm(context.Background(), statusRequest())
		assert.ErrorIs(t, err, apierr.ErrForbidden)
	})
}

func TestResolveEndpoint(t *testing.T) {
	path, body := ResolveEndpoint("/service-orders/{serviceOrderId}/items", map[string]any{
		"serviceOrderId": int64(9), "productCode": "F 1", "quantity": int64(2),
	})
	assert.Equal(t, "/service-orders/9/items", path)
	assert.Equal(t, map[string]any{"productCode": "F 1", "quantity": int64(2)}, body)

	path, body = ResolveEndpoint("/parts/{code}", map[string]any{"code": "a/b"})
	assert.Equal(t, "/parts/a%2Fb", path)
	assert.Empty(t, body)

	path, _ = ResolveEndpoint("/x/{missing}", map[string]any{})
	assert.Equal(t, "/x/{missing}", path)
}
