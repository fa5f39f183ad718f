package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid input", fmt.Errorf("%w: message is required", ErrInvalidInput), http.StatusBadRequest, "invalid_request"},
		{"forbidden", fmt.Errorf("%w: bad token", ErrForbidden), http.StatusForbidden, "forbidden"},
		{"not found", fmt.Errorf("thread: %w", ErrNotFound), http.StatusNotFound, "not_found"},
		{"request deadline", ErrRequestDeadline, http.StatusRequestTimeout, "request_timeout"},
		{"upstream timeout", fmt.Errorf("%w: model", ErrTimeout), http.StatusGatewayTimeout, "timeout"},
		{"context deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "timeout"},
		{"unavailable", ErrUnavailable, http.StatusServiceUnavailable, "unavailable"},
		{"persistence", fmt.Errorf("%w: insert", ErrPersistence), http.StatusInternalServerError, "database_error"},
		{"invocation", ErrInvocation, http.StatusInternalServerError, "invocation_error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
		{"explicit", fmt.Errorf("wrapped: %w", New(http.StatusTeapot, "teapot", nil)), http.StatusTeapot, "teapot"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := From(tc.err)
			assert.Equal(t, tc.status, got.Status)
			assert.Equal(t, tc.code, got.Code)
		})
	}
	assert.Nil(t, From(nil))
}

func TestPublicMessageHidesInternalDetail(t *testing.T) {
	e := From(fmt.Errorf("%w: pq: relation \"messages\" does not exist", ErrPersistence))
	assert.NotContains(t, PublicMessage(e), "pq:")

	bad := From(fmt.Errorf("%w: message is required", ErrInvalidInput))
	assert.Contains(t, PublicMessage(bad), "message is required")
}
