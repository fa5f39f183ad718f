package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// Error kinds shared by every component. Wrap them with fmt.Errorf("%w: ...")
// so callers can classify with errors.Is.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrRequestDeadline = errors.New("request deadline exceeded")
	ErrTimeout         = errors.New("upstream timeout")
	ErrUnavailable     = errors.New("service unavailable")
	ErrPersistence     = errors.New("persistence failure")
	ErrInvocation      = errors.New("model invocation failure")
)

// From classifies err into a transport-level Error. An *Error already in the
// chain wins over the sentinel kinds.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, ErrInvalidInput):
		return New(http.StatusBadRequest, "invalid_request", err)
	case errors.Is(err, ErrForbidden):
		return New(http.StatusForbidden, "forbidden", err)
	case errors.Is(err, ErrNotFound):
		return New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrRequestDeadline):
		return New(http.StatusRequestTimeout, "request_timeout", err)
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return New(http.StatusGatewayTimeout, "timeout", err)
	case errors.Is(err, ErrUnavailable):
		return New(http.StatusServiceUnavailable, "unavailable", err)
	case errors.Is(err, ErrPersistence):
		return New(http.StatusInternalServerError, "database_error", err)
	case errors.Is(err, ErrInvocation):
		return New(http.StatusInternalServerError, "invocation_error", err)
	default:
		return New(http.StatusInternalServerError, "internal_error", err)
	}
}

// PublicMessage is the text returned to callers. Client errors keep their
// detail; server-side failures never leak internal causes.
func PublicMessage(e *Error) string {
	if e == nil {
		return ""
	}
	if e.Status < http.StatusInternalServerError {
		return e.Error()
	}
	switch e.Code {
	case "timeout":
		return "O serviço demorou demais para responder. Tente novamente."
	case "unavailable":
		return "Serviço temporariamente indisponível. Tente novamente em instantes."
	case "database_error":
		return "Erro ao salvar a conversa. Tente novamente."
	case "invocation_error":
		return "Erro ao gerar a resposta do assistente."
	case "conversation_create_failed":
		return "Erro ao criar a conversa."
	default:
		return "Erro interno do servidor."
	}
}
