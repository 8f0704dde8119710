package services

import (
	"context"
	"errors"
	"net/http"
)

var (
	// ErrMalformedOutput means model text could not be coerced into a JSON object.
	ErrMalformedOutput = errors.New("malformed model output")
	// ErrEmptyModelOutput means the gateway returned blank text where content was required.
	ErrEmptyModelOutput = errors.New("empty model output")
	// ErrMissingRequiredField means a coerced document lacks a field the pipeline depends on.
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrModelUnavailable means both the preferred and the fallback model failed.
	ErrModelUnavailable = errors.New("model unavailable")
	ErrInvalidInput     = errors.New("invalid input")
	ErrQueueFull        = errors.New("evaluation queue is full")
	ErrWorkerStopped    = errors.New("worker stopped")
)

// ErrorKind names the failure class of err for API clients.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrQueueFull), errors.Is(err, ErrWorkerStopped):
		return "unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrModelUnavailable):
		return "model_unavailable"
	case errors.Is(err, ErrMalformedOutput):
		return "malformed_output"
	case errors.Is(err, ErrEmptyModelOutput):
		return "empty_model_output"
	case errors.Is(err, ErrMissingRequiredField):
		return "missing_required_field"
	default:
		return "internal"
	}
}

// StatusCode maps err to the HTTP status the transport should answer with.
func StatusCode(err error) int {
	switch ErrorKind(err) {
	case "":
		return http.StatusOK
	case "invalid_input":
		return http.StatusBadRequest
	case "unavailable":
		return http.StatusServiceUnavailable
	case "timeout":
		return http.StatusGatewayTimeout
	case "model_unavailable":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
