package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrymomot/schooldash/internal/dashboard"
	"github.com/dmitrymomot/schooldash/pkg/docstore"
)

// HTTPError is the JSON error body returned by every endpoint.
type HTTPError struct {
	// Err is the underlying error (for logging, not exposed to users).
	Err error `json:"-"`

	Message   string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
	Code      int    `json:"code"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError creates an HTTPError wrapping err.
func NewHTTPError(code int, message string, err error) *HTTPError {
	return &HTTPError{Code: code, Message: message, Err: err}
}

func errBadRequest(message string, err error) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, err)
}

// toHTTPError maps domain and store errors to status codes. Messages of
// client errors are passed through; server errors get a generic message.
func toHTTPError(err error) *HTTPError {
	var he *HTTPError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, docstore.ErrNotFound),
		errors.Is(err, dashboard.ErrUnknownResource):
		return NewHTTPError(http.StatusNotFound, err.Error(), err)
	case errors.Is(err, dashboard.ErrInvalidInput),
		errors.Is(err, dashboard.ErrNoParent),
		errors.Is(err, docstore.ErrInvalidDocument),
		errors.Is(err, docstore.ErrEmptyID):
		return NewHTTPError(http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, docstore.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return NewHTTPError(http.StatusServiceUnavailable, "document store unavailable", err)
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", err)
	}
}
