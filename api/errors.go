// ABOUTME: Error types returned by the CRM API gateway
// ABOUTME: Sentinel errors plus APIError carrying operation and HTTP status
package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the gateway.
var (
	// ErrUnauthorized is returned for 401 responses: the cookie session is missing or expired.
	ErrUnauthorized = errors.New("unauthorized: session missing or expired")

	// ErrForbidden is returned for 403 responses.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when a requested resource doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrBadRequest is returned when the backend rejects the request payload.
	ErrBadRequest = errors.New("bad request")

	// ErrServer is returned for 5xx responses.
	ErrServer = errors.New("server error")

	// ErrNetwork is returned when the backend could not be reached.
	ErrNetwork = errors.New("network error")

	// ErrTimeout is returned when the request context expired.
	ErrTimeout = errors.New("request timed out")

	// ErrUnexpectedStatus covers any other non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// APIError wraps errors from the CRM API with additional context.
type APIError struct {
	Operation  string // e.g. "GET /api/leads"
	StatusCode int    // HTTP status code (0 if not an HTTP error)
	Message    string // backend-supplied message, if any
	Err        error  // underlying error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Err.Error()
	if e.Message != "" {
		msg = fmt.Sprintf("%v: %s", e.Err, e.Message)
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("api: %s failed (HTTP %d): %s", e.Operation, e.StatusCode, msg)
	}
	return fmt.Sprintf("api: %s failed: %s", e.Operation, msg)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a new APIError.
func NewAPIError(operation string, statusCode int, err error) *APIError {
	return &APIError{
		Operation:  operation,
		StatusCode: statusCode,
		Err:        err,
	}
}

func sentinelForStatus(code int) error {
	switch {
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code == http.StatusForbidden:
		return ErrForbidden
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity || code == http.StatusConflict:
		return ErrBadRequest
	case code >= 500:
		return ErrServer
	default:
		return ErrUnexpectedStatus
	}
}

// IsUnauthorized returns true if the error indicates an expired or missing session.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsNotFound returns true if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsNetwork returns true if the backend could not be reached.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrTimeout)
}

// Message extracts the backend's message from err, or "" when there is none.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
