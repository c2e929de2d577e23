package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoTemplatesFound indicates template-style discovery found no qualifying pages.
	// It is a client-visible error: the file is misconfigured or the names are wrong.
	ErrNoTemplatesFound = errors.New("no templates found")

	// ErrJobStatusRead indicates the status tracking mechanism itself failed.
	// It is distinct from a job whose status is JobFailed.
	ErrJobStatusRead = errors.New("failed to get job status")

	// ErrMalformedDocument indicates the upstream returned a document that
	// does not have the expected shape.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrDispatcherClosed indicates a job was dispatched after shutdown began.
	ErrDispatcherClosed = errors.New("dispatcher closed")
)

// UpstreamAPIError represents a non-success response from the design API.
// It is never retried by the core.
type UpstreamAPIError struct {
	URL        string
	StatusCode int
	Status     string
	Message    string
}

func (e *UpstreamAPIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Status
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("upstream API error %d: %s (URL: %s)", e.StatusCode, msg, e.URL)
}

// IsUpstreamNotFound checks if the error is an upstream 404.
func IsUpstreamNotFound(err error) bool {
	var apiErr *UpstreamAPIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsUpstreamRateLimited checks if the error is an upstream 429.
func IsUpstreamRateLimited(err error) bool {
	var apiErr *UpstreamAPIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}
