package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrNoTemplatesFound", ErrNoTemplatesFound},
		{"ErrJobStatusRead", ErrJobStatusRead},
		{"ErrMalformedDocument", ErrMalformedDocument},
		{"ErrDispatcherClosed", ErrDispatcherClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrJobStatusRead_Message(t *testing.T) {
	assert.Equal(t, "failed to get job status", ErrJobStatusRead.Error())
	assert.False(t, errors.Is(ErrJobStatusRead, ErrNotFound))
}

func TestUpstreamAPIError(t *testing.T) {
	t.Run("message includes status and URL", func(t *testing.T) {
		err := &UpstreamAPIError{
			URL:        "https://api.figma.com/v1/files/F1",
			StatusCode: http.StatusForbidden,
			Message:    "Invalid token",
		}

		assert.Contains(t, err.Error(), "403")
		assert.Contains(t, err.Error(), "Invalid token")
		assert.Contains(t, err.Error(), "https://api.figma.com/v1/files/F1")
	})

	t.Run("falls back to status text", func(t *testing.T) {
		err := &UpstreamAPIError{URL: "u", StatusCode: http.StatusBadGateway}

		assert.Contains(t, err.Error(), "Bad Gateway")
	})

	t.Run("survives wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("fetch subtree: %w", &UpstreamAPIError{StatusCode: http.StatusNotFound})

		var apiErr *UpstreamAPIError
		assert.True(t, errors.As(wrapped, &apiErr))
		assert.True(t, IsUpstreamNotFound(wrapped))
		assert.False(t, IsUpstreamRateLimited(wrapped))
	})

	t.Run("rate limited", func(t *testing.T) {
		err := &UpstreamAPIError{StatusCode: http.StatusTooManyRequests}

		assert.True(t, IsUpstreamRateLimited(err))
		assert.False(t, IsUpstreamNotFound(err))
	})

	t.Run("plain errors are not upstream errors", func(t *testing.T) {
		assert.False(t, IsUpstreamNotFound(errors.New("boom")))
		assert.False(t, IsUpstreamRateLimited(nil))
	})
}
