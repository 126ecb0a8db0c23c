package common

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Veraticus/finpulse/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestWithRetry(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name      string
		failures  []error
		wantErr   error
		wantCalls int
	}{
		{name: "first try succeeds", wantCalls: 1},
		{name: "transient then success", failures: []error{Transient(errBoom)}, wantCalls: 2},
		{name: "unclassified errors are retried", failures: []error{errBoom, errBoom}, wantCalls: 3},
		{name: "permanent stops at once", failures: []error{Permanent(errBoom)}, wantErr: errBoom, wantCalls: 1},
		{
			name:      "attempts run out",
			failures:  []error{Transient(errBoom), Transient(errBoom), Transient(errBoom), Transient(errBoom)},
			wantErr:   ErrMaxRetries,
			wantCalls: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithRetry(context.Background(), func() error {
				calls++
				if calls <= len(tt.failures) {
					return tt.failures[calls-1]
				}
				return nil
			}, fastRetry(3))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := WithRetry(ctx, func() error {
		calls++
		cancel()
		return Transient(errors.New("flaky"))
	}, service.RetryOptions{MaxAttempts: 5, InitialDelay: time.Second})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestHTTPStatusError(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantRateLimit bool
		wantRetryable bool
	}{
		{name: "too many requests", status: http.StatusTooManyRequests, wantRateLimit: true, wantRetryable: true},
		{name: "server error", status: http.StatusBadGateway, wantRetryable: true},
		{name: "request timeout", status: http.StatusRequestTimeout, wantRetryable: true},
		{name: "bad request", status: http.StatusBadRequest},
		{name: "unauthorized", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := HTTPStatusError("openai", tt.status, []byte("nope"))

			assert.Contains(t, err.Error(), "openai API error")
			assert.Equal(t, tt.wantRateLimit, errors.Is(err, ErrRateLimit))
			assert.Equal(t, tt.wantRetryable, IsRetryable(err))
		})
	}
}
