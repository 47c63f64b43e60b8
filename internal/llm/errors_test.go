package llm_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"registrum/internal/config"
	"registrum/internal/llm"
	"registrum/internal/metrics"
	"registrum/internal/port"
	"registrum/mocks"
)

func TestNewRateLimitError_DefaultRetryAfter(t *testing.T) {
	err := llm.NewRateLimitError("openai", errors.New("429"), 0)
	assert.Equal(t, 60*time.Second, err.RetryAfter)
	assert.Contains(t, err.Error(), "openai rate limited")
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, llm.ParseRetryAfterHeader(""))
	assert.Equal(t, 30, llm.ParseRetryAfterHeader("30"))
	assert.Equal(t, 0, llm.ParseRetryAfterHeader("Wed, 21 Oct 2015 07:28:00 GMT"))
}

func TestStatusError(t *testing.T) {
	var rlErr *llm.RateLimitError
	require.True(t, errors.As(llm.StatusError("openai", http.StatusTooManyRequests, nil, "5"), &rlErr))
	assert.Equal(t, 5*time.Second, rlErr.RetryAfter)

	var tErr *llm.TransientError
	require.True(t, errors.As(llm.StatusError("openai", http.StatusGatewayTimeout, []byte("upstream"), ""), &tErr))
	assert.Equal(t, http.StatusGatewayTimeout, tErr.StatusCode)

	err := llm.StatusError("openai", http.StatusForbidden, []byte("denied"), "")
	assert.False(t, errors.As(err, &tErr))
	assert.Contains(t, err.Error(), "status 403")
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", fmt.Errorf("calling: %w", context.DeadlineExceeded), true},
		{"canceled", context.Canceled, false},
		{"rate limit", llm.NewRateLimitError("x", errors.New("429"), 1), true},
		{"server error", &llm.TransientError{StatusCode: 500, Err: errors.New("boom")}, true},
		{"transport", &url.Error{Op: "Post", URL: "http://x", Err: errors.New("connection reset")}, true},
		{"canceled transport", &url.Error{Op: "Post", URL: "http://x", Err: context.Canceled}, false},
		{"plain", errors.New("bad request"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, llm.IsTransient(tt.err))
		})
	}
}

func TestRegisterProvider(t *testing.T) {
	stub := new(mocks.MockCompleter)
	llm.RegisterProvider("test-provider", func(cfg *config.LLMProviderConfig) (port.Completer, error) {
		return stub, nil
	})

	c, err := llm.New(&config.LLMProviderConfig{Provider: "test-provider"})
	require.NoError(t, err)
	assert.Same(t, stub, c)
	assert.Contains(t, llm.Registered(), "test-provider")

	_, err = llm.New(&config.LLMProviderConfig{Provider: "nonexistent"})
	assert.ErrorContains(t, err, "unknown llm provider")
}

func TestInstrumentedCompleter(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	next := new(mocks.MockCompleter)
	next.On("Complete", mock.Anything, classifyReq).Return(response("openai"), nil)

	c := llm.NewInstrumentedCompleter(next, m)
	_, err := c.Complete(context.Background(), classifyReq)

	require.NoError(t, err)
	assert.Equal(t, 1, testutil.CollectAndCount(m.CompletionLatency, "registrum_completion_duration_seconds"))
}
