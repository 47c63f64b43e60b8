package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrum/internal/config"
	"registrum/internal/llm"
	"registrum/internal/llm/gemini"
	"registrum/internal/port"
)

func newGeminiTestCompleter(t *testing.T, serverURL string) *gemini.Completer {
	t.Helper()
	c, err := gemini.NewCompleter(context.Background(), &config.LLMProviderConfig{
		Provider:     "gemini",
		APIKey:       "test-gemini-key",
		DefaultModel: "gemini-2.0-flash",
		BaseURL:      serverURL,
		TimeoutSecs:  30,
	})
	require.NoError(t, err)
	return c
}

func geminiSuccessResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"role": "model",
					"parts": []map[string]interface{}{
						{"text": text},
					},
				},
				"finishReason": "STOP",
			},
		},
		"modelVersion": "gemini-2.0-flash-001",
	}
}

func TestGeminiCompleter_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.0-flash:generateContent"), r.URL.Path)
		assert.Equal(t, "test-gemini-key", r.Header.Get("x-goog-api-key"))

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		gc, ok := reqBody["generationConfig"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "application/json", gc["responseMimeType"])
		assert.NotNil(t, reqBody["systemInstruction"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(geminiSuccessResponse(`{"answer":"NAO"}`))
	}))
	defer server.Close()

	c := newGeminiTestCompleter(t, server.URL)
	resp, err := c.Complete(context.Background(), port.CompletionRequest{
		Task:       port.TaskEvaluate,
		System:     "sys",
		Prompt:     "avalie",
		JSONOutput: true,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"answer":"NAO"}`, resp.Text)
	assert.Equal(t, "gemini-2.0-flash-001", resp.Model)
}

func TestGeminiCompleter_Complete_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	_, err := newGeminiTestCompleter(t, server.URL).Complete(context.Background(), port.CompletionRequest{Prompt: "x"})

	var rlErr *llm.RateLimitError
	require.True(t, errors.As(err, &rlErr), "got %v", err)
	assert.Equal(t, "gemini", rlErr.Provider)
}

func TestGeminiCompleter_Complete_ServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`))
	}))
	defer server.Close()

	_, err := newGeminiTestCompleter(t, server.URL).Complete(context.Background(), port.CompletionRequest{Prompt: "x"})

	require.Error(t, err)
	assert.True(t, llm.IsTransient(err))
}

func TestNewCompleter_RequiresAPIKey(t *testing.T) {
	_, err := gemini.NewCompleter(context.Background(), &config.LLMProviderConfig{Provider: "gemini"})
	assert.ErrorContains(t, err, "API key is required")
}
