package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"registrum/internal/config"
	"registrum/internal/llm"
	"registrum/internal/port"
)

const defaultMaxTokens = 4096

// Completer implements port.Completer using the Gemini API through the genai SDK.
type Completer struct {
	client *genai.Client
	model  string
}

// NewCompleter creates a Gemini-based completer. A non-empty BaseURL overrides
// the public endpoint, which is how tests point the SDK at a local server.
func NewCompleter(ctx context.Context, cfg *config.LLMProviderConfig) (*Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimRight(cfg.BaseURL, "/") + "/"}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Completer{client: client, model: model}, nil
}

func (c *Completer) Complete(ctx context.Context, in port.CompletionRequest) (*port.CompletionResponse, error) {
	maxTokens := in.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	gc := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0),
		MaxOutputTokens: int32(maxTokens),
	}
	if in.System != "" {
		gc.SystemInstruction = genai.NewContentFromText(in.System, genai.RoleUser)
	}
	if in.JSONOutput {
		gc.ResponseMIMEType = "application/json"
	}

	contents := []*genai.Content{
		genai.NewContentFromText(in.Prompt, genai.RoleUser),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, gc)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, llm.StatusError("gemini", apiErr.Code, []byte(apiErr.Message), "")
		}
		return nil, fmt.Errorf("calling gemini API: %w", err)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty response from API")
	}

	model := c.model
	if result.ModelVersion != "" {
		model = result.ModelVersion
	}
	return &port.CompletionResponse{
		Text:  text,
		Model: model,
	}, nil
}
