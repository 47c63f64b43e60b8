// Package chain wires the configured providers into the completer used by the engine:
// retry(instrumented(fallback(primary, secondary, tertiary))).
package chain

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"registrum/internal/config"
	"registrum/internal/llm"
	"registrum/internal/llm/claude"
	"registrum/internal/llm/gemini"
	"registrum/internal/llm/openai"
	"registrum/internal/metrics"
	"registrum/internal/port"
)

func init() {
	llm.RegisterProvider("claude", func(cfg *config.LLMProviderConfig) (port.Completer, error) {
		return claude.NewCompleter(cfg), nil
	})
	llm.RegisterProvider("openai", func(cfg *config.LLMProviderConfig) (port.Completer, error) {
		return openai.NewCompleter(cfg), nil
	})
	llm.RegisterProvider("gemini", func(cfg *config.LLMProviderConfig) (port.Completer, error) {
		return gemini.NewCompleter(context.Background(), cfg)
	})
}

// Build creates the completer for cfg.
func Build(cfg *config.LLMConfig, m *metrics.Metrics, logger *zap.Logger) (port.Completer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	providers := cfg.Providers()
	if len(providers) == 0 {
		return nil, fmt.Errorf("no llm provider configured")
	}

	completers := make([]port.Completer, 0, len(providers))
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		c, err := llm.New(p)
		if err != nil {
			return nil, fmt.Errorf("creating %s completer: %w", p.Provider, err)
		}
		completers = append(completers, c)
		names = append(names, p.Provider)
	}
	logger.Info("llm provider chain configured", zap.Strings("providers", names))

	var c port.Completer = llm.NewFallbackCompleter(completers, names, logger.Named("fallback"))
	c = llm.NewInstrumentedCompleter(c, m)
	c = llm.NewRetryCompleter(c, llm.RetryPolicy{
		CallTimeout: cfg.CallTimeout,
		MaxRetries:  cfg.MaxRetries,
		RetryDelay:  cfg.RetryDelay,
	}, logger.Named("retry"))
	return c, nil
}
