package llm

import (
	"context"
	"time"

	"registrum/internal/metrics"
	"registrum/internal/port"
)

// InstrumentedCompleter records latency and outcome of every call.
type InstrumentedCompleter struct {
	next    port.Completer
	metrics *metrics.Metrics
}

func NewInstrumentedCompleter(next port.Completer, m *metrics.Metrics) *InstrumentedCompleter {
	return &InstrumentedCompleter{next: next, metrics: m}
}

func (c *InstrumentedCompleter) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionResponse, error) {
	start := time.Now()
	resp, err := c.next.Complete(ctx, req)
	c.metrics.ObserveCompletion(string(req.Task), err, time.Since(start))
	return resp, err
}
