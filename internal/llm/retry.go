package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"registrum/internal/port"
)

// RetryPolicy bounds every collaborator call.
type RetryPolicy struct {
	CallTimeout time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
}

// RetryCompleter applies a per-attempt timeout and retries transient failures.
// A structurally valid response is returned as is; interpreting it is the caller's job.
type RetryCompleter struct {
	next   port.Completer
	policy RetryPolicy
	logger *zap.Logger
}

// NewRetryCompleter wraps next. MaxRetries is capped at one.
func NewRetryCompleter(next port.Completer, policy RetryPolicy, logger *zap.Logger) *RetryCompleter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy.MaxRetries > 1 {
		policy.MaxRetries = 1
	}
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	return &RetryCompleter{next: next, policy: policy, logger: logger}
}

func (r *RetryCompleter) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= r.policy.MaxRetries; attempt++ {
		if attempt > 0 && r.policy.RetryDelay > 0 {
			timer := time.NewTimer(r.policy.RetryDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		resp, err := r.attempt(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		// The caller gave up; the failure says nothing about the provider.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !IsTransient(err) {
			return nil, err
		}
		r.logger.Warn("transient collaborator failure",
			zap.String("task", string(req.Task)),
			zap.String("subject", req.Subject),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return nil, lastErr
}

func (r *RetryCompleter) attempt(ctx context.Context, req port.CompletionRequest) (*port.CompletionResponse, error) {
	if r.policy.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.policy.CallTimeout)
		defer cancel()
	}
	return r.next.Complete(ctx, req)
}
