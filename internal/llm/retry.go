package llm

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// RetryingClient decorates a Client so that throttled and failed invocations are
// retried. A rate-limited call waits for the provider's retry-after hint; every
// other failure waits FallbackWait. Retries stop after MaxRetries (0 = unbounded)
// with a *RetryExhaustedError.
type RetryingClient struct {
	next         Client
	log          *zap.Logger
	FallbackWait time.Duration
	MaxRetries   int
	// Timer drives the waits between attempts; nil uses a real timer
	Timer backoff.Timer
}

// NewRetryingClient wraps next with the default retry policy
func NewRetryingClient(next Client, log *zap.Logger) *RetryingClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &RetryingClient{
		next:         next,
		log:          log,
		FallbackWait: DefaultFallbackWait,
		MaxRetries:   DefaultMaxRetries,
	}
}

// hintBackOff yields the wait chosen by the last failed attempt
type hintBackOff struct {
	wait time.Duration
}

func (b *hintBackOff) NextBackOff() time.Duration { return b.wait }
func (b *hintBackOff) Reset()                     { b.wait = 0 }

// Invoke calls the wrapped client until it succeeds, the context ends, or the
// retry bound is reached.
func (c *RetryingClient) Invoke(ctx context.Context, prompt string, tier ModelTier) (*Response, error) {
	hint := &hintBackOff{}
	var policy backoff.BackOff = hint
	if c.MaxRetries > 0 {
		policy = backoff.WithMaxRetries(policy, uint64(c.MaxRetries))
	}
	policy = backoff.WithContext(policy, ctx)

	attempts := 0
	operation := func() (*Response, error) {
		attempts++
		resp, err := c.next.Invoke(ctx, prompt, tier)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			return nil, backoff.Permanent(err)
		}
		hint.wait = c.waitFor(err)
		return nil, err
	}

	notify := func(err error, wait time.Duration) {
		var rl *RateLimitError
		if errors.As(err, &rl) {
			c.log.Warn("LLM rate limited, waiting before retry",
				zap.Duration("wait", wait),
				zap.Bool("retry_after_header", rl.HasRetryAfter),
				zap.Int("attempt", attempts))
			return
		}
		c.log.Error("LLM invocation failed, waiting before retry",
			zap.Error(err),
			zap.Duration("wait", wait),
			zap.Int("attempt", attempts))
	}

	resp, err := backoff.RetryNotifyWithTimerAndData(operation, policy, notify, c.Timer)
	if err == nil {
		return resp, nil
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return nil, err
	}
	return nil, &RetryExhaustedError{Attempts: attempts, Cause: err}
}

// Close closes the wrapped client
func (c *RetryingClient) Close() error {
	return c.next.Close()
}

// waitFor picks the pause before the next attempt
func (c *RetryingClient) waitFor(err error) time.Duration {
	var rl *RateLimitError
	if errors.As(err, &rl) && rl.HasRetryAfter {
		return rl.RetryAfter
	}
	return c.FallbackWait
}
