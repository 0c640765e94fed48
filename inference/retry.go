package inference

import (
	"context"
	"math"
	"time"

	"github.com/symposium-ai/symposium/logging"
)

// RetryPolicy configures the exponential-backoff retry wrapper.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts including the first call.
	MaxAttempts int
	// InitialDelay is the wait before the second attempt.
	InitialDelay time.Duration
	// MaxDelay caps the backoff growth.
	MaxDelay time.Duration
	// Base is the exponential growth factor.
	Base float64
	// Logger receives retry diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// DefaultRetryPolicy matches the upstream defaults: 5 attempts, 1s initial
// delay doubling up to 60s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  5,
		InitialDelay: time.Second,
		MaxDelay:     60 * time.Second,
		Base:         2,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 5
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = time.Second
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 60 * time.Second
	}
	if p.Base < 1 {
		p.Base = 2
	}
	if p.Logger == nil {
		p.Logger = logging.NoOpLogger{}
	}
	return p
}

// delay returns the wait after the k-th failed attempt (k >= 1):
// min(initial * base^(k-1), max).
func (p RetryPolicy) delay(attempt int) time.Duration {
	d := float64(p.InitialDelay) * math.Pow(p.Base, float64(attempt-1))
	if d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	return time.Duration(d)
}

// Retry executes fn up to policy.MaxAttempts times. Every failure is run
// through Classify; only retryable kinds (rate limited, model unavailable)
// trigger another attempt, all others propagate immediately. The backoff wait
// suspends only the calling goroutine and aborts early when ctx is done. On
// exhausting all attempts the last classified error is returned.
func Retry[T any](ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	policy = policy.normalized()

	var zero T
	var lastErr *Error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		lastErr = Classify(err)
		if !lastErr.Kind.Retryable() {
			return zero, lastErr
		}
		if attempt == policy.MaxAttempts {
			policy.Logger.Error("inference call failed after max attempts", "attempts", attempt, "kind", lastErr.Kind.String(), "error", lastErr.Err.Error())
			return zero, lastErr
		}

		wait := policy.delay(attempt)
		policy.Logger.Warn("inference call failed, retrying", "attempt", attempt, "kind", lastErr.Kind.String(), "delay", wait.String())

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
	return zero, lastErr
}
