package behavior

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/bjaus/mediator"
)

// BackoffFunc returns the wait before retry number attempt (one-based).
type BackoffFunc func(attempt int) time.Duration

// ConstantBackoff waits delay between attempts. jitter randomizes each wait
// by up to that fraction: 0.2 means ±20%.
func ConstantBackoff(delay time.Duration, jitter float64) BackoffFunc {
	applyJitter := newJitter(jitter)
	return func(int) time.Duration {
		return applyJitter(delay)
	}
}

// ExponentialBackoff waits initial * factor^(attempt-1), capped at maxDelay when
// maxDelay is positive, with jitter applied.
func ExponentialBackoff(initial time.Duration, factor float64, maxDelay time.Duration, jitter float64) BackoffFunc {
	applyJitter := newJitter(jitter)
	return func(attempt int) time.Duration {
		d := time.Duration(float64(initial) * math.Pow(factor, float64(attempt-1)))
		if maxDelay > 0 && d > maxDelay {
			d = maxDelay
		}
		return applyJitter(d)
	}
}

func newJitter(jitter float64) func(time.Duration) time.Duration {
	jitter = min(max(jitter, 0), 1)
	return func(d time.Duration) time.Duration {
		return time.Duration(float64(d) * (1 + rand.Float64()*2*jitter - jitter))
	}
}

// RetryConfig configures Retry.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts including the first.
	// Defaults to 3.
	MaxAttempts int

	// Backoff produces the wait between attempts. Defaults to 100ms
	// constant with ±20% jitter.
	Backoff BackoffFunc

	// Codes lists the failure codes worth retrying. Defaults to
	// INTERNAL_ERROR, TIMEOUT and RATE_LIMITED; business failures such as
	// NOT_FOUND are returned at once.
	Codes []string
}

var defaultRetryCodes = []string{
	mediator.CodeInternal,
	mediator.CodeTimeout,
	mediator.CodeRateLimited,
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.Backoff == nil {
		c.Backoff = ConstantBackoff(100*time.Millisecond, 0.2)
	}
	if len(c.Codes) == 0 {
		c.Codes = defaultRetryCodes
	}
	return c
}

type attemptKey struct{}

// Attempt returns the current attempt number (one-based) inside a Retry
// behavior, or 0 outside one.
func Attempt(ctx context.Context) int {
	n, _ := ctx.Value(attemptKey{}).(int)
	return n
}

// Retry calls next again when it fails with one of cfg.Codes, waiting
// cfg.Backoff between attempts. The last attempt's outcome is returned
// unchanged. A context that ends while waiting stops the loop with CANCELED
// or TIMEOUT.
//
// Handlers behind Retry must be safe to run more than once for the same
// message.
func Retry(cfg RetryConfig) mediator.Behavior {
	cfg = cfg.withDefaults()
	return mediator.BehaviorFunc(func(ctx context.Context, msg mediator.Message, next mediator.Next) (any, error) {
		for attempt := 1; ; attempt++ {
			out, err := next(context.WithValue(ctx, attemptKey{}, attempt), msg)

			res := mediator.Normalize(out, err)
			if res.Success() || attempt >= cfg.MaxAttempts || !slices.Contains(cfg.Codes, res.MustCode()) {
				return out, err
			}

			timer := time.NewTimer(cfg.Backoff(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	})
}
