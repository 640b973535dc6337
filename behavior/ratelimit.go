package behavior

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/bjaus/mediator"
)

// RateLimit rejects dispatches beyond what l allows with RATE_LIMITED. It
// never waits.
//
// Example:
//
//	m.Use(behavior.RateLimit(rate.NewLimiter(rate.Limit(100), 10)))
func RateLimit(l *rate.Limiter) mediator.Behavior {
	return mediator.BehaviorFunc(func(ctx context.Context, msg mediator.Message, next mediator.Next) (any, error) {
		if !l.Allow() {
			return mediator.Fail[any](mediator.CodeRateLimited), nil
		}
		return next(ctx, msg)
	})
}

// Throttle waits for l before calling next. A dispatch whose context ends
// while waiting fails with CANCELED or TIMEOUT.
func Throttle(l *rate.Limiter) mediator.Behavior {
	return mediator.BehaviorFunc(func(ctx context.Context, msg mediator.Message, next mediator.Next) (any, error) {
		if err := l.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, &mediator.Error{Code: mediator.CodeRateLimited, Message: err.Error(), Err: err}
		}
		return next(ctx, msg)
	})
}
