package behavior

import (
	"context"
	"time"

	"github.com/bjaus/mediator"
)

// Timeout gives the rest of the pipeline a context that expires after d.
// Handlers that honor the context and return ctx.Err() fail with TIMEOUT.
// Zero or negative d disables the timeout.
//
// Timeout cannot stop a handler that ignores its context; such a handler
// runs to completion and its outcome is returned as usual.
func Timeout(d time.Duration) mediator.Behavior {
	return mediator.BehaviorFunc(func(ctx context.Context, msg mediator.Message, next mediator.Next) (any, error) {
		if d <= 0 {
			return next(ctx, msg)
		}
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return next(ctx, msg)
	})
}
