package behavior

import (
	"context"
	"time"

	"github.com/bjaus/mediator"
)

// ObserveFunc receives the wall time a dispatch spent inside the chain
// below the Timing behavior.
type ObserveFunc func(ctx context.Context, message string, d time.Duration)

// Timing measures how long the rest of the pipeline takes and reports it to
// observe, whatever the outcome.
func Timing(observe ObserveFunc) mediator.Behavior {
	return mediator.BehaviorFunc(func(ctx context.Context, msg mediator.Message, next mediator.Next) (any, error) {
		start := time.Now()
		defer func() {
			observe(ctx, mediator.NameOf(msg), time.Since(start))
		}()
		return next(ctx, msg)
	})
}
