package behavior

import (
	"context"

	"github.com/bjaus/mediator"
)

// When applies b only to messages for which pred returns true. Other
// messages skip straight to next.
//
// Example:
//
//	m.Use(behavior.When(isAdminCommand, auditLog))
func When(pred func(ctx context.Context, msg mediator.Message) bool, b mediator.Behavior) mediator.Behavior {
	return mediator.BehaviorFunc(func(ctx context.Context, msg mediator.Message, next mediator.Next) (any, error) {
		if !pred(ctx, msg) {
			return next(ctx, msg)
		}
		return b.Invoke(ctx, msg, next)
	})
}

// For applies b only to messages assignable to M. M may be a concrete
// message type or an interface such as Secured.
//
// Example:
//
//	m.Use(behavior.For[users.GetUser](cache))
func For[M any](b mediator.Behavior) mediator.Behavior {
	return When(func(_ context.Context, msg mediator.Message) bool {
		_, ok := msg.(M)
		return ok
	}, b)
}
