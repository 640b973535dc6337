package mediator

import (
	"context"
)

// Message is any value sent through the mediator. Its concrete type selects
// the handler, so *CreateUser and CreateUser are different messages.
//
// Command and Query are naming conventions only: a Command expresses intent
// to change state, a Query intent to read it. The mediator treats both the
// same way.
type Message = any

// Handler processes one message type and returns a value or an error.
//
// The type parameters are: M for the message, R for the response. R may be a
// plain domain value, which the mediator wraps in Ok, or a Result, which is
// passed through unchanged. A returned error becomes a failed Result whose
// code is derived by CodeOf.
//
// Example:
//
//	type CreateUserHandler struct {
//	    repo UserRepository
//	}
//
//	func (h *CreateUserHandler) Handle(ctx context.Context, cmd CreateUser) (UserID, error) {
//	    return h.repo.Insert(ctx, cmd.Name)
//	}
type Handler[M, R any] interface {
	Handle(ctx context.Context, msg M) (R, error)
}

// HandlerFunc is a function adapter for Handler. Use for handlers that don't
// need a struct:
//
//	mediator.RegisterFunc(reg, func(ctx context.Context, q GetUser) (mediator.Result[User], error) {
//	    return mediator.Fail[User](mediator.CodeNotFound), nil
//	})
type HandlerFunc[M, R any] func(ctx context.Context, msg M) (R, error)

// Handle implements the Handler interface.
func (f HandlerFunc[M, R]) Handle(ctx context.Context, msg M) (R, error) {
	return f(ctx, msg)
}

// Next is the rest of the pipeline as seen by a behavior: every behavior
// added after it, ending at the handler.
type Next func(ctx context.Context, msg Message) (any, error)

// Behavior intercepts every dispatch. It either delegates by calling next
// (at most once per attempt) and returning what next returned, possibly
// altered, or short-circuits by returning its own value or Result without
// calling next.
//
// Example:
//
//	type auditBehavior struct{ log *slog.Logger }
//
//	func (b auditBehavior) Invoke(ctx context.Context, msg mediator.Message, next mediator.Next) (any, error) {
//	    b.log.InfoContext(ctx, "dispatching", "message", mediator.NameOf(msg))
//	    return next(ctx, msg)
//	}
type Behavior interface {
	Invoke(ctx context.Context, msg Message, next Next) (any, error)
}

// BehaviorFunc is a function adapter for Behavior.
type BehaviorFunc func(ctx context.Context, msg Message, next Next) (any, error)

// Invoke implements the Behavior interface.
func (f BehaviorFunc) Invoke(ctx context.Context, msg Message, next Next) (any, error) {
	return f(ctx, msg, next)
}
