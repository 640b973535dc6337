package mediator

import (
	"context"
	"runtime/debug"
	"time"
)

// OnDispatchFunc is called after the handler is resolved, just before the
// pipeline runs. The returned context is used for the rest of the dispatch.
type OnDispatchFunc func(ctx context.Context, message string) context.Context

// OnSuccessFunc is called after a dispatch produced a successful Result.
type OnSuccessFunc func(ctx context.Context, message string, duration time.Duration)

// OnFailureFunc is called after a dispatch produced a failed Result. err is
// the recorded cause and may be nil when a handler returned Fail directly.
type OnFailureFunc func(ctx context.Context, message, code string, err error, duration time.Duration)

// OnPanicFunc is called when a panic was recovered at the dispatch boundary.
// OnFailure hooks still run afterwards.
type OnPanicFunc func(ctx context.Context, message string, p *PanicError)

// OnNoHandlerFunc is called when Dispatch finds no handler for a message.
// Dispatch returns ErrHandlerNotFound regardless.
type OnNoHandlerFunc func(ctx context.Context, message string)

// hooks holds all configured hook functions.
type hooks struct {
	onDispatch  []OnDispatchFunc
	onSuccess   []OnSuccessFunc
	onFailure   []OnFailureFunc
	onPanic     []OnPanicFunc
	onNoHandler []OnNoHandlerFunc
}

// WithOnDispatch adds a hook called just before the pipeline runs.
// Multiple hooks are called in order, with context chaining through each.
//
// Example:
//
//	mediator.WithOnDispatch(func(ctx context.Context, message string) context.Context {
//	    ctx, _ = tracer.Start(ctx, message)
//	    return ctx
//	})
func WithOnDispatch(fn OnDispatchFunc) Option {
	return func(m *Mediator) {
		m.hooks.onDispatch = append(m.hooks.onDispatch, fn)
	}
}

// WithOnSuccess adds a hook called after a successful dispatch.
// Multiple hooks are called in order.
//
// Example:
//
//	mediator.WithOnSuccess(func(ctx context.Context, message string, d time.Duration) {
//	    metrics.Timing("mediator.success", d, "message:"+message)
//	})
func WithOnSuccess(fn OnSuccessFunc) Option {
	return func(m *Mediator) {
		m.hooks.onSuccess = append(m.hooks.onSuccess, fn)
	}
}

// WithOnFailure adds a hook called after a failed dispatch.
// Multiple hooks are called in order.
//
// Example:
//
//	mediator.WithOnFailure(func(ctx context.Context, message, code string, err error, d time.Duration) {
//	    metrics.Incr("mediator.failure", "code:"+code)
//	})
func WithOnFailure(fn OnFailureFunc) Option {
	return func(m *Mediator) {
		m.hooks.onFailure = append(m.hooks.onFailure, fn)
	}
}

// WithOnPanic adds a hook called when a handler or behavior panicked.
// Multiple hooks are called in order.
func WithOnPanic(fn OnPanicFunc) Option {
	return func(m *Mediator) {
		m.hooks.onPanic = append(m.hooks.onPanic, fn)
	}
}

// WithOnNoHandler adds a hook called when no handler is bound for a message.
// Multiple hooks are called in order.
func WithOnNoHandler(fn OnNoHandlerFunc) Option {
	return func(m *Mediator) {
		m.hooks.onNoHandler = append(m.hooks.onNoHandler, fn)
	}
}

func (m *Mediator) callOnDispatch(ctx context.Context, message string) context.Context {
	for _, fn := range m.hooks.onDispatch {
		m.guardHook(ctx, "OnDispatch", message, func() {
			ctx = fn(ctx, message)
		})
	}
	return ctx
}

func (m *Mediator) callOnOutcome(ctx context.Context, message string, res Result[any], duration time.Duration) {
	if res.Success() {
		for _, fn := range m.hooks.onSuccess {
			m.guardHook(ctx, "OnSuccess", message, func() { fn(ctx, message, duration) })
		}
		return
	}
	for _, fn := range m.hooks.onFailure {
		m.guardHook(ctx, "OnFailure", message, func() { fn(ctx, message, res.code, res.cause, duration) })
	}
}

func (m *Mediator) callOnPanic(ctx context.Context, message string, p *PanicError) {
	for _, fn := range m.hooks.onPanic {
		m.guardHook(ctx, "OnPanic", message, func() { fn(ctx, message, p) })
	}
}

func (m *Mediator) callOnNoHandler(ctx context.Context, message string) {
	for _, fn := range m.hooks.onNoHandler {
		m.guardHook(ctx, "OnNoHandler", message, func() { fn(ctx, message) })
	}
}

// guardHook runs one hook call. A panicking hook is logged and skipped; it
// never changes the dispatch outcome. An OnDispatch hook that panics leaves
// the context as it was before that hook.
func (m *Mediator) guardHook(ctx context.Context, hook, message string, call func()) {
	defer func() {
		if v := recover(); v != nil {
			m.logger.ErrorContext(ctx, "mediator: hook panicked",
				"hook", hook,
				"message", message,
				"panic", v,
				"stack", string(debug.Stack()),
			)
		}
	}()
	call()
}
