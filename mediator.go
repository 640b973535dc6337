package mediator

import (
	"context"
	"log/slog"
	"reflect"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
)

// Mediator resolves a message's handler, wraps it in the behavior chain,
// runs it, and turns whatever happens into a Result.
//
// Usage:
//  1. Create a Registry and bind handlers with Register
//  2. Create a Mediator with New
//  3. Add cross-cutting behaviors with Use
//  4. Dispatch messages with Dispatch, Send or Ask
//
// Mediator is safe for concurrent use. Handlers and behaviors should be
// registered before traffic starts; late registration is safe but only
// visible to dispatches that begin after it.
type Mediator struct {
	registry *Registry
	chain    Chain
	hooks    hooks
	logger   *slog.Logger
	newID    func() string
}

// Option configures a Mediator.
type Option func(*Mediator)

// New creates a Mediator dispatching to handlers bound in reg.
//
// Example:
//
//	reg := mediator.NewRegistry()
//	mediator.MustRegister(reg, &CreateUserHandler{repo: repo})
//
//	m := mediator.New(reg,
//	    mediator.WithLogger(logger),
//	    mediator.WithOnFailure(func(ctx context.Context, message, code string, err error, d time.Duration) {
//	        metrics.Incr("mediator.failure", "code:"+code)
//	    }),
//	)
//	m.Use(behavior.Logging(logger), behavior.Validation())
func New(reg *Registry, opts ...Option) *Mediator {
	if reg == nil {
		reg = NewRegistry()
	}
	m := &Mediator{
		registry: reg,
		logger:   slog.Default(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithLogger sets the logger used for recovered panics and unexpected
// errors. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Mediator) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithIDGenerator overrides how dispatch IDs are generated. Defaults to
// random UUIDs.
func WithIDGenerator(fn func() string) Option {
	return func(m *Mediator) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// Registry returns the registry the mediator dispatches to.
func (m *Mediator) Registry() *Registry {
	return m.registry
}

// Use appends behaviors to the chain. The first behavior ever added is the
// outermost.
//
// Example:
//
//	m.Use(behavior.Logging(logger))    // runs first
//	m.Use(behavior.Validation())       // runs second, closest to the handler
func (m *Mediator) Use(bs ...Behavior) {
	m.chain.Add(bs...)
}

// Behaviors returns the number of behaviors in the chain.
func (m *Mediator) Behaviors() int {
	return m.chain.Len()
}

// Dispatch runs msg through the behavior chain to its handler and returns
// the normalized Result.
//
// The returned error is non-nil only for configuration problems: a nil
// message, or ErrHandlerNotFound when nothing is bound to msg's type. In
// that case no behavior runs. Everything that happens inside the pipeline,
// including panics, is reported through the Result.
//
// The dispatch flow:
//  1. Resolve the handler by the message's concrete type
//  2. Build the pipeline from the current behavior chain
//  3. Run it with a dispatch ID in the context
//  4. Normalize: a Result passes through, a plain value becomes Ok, an error
//     or panic becomes Fail with a code from CodeOf
func (m *Mediator) Dispatch(ctx context.Context, msg Message) (Result[any], error) {
	if msg == nil {
		return Result[any]{}, ErrNilMessage
	}

	t := reflect.TypeOf(msg)
	name := t.String()

	handler, err := m.registry.Resolve(t)
	if err != nil {
		m.callOnNoHandler(ctx, name)
		return Result[any]{}, err
	}

	pipeline := m.chain.Build(handler)

	ctx = withDispatch(ctx, m.newID(), name)
	ctx = m.callOnDispatch(ctx, name)

	start := time.Now()
	res := m.execute(ctx, name, pipeline, msg)
	m.callOnOutcome(ctx, name, res, time.Since(start))

	return res, nil
}

// Send dispatches a command. It is Dispatch under a name that states intent.
func (m *Mediator) Send(ctx context.Context, cmd Message) (Result[any], error) {
	return m.Dispatch(ctx, cmd)
}

// Ask dispatches a query. It is Dispatch under a name that states intent.
func (m *Mediator) Ask(ctx context.Context, query Message) (Result[any], error) {
	return m.Dispatch(ctx, query)
}

// DispatchAs dispatches msg and converts the Result to Result[R]. A
// successful value that is not an R becomes a CodeTypeMismatch failure.
//
// Example:
//
//	res, err := mediator.DispatchAs[UserID](ctx, m, CreateUser{Name: "Ann"})
func DispatchAs[R any](ctx context.Context, m *Mediator, msg Message) (Result[R], error) {
	res, err := m.Dispatch(ctx, msg)
	if err != nil {
		return Result[R]{}, err
	}
	return As[R](res), nil
}

// execute runs the pipeline and is the single place where panics are
// recovered.
func (m *Mediator) execute(ctx context.Context, name string, pipeline Next, msg Message) (res Result[any]) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		p := &PanicError{Value: v, Stack: string(debug.Stack())}
		m.logger.ErrorContext(ctx, "mediator: recovered panic",
			"message", name,
			"panic", p.Value,
			"stack", p.Stack,
		)
		m.callOnPanic(ctx, name, p)
		res = FailWith[any](CodeOf(p), p)
	}()

	out, err := pipeline(ctx, msg)
	res = Normalize(out, err)
	if !res.success && res.code == CodeInternal {
		m.logger.ErrorContext(ctx, "mediator: handler error",
			"message", name,
			"error", res.Err(),
		)
	}
	return res
}

// Normalize turns a pipeline return into a Result: an error wins, a Result
// of any type is passed through, anything else is wrapped in Ok. Behaviors
// use it to inspect the outcome of next the same way Dispatch will.
func Normalize(out any, err error) Result[any] {
	if err != nil {
		return FailWith[any](CodeOf(err), err)
	}
	if r, ok := out.(eraser); ok {
		return r.Erase()
	}
	return Ok(out)
}

// NameOf returns the name Dispatch uses for msg in hooks and logs, e.g.
// "users.CreateUser" or "*users.CreateUser".
func NameOf(msg Message) string {
	if msg == nil {
		return "<nil>"
	}
	return reflect.TypeOf(msg).String()
}
