// Package mediator provides an in-process message dispatcher for command and
// query handlers.
//
// A Mediator routes each message to exactly one handler, chosen by the
// message's concrete type, through an ordered chain of behaviors (logging,
// timing, caching, validation, authorization, ...). Whatever the handler or
// a behavior does, the caller gets back a Result: a success with a value or
// a failure with a code.
//
// # Quick Start
//
// Define a message and a handler:
//
//	type CreateUser struct {
//	    Name string
//	}
//
//	type CreateUserHandler struct {
//	    repo UserRepository
//	}
//
//	func (h *CreateUserHandler) Handle(ctx context.Context, cmd CreateUser) (UserID, error) {
//	    return h.repo.Insert(ctx, cmd.Name)
//	}
//
// Bind it in a registry, build a mediator, and dispatch:
//
//	reg := mediator.NewRegistry()
//	mediator.MustRegister(reg, &CreateUserHandler{repo: repo})
//
//	m := mediator.New(reg)
//	m.Use(behavior.Logging(logger))
//
//	res, err := m.Send(ctx, CreateUser{Name: "Ann"})
//	if err != nil {
//	    // configuration error: nothing bound to CreateUser
//	}
//	if res.Success() {
//	    id := res.MustValue().(UserID)
//	}
//
// # Registration
//
// Handlers are bound once per message type. A second Register for the same
// type fails with ErrDuplicateRegistration and keeps the first binding.
// Register all handlers from one bootstrap function so the full set of
// routes is visible in one place:
//
//	func Register(reg *mediator.Registry, repo Repository) error {
//	    return errors.Join(
//	        mediator.Register(reg, &CreateUserHandler{repo: repo}),
//	        mediator.Register(reg, &GetUserHandler{repo: repo}),
//	    )
//	}
//
// # Behaviors
//
// A Behavior receives the message and a continuation, next, representing the
// rest of the pipeline. It either delegates:
//
//	func(ctx context.Context, msg mediator.Message, next mediator.Next) (any, error) {
//	    start := time.Now()
//	    out, err := next(ctx, msg)
//	    log.Println(mediator.NameOf(msg), time.Since(start))
//	    return out, err
//	}
//
// or short-circuits by returning without calling next:
//
//	func(ctx context.Context, msg mediator.Message, next mediator.Next) (any, error) {
//	    if !allowed(ctx) {
//	        return mediator.Fail[any](mediator.CodeForbidden), nil
//	    }
//	    return next(ctx, msg)
//	}
//
// Behaviors run in the order they were added: the first one added is the
// outermost. For behaviors B1, B2 and handler H the order is
// B1 → B2 → H → B2 → B1. Calling next again after it succeeded, or while it
// is still running, returns ErrNextReinvoked.
//
// Stock behaviors live in the behavior subpackage.
//
// # Results
//
// Handlers may return a plain value or a Result. Dispatch normalizes:
//
//   - a Result (of any type parameter) is passed through unchanged
//   - any other value v becomes Ok(v)
//   - a returned error becomes Fail(CodeOf(err))
//   - a panic is recovered and becomes Fail(CodePanic), or the panic value's
//     own code when it is a *Error or Coder
//
// Use DispatchAs or As to get a typed Result back.
//
// # Error Handling
//
// Dispatch returns a Go error only for configuration mistakes, which should
// abort the operation rather than be shown to a user:
//
//   - ErrHandlerNotFound: nothing bound to the message type
//   - ErrNilMessage: the message is nil
//
// Business failures travel as failed Results. Return a *Error (NotFound,
// Invalid, Unauthorized, Forbidden, Conflict) or any error implementing
// Coder to choose the code.
//
// # Hooks
//
// Hooks observe dispatches at the mediator boundary without being part of
// the chain:
//
//	m := mediator.New(reg,
//	    mediator.WithOnSuccess(func(ctx context.Context, message string, d time.Duration) {
//	        metrics.Timing("mediator.success", d, "message:"+message)
//	    }),
//	    mediator.WithOnPanic(func(ctx context.Context, message string, p *mediator.PanicError) {
//	        alert(message, p.Value)
//	    }),
//	)
//
// # Thread Safety
//
// Mediator and Registry are safe for concurrent use. Registration publishes
// a fresh copy of the binding table, so dispatches never lock and never see
// a partial update.
package mediator
