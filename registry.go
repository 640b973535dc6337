package mediator

import (
	"cmp"
	"context"
	"maps"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"
)

// invoker wraps a typed handler so handlers of different types can live in
// a single map.
type invoker func(ctx context.Context, msg Message) (any, error)

// Registry maps message types to their single handler.
//
// A Registry is built by the application's composition root and populated
// during startup, before any dispatch. Registration is append-only: there is
// no way to replace or remove a binding.
//
// Reads never lock. Each registration copies the binding table and publishes
// the copy atomically, so a late registration cannot tear a concurrent
// Dispatch.
type Registry struct {
	mu       sync.Mutex
	handlers atomic.Pointer[map[reflect.Type]invoker]
}

// NewRegistry returns an empty Registry. The zero value is also ready to
// use.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register binds h to the message type M. It fails with
// ErrDuplicateRegistration if M is already bound, leaving the existing
// binding in place.
//
// This is a package-level function (not a method) due to Go generics
// limitations: methods cannot have type parameters independent of the
// receiver.
//
// Example:
//
//	if err := mediator.Register(reg, &CreateUserHandler{repo: repo}); err != nil {
//	    return err
//	}
func Register[M, R any](r *Registry, h Handler[M, R]) error {
	return r.bind(reflect.TypeFor[M](), func(ctx context.Context, msg Message) (any, error) {
		return h.Handle(ctx, msg.(M))
	})
}

// RegisterFunc is a convenience function for registering a handler function.
//
// Example:
//
//	mediator.RegisterFunc(reg, func(ctx context.Context, q Ping) (string, error) {
//	    return "pong", nil
//	})
func RegisterFunc[M, R any](r *Registry, fn func(ctx context.Context, msg M) (R, error)) error {
	return Register(r, HandlerFunc[M, R](fn))
}

// MustRegister is like Register but panics on error. Intended for bootstrap
// code where a duplicate binding is a programming mistake.
func MustRegister[M, R any](r *Registry, h Handler[M, R]) {
	if err := Register(r, h); err != nil {
		panic(err)
	}
}

func (r *Registry) bind(t reflect.Type, inv invoker) error {
	if t == nil || t.Kind() == reflect.Interface {
		return &RegistrationError{Type: t, Err: errInterfaceMessage}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.table()
	if _, exists := current[t]; exists {
		return &RegistrationError{Type: t, Err: ErrDuplicateRegistration}
	}

	next := make(map[reflect.Type]invoker, len(current)+1)
	maps.Copy(next, current)
	next[t] = inv
	r.handlers.Store(&next)
	return nil
}

func (r *Registry) table() map[reflect.Type]invoker {
	if m := r.handlers.Load(); m != nil {
		return *m
	}
	return nil
}

// Resolve returns the handler bound to t as the terminal stage of a
// pipeline. It fails with a *NotFoundError wrapping ErrHandlerNotFound when
// nothing is bound.
func (r *Registry) Resolve(t reflect.Type) (Next, error) {
	inv, ok := r.table()[t]
	if !ok {
		return nil, &NotFoundError{Type: t}
	}
	return Next(inv), nil
}

// Has reports whether a handler is bound to the type of msg.
func (r *Registry) Has(msg Message) bool {
	_, err := r.Resolve(reflect.TypeOf(msg))
	return err == nil
}

// Len returns the number of bound message types.
func (r *Registry) Len() int {
	return len(r.table())
}

// Types returns every bound message type, sorted by name.
func (r *Registry) Types() []reflect.Type {
	types := slices.Collect(maps.Keys(r.table()))
	slices.SortFunc(types, func(a, b reflect.Type) int {
		return cmp.Compare(a.String(), b.String())
	})
	return types
}
