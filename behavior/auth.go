package behavior

import (
	"context"
	"slices"
	"strings"

	"github.com/bjaus/mediator"
)

// Principal is the authenticated caller of a dispatch.
type Principal struct {
	ID    string
	Roles []string
}

// HasAnyRole reports whether p holds at least one of roles. Role names
// compare case-insensitively.
func (p Principal) HasAnyRole(roles ...string) bool {
	for _, want := range roles {
		if slices.ContainsFunc(p.Roles, func(have string) bool {
			return strings.EqualFold(have, want)
		}) {
			return true
		}
	}
	return false
}

type principalKey struct{}

// WithPrincipal returns a context carrying p. Transports call it once the
// caller is authenticated, before dispatching.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored in ctx, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Secured is implemented by messages that may only be dispatched by an
// authenticated caller. An empty role list means any authenticated caller;
// otherwise the caller needs at least one of the roles.
type Secured interface {
	RequiredRoles() []string
}

// Authorization guards Secured messages. Without a principal in the context
// the dispatch fails with UNAUTHORIZED; a principal lacking every required
// role fails with FORBIDDEN. Other messages pass through.
func Authorization() mediator.Behavior {
	return mediator.BehaviorFunc(func(ctx context.Context, msg mediator.Message, next mediator.Next) (any, error) {
		s, ok := msg.(Secured)
		if !ok {
			return next(ctx, msg)
		}

		p, ok := PrincipalFrom(ctx)
		if !ok {
			return nil, mediator.Unauthorized("authentication required")
		}

		roles := s.RequiredRoles()
		if len(roles) > 0 && !p.HasAnyRole(roles...) {
			return nil, mediator.Forbidden("%s requires one of %v", mediator.NameOf(msg), roles)
		}
		return next(ctx, msg)
	})
}
