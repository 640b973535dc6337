package mediator

import (
	"context"
	"sync"
	"sync/atomic"
)

// Chain is the ordered list of behaviors wrapped around every handler.
//
// Order of Add is order of execution from outermost to innermost: the first
// behavior added runs first and sees the final outcome last. Add publishes a
// new copy of the list, so Build always works from a consistent snapshot and
// never observes a concurrent Add half-way.
type Chain struct {
	mu        sync.Mutex
	behaviors atomic.Pointer[[]Behavior]
}

// Add appends behaviors to the end (innermost position) of the chain.
func (c *Chain) Add(bs ...Behavior) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.snapshot()
	next := make([]Behavior, 0, len(current)+len(bs))
	next = append(next, current...)
	next = append(next, bs...)
	c.behaviors.Store(&next)
}

// Len returns the number of behaviors in the chain.
func (c *Chain) Len() int {
	return len(c.snapshot())
}

func (c *Chain) snapshot() []Behavior {
	if p := c.behaviors.Load(); p != nil {
		return *p
	}
	return nil
}

// Build composes the chain around terminal and returns the outermost stage.
// With no behaviors it returns terminal itself. Build does not modify the
// chain.
//
// Behaviors are folded right-to-left: for behaviors A, B and handler H the
// result is A(B(H)), so execution is A→B→H→B→A.
func (c *Chain) Build(terminal Next) Next {
	return compose(c.snapshot(), terminal)
}

func compose(behaviors []Behavior, terminal Next) Next {
	next := terminal
	for i := len(behaviors) - 1; i >= 0; i-- {
		next = stage(behaviors[i], guard(next))
	}
	return next
}

func stage(b Behavior, next Next) Next {
	return func(ctx context.Context, msg Message) (any, error) {
		return b.Invoke(ctx, msg, next)
	}
}

const (
	nextIdle int32 = iota
	nextRunning
	nextDone
)

// guard enforces the continuation contract: next may run again only after a
// failed attempt. A call that overlaps a running attempt, or follows a
// successful one, returns ErrNextReinvoked without reaching downstream
// stages.
func guard(next Next) Next {
	var state atomic.Int32
	return func(ctx context.Context, msg Message) (any, error) {
		if !state.CompareAndSwap(nextIdle, nextRunning) {
			return nil, ErrNextReinvoked
		}
		succeeded := false
		defer func() {
			if succeeded {
				state.Store(nextDone)
			} else {
				state.Store(nextIdle)
			}
		}()

		out, err := next(ctx, msg)
		succeeded = err == nil && !failed(out)
		return out, err
	}
}

func failed(out any) bool {
	if r, ok := out.(eraser); ok {
		return !r.Erase().Success()
	}
	return false
}
