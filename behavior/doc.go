// Package behavior provides stock cross-cutting behaviors for the mediator.
//
// Every behavior here follows the same contract: it either calls next once
// and returns what next returned, or short-circuits with its own Result.
// None of them recover panics; that happens once at the dispatch boundary.
//
// A typical chain, outermost first:
//
//	m.Use(
//	    behavior.Logging(logger),
//	    metrics,
//	    behavior.Timeout(5*time.Second),
//	    behavior.Authorization(),
//	    behavior.Validation(),
//	    behavior.For[users.GetUser](cache),
//	)
//
// Order matters. Validation before a cache means invalid queries never hit
// the store; Logging outermost means it sees the final outcome of everything
// inside it.
package behavior
