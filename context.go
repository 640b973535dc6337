package mediator

import (
	"context"
)

type contextKey int

const dispatchKey contextKey = iota

type dispatchInfo struct {
	id      string
	message string
}

func withDispatch(ctx context.Context, id, message string) context.Context {
	return context.WithValue(ctx, dispatchKey, dispatchInfo{id: id, message: message})
}

// DispatchID returns the ID of the dispatch ctx belongs to. Behaviors and
// handlers use it to correlate log lines; it is empty outside a dispatch.
func DispatchID(ctx context.Context) string {
	info, _ := ctx.Value(dispatchKey).(dispatchInfo)
	return info.id
}

// MessageName returns the name of the message being dispatched, or "" outside
// a dispatch.
func MessageName(ctx context.Context) string {
	info, _ := ctx.Value(dispatchKey).(dispatchInfo)
	return info.message
}
