package envelope

import "context"

// Envelope describes the envelope a message arrived in. Handlers and
// behaviors read it with FromContext.
type Envelope struct {
	Source string
	Key    string
	ID     string
}

type envelopeKey struct{}

func withEnvelope(ctx context.Context, e Envelope) context.Context {
	return context.WithValue(ctx, envelopeKey{}, e)
}

// FromContext returns the envelope being processed, if any. Messages
// dispatched directly, not through an Inbox, have none.
func FromContext(ctx context.Context) (Envelope, bool) {
	e, ok := ctx.Value(envelopeKey{}).(Envelope)
	return e, ok
}
