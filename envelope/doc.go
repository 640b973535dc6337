// Package envelope is the JSON front door to a mediator.
//
// Raw bytes arriving from a queue, a webhook or the CLI carry a message in
// some envelope format. An Inbox recognizes the format, extracts a routing
// key, decodes the payload into the Go type bound to that key and
// dispatches it. Handlers stay unaware of the envelope.
//
// # Quick Start
//
//	in := envelope.New(m)
//	in.AddSource(envelope.TypedSource(), envelope.CloudEventSource())
//
//	envelope.MustBind[users.CreateUser](in, "users.create")
//
//	res, err := in.Process(ctx, []byte(`{"type":"users.create","payload":{"name":"Ann"}}`))
//
// # Discriminator Pattern
//
// Sources are matched in two phases:
//
//  1. Discriminator: cheap field presence/value checks on a View
//  2. Parse: full envelope parsing only after the discriminator matches
//
// The last matching source is tried first on the next envelope, so a
// stream of same-format envelopes pays for one discriminator per message.
//
//	envelope.And(
//	    envelope.HasFields("specversion", "type"),
//	    envelope.FieldPrefix("type", "com.example."),
//	)
//
// # Errors
//
// Envelopes rejected before dispatch return an *Error naming the stage
// (match, parse, bind, decode). *Error implements mediator.Coder, so
// mediator.CodeOf maps it like any handler failure. Once a message is
// dispatched, Process returns exactly what Mediator.Dispatch returns.
package envelope
