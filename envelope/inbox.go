package envelope

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"sync/atomic"

	"github.com/bjaus/mediator"
)

// validatable is the interface for payload validation.
// Compatible with github.com/go-ozzo/ozzo-validation/v4.
type validatable interface {
	Validate() error
}

// decoder turns a payload into the message type bound to a key.
type decoder func(payload json.RawMessage) (mediator.Message, error)

// Inbox turns raw JSON envelopes into typed messages and dispatches them
// through a Mediator.
//
// Usage:
//  1. Create an inbox with New
//  2. Add sources with AddSource
//  3. Bind routing keys to message types with Bind
//  4. Process envelopes with Process
//
// Inbox is safe for concurrent use after configuration. Do not call
// AddSource or Bind after calling Process.
type Inbox struct {
	mediator *mediator.Mediator
	sources  []Source
	bindings map[string]binding
	hooks    hooks

	// Index+1 of the last source that matched; tried first next time.
	lastMatch atomic.Int32
}

type binding struct {
	decode decoder
	typ    reflect.Type
}

// New creates an Inbox dispatching through m.
//
// Example:
//
//	in := envelope.New(m,
//	    envelope.WithOnNoBinding(func(ctx context.Context, source, key string) {
//	        logger.WarnContext(ctx, "unbound key", "key", key)
//	    }),
//	)
//	in.AddSource(envelope.TypedSource(), envelope.CloudEventSource())
//	envelope.MustBind[users.CreateUser](in, "users.create")
func New(m *mediator.Mediator, opts ...Option) *Inbox {
	in := &Inbox{
		mediator: m,
		bindings: make(map[string]binding),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// AddSource appends sources. Sources are tried in the order they were
// added, except that the source that matched last is tried first.
func (in *Inbox) AddSource(sources ...Source) {
	in.sources = append(in.sources, sources...)
}

// Bind maps key to the message type M. Payloads for key are decoded into an
// M and, when M or *M implements Validate() error, validated before
// dispatch.
//
// This is a package-level function (not a method) due to Go generics
// limitations: methods cannot have type parameters independent of the
// receiver.
//
// Example:
//
//	envelope.Bind[users.CreateUser](in, "users.create")
//	envelope.Bind[users.GetUser](in, "users.get")
func Bind[M any](in *Inbox, key string) error {
	if _, exists := in.bindings[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateBinding, key)
	}
	in.bindings[key] = binding{typ: reflect.TypeFor[M](), decode: decodeAs[M]}
	return nil
}

// MustBind is like Bind but panics on error.
func MustBind[M any](in *Inbox, key string) {
	if err := Bind[M](in, key); err != nil {
		panic(err)
	}
}

func decodeAs[M any](payload json.RawMessage) (mediator.Message, error) {
	var msg M
	if len(bytes.TrimSpace(payload)) > 0 {
		if err := json.Unmarshal(payload, &msg); err != nil {
			return nil, err
		}
	}

	if v, ok := any(msg).(validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, mediator.Invalid(err)
		}
	} else if v, ok := any(&msg).(validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, mediator.Invalid(err)
		}
	}
	return msg, nil
}

// Bindings returns every bound key and the message type it decodes into,
// sorted by key.
func (in *Inbox) Bindings() []Binding {
	out := make([]Binding, 0, len(in.bindings))
	for k, b := range in.bindings {
		out = append(out, Binding{Key: k, Type: b.typ})
	}
	slices.SortFunc(out, func(a, b Binding) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

// Binding describes one key bound with Bind.
type Binding struct {
	Key  string
	Type reflect.Type
}

// Process decodes raw into its bound message and dispatches it.
//
// The processing flow:
//  1. Use discriminators to find a matching source
//  2. Parse the envelope with the matched source
//  3. Look up the message type bound to the parsed key
//  4. Decode and validate the payload
//  5. Dispatch the message through the mediator
//
// An envelope rejected in steps 1 to 4 returns an *Error and the zero
// Result; the mediator is never called. Otherwise Process returns exactly
// what Dispatch returns.
//
// Example:
//
//	func (s *Subscriber) Receive(ctx context.Context, body []byte) error {
//	    res, err := s.inbox.Process(ctx, body)
//	    if err != nil {
//	        return err
//	    }
//	    return res.Err()
//	}
func (in *Inbox) Process(ctx context.Context, raw []byte) (mediator.Result[any], error) {
	var zero mediator.Result[any]

	src := in.match(raw)
	if src == nil {
		in.callOnNoSource(ctx, raw)
		return zero, &Error{Stage: StageMatch, Err: ErrNoSource}
	}

	parsed, err := src.Parse(raw)
	if err != nil {
		in.callOnParseError(ctx, src, err)
		return zero, &Error{Stage: StageParse, Source: src.Name(), Err: err}
	}

	ctx = withEnvelope(ctx, Envelope{Source: src.Name(), Key: parsed.Key, ID: parsed.ID})
	ctx = in.callOnParse(ctx, src, parsed.Key)

	b, found := in.bindings[parsed.Key]
	if !found {
		in.callOnNoBinding(ctx, src, parsed.Key)
		return zero, &Error{Stage: StageBind, Source: src.Name(), Key: parsed.Key, Err: ErrNoBinding}
	}

	msg, err := b.decode(parsed.Payload)
	if err != nil {
		in.callOnDecodeError(ctx, src, parsed.Key, err)
		return zero, &Error{Stage: StageDecode, Source: src.Name(), Key: parsed.Key, Err: err}
	}

	return in.mediator.Dispatch(ctx, msg)
}

// match finds a source whose discriminator matches raw, trying the last
// matching source first.
func (in *Inbox) match(raw []byte) Source {
	view, err := NewView(raw)
	if err != nil {
		return nil
	}

	if last := int(in.lastMatch.Load()) - 1; last >= 0 && last < len(in.sources) {
		if src := in.sources[last]; src.Discriminator()(view) {
			return src
		}
	}

	for i, src := range in.sources {
		if src.Discriminator()(view) {
			in.lastMatch.Store(int32(i + 1))
			return src
		}
	}
	return nil
}
