package envelope

import (
	"context"
)

// OnParseFunc is called after a source parsed an envelope. The returned
// context is used for the rest of the envelope's processing, including the
// dispatch.
type OnParseFunc func(ctx context.Context, source, key string) context.Context

// OnNoSourceFunc is called when no source recognizes an envelope.
type OnNoSourceFunc func(ctx context.Context, raw []byte)

// OnParseErrorFunc is called when a matched source fails to parse.
type OnParseErrorFunc func(ctx context.Context, source string, err error)

// OnNoBindingFunc is called when no message type is bound to a parsed key.
type OnNoBindingFunc func(ctx context.Context, source, key string)

// OnDecodeErrorFunc is called when a payload does not decode into, or
// validate as, its bound message type.
type OnDecodeErrorFunc func(ctx context.Context, source, key string, err error)

type hooks struct {
	onParse       []OnParseFunc
	onNoSource    []OnNoSourceFunc
	onParseError  []OnParseErrorFunc
	onNoBinding   []OnNoBindingFunc
	onDecodeError []OnDecodeErrorFunc
}

// Option configures an Inbox.
type Option func(*Inbox)

// WithOnParse adds a hook called after a source parsed an envelope.
// Multiple hooks are called in order, with context chaining through each.
//
// Example:
//
//	envelope.WithOnParse(func(ctx context.Context, source, key string) context.Context {
//	    return logx.WithCtx(ctx, slog.String("source", source), slog.String("key", key))
//	})
func WithOnParse(fn OnParseFunc) Option {
	return func(in *Inbox) {
		in.hooks.onParse = append(in.hooks.onParse, fn)
	}
}

// WithOnNoSource adds a hook called when no source matches.
func WithOnNoSource(fn OnNoSourceFunc) Option {
	return func(in *Inbox) {
		in.hooks.onNoSource = append(in.hooks.onNoSource, fn)
	}
}

// WithOnParseError adds a hook called when a matched source fails to parse.
func WithOnParseError(fn OnParseErrorFunc) Option {
	return func(in *Inbox) {
		in.hooks.onParseError = append(in.hooks.onParseError, fn)
	}
}

// WithOnNoBinding adds a hook called when a key has no bound message type.
//
// Example:
//
//	envelope.WithOnNoBinding(func(ctx context.Context, source, key string) {
//	    logger.WarnContext(ctx, "unbound key", "source", source, "key", key)
//	})
func WithOnNoBinding(fn OnNoBindingFunc) Option {
	return func(in *Inbox) {
		in.hooks.onNoBinding = append(in.hooks.onNoBinding, fn)
	}
}

// WithOnDecodeError adds a hook called when a payload fails to decode or
// validate.
func WithOnDecodeError(fn OnDecodeErrorFunc) Option {
	return func(in *Inbox) {
		in.hooks.onDecodeError = append(in.hooks.onDecodeError, fn)
	}
}

// OnParseHook can be implemented by a Source to enrich the context for its
// own envelopes. It runs after the global OnParse hooks.
type OnParseHook interface {
	OnParse(ctx context.Context, key string) context.Context
}

// OnDecodeErrorHook can be implemented by a Source to observe decode
// failures of its own envelopes, e.g. to dead-letter them.
type OnDecodeErrorHook interface {
	OnDecodeError(ctx context.Context, key string, err error)
}

func (in *Inbox) callOnParse(ctx context.Context, src Source, key string) context.Context {
	name := src.Name()
	for _, fn := range in.hooks.onParse {
		ctx = fn(ctx, name, key)
	}
	if h, ok := src.(OnParseHook); ok {
		ctx = h.OnParse(ctx, key)
	}
	return ctx
}

func (in *Inbox) callOnNoSource(ctx context.Context, raw []byte) {
	for _, fn := range in.hooks.onNoSource {
		fn(ctx, raw)
	}
}

func (in *Inbox) callOnParseError(ctx context.Context, src Source, err error) {
	for _, fn := range in.hooks.onParseError {
		fn(ctx, src.Name(), err)
	}
}

func (in *Inbox) callOnNoBinding(ctx context.Context, src Source, key string) {
	for _, fn := range in.hooks.onNoBinding {
		fn(ctx, src.Name(), key)
	}
}

func (in *Inbox) callOnDecodeError(ctx context.Context, src Source, key string, err error) {
	for _, fn := range in.hooks.onDecodeError {
		fn(ctx, src.Name(), key, err)
	}
	if h, ok := src.(OnDecodeErrorHook); ok {
		h.OnDecodeError(ctx, key, err)
	}
}
