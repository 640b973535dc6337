package envelope

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/bjaus/mediator"
)

type contextKey string

// hookedSource is a typed source that implements the optional hook
// interfaces.
type hookedSource struct {
	Source

	parsedKeys   []string
	decodeErrors []error
}

func (s *hookedSource) OnParse(ctx context.Context, key string) context.Context {
	s.parsedKeys = append(s.parsedKeys, key)
	return context.WithValue(ctx, contextKey("source-hook"), "called")
}

func (s *hookedSource) OnDecodeError(ctx context.Context, key string, err error) {
	s.decodeErrors = append(s.decodeErrors, err)
}

var (
	_ Source            = (*hookedSource)(nil)
	_ OnParseHook       = (*hookedSource)(nil)
	_ OnDecodeErrorHook = (*hookedSource)(nil)
)

type HooksSuite struct {
	suite.Suite
	reg    *mediator.Registry
	source *hookedSource
	ctxs   []context.Context
}

func TestHooksSuite(t *testing.T) {
	suite.Run(t, new(HooksSuite))
}

func (s *HooksSuite) SetupTest() {
	s.reg = mediator.NewRegistry()
	s.source = &hookedSource{Source: TypedSource()}
	s.ctxs = nil
	s.Require().NoError(mediator.RegisterFunc(s.reg, func(ctx context.Context, c createOrder) (orderID, error) {
		s.ctxs = append(s.ctxs, ctx)
		return orderID(c.Item), nil
	}))
}

func (s *HooksSuite) inbox(opts ...Option) *Inbox {
	in := New(mediator.New(s.reg), opts...)
	in.AddSource(s.source)
	MustBind[createOrder](in, "orders.create")
	return in
}

func (s *HooksSuite) TestOnParseChainsContextIntoDispatch() {
	var order []string
	in := s.inbox(
		WithOnParse(func(ctx context.Context, source, key string) context.Context {
			order = append(order, "first:"+source+":"+key)
			return context.WithValue(ctx, contextKey("first"), 1)
		}),
		WithOnParse(func(ctx context.Context, source, key string) context.Context {
			s.Equal(1, ctx.Value(contextKey("first")))
			order = append(order, "second")
			return ctx
		}),
	)

	_, err := in.Process(context.Background(), []byte(`{"type":"orders.create","payload":{"item":"a","qty":1}}`))

	s.Require().NoError(err)
	s.Equal([]string{"first:typed:orders.create", "second"}, order)
	s.Equal([]string{"orders.create"}, s.source.parsedKeys)
	s.Require().Len(s.ctxs, 1)
	s.Equal(1, s.ctxs[0].Value(contextKey("first")))
	s.Equal("called", s.ctxs[0].Value(contextKey("source-hook")))
}

func (s *HooksSuite) TestOnNoSource() {
	var raws []string
	in := s.inbox(WithOnNoSource(func(ctx context.Context, raw []byte) {
		raws = append(raws, string(raw))
	}))

	_, err := in.Process(context.Background(), []byte(`{"unknown":true}`))

	s.ErrorIs(err, ErrNoSource)
	s.Equal([]string{`{"unknown":true}`}, raws)
}

func (s *HooksSuite) TestOnParseError() {
	var sources []string
	in := s.inbox(WithOnParseError(func(ctx context.Context, source string, err error) {
		s.ErrorIs(err, errMissingType)
		sources = append(sources, source)
	}))

	_, err := in.Process(context.Background(), []byte(`{"type":"","payload":{}}`))

	s.Error(err)
	s.Equal([]string{"typed"}, sources)
	s.Empty(s.source.parsedKeys)
}

func (s *HooksSuite) TestOnNoBinding() {
	var keys []string
	in := s.inbox(WithOnNoBinding(func(ctx context.Context, source, key string) {
		keys = append(keys, key)
	}))

	_, err := in.Process(context.Background(), []byte(`{"type":"orders.refund","payload":{}}`))

	s.ErrorIs(err, ErrNoBinding)
	s.Equal([]string{"orders.refund"}, keys)
}

func (s *HooksSuite) TestOnDecodeErrorGlobalThenSource() {
	var global []error
	in := s.inbox(WithOnDecodeError(func(ctx context.Context, source, key string, err error) {
		s.Empty(s.source.decodeErrors, "global hook runs before the source hook")
		global = append(global, err)
	}))

	_, err := in.Process(context.Background(), []byte(`{"type":"orders.create","payload":{"item":"a","qty":0}}`))

	s.Error(err)
	s.Require().Len(global, 1)
	s.Equal(mediator.CodeValidation, mediator.CodeOf(global[0]))
	s.Len(s.source.decodeErrors, 1)
	s.Empty(s.ctxs)
}

func (s *HooksSuite) TestNoHooksOnSuccess() {
	called := false
	mark := func() { called = true }
	in := s.inbox(
		WithOnNoSource(func(context.Context, []byte) { mark() }),
		WithOnParseError(func(context.Context, string, error) { mark() }),
		WithOnNoBinding(func(context.Context, string, string) { mark() }),
		WithOnDecodeError(func(context.Context, string, string, error) { mark() }),
	)

	res, err := in.Process(context.Background(), []byte(`{"type":"orders.create","payload":{"item":"a","qty":1}}`))

	s.Require().NoError(err)
	s.True(res.Success())
	s.False(called)
}
