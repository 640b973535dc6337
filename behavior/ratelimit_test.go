package behavior

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/bjaus/mediator"
)

func TestRateLimit(t *testing.T) {
	calls := 0
	m := newMediator(RateLimit(rate.NewLimiter(rate.Every(time.Hour), 1)))
	require.NoError(t, mediator.RegisterFunc(m.Registry(), func(ctx context.Context, q getUser) (int, error) {
		calls++
		return q.ID, nil
	}))

	first := dispatch(t, m, getUser{ID: 1})
	second := dispatch(t, m, getUser{ID: 2})

	assert.True(t, first.Success())
	assert.Equal(t, mediator.CodeRateLimited, second.MustCode())
	assert.Equal(t, 1, calls)
}

func TestThrottle(t *testing.T) {
	m := newMediator(Throttle(rate.NewLimiter(rate.Every(time.Hour), 1)))
	require.NoError(t, mediator.RegisterFunc(m.Registry(), func(ctx context.Context, q getUser) (int, error) {
		return q.ID, nil
	}))

	t.Run("within burst", func(t *testing.T) {
		res := dispatch(t, m, getUser{ID: 1})
		assert.True(t, res.Success())
	})

	t.Run("wait would exceed deadline", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		res, err := m.Dispatch(ctx, getUser{ID: 2})
		require.NoError(t, err)
		assert.Equal(t, mediator.CodeRateLimited, res.MustCode())
	})

	t.Run("canceled while waiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res, err := m.Dispatch(ctx, getUser{ID: 3})
		require.NoError(t, err)
		assert.Equal(t, mediator.CodeCanceled, res.MustCode())
	})
}
