package behavior

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/mediator"
)

func TestTiming(t *testing.T) {
	var (
		observed string
		took     time.Duration
	)
	m := newMediator(Timing(func(ctx context.Context, message string, d time.Duration) {
		observed, took = message, d
	}))
	require.NoError(t, mediator.RegisterFunc(m.Registry(), func(ctx context.Context, q getUser) (user, error) {
		time.Sleep(5 * time.Millisecond)
		return user{ID: q.ID}, nil
	}))

	dispatch(t, m, getUser{ID: 1})

	assert.Equal(t, "behavior.getUser", observed)
	assert.GreaterOrEqual(t, took, 5*time.Millisecond)
}
