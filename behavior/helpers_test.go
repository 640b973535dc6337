package behavior

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bjaus/mediator"
)

type user struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type getUser struct {
	ID int
}

func (q getUser) CacheKey() string { return "user:" + strconv.Itoa(q.ID) }

type renameUser struct {
	ID   int
	Name string
}

func (c renameUser) InvalidatesCache() []string { return []string{"user:" + strconv.Itoa(c.ID)} }

func (c *renameUser) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type createUser struct {
	Name string
}

func (c createUser) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type deleteUser struct {
	ID int
}

func (deleteUser) RequiredRoles() []string { return []string{"admin"} }

type whoAmI struct{}

func (whoAmI) RequiredRoles() []string { return nil }

// newMediator returns a mediator with bs in its chain. Handlers are bound by
// the caller through m.Registry().
func newMediator(bs ...mediator.Behavior) *mediator.Mediator {
	m := mediator.New(mediator.NewRegistry())
	m.Use(bs...)
	return m
}

func dispatch(t *testing.T, m *mediator.Mediator, msg mediator.Message) mediator.Result[any] {
	t.Helper()
	res, err := m.Dispatch(context.Background(), msg)
	require.NoError(t, err)
	return res
}
