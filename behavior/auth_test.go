package behavior

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/mediator"
)

func TestAuthorization(t *testing.T) {
	m := newMediator(Authorization())
	reg := m.Registry()
	require.NoError(t, mediator.RegisterFunc(reg, func(ctx context.Context, c deleteUser) (bool, error) {
		return true, nil
	}))
	require.NoError(t, mediator.RegisterFunc(reg, func(ctx context.Context, q whoAmI) (string, error) {
		p, _ := PrincipalFrom(ctx)
		return p.ID, nil
	}))
	require.NoError(t, mediator.RegisterFunc(reg, func(ctx context.Context, q getUser) (user, error) {
		return user{ID: q.ID}, nil
	}))

	admin := Principal{ID: "u-1", Roles: []string{"ADMIN"}}
	member := Principal{ID: "u-2", Roles: []string{"user"}}

	tests := []struct {
		name      string
		principal *Principal
		msg       mediator.Message
		wantCode  string
	}{
		{name: "unsecured message needs no principal", msg: getUser{ID: 1}},
		{name: "secured message without principal", msg: deleteUser{ID: 1}, wantCode: mediator.CodeUnauthorized},
		{name: "missing role", principal: &member, msg: deleteUser{ID: 1}, wantCode: mediator.CodeForbidden},
		{name: "role matches case-insensitively", principal: &admin, msg: deleteUser{ID: 1}},
		{name: "no roles required only needs authentication", principal: &member, msg: whoAmI{}},
		{name: "no roles required still rejects anonymous", msg: whoAmI{}, wantCode: mediator.CodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.principal != nil {
				ctx = WithPrincipal(ctx, *tt.principal)
			}

			res, err := m.Dispatch(ctx, tt.msg)
			require.NoError(t, err)

			if tt.wantCode == "" {
				assert.True(t, res.Success(), res.String())
				return
			}
			assert.Equal(t, tt.wantCode, res.MustCode())
		})
	}
}

func TestPrincipal_HasAnyRole(t *testing.T) {
	p := Principal{Roles: []string{"reader", "Writer"}}

	assert.True(t, p.HasAnyRole("admin", "writer"))
	assert.False(t, p.HasAnyRole("admin"))
	assert.False(t, p.HasAnyRole())
}
