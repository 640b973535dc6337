package users

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessages_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     interface{ Validate() error }
		wantErr string
	}{
		{name: "register ok", msg: RegisterUser{Username: "ann.lee", Password: "password1"}},
		{name: "register short username", msg: RegisterUser{Username: "an", Password: "password1"}, wantErr: "username"},
		{name: "register uppercase username", msg: RegisterUser{Username: "Ann", Password: "password1"}, wantErr: "username"},
		{name: "register short password", msg: RegisterUser{Username: "ann", Password: "short"}, wantErr: "password"},
		{name: "register long password", msg: RegisterUser{Username: "ann", Password: strings.Repeat("x", 73)}, wantErr: "password"},
		{name: "create ok", msg: CreateUser{Username: "ann", Password: "password1", Roles: []string{RoleAdmin}}},
		{name: "create unknown role", msg: CreateUser{Username: "ann", Password: "password1", Roles: []string{"root"}}, wantErr: "roles"},
		{name: "get requires id", msg: GetUser{}, wantErr: "id"},
		{name: "list defaults", msg: ListUsers{}},
		{name: "list limit too large", msg: ListUsers{Limit: MaxListLimit + 1}, wantErr: "limit"},
		{name: "list negative offset", msg: ListUsers{Offset: -1}, wantErr: "offset"},
		{name: "authenticate requires password", msg: Authenticate{Username: "ann"}, wantErr: "password"},
		{name: "rename requires name", msg: RenameUser{ID: "1"}, wantErr: "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestMessages_Metadata(t *testing.T) {
	assert.Equal(t, "user:42", GetUser{ID: "42"}.CacheKey())
	assert.Equal(t, []string{"user:42"}, RenameUser{ID: "42"}.InvalidatesCache())
	assert.Equal(t, []string{RoleAdmin}, CreateUser{}.RequiredRoles())
	assert.Nil(t, ListUsers{}.RequiredRoles())
	assert.Equal(t, defaultLimit, ListUsers{}.limit())
	assert.Equal(t, 7, ListUsers{Limit: 7}.limit())
}
