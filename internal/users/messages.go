package users

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

func usernameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.Length(3, 32),
		validation.Match(usernamePattern).Error("must be lowercase letters, digits, dots, dashes or underscores"),
	}
}

func passwordRules() []validation.Rule {
	return []validation.Rule{validation.Required, validation.Length(8, 72)}
}

// RegisterUser is the self-service sign-up command. New accounts get the
// user role.
type RegisterUser struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c RegisterUser) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Username, usernameRules()...),
		validation.Field(&c.Password, passwordRules()...),
	)
}

// CreateUser is the administrative command for creating an account with
// explicit roles. It returns the new user's ID.
type CreateUser struct {
	Username string   `json:"username"`
	Name     string   `json:"name"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

func (c CreateUser) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Username, usernameRules()...),
		validation.Field(&c.Name, validation.Length(0, 100)),
		validation.Field(&c.Password, passwordRules()...),
		validation.Field(&c.Roles, validation.Each(validation.In(RoleUser, RoleAdmin))),
	)
}

func (CreateUser) RequiredRoles() []string { return []string{RoleAdmin} }

// GetUser looks a user up by ID.
type GetUser struct {
	ID ID `json:"id"`
}

func (q GetUser) Validate() error {
	return validation.ValidateStruct(&q, validation.Field(&q.ID, validation.Required))
}

func (GetUser) RequiredRoles() []string { return nil }

func (q GetUser) CacheKey() string { return cacheKey(q.ID) }

// ListUsers pages through users in creation order. Any authenticated
// caller may list.
type ListUsers struct {
	Limit  int `json:"limit" form:"limit"`
	Offset int `json:"offset" form:"offset"`
}

// MaxListLimit caps ListUsers.Limit.
const MaxListLimit = 500

func (q ListUsers) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Limit, validation.Min(0), validation.Max(MaxListLimit)),
		validation.Field(&q.Offset, validation.Min(0)),
	)
}

func (ListUsers) RequiredRoles() []string { return nil }

// Authenticate checks a username and password and returns the user.
type Authenticate struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c Authenticate) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Username, validation.Required),
		validation.Field(&c.Password, validation.Required),
	)
}

// RenameUser changes a user's display name. It returns the updated user.
type RenameUser struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

func (c RenameUser) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ID, validation.Required),
		validation.Field(&c.Name, validation.Required, validation.Length(1, 100)),
	)
}

func (RenameUser) RequiredRoles() []string { return []string{RoleAdmin} }

func (c RenameUser) InvalidatesCache() []string { return []string{cacheKey(c.ID)} }

func cacheKey(id ID) string { return "user:" + string(id) }

// defaultLimit applies when ListUsers.Limit is zero.
const defaultLimit = 50

func (q ListUsers) limit() int {
	if q.Limit == 0 {
		return defaultLimit
	}
	return q.Limit
}
