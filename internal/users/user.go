// Package users is the sample domain served through the mediator: account
// registration, lookup and authentication over an in-memory repository.
package users

import "time"

// Default roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ID identifies a user.
type ID string

// User is a stored account. The password hash never leaves the package in
// JSON.
type User struct {
	ID           ID        `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name,omitempty"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	PasswordHash []byte    `json:"-"`
}
