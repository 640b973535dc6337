package users

import (
	"errors"

	"github.com/bjaus/mediator"
	"github.com/bjaus/mediator/envelope"
)

// Envelope keys for the users messages.
const (
	KeyRegister     = "users.register"
	KeyCreate       = "users.create"
	KeyGet          = "users.get"
	KeyList         = "users.list"
	KeyAuthenticate = "users.authenticate"
	KeyRename       = "users.rename"
)

// Register binds every users handler to reg. It is the single place the
// users module is wired.
func Register(reg *mediator.Registry, repo Repository, hasher Hasher) error {
	return newHandlers(repo, hasher).register(reg)
}

func (h *handlers) register(reg *mediator.Registry) error {
	return errors.Join(
		mediator.RegisterFunc(reg, h.registerUser),
		mediator.RegisterFunc(reg, h.createUser),
		mediator.RegisterFunc(reg, h.getUser),
		mediator.RegisterFunc(reg, h.listUsers),
		mediator.RegisterFunc(reg, h.authenticate),
		mediator.RegisterFunc(reg, h.renameUser),
	)
}

// Bind maps the users envelope keys to their messages.
func Bind(in *envelope.Inbox) error {
	return errors.Join(
		envelope.Bind[RegisterUser](in, KeyRegister),
		envelope.Bind[CreateUser](in, KeyCreate),
		envelope.Bind[GetUser](in, KeyGet),
		envelope.Bind[ListUsers](in, KeyList),
		envelope.Bind[Authenticate](in, KeyAuthenticate),
		envelope.Bind[RenameUser](in, KeyRename),
	)
}
