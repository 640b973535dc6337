package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bjaus/mediator"
)

// handlers implements every users message on top of a Repository.
type handlers struct {
	repo   Repository
	hasher Hasher
	now    func() time.Time
	newID  func() ID
}

func newHandlers(repo Repository, hasher Hasher) *handlers {
	return &handlers{
		repo:   repo,
		hasher: hasher,
		now:    time.Now,
		newID:  func() ID { return ID(uuid.NewString()) },
	}
}

func (h *handlers) registerUser(ctx context.Context, c RegisterUser) (User, error) {
	return h.insert(ctx, c.Username, "", c.Password, []string{RoleUser})
}

func (h *handlers) createUser(ctx context.Context, c CreateUser) (ID, error) {
	roles := c.Roles
	if len(roles) == 0 {
		roles = []string{RoleUser}
	}
	u, err := h.insert(ctx, c.Username, c.Name, c.Password, roles)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

func (h *handlers) insert(ctx context.Context, username, name, password string, roles []string) (User, error) {
	hash, err := h.hasher.Hash(password)
	if err != nil {
		return User{}, err
	}

	normalized := make([]string, len(roles))
	for i, r := range roles {
		normalized[i] = strings.ToLower(r)
	}

	u := User{
		ID:           h.newID(),
		Username:     username,
		Name:         name,
		Roles:        normalized,
		CreatedAt:    h.now().UTC(),
		PasswordHash: hash,
	}
	if err := h.repo.Insert(ctx, u); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return User{}, mediator.Conflict("username %q is taken", username)
		}
		return User{}, err
	}
	return u, nil
}

func (h *handlers) getUser(ctx context.Context, q GetUser) (User, error) {
	u, err := h.repo.Get(ctx, q.ID)
	if errors.Is(err, ErrNotFound) {
		return User{}, mediator.NotFound("user %s", q.ID)
	}
	return u, err
}

func (h *handlers) listUsers(ctx context.Context, q ListUsers) ([]User, error) {
	return h.repo.List(ctx, q.limit(), q.Offset)
}

// authenticate fails the same way for an unknown user and a wrong
// password.
func (h *handlers) authenticate(ctx context.Context, c Authenticate) (mediator.Result[User], error) {
	u, err := h.repo.GetByUsername(ctx, c.Username)
	if errors.Is(err, ErrNotFound) {
		return invalidCredentials(), nil
	}
	if err != nil {
		return mediator.Result[User]{}, err
	}
	if err := h.hasher.Verify(u.PasswordHash, c.Password); err != nil {
		return invalidCredentials(), nil
	}
	return mediator.Ok(u), nil
}

func (h *handlers) renameUser(ctx context.Context, c RenameUser) (User, error) {
	u, err := h.getUser(ctx, GetUser{ID: c.ID})
	if err != nil {
		return User{}, err
	}
	u.Name = c.Name
	if err := h.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func invalidCredentials() mediator.Result[User] {
	return mediator.FailWith[User](mediator.CodeUnauthorized, mediator.Unauthorized("invalid credentials"))
}
