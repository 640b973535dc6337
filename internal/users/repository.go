package users

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var (
	// ErrNotFound is returned by a Repository when no user matches.
	ErrNotFound = errors.New("user not found")

	// ErrUsernameTaken is returned by Insert for a duplicate username.
	ErrUsernameTaken = errors.New("username taken")
)

// Repository stores users. Implementations must be safe for concurrent
// use.
type Repository interface {
	Insert(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	Get(ctx context.Context, id ID) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	List(ctx context.Context, limit, offset int) ([]User, error)
}

// MemoryRepository is a Repository held in process memory. Usernames are
// unique case-insensitively.
type MemoryRepository struct {
	mu         sync.RWMutex
	byID       map[ID]User
	byUsername map[string]ID
	order      []ID
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:       make(map[ID]User),
		byUsername: make(map[string]ID),
	}
}

func (r *MemoryRepository) Insert(_ context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(u.Username)
	if _, taken := r.byUsername[key]; taken {
		return ErrUsernameTaken
	}
	r.byID[u.ID] = u
	r.byUsername[key] = u.ID
	r.order = append(r.order, u.ID)
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.byID[u.ID]
	if !ok {
		return ErrNotFound
	}
	if !strings.EqualFold(old.Username, u.Username) {
		return errors.New("username cannot change")
	}
	r.byID[u.ID] = u
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id ID) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryRepository) GetByUsername(_ context.Context, username string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[strings.ToLower(username)]
	if !ok {
		return User{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryRepository) List(_ context.Context, limit, offset int) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if offset >= len(r.order) {
		return []User{}, nil
	}
	end := min(offset+limit, len(r.order))
	out := make([]User, 0, end-offset)
	for _, id := range r.order[offset:end] {
		out = append(out, r.byID[id])
	}
	return out, nil
}
