package users

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(password string) ([]byte, error)
	Verify(hash []byte, password string) error
}

// BcryptHasher is a Hasher using bcrypt at the given cost. Zero cost means
// bcrypt.DefaultCost.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) ([]byte, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return bcrypt.GenerateFromPassword([]byte(password), cost)
}

func (h BcryptHasher) Verify(hash []byte, password string) error {
	return bcrypt.CompareHashAndPassword(hash, []byte(password))
}
