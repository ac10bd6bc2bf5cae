// Package auth holds the stateless protocol pieces of the account
// subsystem: password hashing, verification-ticket sealing, one-time
// code generation and bearer-token signing. Nothing in this package
// touches storage; validity is always derived from the artifact itself,
// a process-wide secret and the clock.
package auth

import "golang.org/x/crypto/bcrypt"

// Hasher derives and verifies credential hashes with bcrypt. The cost
// factor is fixed at construction so verification stays deliberately
// slow as hardware improves.
type Hasher struct {
	cost int
}

// NewHasher builds a Hasher with the given bcrypt cost. Costs outside
// bcrypt's supported range fall back to the library default.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash derives a salted one-way hash of the password.
func (h *Hasher) Hash(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), h.cost)
}

// Verify reports whether password matches hash. A mismatch is false,
// not an error.
func (h *Hasher) Verify(password string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
