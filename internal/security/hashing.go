package security

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords and refresh-token secrets using bcrypt.
// Callers must not log or persist plaintext secrets.
type Hasher struct {
	Cost int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewHasher returns a Hasher with the given bcrypt cost (4–31). Cost 12 is a
// reasonable default for interactive login.
func NewHasher(cost int) *Hasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

// Hash produces a bcrypt hash of secret with a random salt. The empty string
// is hashed like any other input; inputs over bcrypt's 72-byte limit are
// rejected (refresh tokens go through HashRefreshToken instead). Returns the
// hash as a string suitable for storage.
func (h *Hasher) Hash(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare verifies secret against the stored hash through bcrypt's own
// constant-time verification. Returns true only on a match; a malformed hash
// and a wrong secret are indistinguishable to the caller.
func (h *Hasher) Compare(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// DummyCompare runs a bcrypt comparison against a hash of a throwaway value
// and discards the result. The hash is generated once at the configured cost,
// so when no user record exists on login, elapsed time stays uniform with the
// real comparison path.
func (h *Hasher) DummyCompare(secret string) {
	h.dummyOnce.Do(func() {
		h.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("no-such-credential"), h.Cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(secret))
}
