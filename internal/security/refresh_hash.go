package security

import (
	"crypto/sha256"
	"encoding/base64"
)

// digestRefreshToken reduces a refresh JWT to a fixed-length value. Bcrypt
// rejects inputs over 72 bytes and a signed HS256 JWT is several times that,
// so the token is digested with SHA-256 first; the hasher then works on the
// 43-byte encoded digest.
func digestRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawStdEncoding.EncodeToString(sum[:])
}

// HashRefreshToken hashes a refresh token for storage: SHA-256 digest, then
// bcrypt at the hasher's cost. The raw token is never persisted.
func (h *Hasher) HashRefreshToken(token string) (string, error) {
	return h.Hash(digestRefreshToken(token))
}

// CompareRefreshToken verifies a presented refresh token against a stored
// hash produced by HashRefreshToken.
func (h *Hasher) CompareRefreshToken(hash, token string) bool {
	return h.Compare(hash, digestRefreshToken(token))
}
