// Package identity provides the deterministic one-way mapping from raw
// platform user identifiers (Messenger PSIDs, session ids) to the stable
// hash used as the storage and lookup key everywhere else in the system.
//
// Raw identifiers must never leave this package's callers: the router
// computes the hash exactly once per request and every downstream component
// receives only the hash.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
)

// HashLength is the length of the hex digest produced by Hash.
const HashLength = 64

var hexDigestRe = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Hasher computes salted SHA-256 digests of user identifiers.
// The salt is process-wide, loaded once at startup; a missing salt is a
// fatal configuration error, not a per-request failure.
type Hasher struct {
	salt []byte
}

// NewHasher creates a Hasher. Returns an error if the salt is empty,
// so the process fails at boot rather than hashing with a blank secret.
func NewHasher(salt string) (*Hasher, error) {
	if salt == "" {
		return nil, fmt.Errorf("identity: salt must not be empty")
	}
	return &Hasher{salt: []byte(salt)}, nil
}

// Hash returns the lowercase hex SHA-256 digest of salt||raw.
// It is a pure function: Hash(s) == Hash(s) for the process lifetime.
func (h *Hasher) Hash(raw string) string {
	d := sha256.New()
	d.Write(h.salt)
	d.Write([]byte(raw))
	return hex.EncodeToString(d.Sum(nil))
}

// LooksHashed reports whether s is already a 64-char lowercase hex digest.
// Callers use it to guard against feeding a hash back through Hash, which
// would silently split one user's history into two keys.
func LooksHashed(s string) bool {
	return hexDigestRe.MatchString(s)
}
