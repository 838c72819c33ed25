// Package chatserver implements a multi-user text chat server: an
// in-memory user registry, named channels, and a line-oriented TCP
// protocol relaying messages between them.
package chatserver

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLen        = 16
	hashLen        = 32
	pbkdf2IterCost = 1000 // matches the source server's latency characteristics
)

// makeCredential derives a fresh random salt and the PBKDF2-HMAC-SHA256
// digest of password under that salt. The iteration count is intentionally
// low (1000); raising it is a follow-up, not a bug.
func makeCredential(password string) (salt, hash []byte) {
	salt = make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		// crypto/rand failing means the OS entropy source is broken; there
		// is no sane fallback for a credential primitive.
		panic("chatserver: failed to read random salt: " + err.Error())
	}
	hash = deriveHash(password, salt)
	return salt, hash
}

// verifyCredential reports whether password derives hash under salt, using
// a constant-time comparison to avoid leaking timing information about the
// stored digest.
func verifyCredential(password string, salt, hash []byte) bool {
	got := deriveHash(password, salt)
	return subtle.ConstantTimeCompare(got, hash) == 1
}

func deriveHash(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, pbkdf2IterCost, hashLen, sha256.New)
}
