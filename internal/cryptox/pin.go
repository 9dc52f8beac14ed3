// Package cryptox implements PIN hashing for the local profile gate.
// The PIN is never stored; only an argon2id digest plus the random salt used
// to derive it.
package cryptox

import (
	"crypto/rand"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

const (
	saltSize = 16

	// argon2id parameters; modest because the PIN gate is a convenience
	// lock for a single local user, not a remote authentication boundary.
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// NewSalt returns a fresh random salt for PIN hashing.
func NewSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// HashPIN derives an argon2id digest of the PIN with the given salt.
func HashPIN(pin []byte, salt []byte) []byte {
	return argon2.IDKey(pin, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// VerifyPIN reports whether candidate hashes to the stored digest.
// The comparison is constant time.
func VerifyPIN(candidate []byte, salt []byte, digest []byte) bool {
	h := HashPIN(candidate, salt)
	return subtle.ConstantTimeCompare(h, digest) == 1
}

// Wipe overwrites b with zeros. Use after the PIN bytes are no longer needed.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
