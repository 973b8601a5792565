// Package cryptox holds the key derivation used by the offline sign-in
// cache. Passwords are never stored; only a salted argon2id verifier is.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 16
	keySize  = 32
)

// DeriveKey stretches password with argon2id.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, keySize)
}

func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// CheckPassword reports whether password with salt reproduces verifier.
func CheckPassword(password, salt, verifier []byte) bool {
	key := DeriveKey(password, salt)
	got := MakeVerifier(key)
	return subtle.ConstantTimeCompare(got, verifier) == 1
}
