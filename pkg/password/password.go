// Package password derives and verifies the salted, peppered credential
// hashes stored on user records. The pepper is a process-wide secret supplied
// by configuration; the salt is generated per user and never reused.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/scrypt"
)

const (
	saltBytes = 32

	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
)

// GenerateSalt returns a fresh hex-encoded salt from a CSPRNG.
func GenerateSalt() (string, error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Hash derives a one-way hex-encoded digest of the password. The pepper is
// appended to the per-user salt before key derivation.
func Hash(password, salt, pepper string) (string, error) {
	key, err := scrypt.Key([]byte(password), []byte(salt+pepper), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

// Verify recomputes the digest for the candidate password and compares it to
// the stored hash in constant time. A failure to verify is a boolean outcome,
// not an error: malformed or empty input simply does not match.
func Verify(candidate, storedHash, salt, pepper string) bool {
	if candidate == "" || storedHash == "" {
		return false
	}
	computed, err := Hash(candidate, salt, pepper)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}
