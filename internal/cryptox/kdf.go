// Package cryptox implements the password-bound encryption scheme for shares:
// PBKDF2 key derivation, an argon2id password verifier, and AES-256-GCM
// content encryption with an optional gzip pre-pass.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize  = 16
	NonceSize = 12
	KeySize   = 32
)

// argon2id parameters for the password verifier. The verifier gates access
// attempts before any decryption work; it is a separate secret-storage
// concern from the content key derivation.
const (
	argonTime    = 1
	argonMemKiB  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

var ErrMalformedHash = errors.New("malformed password hash")

// NewSalt returns a fresh random KDF salt. Salts are unique per share and
// never reused.
func NewSalt() ([]byte, error) {
	return randBytes(SaltSize)
}

// NewNonce returns a fresh random 96-bit AEAD nonce.
func NewNonce() ([]byte, error) {
	return randBytes(NonceSize)
}

func randBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return b, nil
}

// DeriveKey stretches a password into 32 bytes of AES key material using
// PBKDF2-SHA256. It always produces a key; a wrong password is only detected
// downstream when authenticated decryption fails.
//
// The key exists transiently for one encrypt/decrypt call and must never be
// logged or persisted.
func DeriveKey(password string, salt []byte, iterations int) []byte {
	return pbkdf2.Key([]byte(password), salt, iterations, KeySize, sha256.New)
}

// HashPassword produces an encoded argon2id verifier for the password.
func HashPassword(password string) (string, error) {
	salt, err := randBytes(SaltSize)
	if err != nil {
		return "", err
	}
	digest := argon2.IDKey([]byte(password), salt, argonTime, argonMemKiB, argonThreads, argonKeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemKiB, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// VerifyPassword checks a password against an encoded argon2id verifier using
// a constant-time comparison.
func VerifyPassword(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, ErrMalformedHash
	}

	var memKiB, timeCost uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memKiB, &timeCost, &threads); err != nil {
		return false, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrMalformedHash
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, ErrMalformedHash
	}

	got := argon2.IDKey([]byte(password), salt, timeCost, memKiB, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
