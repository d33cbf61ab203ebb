package models

import (
	"time"

	"github.com/google/uuid"
)

// Encryption scheme tags recorded in CryptoParams. The set is closed: every
// reader must handle all of them exhaustively. Legacy XOR records are
// rejected at read time rather than decrypted.
const (
	SchemeAESGCM = "AES-256-GCM"
	SchemeXOR    = "XOR"
)

// Default KDF parameters for newly created shares. Old records carry their
// own iteration count in CryptoParams and stay readable when this rises.
const (
	KDFName              = "PBKDF2"
	DefaultKDFIterations = 100000
)

// TTL bounds for a share, in minutes.
const (
	MinExpiryMinutes = 10
	MaxExpiryMinutes = 2880
)

// CryptoParams holds the public, non-secret parameters needed to re-derive
// the content key given the correct password. Stored as JSONB next to the
// ciphertext; none of these values are secrets.
type CryptoParams struct {
	Scheme     string `json:"algorithm"`
	KDF        string `json:"kdf"`
	Iterations int    `json:"iterations"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"iv"`
	Compressed bool   `json:"compressed"`
}

// Share represents one password-gated share record.
type Share struct {
	ID         uuid.UUID  `json:"id"`
	UrnID      uuid.UUID  `json:"-"`
	ShareToken string     `json:"share_token"`
	CustomSlug *string    `json:"custom_slug"`
	Title      string     `json:"title"`

	// Exactly one of EncryptedContent and FilePath is set. URLs are stored
	// inline as base64 ciphertext; files live in the blob store under
	// FilePath with the ciphertext bytes as the object body.
	EncryptedContent *string `json:"-"`
	FilePath         *string `json:"-"`
	ContentType      *string `json:"content_type"`
	OriginalName     string  `json:"original_name"`

	// Argon2id verifier for gating access attempts. This is independent of
	// the content encryption key and never sufficient to decrypt.
	PasswordHash string `json:"-"`

	CryptoParams CryptoParams `json:"-"`

	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      time.Time  `json:"expires_at"`
	AccessCount    int64      `json:"access_count"`
	MaxAccessCount *int64     `json:"max_access_count"`
	DeletedAt      *time.Time `json:"-"`
}

// IsInline reports whether the ciphertext is stored inline on the record.
func (s *Share) IsInline() bool {
	return s.EncryptedContent != nil
}

// Expired reports whether the share is past its expiry at the given instant.
func (s *Share) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// QuotaExhausted reports whether the access quota has been used up.
func (s *Share) QuotaExhausted() bool {
	return s.MaxAccessCount != nil && s.AccessCount >= *s.MaxAccessCount
}
