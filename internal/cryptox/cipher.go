package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"sealshare/internal/models"
)

var (
	// ErrAuthentication covers both a tampered ciphertext and a wrong
	// password: the two are deliberately indistinguishable.
	ErrAuthentication = errors.New("authentication failed")

	// ErrLegacyScheme marks records encrypted with the retired XOR scheme.
	// They are rejected at read time, not decrypted.
	ErrLegacyScheme = errors.New("legacy encryption scheme no longer supported")

	ErrUnknownScheme = errors.New("unknown encryption scheme")

	ErrCorruptPayload = errors.New("decrypted payload failed decompression")
)

// CheckScheme validates a stored scheme tag. The variant set is closed;
// anything weaker than AES-256-GCM is a hard cutover, not a fallback.
func CheckScheme(scheme string) error {
	switch scheme {
	case models.SchemeAESGCM:
		return nil
	case models.SchemeXOR:
		return ErrLegacyScheme
	default:
		return fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
}

// Encrypt seals plaintext with AES-256-GCM. The nonce must be fresh for this
// key: a share is encrypted exactly once, ever.
func Encrypt(key, nonce, plaintext []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("nonce must be %d bytes, got %d", aead.NonceSize(), len(nonce))
	}
	return aead.Seal(nil, nonce, plaintext, nil), nil
}

// Decrypt opens an AES-256-GCM ciphertext. Any tag mismatch, including the
// garbage produced by a key derived from the wrong password, surfaces as
// ErrAuthentication.
func Decrypt(key, nonce, ciphertext []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("nonce must be %d bytes, got %d", aead.NonceSize(), len(nonce))
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to init cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// Compress applies a gzip pre-pass to the plaintext. Compression always runs
// before encryption, never after. Returns the original bytes and false when
// compression does not shrink the payload.
func Compress(data []byte) ([]byte, bool) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return data, false
	}
	if err := zw.Close(); err != nil {
		return data, false
	}
	if buf.Len() >= len(data) {
		return data, false
	}
	return buf.Bytes(), true
}

// Decompress reverses the gzip pre-pass. A failure here after successful
// decryption means the record is corrupted, not that the password was wrong.
func Decompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, ErrCorruptPayload
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, ErrCorruptPayload
	}
	return out, nil
}
