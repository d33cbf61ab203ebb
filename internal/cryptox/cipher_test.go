package cryptox

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sealshare/internal/models"
)

func testKeyNonce(t *testing.T) (key, nonce []byte) {
	t.Helper()
	key = make([]byte, KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	nonce, err = NewNonce()
	require.NoError(t, err)
	return key, nonce
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key, nonce := testKeyNonce(t)

	payloads := [][]byte{
		[]byte("https://example.org/doc"),
		[]byte(""),
		bytes.Repeat([]byte("a"), 1<<16),
	}

	for _, plaintext := range payloads {
		ciphertext, err := Encrypt(key, nonce, plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, ciphertext)

		got, err := Decrypt(key, nonce, ciphertext)
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	}
}

func TestDecrypt_WrongKeyFails(t *testing.T) {
	key, nonce := testKeyNonce(t)

	ciphertext, err := Encrypt(key, nonce, []byte("sensitive"))
	require.NoError(t, err)

	wrongKey := make([]byte, KeySize)
	_, err = rand.Read(wrongKey)
	require.NoError(t, err)

	_, err = Decrypt(wrongKey, nonce, ciphertext)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestDecrypt_TamperedCiphertextFails(t *testing.T) {
	key, nonce := testKeyNonce(t)

	ciphertext, err := Encrypt(key, nonce, []byte("sensitive"))
	require.NoError(t, err)

	ciphertext[0] ^= 0xff
	_, err = Decrypt(key, nonce, ciphertext)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestDerivedKeyRoundTrip_WrongPasswords(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	nonce, err := NewNonce()
	require.NoError(t, err)

	const password = "correct-horse-1"
	key := DeriveKey(password, salt, models.DefaultKDFIterations)

	plaintext := []byte("https://example.org/doc")
	ciphertext, err := Encrypt(key, nonce, plaintext)
	require.NoError(t, err)

	got, err := Decrypt(DeriveKey(password, salt, models.DefaultKDFIterations), nonce, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)

	// Every wrong password must fail authentication, never yield plaintext.
	for i := 0; i < 50; i++ {
		raw := make([]byte, 12)
		_, err := rand.Read(raw)
		require.NoError(t, err)
		wrong := fmt.Sprintf("%x", raw)
		if wrong == password {
			continue
		}
		_, err = Decrypt(DeriveKey(wrong, salt, models.DefaultKDFIterations), nonce, ciphertext)
		assert.ErrorIs(t, err, ErrAuthentication)
	}
}

func TestCompress_RoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("compressible content "), 200)

	compressed, ok := Compress(data)
	require.True(t, ok)
	assert.Less(t, len(compressed), len(data))

	got, err := Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestCompress_IncompressibleKeptRaw(t *testing.T) {
	data := make([]byte, 64)
	_, err := rand.Read(data)
	require.NoError(t, err)

	out, ok := Compress(data)
	assert.False(t, ok)
	assert.Equal(t, data, out)
}

func TestDecompress_GarbageIsCorrupt(t *testing.T) {
	_, err := Decompress([]byte("not a gzip stream"))
	assert.ErrorIs(t, err, ErrCorruptPayload)
}

func TestCheckScheme(t *testing.T) {
	tests := []struct {
		scheme  string
		wantErr error
	}{
		{models.SchemeAESGCM, nil},
		{models.SchemeXOR, ErrLegacyScheme},
		{"ROT13", ErrUnknownScheme},
	}

	for _, tt := range tests {
		err := CheckScheme(tt.scheme)
		if tt.wantErr == nil {
			assert.NoError(t, err, tt.scheme)
		} else {
			assert.ErrorIs(t, err, tt.wantErr, tt.scheme)
		}
	}
}
