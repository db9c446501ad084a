package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/envvault/internal/crypto/domain"
)

func newTestKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestNewAESGCM(t *testing.T) {
	t.Run("valid 256-bit key", func(t *testing.T) {
		cipher, err := NewAESGCM(newTestKey(t))
		assert.NoError(t, err)
		assert.NotNil(t, cipher)
	})

	t.Run("invalid key size", func(t *testing.T) {
		cipher, err := NewAESGCM(make([]byte, 16))
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
		assert.Nil(t, cipher)
	})
}

func TestAESGCMCipher_EncryptDecrypt(t *testing.T) {
	cipher, err := NewAESGCM(newTestKey(t))
	require.NoError(t, err)

	t.Run("round trip with AAD", func(t *testing.T) {
		plaintext := []byte("API_KEY=abc123")
		aad := []byte("production")

		ciphertext, nonce, err := cipher.Encrypt(plaintext, aad)
		require.NoError(t, err)
		assert.Len(t, nonce, cryptoDomain.IVSize)
		assert.Len(t, ciphertext, len(plaintext)+16)

		decrypted, err := cipher.Decrypt(ciphertext, nonce, aad)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	})

	t.Run("nonces are unique", func(t *testing.T) {
		_, nonce1, err := cipher.Encrypt([]byte("x"), nil)
		require.NoError(t, err)
		_, nonce2, err := cipher.Encrypt([]byte("x"), nil)
		require.NoError(t, err)
		assert.NotEqual(t, nonce1, nonce2)
	})

	t.Run("wrong AAD fails", func(t *testing.T) {
		ciphertext, nonce, err := cipher.Encrypt([]byte("x"), []byte("a"))
		require.NoError(t, err)

		_, err = cipher.Decrypt(ciphertext, nonce, []byte("b"))
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("bad nonce size fails", func(t *testing.T) {
		ciphertext, _, err := cipher.Encrypt([]byte("x"), nil)
		require.NoError(t, err)

		_, err = cipher.Decrypt(ciphertext, []byte{1, 2, 3}, nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})
}
