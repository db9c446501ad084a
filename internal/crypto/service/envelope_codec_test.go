package service

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/envvault/internal/crypto/domain"
)

// testIterations keeps the derivation fast; the production default is covered separately.
const testIterations = 1_000

func newTestEnvelopeService() *EnvelopeService {
	return NewEnvelopeService(NewPBKDF2Deriver(testIterations))
}

func TestPBKDF2Deriver(t *testing.T) {
	salt := make([]byte, cryptoDomain.SaltSize)

	t.Run("Success_DefaultIterations", func(t *testing.T) {
		assert.Equal(t, cryptoDomain.DefaultIterations, NewPBKDF2Deriver(0).Iterations())
	})

	t.Run("Success_Deterministic", func(t *testing.T) {
		deriver := NewPBKDF2Deriver(testIterations)

		key1, err := deriver.DeriveKey("correct horse", salt)
		require.NoError(t, err)
		key2, err := deriver.DeriveKey("correct horse", salt)
		require.NoError(t, err)

		assert.Len(t, key1, cryptoDomain.KeySize)
		assert.Equal(t, key1, key2)
	})

	t.Run("Success_SaltChangesKey", func(t *testing.T) {
		deriver := NewPBKDF2Deriver(testIterations)
		other := make([]byte, cryptoDomain.SaltSize)
		other[0] = 1

		key1, err := deriver.DeriveKey("pw", salt)
		require.NoError(t, err)
		key2, err := deriver.DeriveKey("pw", other)
		require.NoError(t, err)
		assert.NotEqual(t, key1, key2)
	})

	t.Run("Error_EmptyPassphrase", func(t *testing.T) {
		_, err := NewPBKDF2Deriver(testIterations).DeriveKey("", salt)
		assert.ErrorIs(t, err, cryptoDomain.ErrEmptyPassphrase)
	})

	t.Run("Error_ShortSalt", func(t *testing.T) {
		_, err := NewPBKDF2Deriver(testIterations).DeriveKey("pw", []byte{1})
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidEnvelope)
	})
}

func TestEnvelopeService_Encrypt(t *testing.T) {
	svc := newTestEnvelopeService()
	plaintext := []byte("DATABASE_URL=postgres://localhost/app\nAPI_KEY=abc123\n")

	t.Run("Success_Shape", func(t *testing.T) {
		env, err := svc.Encrypt(plaintext, "s3cret-pass")
		require.NoError(t, err)

		assert.Len(t, env.Salt, cryptoDomain.SaltSize)
		assert.Len(t, env.IV, cryptoDomain.IVSize)
		assert.Len(t, env.Ciphertext, len(plaintext)+16)
		sum := sha256.Sum256(plaintext)
		assert.Equal(t, sum[:], env.Checksum)
	})

	t.Run("Success_FreshSaltAndIVPerCall", func(t *testing.T) {
		env1, err := svc.Encrypt(plaintext, "s3cret-pass")
		require.NoError(t, err)
		env2, err := svc.Encrypt(plaintext, "s3cret-pass")
		require.NoError(t, err)

		assert.NotEqual(t, env1.Salt, env2.Salt)
		assert.NotEqual(t, env1.IV, env2.IV)
		assert.NotEqual(t, env1.Ciphertext, env2.Ciphertext)
		assert.Equal(t, env1.Checksum, env2.Checksum)
	})

	t.Run("Success_EmptyPlaintext", func(t *testing.T) {
		env, err := svc.Encrypt([]byte{}, "s3cret-pass")
		require.NoError(t, err)

		decrypted, err := svc.Decrypt(env, "s3cret-pass")
		require.NoError(t, err)
		assert.Empty(t, decrypted)
	})

	t.Run("Error_EmptyPassphrase", func(t *testing.T) {
		_, err := svc.Encrypt(plaintext, "")
		assert.ErrorIs(t, err, cryptoDomain.ErrEmptyPassphrase)
	})
}

func TestEnvelopeService_Decrypt(t *testing.T) {
	svc := newTestEnvelopeService()
	plaintext := []byte("API_KEY=abc123")

	env, err := svc.Encrypt(plaintext, "s3cret-pass")
	require.NoError(t, err)

	t.Run("Success_RoundTrip", func(t *testing.T) {
		decrypted, err := svc.Decrypt(env, "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	})

	t.Run("Error_WrongPassphrase", func(t *testing.T) {
		_, err := svc.Decrypt(env, "wrong-pass")
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("Error_EmptyPassphrase", func(t *testing.T) {
		_, err := svc.Decrypt(env, "")
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("Error_TamperedCiphertext", func(t *testing.T) {
		tampered := *env
		tampered.Ciphertext = append([]byte(nil), env.Ciphertext...)
		tampered.Ciphertext[0] ^= 0xff

		_, err := svc.Decrypt(&tampered, "s3cret-pass")
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("Error_TamperedIV", func(t *testing.T) {
		tampered := *env
		tampered.IV = append([]byte(nil), env.IV...)
		tampered.IV[0] ^= 0xff

		_, err := svc.Decrypt(&tampered, "s3cret-pass")
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("Error_MalformedEnvelope", func(t *testing.T) {
		_, err := svc.Decrypt(&cryptoDomain.Envelope{Ciphertext: []byte{1}}, "s3cret-pass")
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("Error_IterationMismatch", func(t *testing.T) {
		other := NewEnvelopeService(NewPBKDF2Deriver(testIterations + 1))

		_, err := other.Decrypt(env, "s3cret-pass")
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})
}

func TestEnvelopeService_DefaultWorkFactor(t *testing.T) {
	if testing.Short() {
		t.Skip("slow key derivation")
	}

	svc := NewEnvelopeService(NewPBKDF2Deriver(0))
	env, err := svc.Encrypt([]byte("K=V"), "s3cret-pass")
	require.NoError(t, err)

	decrypted, err := svc.Decrypt(env, "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, []byte("K=V"), decrypted)
}
