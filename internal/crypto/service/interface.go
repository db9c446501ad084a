// Package service implements passphrase-based envelope encryption.
// Keys are derived with PBKDF2-HMAC-SHA256 and data is sealed with AES-256-GCM.
package service

import (
	cryptoDomain "github.com/allisson/envvault/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// KeyDeriver stretches a passphrase into a symmetric key.
type KeyDeriver interface {
	DeriveKey(passphrase string, salt []byte) ([]byte, error)
}

// EnvelopeCodec seals and opens secret envelopes.
type EnvelopeCodec interface {
	// Encrypt draws a fresh salt and IV, derives the key and seals plaintext.
	Encrypt(plaintext []byte, passphrase string) (*cryptoDomain.Envelope, error)

	// Decrypt re-derives the key from the envelope salt and opens the ciphertext.
	// Returns cryptoDomain.ErrDecryptionFailed when authentication fails.
	Decrypt(envelope *cryptoDomain.Envelope, passphrase string) ([]byte, error)
}
