package service

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/allisson/envvault/internal/crypto/domain"
)

// PBKDF2Deriver derives AES-256 keys with PBKDF2-HMAC-SHA256.
type PBKDF2Deriver struct {
	iterations int
}

// NewPBKDF2Deriver creates a deriver. A non-positive iteration count falls back to
// cryptoDomain.DefaultIterations.
func NewPBKDF2Deriver(iterations int) *PBKDF2Deriver {
	if iterations <= 0 {
		iterations = cryptoDomain.DefaultIterations
	}
	return &PBKDF2Deriver{iterations: iterations}
}

// Iterations returns the configured work factor.
func (d *PBKDF2Deriver) Iterations() int {
	return d.iterations
}

// DeriveKey returns a 32-byte key for passphrase and salt.
func (d *PBKDF2Deriver) DeriveKey(passphrase string, salt []byte) ([]byte, error) {
	if passphrase == "" {
		return nil, cryptoDomain.ErrEmptyPassphrase
	}
	if len(salt) != cryptoDomain.SaltSize {
		return nil, cryptoDomain.ErrInvalidEnvelope
	}
	return pbkdf2.Key([]byte(passphrase), salt, d.iterations, cryptoDomain.KeySize, sha256.New), nil
}
