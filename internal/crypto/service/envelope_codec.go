package service

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	cryptoDomain "github.com/allisson/envvault/internal/crypto/domain"
)

// EnvelopeService implements EnvelopeCodec.
//
// Every call derives its key from scratch. Nothing is cached between calls, so the cost of
// one Encrypt or Decrypt is dominated by the PBKDF2 work factor.
type EnvelopeService struct {
	deriver KeyDeriver
}

// NewEnvelopeService creates an EnvelopeService with the given key deriver.
func NewEnvelopeService(deriver KeyDeriver) *EnvelopeService {
	return &EnvelopeService{deriver: deriver}
}

// Encrypt seals plaintext under a key derived from passphrase and a fresh random salt.
func (s *EnvelopeService) Encrypt(plaintext []byte, passphrase string) (*cryptoDomain.Envelope, error) {
	salt := make([]byte, cryptoDomain.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := s.deriver.DeriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(key)

	cipher, err := NewAESGCM(key)
	if err != nil {
		return nil, err
	}

	ciphertext, iv, err := cipher.Encrypt(plaintext, nil)
	if err != nil {
		return nil, err
	}

	checksum := sha256.Sum256(plaintext)
	return &cryptoDomain.Envelope{
		Ciphertext: ciphertext,
		IV:         iv,
		Salt:       salt,
		Checksum:   checksum[:],
	}, nil
}

// Decrypt opens envelope with passphrase. A wrong passphrase, a malformed envelope and a
// tampered ciphertext all return ErrDecryptionFailed.
func (s *EnvelopeService) Decrypt(envelope *cryptoDomain.Envelope, passphrase string) ([]byte, error) {
	if err := envelope.Validate(); err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	key, err := s.deriver.DeriveKey(passphrase, envelope.Salt)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	defer cryptoDomain.Zero(key)

	cipher, err := NewAESGCM(key)
	if err != nil {
		return nil, err
	}

	return cipher.Decrypt(envelope.Ciphertext, envelope.IV, nil)
}
