// Package domain defines the sealed secret envelope and the parameters of its key derivation.
package domain

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32

	// SaltSize is the PBKDF2 salt length in bytes. A fresh salt is drawn for every encryption.
	SaltSize = 16

	// IVSize is the AES-GCM nonce length in bytes.
	IVSize = 12

	// ChecksumSize is the SHA-256 digest length in bytes.
	ChecksumSize = 32

	// DefaultIterations is the PBKDF2-HMAC-SHA256 work factor.
	DefaultIterations = 210_000
)

// Envelope is the self-contained output of one encryption.
//
// Ciphertext carries the 16-byte GCM authentication tag at its end. Checksum is the SHA-256
// digest of the plaintext, computed once when sealing. It is advisory metadata for clients that
// want to compare uploads; the authentication tag is the only tamper check.
type Envelope struct {
	Ciphertext []byte
	IV         []byte
	Salt       []byte
	Checksum   []byte
}

// Validate checks the component sizes without touching the key material.
func (e *Envelope) Validate() error {
	if e == nil || len(e.Ciphertext) == 0 {
		return ErrInvalidEnvelope
	}
	if len(e.IV) != IVSize || len(e.Salt) != SaltSize {
		return ErrInvalidEnvelope
	}
	if len(e.Checksum) != 0 && len(e.Checksum) != ChecksumSize {
		return ErrInvalidEnvelope
	}
	return nil
}
