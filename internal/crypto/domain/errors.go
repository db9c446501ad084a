package domain

import (
	"github.com/allisson/envvault/internal/errors"
)

// Cryptographic error definitions.
var (
	// ErrInvalidKeySize indicates a derived or supplied key is not 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidEnvelope indicates an envelope whose salt, iv or checksum has the wrong length.
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrInvalidEnvelope = errors.Wrap(errors.ErrInvalidInput, "invalid secret envelope")

	// ErrEmptyPassphrase indicates an empty passphrase was supplied.
	ErrEmptyPassphrase = errors.Wrap(errors.ErrInvalidInput, "passphrase is required")

	// ErrDecryptionFailed indicates authentication of the ciphertext failed.
	//
	// A wrong passphrase and tampered data are indistinguishable on purpose: the caller
	// learns nothing beyond the failure itself.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")
)
