// Package service provides credential primitives for API key authentication.
package service

import (
	"github.com/google/uuid"
)

// APIKeyService generates, hashes and verifies API keys.
type APIKeyService interface {
	// Generate creates a new bearer token for id and returns it with the Argon2id hash of
	// its secret part. The plain token is shown once and never stored.
	Generate(id uuid.UUID) (plainToken string, secretHash string, err error)

	// Verify compares the secret part of a token with a stored hash in constant time.
	Verify(secret, secretHash string) bool

	// Fingerprint returns the SHA-256 hex digest of a whole token. It keys short-lived
	// authentication results without keeping the token itself.
	Fingerprint(plainToken string) string
}
