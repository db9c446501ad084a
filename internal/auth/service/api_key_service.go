package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	"github.com/allisson/go-pwdhash"
	"github.com/google/uuid"

	authDomain "github.com/allisson/envvault/internal/auth/domain"
	apperrors "github.com/allisson/envvault/internal/errors"
)

// apiKeyService implements APIKeyService using Argon2id for secret hashing.
type apiKeyService struct {
	hasher *pwdhash.PasswordHasher
}

// Generate creates a 32-byte random secret, formats the bearer token and hashes the secret.
func (s *apiKeyService) Generate(id uuid.UUID) (plainToken string, secretHash string, err error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random api key")
	}

	// RawURLEncoding keeps "." out of the secret so the token splits unambiguously.
	secret := base64.RawURLEncoding.EncodeToString(randomBytes)

	secretHash, err = s.hasher.Hash([]byte(secret))
	if err != nil {
		return "", "", apperrors.Wrap(err, "failed to hash api key")
	}

	return authDomain.FormatAPIKey(id, secret), secretHash, nil
}

// Verify performs a constant-time comparison between a plain secret and its hash.
func (s *apiKeyService) Verify(secret, secretHash string) bool {
	ok, err := s.hasher.Verify([]byte(secret), secretHash)
	if err != nil {
		return false
	}
	return ok
}

// Fingerprint hashes a plain token using SHA-256.
func (s *apiKeyService) Fingerprint(plainToken string) string {
	hash := sha256.Sum256([]byte(plainToken))
	return hex.EncodeToString(hash[:])
}

// NewAPIKeyService creates a new APIKeyService using Argon2id hashing.
// Uses the Moderate policy for a balance between security and performance.
func NewAPIKeyService() APIKeyService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &apiKeyService{
		hasher: hasher,
	}
}
