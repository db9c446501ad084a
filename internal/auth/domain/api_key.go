// Package domain defines API key authentication and project ownership.
//
// API keys are bearer tokens of the form "evk_<id>.<secret>". Only an Argon2id hash of the
// secret part is stored. A project belongs to exactly one owner and only that owner may read
// or write its secrets.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// APIKeyPrefix starts every plain API key.
const APIKeyPrefix = "evk_"

// APIKey is a stored API key credential.
type APIKey struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	Name       string
	SecretHash string //nolint:gosec // argon2id hash, never the plain secret
	CreatedAt  time.Time
	RevokedAt  *time.Time
}

// IsActive reports whether the key can still authenticate.
func (k *APIKey) IsActive() bool {
	return k.RevokedAt == nil
}

// FormatAPIKey joins an id and a secret into the bearer token handed to the user.
func FormatAPIKey(id uuid.UUID, secret string) string {
	return APIKeyPrefix + id.String() + "." + secret
}

// ParseAPIKey splits a bearer token into its id and secret parts.
func ParseAPIKey(token string) (uuid.UUID, string, error) {
	rest, ok := strings.CutPrefix(token, APIKeyPrefix)
	if !ok {
		return uuid.Nil, "", ErrInvalidAPIKey
	}
	rawID, secret, ok := strings.Cut(rest, ".")
	if !ok || secret == "" {
		return uuid.Nil, "", ErrInvalidAPIKey
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return uuid.Nil, "", ErrInvalidAPIKey
	}
	return id, secret, nil
}

// CreateAPIKeyOutput is returned once when a key is created. Token is never stored.
type CreateAPIKeyOutput struct {
	ID    uuid.UUID
	Token string //nolint:gosec // shown once to the user
}
