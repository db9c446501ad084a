package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/envvault/internal/auth/domain"
	authService "github.com/allisson/envvault/internal/auth/service"
	"github.com/allisson/envvault/internal/cache"
	apperrors "github.com/allisson/envvault/internal/errors"
)

const (
	// authCacheNamespace holds authenticated callers keyed by token fingerprint.
	authCacheNamespace = "auth"

	// AuthCacheTTL bounds how long a revoked key keeps authenticating.
	AuthCacheTTL = 60 * time.Second
)

// apiKeyUseCase implements APIKeyUseCase.
type apiKeyUseCase struct {
	apiKeyRepo    APIKeyRepository
	apiKeyService authService.APIKeyService
	cache         *cache.Cache
}

// Create generates and persists a new API key.
func (a *apiKeyUseCase) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	name string,
) (*authDomain.CreateAPIKeyOutput, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "api key name is required")
	}

	id := uuid.Must(uuid.NewV7())
	plainToken, secretHash, err := a.apiKeyService.Generate(id)
	if err != nil {
		return nil, err
	}

	apiKey := &authDomain.APIKey{
		ID:         id,
		OwnerID:    ownerID,
		Name:       name,
		SecretHash: secretHash,
		CreatedAt:  time.Now().UTC(),
	}
	if err := a.apiKeyRepo.Create(ctx, apiKey); err != nil {
		return nil, err
	}

	return &authDomain.CreateAPIKeyOutput{ID: id, Token: plainToken}, nil
}

// Authenticate parses the token, loads its key and verifies the secret. Verified callers are
// remembered by fingerprint so the Argon2id check runs once per AuthCacheTTL.
func (a *apiKeyUseCase) Authenticate(ctx context.Context, token string) (*authDomain.Caller, error) {
	id, secret, err := authDomain.ParseAPIKey(token)
	if err != nil {
		return nil, err
	}

	caller, err := cache.Remember(
		ctx,
		a.cache,
		a.apiKeyService.Fingerprint(token),
		AuthCacheTTL,
		authCacheNamespace,
		func(ctx context.Context) (authDomain.Caller, error) {
			apiKey, err := a.apiKeyRepo.Get(ctx, id)
			if err != nil {
				if apperrors.Is(err, authDomain.ErrAPIKeyNotFound) {
					return authDomain.Caller{}, authDomain.ErrInvalidAPIKey
				}
				return authDomain.Caller{}, err
			}

			// Same error for every rejection so callers cannot probe which keys exist.
			if !apiKey.IsActive() || !a.apiKeyService.Verify(secret, apiKey.SecretHash) {
				return authDomain.Caller{}, authDomain.ErrInvalidAPIKey
			}

			return authDomain.Caller{UserID: apiKey.OwnerID, APIKeyID: apiKey.ID}, nil
		},
	)
	if err != nil {
		return nil, err
	}
	return &caller, nil
}

// NewAPIKeyUseCase creates a new APIKeyUseCase.
func NewAPIKeyUseCase(
	apiKeyRepo APIKeyRepository,
	apiKeyService authService.APIKeyService,
	c *cache.Cache,
) APIKeyUseCase {
	return &apiKeyUseCase{
		apiKeyRepo:    apiKeyRepo,
		apiKeyService: apiKeyService,
		cache:         c,
	}
}
