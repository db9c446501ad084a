// Package usecase defines business logic interfaces for API key authentication and project ownership.
package usecase

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/allisson/envvault/internal/auth/domain"
)

// APIKeyRepository defines persistence operations for API keys.
// Implementations must support transaction-aware operations via context propagation.
type APIKeyRepository interface {
	// Create stores a new API key in the repository.
	Create(ctx context.Context, apiKey *authDomain.APIKey) error

	// Get retrieves an API key by ID. Returns ErrAPIKeyNotFound if not found.
	Get(ctx context.Context, apiKeyID uuid.UUID) (*authDomain.APIKey, error)
}

// ProjectRepository defines persistence operations for projects.
type ProjectRepository interface {
	// Create stores a new project in the repository.
	Create(ctx context.Context, project *authDomain.Project) error

	// Get retrieves a project by ID. Returns ErrProjectNotFound if not found.
	Get(ctx context.Context, projectID uuid.UUID) (*authDomain.Project, error)
}

// APIKeyUseCase issues API keys and resolves bearer tokens into callers.
type APIKeyUseCase interface {
	// Create generates a new API key for ownerID. The returned token is shown once; only the
	// Argon2id hash of its secret part is persisted.
	Create(ctx context.Context, ownerID uuid.UUID, name string) (*authDomain.CreateAPIKeyOutput, error)

	// Authenticate resolves a bearer token into a Caller. Malformed, unknown, revoked and
	// mismatched tokens all return ErrInvalidAPIKey.
	//
	// Successful results are cached by token fingerprint for a short period, so a revoked key
	// may keep working until its cached result expires.
	Authenticate(ctx context.Context, token string) (*authDomain.Caller, error)
}

// ProjectUseCase manages projects and answers ownership questions for the secret store.
type ProjectUseCase interface {
	// Create stores a new project owned by ownerID.
	Create(ctx context.Context, ownerID uuid.UUID, name string) (*authDomain.Project, error)

	// Get returns a project visible to userID. A project owned by someone else is reported as
	// ErrProjectNotFound.
	Get(ctx context.Context, userID, projectID uuid.UUID) (*authDomain.Project, error)

	// IsOwner reports whether userID owns projectID. A missing project is not an error.
	IsOwner(ctx context.Context, userID, projectID uuid.UUID) (bool, error)
}
