// Package usecase defines the interfaces and implementations for the versioned secret store.
// Use cases orchestrate ownership checks, envelope encryption, version assignment and the
// environment listing cache.
package usecase

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/allisson/envvault/internal/auth/domain"
	secretsDomain "github.com/allisson/envvault/internal/secrets/domain"
)

// SecretVersionRepository defines persistence operations for secret versions.
// Implementations must support transaction-aware operations via context propagation.
type SecretVersionRepository interface {
	// Create inserts a version. Returns ErrDuplicateVersion when the (project, environment,
	// version) unique index rejects it.
	Create(ctx context.Context, secretVersion *secretsDomain.SecretVersion) error

	// MaxVersion returns the highest version of an environment, or 0 when it has none.
	MaxVersion(ctx context.Context, projectID uuid.UUID, environment string) (uint, error)

	// ListEnvironments returns every environment of a project with its latest version,
	// ordered by environment name.
	ListEnvironments(ctx context.Context, projectID uuid.UUID) ([]secretsDomain.EnvironmentSummary, error)

	// ListVersions returns versions ordered by version descending. Envelopes are loaded only
	// when includeEnvelope is true.
	ListVersions(
		ctx context.Context,
		projectID uuid.UUID,
		environment string,
		includeEnvelope bool,
		offset, limit int,
	) ([]*secretsDomain.SecretVersion, error)

	// GetLatest returns the highest version with its envelope. Returns ErrSecretVersionNotFound
	// when the environment has no versions.
	GetLatest(ctx context.Context, projectID uuid.UUID, environment string) (*secretsDomain.SecretVersion, error)

	// GetByID returns a version with its envelope. Returns ErrSecretVersionNotFound if missing.
	GetByID(ctx context.Context, versionID uuid.UUID) (*secretsDomain.SecretVersion, error)
}

// ProjectAuthorizer answers whether a user owns a project.
type ProjectAuthorizer interface {
	IsOwner(ctx context.Context, userID, projectID uuid.UUID) (bool, error)
}

// SecretUseCase defines the versioned secret store.
//
// Every operation first checks that the caller owns the project. Missing and foreign projects
// both surface as ErrProjectNotFound.
type SecretUseCase interface {
	// Upload appends a new version to an environment and returns its id and number.
	// Concurrent uploads to the same environment retry on version collisions and give up with
	// ErrVersionConflict once the configured attempts are spent.
	Upload(
		ctx context.Context,
		caller *authDomain.Caller,
		projectID uuid.UUID,
		environment string,
		payload secretsDomain.UploadPayload,
	) (*secretsDomain.UploadResult, error)

	// ListEnvironments returns the environments of a project with their latest version.
	ListEnvironments(
		ctx context.Context,
		caller *authDomain.Caller,
		projectID uuid.UUID,
	) ([]secretsDomain.EnvironmentSummary, error)

	// ListVersions returns the versions of an environment, newest first.
	ListVersions(
		ctx context.Context,
		caller *authDomain.Caller,
		projectID uuid.UUID,
		environment string,
		includeCiphertext bool,
		offset, limit int,
	) ([]*secretsDomain.SecretVersion, error)

	// GetLatest returns the newest version of an environment, or nil when it has none.
	GetLatest(
		ctx context.Context,
		caller *authDomain.Caller,
		projectID uuid.UUID,
		environment string,
	) (*secretsDomain.SecretVersion, error)

	// Decrypt opens a stored version with passphrase.
	//
	// A missing version, a version of another user's project and a wrong passphrase all return
	// (nil, nil) so callers cannot tell them apart. Only backend failures return an error.
	//
	// Security Note: callers MUST zero the returned plaintext after use with cryptoDomain.Zero.
	Decrypt(ctx context.Context, caller *authDomain.Caller, versionID uuid.UUID, passphrase string) ([]byte, error)
}
