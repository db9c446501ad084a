package usecase

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	authDomain "github.com/allisson/envvault/internal/auth/domain"
	"github.com/allisson/envvault/internal/cache"
	cryptoDomain "github.com/allisson/envvault/internal/crypto/domain"
	cryptoService "github.com/allisson/envvault/internal/crypto/service"
	apperrors "github.com/allisson/envvault/internal/errors"
	secretsDomain "github.com/allisson/envvault/internal/secrets/domain"
)

const (
	// environmentsCacheNamespace holds cached environment listings keyed by project id.
	environmentsCacheNamespace = "environments"

	// DefaultMaxUploadAttempts is used when Config.MaxUploadAttempts is not positive.
	DefaultMaxUploadAttempts = 3

	// DefaultEnvironmentsTTL is used when Config.EnvironmentsTTL is not positive.
	DefaultEnvironmentsTTL = 5 * time.Minute
)

// Config tunes the secret use case.
type Config struct {
	// MaxUploadAttempts bounds how many version numbers one upload tries before giving up.
	MaxUploadAttempts int
	// EnvironmentsTTL is how long a project's environment listing stays cached.
	EnvironmentsTTL time.Duration
}

// secretUseCase implements SecretUseCase.
type secretUseCase struct {
	secretRepo SecretVersionRepository
	authorizer ProjectAuthorizer
	codec      cryptoService.EnvelopeCodec
	cache      *cache.Cache
	config     Config
	logger     *slog.Logger
}

// projectTag indexes every cached entry derived from one project.
func projectTag(projectID uuid.UUID) string {
	return "project:" + projectID.String()
}

// authorize resolves the caller and checks project ownership.
func (s *secretUseCase) authorize(ctx context.Context, caller *authDomain.Caller, projectID uuid.UUID) error {
	if caller == nil {
		return apperrors.ErrUnauthorized
	}

	owner, err := s.authorizer.IsOwner(ctx, caller.UserID, projectID)
	if err != nil {
		return err
	}
	if !owner {
		return authDomain.ErrProjectNotFound
	}
	return nil
}

// seal turns an upload payload into the envelope that gets stored.
func (s *secretUseCase) seal(payload secretsDomain.UploadPayload) (*cryptoDomain.Envelope, error) {
	switch p := payload.(type) {
	case secretsDomain.PlaintextPayload:
		if len(p.Content) == 0 {
			return nil, secretsDomain.ErrEmptyContent
		}
		if utf8.RuneCountInString(p.Passphrase) < secretsDomain.MinPassphraseLength {
			return nil, secretsDomain.ErrPassphraseTooShort
		}
		return s.codec.Encrypt(p.Content, p.Passphrase)
	case secretsDomain.EnvelopePayload:
		envelope := p.Envelope
		if err := envelope.Validate(); err != nil {
			return nil, err
		}
		return &envelope, nil
	default:
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "unsupported upload payload")
	}
}

// Upload appends a version. The next number is read as max+1; when a concurrent writer takes it
// first the unique index rejects the insert and the number is read again.
func (s *secretUseCase) Upload(
	ctx context.Context,
	caller *authDomain.Caller,
	projectID uuid.UUID,
	environment string,
	payload secretsDomain.UploadPayload,
) (*secretsDomain.UploadResult, error) {
	if err := secretsDomain.ValidateEnvironment(environment); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, caller, projectID); err != nil {
		return nil, err
	}

	envelope, err := s.seal(payload)
	if err != nil {
		return nil, err
	}

	id := uuid.Must(uuid.NewV7())
	for attempt := 1; attempt <= s.config.MaxUploadAttempts; attempt++ {
		current, err := s.secretRepo.MaxVersion(ctx, projectID, environment)
		if err != nil {
			return nil, err
		}

		secretVersion := &secretsDomain.SecretVersion{
			ID:          id,
			ProjectID:   projectID,
			Environment: environment,
			Version:     current + 1,
			Envelope:    envelope,
			CreatedAt:   time.Now().UTC(),
		}

		err = s.secretRepo.Create(ctx, secretVersion)
		if apperrors.Is(err, secretsDomain.ErrDuplicateVersion) {
			s.logger.Debug("secret version taken, retrying",
				slog.String("project_id", projectID.String()),
				slog.String("environment", environment),
				slog.Uint64("version", uint64(secretVersion.Version)),
				slog.Int("attempt", attempt),
			)
			continue
		}
		if err != nil {
			return nil, err
		}

		if err := s.cache.InvalidateByTag(ctx, projectTag(projectID), environmentsCacheNamespace); err != nil {
			s.logger.Warn("failed to invalidate environment cache",
				slog.String("project_id", projectID.String()),
				slog.Any("error", err),
			)
		}

		return &secretsDomain.UploadResult{ID: id, Version: secretVersion.Version}, nil
	}

	return nil, secretsDomain.ErrVersionConflict
}

// ListEnvironments returns the cached environment listing of a project.
func (s *secretUseCase) ListEnvironments(
	ctx context.Context,
	caller *authDomain.Caller,
	projectID uuid.UUID,
) ([]secretsDomain.EnvironmentSummary, error) {
	if err := s.authorize(ctx, caller, projectID); err != nil {
		return nil, err
	}

	return cache.Remember(
		ctx,
		s.cache,
		projectID.String(),
		s.config.EnvironmentsTTL,
		environmentsCacheNamespace,
		func(ctx context.Context) ([]secretsDomain.EnvironmentSummary, error) {
			return s.secretRepo.ListEnvironments(ctx, projectID)
		},
		projectTag(projectID),
	)
}

// ListVersions returns versions newest first.
func (s *secretUseCase) ListVersions(
	ctx context.Context,
	caller *authDomain.Caller,
	projectID uuid.UUID,
	environment string,
	includeCiphertext bool,
	offset, limit int,
) ([]*secretsDomain.SecretVersion, error) {
	if err := secretsDomain.ValidateEnvironment(environment); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, caller, projectID); err != nil {
		return nil, err
	}

	return s.secretRepo.ListVersions(ctx, projectID, environment, includeCiphertext, offset, limit)
}

// GetLatest returns the newest version, or nil when the environment is empty.
func (s *secretUseCase) GetLatest(
	ctx context.Context,
	caller *authDomain.Caller,
	projectID uuid.UUID,
	environment string,
) (*secretsDomain.SecretVersion, error) {
	if err := secretsDomain.ValidateEnvironment(environment); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, caller, projectID); err != nil {
		return nil, err
	}

	secretVersion, err := s.secretRepo.GetLatest(ctx, projectID, environment)
	if apperrors.Is(err, secretsDomain.ErrSecretVersionNotFound) {
		return nil, nil
	}
	return secretVersion, err
}

// Decrypt opens a version. Every rejection collapses to (nil, nil).
func (s *secretUseCase) Decrypt(
	ctx context.Context,
	caller *authDomain.Caller,
	versionID uuid.UUID,
	passphrase string,
) ([]byte, error) {
	if caller == nil {
		return nil, apperrors.ErrUnauthorized
	}

	secretVersion, err := s.secretRepo.GetByID(ctx, versionID)
	if apperrors.Is(err, secretsDomain.ErrSecretVersionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	owner, err := s.authorizer.IsOwner(ctx, caller.UserID, secretVersion.ProjectID)
	if err != nil {
		return nil, err
	}
	if !owner {
		return nil, nil
	}

	plaintext, err := s.codec.Decrypt(secretVersion.Envelope, passphrase)
	if apperrors.Is(err, cryptoDomain.ErrDecryptionFailed) {
		return nil, nil
	}
	return plaintext, err
}

// NewSecretUseCase creates a new SecretUseCase.
func NewSecretUseCase(
	secretRepo SecretVersionRepository,
	authorizer ProjectAuthorizer,
	codec cryptoService.EnvelopeCodec,
	c *cache.Cache,
	config Config,
	logger *slog.Logger,
) SecretUseCase {
	if config.MaxUploadAttempts <= 0 {
		config.MaxUploadAttempts = DefaultMaxUploadAttempts
	}
	if config.EnvironmentsTTL <= 0 {
		config.EnvironmentsTTL = DefaultEnvironmentsTTL
	}

	return &secretUseCase{
		secretRepo: secretRepo,
		authorizer: authorizer,
		codec:      codec,
		cache:      c,
		config:     config,
		logger:     logger,
	}
}
