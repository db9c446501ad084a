package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/envvault/internal/auth/domain"
	"github.com/allisson/envvault/internal/metrics"
	secretsDomain "github.com/allisson/envvault/internal/secrets/domain"
)

// secretUseCaseWithMetrics decorates SecretUseCase with metrics instrumentation.
type secretUseCaseWithMetrics struct {
	next    SecretUseCase
	metrics metrics.BusinessMetrics
}

// NewSecretUseCaseWithMetrics wraps a SecretUseCase with metrics recording.
func NewSecretUseCaseWithMetrics(useCase SecretUseCase, m metrics.BusinessMetrics) SecretUseCase {
	return &secretUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (s *secretUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "secrets", operation, status)
	s.metrics.RecordDuration(ctx, "secrets", operation, time.Since(start), status)
}

// Upload records metrics for secret uploads.
func (s *secretUseCaseWithMetrics) Upload(
	ctx context.Context,
	caller *authDomain.Caller,
	projectID uuid.UUID,
	environment string,
	payload secretsDomain.UploadPayload,
) (*secretsDomain.UploadResult, error) {
	start := time.Now()
	result, err := s.next.Upload(ctx, caller, projectID, environment, payload)
	s.record(ctx, "secret_upload", start, err)
	return result, err
}

// ListEnvironments records metrics for environment listings.
func (s *secretUseCaseWithMetrics) ListEnvironments(
	ctx context.Context,
	caller *authDomain.Caller,
	projectID uuid.UUID,
) ([]secretsDomain.EnvironmentSummary, error) {
	start := time.Now()
	environments, err := s.next.ListEnvironments(ctx, caller, projectID)
	s.record(ctx, "secret_list_environments", start, err)
	return environments, err
}

// ListVersions records metrics for version listings.
func (s *secretUseCaseWithMetrics) ListVersions(
	ctx context.Context,
	caller *authDomain.Caller,
	projectID uuid.UUID,
	environment string,
	includeCiphertext bool,
	offset, limit int,
) ([]*secretsDomain.SecretVersion, error) {
	start := time.Now()
	versions, err := s.next.ListVersions(ctx, caller, projectID, environment, includeCiphertext, offset, limit)
	s.record(ctx, "secret_list_versions", start, err)
	return versions, err
}

// GetLatest records metrics for latest version lookups.
func (s *secretUseCaseWithMetrics) GetLatest(
	ctx context.Context,
	caller *authDomain.Caller,
	projectID uuid.UUID,
	environment string,
) (*secretsDomain.SecretVersion, error) {
	start := time.Now()
	secretVersion, err := s.next.GetLatest(ctx, caller, projectID, environment)
	s.record(ctx, "secret_get_latest", start, err)
	return secretVersion, err
}

// Decrypt records metrics for decryptions. A nil plaintext without error counts as "miss".
func (s *secretUseCaseWithMetrics) Decrypt(
	ctx context.Context,
	caller *authDomain.Caller,
	versionID uuid.UUID,
	passphrase string,
) ([]byte, error) {
	start := time.Now()
	plaintext, err := s.next.Decrypt(ctx, caller, versionID, passphrase)

	status := "success"
	switch {
	case err != nil:
		status = "error"
	case plaintext == nil:
		status = "miss"
	}

	s.metrics.RecordOperation(ctx, "secrets", "secret_decrypt", status)
	s.metrics.RecordDuration(ctx, "secrets", "secret_decrypt", time.Since(start), status)

	return plaintext, err
}
