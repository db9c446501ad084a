package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/envvault/internal/auth/domain"
	"github.com/allisson/envvault/internal/metrics"
)

// apiKeyUseCaseWithMetrics decorates APIKeyUseCase with metrics instrumentation.
type apiKeyUseCaseWithMetrics struct {
	next    APIKeyUseCase
	metrics metrics.BusinessMetrics
}

// NewAPIKeyUseCaseWithMetrics wraps an APIKeyUseCase with metrics recording.
func NewAPIKeyUseCaseWithMetrics(useCase APIKeyUseCase, m metrics.BusinessMetrics) APIKeyUseCase {
	return &apiKeyUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Create records metrics for API key creation operations.
func (a *apiKeyUseCaseWithMetrics) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	name string,
) (*authDomain.CreateAPIKeyOutput, error) {
	start := time.Now()
	output, err := a.next.Create(ctx, ownerID, name)
	record(ctx, a.metrics, "api_key_create", start, err)
	return output, err
}

// Authenticate records metrics for API key authentication operations.
func (a *apiKeyUseCaseWithMetrics) Authenticate(ctx context.Context, token string) (*authDomain.Caller, error) {
	start := time.Now()
	caller, err := a.next.Authenticate(ctx, token)
	record(ctx, a.metrics, "api_key_authenticate", start, err)
	return caller, err
}

// projectUseCaseWithMetrics decorates ProjectUseCase with metrics instrumentation.
type projectUseCaseWithMetrics struct {
	next    ProjectUseCase
	metrics metrics.BusinessMetrics
}

// NewProjectUseCaseWithMetrics wraps a ProjectUseCase with metrics recording.
func NewProjectUseCaseWithMetrics(useCase ProjectUseCase, m metrics.BusinessMetrics) ProjectUseCase {
	return &projectUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Create records metrics for project creation operations.
func (p *projectUseCaseWithMetrics) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	name string,
) (*authDomain.Project, error) {
	start := time.Now()
	project, err := p.next.Create(ctx, ownerID, name)
	record(ctx, p.metrics, "project_create", start, err)
	return project, err
}

// Get records metrics for project retrieval operations.
func (p *projectUseCaseWithMetrics) Get(
	ctx context.Context,
	userID, projectID uuid.UUID,
) (*authDomain.Project, error) {
	start := time.Now()
	project, err := p.next.Get(ctx, userID, projectID)
	record(ctx, p.metrics, "project_get", start, err)
	return project, err
}

// IsOwner records metrics for ownership checks.
func (p *projectUseCaseWithMetrics) IsOwner(ctx context.Context, userID, projectID uuid.UUID) (bool, error) {
	start := time.Now()
	ok, err := p.next.IsOwner(ctx, userID, projectID)
	record(ctx, p.metrics, "project_is_owner", start, err)
	return ok, err
}

func record(ctx context.Context, m metrics.BusinessMetrics, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	m.RecordOperation(ctx, "auth", operation, status)
	m.RecordDuration(ctx, "auth", operation, time.Since(start), status)
}
