// Package mocks provides mock implementations of the secret use case and its collaborators.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/envvault/internal/auth/domain"
	secretsDomain "github.com/allisson/envvault/internal/secrets/domain"
)

// MockSecretUseCase is a mock implementation of SecretUseCase for testing.
type MockSecretUseCase struct {
	mock.Mock
}

// NewMockSecretUseCase creates a MockSecretUseCase whose expectations are asserted on cleanup.
func NewMockSecretUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSecretUseCase {
	m := &MockSecretUseCase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Upload mocks the Upload method of SecretUseCase.
func (m *MockSecretUseCase) Upload(
	ctx context.Context,
	caller *authDomain.Caller,
	projectID uuid.UUID,
	environment string,
	payload secretsDomain.UploadPayload,
) (*secretsDomain.UploadResult, error) {
	args := m.Called(ctx, caller, projectID, environment, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.UploadResult), args.Error(1)
}

// ListEnvironments mocks the ListEnvironments method of SecretUseCase.
func (m *MockSecretUseCase) ListEnvironments(
	ctx context.Context,
	caller *authDomain.Caller,
	projectID uuid.UUID,
) ([]secretsDomain.EnvironmentSummary, error) {
	args := m.Called(ctx, caller, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]secretsDomain.EnvironmentSummary), args.Error(1)
}

// ListVersions mocks the ListVersions method of SecretUseCase.
func (m *MockSecretUseCase) ListVersions(
	ctx context.Context,
	caller *authDomain.Caller,
	projectID uuid.UUID,
	environment string,
	includeCiphertext bool,
	offset, limit int,
) ([]*secretsDomain.SecretVersion, error) {
	args := m.Called(ctx, caller, projectID, environment, includeCiphertext, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*secretsDomain.SecretVersion), args.Error(1)
}

// GetLatest mocks the GetLatest method of SecretUseCase.
func (m *MockSecretUseCase) GetLatest(
	ctx context.Context,
	caller *authDomain.Caller,
	projectID uuid.UUID,
	environment string,
) (*secretsDomain.SecretVersion, error) {
	args := m.Called(ctx, caller, projectID, environment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.SecretVersion), args.Error(1)
}

// Decrypt mocks the Decrypt method of SecretUseCase.
func (m *MockSecretUseCase) Decrypt(
	ctx context.Context,
	caller *authDomain.Caller,
	versionID uuid.UUID,
	passphrase string,
) ([]byte, error) {
	args := m.Called(ctx, caller, versionID, passphrase)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockSecretVersionRepository is a mock implementation of SecretVersionRepository for testing.
type MockSecretVersionRepository struct {
	mock.Mock
}

// Create mocks the Create method of SecretVersionRepository.
func (m *MockSecretVersionRepository) Create(ctx context.Context, secretVersion *secretsDomain.SecretVersion) error {
	args := m.Called(ctx, secretVersion)
	return args.Error(0)
}

// MaxVersion mocks the MaxVersion method of SecretVersionRepository.
func (m *MockSecretVersionRepository) MaxVersion(
	ctx context.Context,
	projectID uuid.UUID,
	environment string,
) (uint, error) {
	args := m.Called(ctx, projectID, environment)
	return args.Get(0).(uint), args.Error(1)
}

// ListEnvironments mocks the ListEnvironments method of SecretVersionRepository.
func (m *MockSecretVersionRepository) ListEnvironments(
	ctx context.Context,
	projectID uuid.UUID,
) ([]secretsDomain.EnvironmentSummary, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]secretsDomain.EnvironmentSummary), args.Error(1)
}

// ListVersions mocks the ListVersions method of SecretVersionRepository.
func (m *MockSecretVersionRepository) ListVersions(
	ctx context.Context,
	projectID uuid.UUID,
	environment string,
	includeEnvelope bool,
	offset, limit int,
) ([]*secretsDomain.SecretVersion, error) {
	args := m.Called(ctx, projectID, environment, includeEnvelope, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*secretsDomain.SecretVersion), args.Error(1)
}

// GetLatest mocks the GetLatest method of SecretVersionRepository.
func (m *MockSecretVersionRepository) GetLatest(
	ctx context.Context,
	projectID uuid.UUID,
	environment string,
) (*secretsDomain.SecretVersion, error) {
	args := m.Called(ctx, projectID, environment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.SecretVersion), args.Error(1)
}

// GetByID mocks the GetByID method of SecretVersionRepository.
func (m *MockSecretVersionRepository) GetByID(
	ctx context.Context,
	versionID uuid.UUID,
) (*secretsDomain.SecretVersion, error) {
	args := m.Called(ctx, versionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.SecretVersion), args.Error(1)
}

// MockProjectAuthorizer is a mock implementation of ProjectAuthorizer for testing.
type MockProjectAuthorizer struct {
	mock.Mock
}

// IsOwner mocks the IsOwner method of ProjectAuthorizer.
func (m *MockProjectAuthorizer) IsOwner(ctx context.Context, userID, projectID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, projectID)
	return args.Bool(0), args.Error(1)
}
