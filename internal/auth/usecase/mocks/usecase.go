// Package mocks provides mock implementations of the auth use cases for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/envvault/internal/auth/domain"
)

// MockAPIKeyUseCase is a mock implementation of APIKeyUseCase for testing.
type MockAPIKeyUseCase struct {
	mock.Mock
}

// Create mocks the Create method of APIKeyUseCase.
func (m *MockAPIKeyUseCase) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	name string,
) (*authDomain.CreateAPIKeyOutput, error) {
	args := m.Called(ctx, ownerID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.CreateAPIKeyOutput), args.Error(1)
}

// Authenticate mocks the Authenticate method of APIKeyUseCase.
func (m *MockAPIKeyUseCase) Authenticate(ctx context.Context, token string) (*authDomain.Caller, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Caller), args.Error(1)
}

// MockProjectUseCase is a mock implementation of ProjectUseCase for testing.
type MockProjectUseCase struct {
	mock.Mock
}

// Create mocks the Create method of ProjectUseCase.
func (m *MockProjectUseCase) Create(ctx context.Context, ownerID uuid.UUID, name string) (*authDomain.Project, error) {
	args := m.Called(ctx, ownerID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Project), args.Error(1)
}

// Get mocks the Get method of ProjectUseCase.
func (m *MockProjectUseCase) Get(ctx context.Context, userID, projectID uuid.UUID) (*authDomain.Project, error) {
	args := m.Called(ctx, userID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Project), args.Error(1)
}

// IsOwner mocks the IsOwner method of ProjectUseCase.
func (m *MockProjectUseCase) IsOwner(ctx context.Context, userID, projectID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, projectID)
	return args.Bool(0), args.Error(1)
}
