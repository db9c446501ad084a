package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/envvault/internal/auth/domain"
	"github.com/allisson/envvault/internal/metrics"
	secretsDomain "github.com/allisson/envvault/internal/secrets/domain"
	secretsUsecaseMocks "github.com/allisson/envvault/internal/secrets/usecase/mocks"
)

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

func expectSecretMetrics(ctx context.Context, m *mockBusinessMetrics, operation, status string) {
	m.On("RecordOperation", ctx, "secrets", operation, status).Return().Once()
	m.On("RecordDuration", ctx, "secrets", operation, mock.AnythingOfType("time.Duration"), status).
		Return().
		Once()
}

// TestNewSecretUseCaseWithMetrics tests the metrics decorator constructor.
func TestNewSecretUseCaseWithMetrics(t *testing.T) {
	t.Parallel()

	mockUseCase := secretsUsecaseMocks.NewMockSecretUseCase(t)
	mockMetrics := &mockBusinessMetrics{}

	decorator := NewSecretUseCaseWithMetrics(mockUseCase, mockMetrics)

	assert.NotNil(t, decorator)
	assert.Implements(t, (*SecretUseCase)(nil), decorator)
}

func TestMetricsDecorator_Upload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	caller := testCaller()
	projectID := uuid.Must(uuid.NewV7())
	payload := secretsDomain.EnvelopePayload{Envelope: validEnvelope()}

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		t.Parallel()
		mockUseCase := secretsUsecaseMocks.NewMockSecretUseCase(t)
		mockMetrics := &mockBusinessMetrics{}
		expected := &secretsDomain.UploadResult{ID: uuid.Must(uuid.NewV7()), Version: 1}

		mockUseCase.On("Upload", ctx, caller, projectID, "production", payload).Return(expected, nil).Once()
		expectSecretMetrics(ctx, mockMetrics, "secret_upload", "success")

		decorator := NewSecretUseCaseWithMetrics(mockUseCase, mockMetrics)
		result, err := decorator.Upload(ctx, caller, projectID, "production", payload)

		assert.NoError(t, err)
		assert.Equal(t, expected, result)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Error_RecordsErrorMetrics", func(t *testing.T) {
		t.Parallel()
		mockUseCase := secretsUsecaseMocks.NewMockSecretUseCase(t)
		mockMetrics := &mockBusinessMetrics{}

		mockUseCase.On("Upload", ctx, caller, projectID, "production", payload).
			Return(nil, secretsDomain.ErrVersionConflict).
			Once()
		expectSecretMetrics(ctx, mockMetrics, "secret_upload", "error")

		decorator := NewSecretUseCaseWithMetrics(mockUseCase, mockMetrics)
		result, err := decorator.Upload(ctx, caller, projectID, "production", payload)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, secretsDomain.ErrVersionConflict)
		mockMetrics.AssertExpectations(t)
	})
}

func TestMetricsDecorator_ListEnvironments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	caller := testCaller()
	projectID := uuid.Must(uuid.NewV7())

	mockUseCase := secretsUsecaseMocks.NewMockSecretUseCase(t)
	mockMetrics := &mockBusinessMetrics{}
	envs := []secretsDomain.EnvironmentSummary{{Environment: "dev", LatestVersion: 2}}

	mockUseCase.On("ListEnvironments", ctx, caller, projectID).Return(envs, nil).Once()
	expectSecretMetrics(ctx, mockMetrics, "secret_list_environments", "success")

	decorator := NewSecretUseCaseWithMetrics(mockUseCase, mockMetrics)
	got, err := decorator.ListEnvironments(ctx, caller, projectID)

	assert.NoError(t, err)
	assert.Equal(t, envs, got)
	mockMetrics.AssertExpectations(t)
}

func TestMetricsDecorator_ListVersions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	caller := testCaller()
	projectID := uuid.Must(uuid.NewV7())

	mockUseCase := secretsUsecaseMocks.NewMockSecretUseCase(t)
	mockMetrics := &mockBusinessMetrics{}
	dbErr := errors.New("database error")

	mockUseCase.On("ListVersions", ctx, caller, projectID, "dev", true, 10, 20).Return(nil, dbErr).Once()
	expectSecretMetrics(ctx, mockMetrics, "secret_list_versions", "error")

	decorator := NewSecretUseCaseWithMetrics(mockUseCase, mockMetrics)
	got, err := decorator.ListVersions(ctx, caller, projectID, "dev", true, 10, 20)

	assert.Nil(t, got)
	assert.ErrorIs(t, err, dbErr)
	mockMetrics.AssertExpectations(t)
}

func TestMetricsDecorator_GetLatest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	caller := testCaller()
	projectID := uuid.Must(uuid.NewV7())

	mockUseCase := secretsUsecaseMocks.NewMockSecretUseCase(t)
	mockMetrics := &mockBusinessMetrics{}
	latest := &secretsDomain.SecretVersion{ID: uuid.Must(uuid.NewV7()), Version: 4}

	mockUseCase.On("GetLatest", ctx, caller, projectID, "dev").Return(latest, nil).Once()
	expectSecretMetrics(ctx, mockMetrics, "secret_get_latest", "success")

	decorator := NewSecretUseCaseWithMetrics(mockUseCase, mockMetrics)
	got, err := decorator.GetLatest(ctx, caller, projectID, "dev")

	assert.NoError(t, err)
	assert.Equal(t, latest, got)
	mockMetrics.AssertExpectations(t)
}

func TestMetricsDecorator_Decrypt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	caller := &authDomain.Caller{UserID: uuid.Must(uuid.NewV7())}
	versionID := uuid.Must(uuid.NewV7())

	tests := []struct {
		name      string
		plaintext []byte
		err       error
		status    string
	}{
		{name: "success", plaintext: []byte("A=1"), status: "success"},
		{name: "miss", plaintext: nil, status: "miss"},
		{name: "error", err: errors.New("db down"), status: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mockUseCase := secretsUsecaseMocks.NewMockSecretUseCase(t)
			mockMetrics := &mockBusinessMetrics{}

			var ret any
			if tt.plaintext != nil {
				ret = tt.plaintext
			}
			mockUseCase.On("Decrypt", ctx, caller, versionID, "passphrase").Return(ret, tt.err).Once()
			expectSecretMetrics(ctx, mockMetrics, "secret_decrypt", tt.status)

			decorator := NewSecretUseCaseWithMetrics(mockUseCase, mockMetrics)
			plaintext, err := decorator.Decrypt(ctx, caller, versionID, "passphrase")

			assert.Equal(t, tt.plaintext, plaintext)
			assert.Equal(t, tt.err, err)
			mockMetrics.AssertExpectations(t)
		})
	}
}
