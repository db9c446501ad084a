package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/envvault/internal/auth/domain"
	"github.com/allisson/envvault/internal/cache"
	apperrors "github.com/allisson/envvault/internal/errors"
	"github.com/allisson/envvault/internal/kv"
)

// mockAPIKeyService is a mock implementation of APIKeyService for testing.
type mockAPIKeyService struct {
	mock.Mock
}

func (m *mockAPIKeyService) Generate(id uuid.UUID) (string, string, error) {
	args := m.Called(id)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockAPIKeyService) Verify(secret, secretHash string) bool {
	args := m.Called(secret, secretHash)
	return args.Bool(0)
}

func (m *mockAPIKeyService) Fingerprint(plainToken string) string {
	args := m.Called(plainToken)
	return args.String(0)
}

// mockAPIKeyRepository is a mock implementation of APIKeyRepository for testing.
type mockAPIKeyRepository struct {
	mock.Mock
}

func (m *mockAPIKeyRepository) Create(ctx context.Context, apiKey *authDomain.APIKey) error {
	args := m.Called(ctx, apiKey)
	return args.Error(0)
}

func (m *mockAPIKeyRepository) Get(ctx context.Context, apiKeyID uuid.UUID) (*authDomain.APIKey, error) {
	args := m.Called(ctx, apiKeyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.APIKey), args.Error(1)
}

func newTestCache() *cache.Cache {
	return cache.New(kv.NewMemoryStore())
}

func TestAPIKeyUseCase_Create(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())

	t.Run("Success_StoresHashOnly", func(t *testing.T) {
		repo := &mockAPIKeyRepository{}
		svc := &mockAPIKeyService{}

		svc.On("Generate", mock.AnythingOfType("uuid.UUID")).
			Return("evk_plain.token", "$argon2id$hash", nil).
			Once()
		repo.On("Create", ctx, mock.MatchedBy(func(k *authDomain.APIKey) bool {
			return k.OwnerID == ownerID &&
				k.Name == "ci" &&
				k.SecretHash == "$argon2id$hash" &&
				k.RevokedAt == nil &&
				!k.CreatedAt.IsZero()
		})).
			Return(nil).
			Once()

		uc := NewAPIKeyUseCase(repo, svc, newTestCache())
		output, err := uc.Create(ctx, ownerID, "  ci ")

		require.NoError(t, err)
		assert.Equal(t, "evk_plain.token", output.Token)
		assert.NotEqual(t, uuid.Nil, output.ID)
		repo.AssertExpectations(t)
		svc.AssertExpectations(t)
	})

	t.Run("Error_EmptyName", func(t *testing.T) {
		uc := NewAPIKeyUseCase(&mockAPIKeyRepository{}, &mockAPIKeyService{}, newTestCache())

		output, err := uc.Create(ctx, ownerID, "   ")
		assert.Nil(t, output)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_RepositoryFails", func(t *testing.T) {
		repo := &mockAPIKeyRepository{}
		svc := &mockAPIKeyService{}
		dbErr := errors.New("database down")

		svc.On("Generate", mock.AnythingOfType("uuid.UUID")).Return("t", "h", nil).Once()
		repo.On("Create", ctx, mock.Anything).Return(dbErr).Once()

		uc := NewAPIKeyUseCase(repo, svc, newTestCache())
		output, err := uc.Create(ctx, ownerID, "ci")
		assert.Nil(t, output)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestAPIKeyUseCase_Authenticate(t *testing.T) {
	ctx := context.Background()
	keyID := uuid.Must(uuid.NewV7())
	ownerID := uuid.Must(uuid.NewV7())
	token := authDomain.FormatAPIKey(keyID, "s3cret")
	stored := &authDomain.APIKey{ID: keyID, OwnerID: ownerID, SecretHash: "hash"}

	t.Run("Success_CachesCaller", func(t *testing.T) {
		repo := &mockAPIKeyRepository{}
		svc := &mockAPIKeyService{}

		svc.On("Fingerprint", token).Return("fp-1")
		repo.On("Get", mock.Anything, keyID).Return(stored, nil).Once()
		svc.On("Verify", "s3cret", "hash").Return(true).Once()

		uc := NewAPIKeyUseCase(repo, svc, newTestCache())

		for i := 0; i < 3; i++ {
			caller, err := uc.Authenticate(ctx, token)
			require.NoError(t, err)
			assert.Equal(t, ownerID, caller.UserID)
			assert.Equal(t, keyID, caller.APIKeyID)
		}
		repo.AssertExpectations(t)
		svc.AssertExpectations(t)
	})

	t.Run("Error_MalformedToken", func(t *testing.T) {
		uc := NewAPIKeyUseCase(&mockAPIKeyRepository{}, &mockAPIKeyService{}, newTestCache())

		caller, err := uc.Authenticate(ctx, "Bearer nope")
		assert.Nil(t, caller)
		assert.ErrorIs(t, err, authDomain.ErrInvalidAPIKey)
	})

	t.Run("Error_UnknownKey", func(t *testing.T) {
		repo := &mockAPIKeyRepository{}
		svc := &mockAPIKeyService{}
		svc.On("Fingerprint", token).Return("fp-2")
		repo.On("Get", mock.Anything, keyID).Return(nil, authDomain.ErrAPIKeyNotFound).Once()

		uc := NewAPIKeyUseCase(repo, svc, newTestCache())
		caller, err := uc.Authenticate(ctx, token)
		assert.Nil(t, caller)
		assert.ErrorIs(t, err, authDomain.ErrInvalidAPIKey)
		assert.False(t, apperrors.Is(err, apperrors.ErrNotFound))
	})

	t.Run("Error_RevokedKey", func(t *testing.T) {
		repo := &mockAPIKeyRepository{}
		svc := &mockAPIKeyService{}
		revoked := *stored
		revokedAt := revoked.CreatedAt
		revoked.RevokedAt = &revokedAt

		svc.On("Fingerprint", token).Return("fp-3")
		repo.On("Get", mock.Anything, keyID).Return(&revoked, nil).Once()

		uc := NewAPIKeyUseCase(repo, svc, newTestCache())
		_, err := uc.Authenticate(ctx, token)
		assert.ErrorIs(t, err, authDomain.ErrInvalidAPIKey)
		svc.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	})

	t.Run("Error_WrongSecretIsNotCached", func(t *testing.T) {
		repo := &mockAPIKeyRepository{}
		svc := &mockAPIKeyService{}

		svc.On("Fingerprint", token).Return("fp-4")
		repo.On("Get", mock.Anything, keyID).Return(stored, nil).Twice()
		svc.On("Verify", "s3cret", "hash").Return(false).Twice()

		uc := NewAPIKeyUseCase(repo, svc, newTestCache())
		for i := 0; i < 2; i++ {
			_, err := uc.Authenticate(ctx, token)
			assert.ErrorIs(t, err, authDomain.ErrInvalidAPIKey)
		}
		repo.AssertExpectations(t)
	})

	t.Run("Error_RepositoryUnavailable", func(t *testing.T) {
		repo := &mockAPIKeyRepository{}
		svc := &mockAPIKeyService{}
		dbErr := errors.New("connection refused")

		svc.On("Fingerprint", token).Return("fp-5")
		repo.On("Get", mock.Anything, keyID).Return(nil, dbErr).Once()

		uc := NewAPIKeyUseCase(repo, svc, newTestCache())
		_, err := uc.Authenticate(ctx, token)
		assert.ErrorIs(t, err, dbErr)
	})
}
