package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/envvault/internal/auth/domain"
	authRepository "github.com/allisson/envvault/internal/auth/repository"
	authService "github.com/allisson/envvault/internal/auth/service"
	authUseCase "github.com/allisson/envvault/internal/auth/usecase"
	authMocks "github.com/allisson/envvault/internal/auth/usecase/mocks"
	"github.com/allisson/envvault/internal/cache"
	"github.com/allisson/envvault/internal/database"
	"github.com/allisson/envvault/internal/kv"
	"github.com/allisson/envvault/internal/testutil"
)

// passthroughTxManager runs fn without a transaction.
type passthroughTxManager struct{}

func (passthroughTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestRunCreateProject(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("text-with-owner", func(t *testing.T) {
		ownerID := uuid.Must(uuid.NewV7())
		project := &authDomain.Project{ID: uuid.Must(uuid.NewV7()), OwnerID: ownerID, Name: "billing"}
		apiKey := &authDomain.CreateAPIKeyOutput{ID: uuid.Must(uuid.NewV7()), Token: "evk_abc.def"}

		projectUseCase := &authMocks.MockProjectUseCase{}
		apiKeyUseCase := &authMocks.MockAPIKeyUseCase{}
		projectUseCase.On("Create", mock.Anything, ownerID, "billing").Return(project, nil).Once()
		apiKeyUseCase.On("Create", mock.Anything, ownerID, "ci").Return(apiKey, nil).Once()

		var out bytes.Buffer
		err := RunCreateProject(
			ctx, passthroughTxManager{}, projectUseCase, apiKeyUseCase, logger,
			"billing", ownerID.String(), "ci", "text", IOTuple{Writer: &out},
		)

		require.NoError(t, err)
		assert.Contains(t, out.String(), project.ID.String())
		assert.Contains(t, out.String(), "evk_abc.def")
		projectUseCase.AssertExpectations(t)
		apiKeyUseCase.AssertExpectations(t)
	})

	t.Run("json-new-owner-default-key-name", func(t *testing.T) {
		projectUseCase := &authMocks.MockProjectUseCase{}
		apiKeyUseCase := &authMocks.MockAPIKeyUseCase{}
		projectUseCase.On("Create", mock.Anything, mock.AnythingOfType("uuid.UUID"), "billing").
			Return(&authDomain.Project{ID: uuid.Must(uuid.NewV7()), Name: "billing"}, nil).Once()
		apiKeyUseCase.On("Create", mock.Anything, mock.AnythingOfType("uuid.UUID"), "billing").
			Return(&authDomain.CreateAPIKeyOutput{ID: uuid.Must(uuid.NewV7()), Token: "evk_x.y"}, nil).Once()

		var out bytes.Buffer
		err := RunCreateProject(
			ctx, passthroughTxManager{}, projectUseCase, apiKeyUseCase, logger,
			"billing", "", "", "json", IOTuple{Writer: &out},
		)
		require.NoError(t, err)

		var result CreateProjectResult
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.NotEqual(t, uuid.Nil, result.OwnerID)
		assert.Equal(t, "evk_x.y", result.Token)
	})

	t.Run("api-key-error", func(t *testing.T) {
		projectUseCase := &authMocks.MockProjectUseCase{}
		apiKeyUseCase := &authMocks.MockAPIKeyUseCase{}
		projectUseCase.On("Create", mock.Anything, mock.Anything, "billing").
			Return(&authDomain.Project{ID: uuid.Must(uuid.NewV7())}, nil).Once()
		apiKeyUseCase.On("Create", mock.Anything, mock.Anything, "billing").
			Return(nil, errors.New("boom")).Once()

		var out bytes.Buffer
		err := RunCreateProject(
			ctx, passthroughTxManager{}, projectUseCase, apiKeyUseCase, logger,
			"billing", "", "", "text", IOTuple{Writer: &out},
		)
		require.ErrorContains(t, err, "failed to create api key")
		assert.Empty(t, out.String())
	})

	t.Run("invalid-owner-id", func(t *testing.T) {
		err := RunCreateProject(
			ctx, passthroughTxManager{}, nil, nil, logger,
			"billing", "not-a-uuid", "", "text", IOTuple{Writer: &bytes.Buffer{}},
		)
		require.ErrorContains(t, err, "invalid owner id")
	})

	t.Run("invalid-format", func(t *testing.T) {
		err := RunCreateProject(
			ctx, passthroughTxManager{}, nil, nil, logger,
			"billing", "", "", "yaml", IOTuple{Writer: &bytes.Buffer{}},
		)
		require.ErrorContains(t, err, "invalid format")
	})
}

// TestRunCreateProject_SQLite creates a project end to end and authenticates with the printed token.
func TestRunCreateProject_SQLite(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupSQLiteDB(t)

	projectUseCase := authUseCase.NewProjectUseCase(authRepository.NewMySQLProjectRepository(db))
	apiKeyUseCase := authUseCase.NewAPIKeyUseCase(
		authRepository.NewMySQLAPIKeyRepository(db),
		authService.NewAPIKeyService(),
		cache.New(kv.NewMemoryStore()),
	)

	var out bytes.Buffer
	err := RunCreateProject(
		ctx, database.NewTxManager(db), projectUseCase, apiKeyUseCase, slog.Default(),
		"billing", "", "ci", "json", IOTuple{Writer: &out},
	)
	require.NoError(t, err)

	var result CreateProjectResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))

	caller, err := apiKeyUseCase.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.OwnerID, caller.UserID)
	assert.Equal(t, result.APIKeyID, caller.APIKeyID)

	owner, err := projectUseCase.IsOwner(ctx, caller.UserID, result.ProjectID)
	require.NoError(t, err)
	assert.True(t, owner)
}
