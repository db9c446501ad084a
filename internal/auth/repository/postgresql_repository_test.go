package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/envvault/internal/auth/domain"
	"github.com/allisson/envvault/internal/database"
)

func newPostgresMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, mock
}

func TestPostgreSQLAPIKeyRepository_Create(t *testing.T) {
	db, mock := newPostgresMock(t)
	repo := NewPostgreSQLAPIKeyRepository(db)

	apiKey := &authDomain.APIKey{
		ID:         uuid.Must(uuid.NewV7()),
		OwnerID:    uuid.Must(uuid.NewV7()),
		Name:       "ci",
		SecretHash: "$argon2id$hash",
		CreatedAt:  time.Now().UTC(),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO api_keys")).
		WithArgs(apiKey.ID, apiKey.OwnerID, apiKey.Name, apiKey.SecretHash, apiKey.CreatedAt, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), apiKey))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAPIKeyRepository_Create_InTransaction(t *testing.T) {
	db, mock := newPostgresMock(t)
	repo := NewPostgreSQLAPIKeyRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO api_keys")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := database.NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
		return repo.Create(ctx, &authDomain.APIKey{ID: uuid.Must(uuid.NewV7())})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAPIKeyRepository_Get(t *testing.T) {
	ctx := context.Background()
	id := uuid.Must(uuid.NewV7())
	ownerID := uuid.Must(uuid.NewV7())
	createdAt := time.Now().UTC()
	query := regexp.QuoteMeta("SELECT id, owner_id, name, secret_hash, created_at, revoked_at FROM api_keys WHERE id = $1")

	t.Run("Success", func(t *testing.T) {
		db, mock := newPostgresMock(t)
		rows := sqlmock.NewRows([]string{"id", "owner_id", "name", "secret_hash", "created_at", "revoked_at"}).
			AddRow(id.String(), ownerID.String(), "ci", "hash", createdAt, nil)
		mock.ExpectQuery(query).WithArgs(id).WillReturnRows(rows)

		apiKey, err := NewPostgreSQLAPIKeyRepository(db).Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, apiKey.ID)
		assert.Equal(t, ownerID, apiKey.OwnerID)
		assert.Equal(t, "hash", apiKey.SecretHash)
		assert.Nil(t, apiKey.RevokedAt)
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock := newPostgresMock(t)
		mock.ExpectQuery(query).WithArgs(id).WillReturnError(sql.ErrNoRows)

		apiKey, err := NewPostgreSQLAPIKeyRepository(db).Get(ctx, id)
		assert.Nil(t, apiKey)
		assert.ErrorIs(t, err, authDomain.ErrAPIKeyNotFound)
	})

	t.Run("QueryError", func(t *testing.T) {
		db, mock := newPostgresMock(t)
		mock.ExpectQuery(query).WithArgs(id).WillReturnError(errors.New("connection reset"))

		_, err := NewPostgreSQLAPIKeyRepository(db).Get(ctx, id)
		assert.ErrorContains(t, err, "failed to get api key")
	})
}

func TestPostgreSQLProjectRepository(t *testing.T) {
	ctx := context.Background()
	project := &authDomain.Project{
		ID:        uuid.Must(uuid.NewV7()),
		OwnerID:   uuid.Must(uuid.NewV7()),
		Name:      "web",
		CreatedAt: time.Now().UTC(),
	}

	t.Run("Create", func(t *testing.T) {
		db, mock := newPostgresMock(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO projects (id, owner_id, name, created_at) VALUES ($1, $2, $3, $4)")).
			WithArgs(project.ID, project.OwnerID, project.Name, project.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewPostgreSQLProjectRepository(db).Create(ctx, project))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Create_Error", func(t *testing.T) {
		db, mock := newPostgresMock(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO projects")).WillReturnError(errors.New("disk full"))

		err := NewPostgreSQLProjectRepository(db).Create(ctx, project)
		assert.ErrorContains(t, err, "failed to create project")
	})

	t.Run("Get", func(t *testing.T) {
		db, mock := newPostgresMock(t)
		rows := sqlmock.NewRows([]string{"id", "owner_id", "name", "created_at"}).
			AddRow(project.ID.String(), project.OwnerID.String(), project.Name, project.CreatedAt)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, owner_id, name, created_at FROM projects WHERE id = $1")).
			WithArgs(project.ID).
			WillReturnRows(rows)

		got, err := NewPostgreSQLProjectRepository(db).Get(ctx, project.ID)
		require.NoError(t, err)
		assert.Equal(t, project, got)
	})

	t.Run("Get_NotFound", func(t *testing.T) {
		db, mock := newPostgresMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM projects")).WillReturnError(sql.ErrNoRows)

		_, err := NewPostgreSQLProjectRepository(db).Get(ctx, project.ID)
		assert.ErrorIs(t, err, authDomain.ErrProjectNotFound)
	})
}
