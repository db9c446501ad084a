package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	authDomain "github.com/allisson/envvault/internal/auth/domain"
	"github.com/allisson/envvault/internal/database"
	apperrors "github.com/allisson/envvault/internal/errors"
)

// MySQLAPIKeyRepository implements APIKey persistence for MySQL and SQLite.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLAPIKeyRepository struct {
	db *sql.DB
}

// Create inserts a new APIKey using binary UUIDs.
func (m *MySQLAPIKeyRepository) Create(ctx context.Context, apiKey *authDomain.APIKey) error {
	querier := database.GetTx(ctx, m.db)

	id, err := apiKey.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal api key id")
	}
	ownerID, err := apiKey.OwnerID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal api key owner id")
	}

	query := `INSERT INTO api_keys (id, owner_id, name, secret_hash, created_at, revoked_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		ownerID,
		apiKey.Name,
		apiKey.SecretHash,
		apiKey.CreatedAt,
		apiKey.RevokedAt,
	)
	if err != nil {
		return database.WrapError(err, "failed to create api key")
	}
	return nil
}

// Get retrieves an APIKey by ID. Returns ErrAPIKeyNotFound if the key doesn't exist.
func (m *MySQLAPIKeyRepository) Get(ctx context.Context, apiKeyID uuid.UUID) (*authDomain.APIKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, owner_id, name, secret_hash, created_at, revoked_at FROM api_keys WHERE id = ?`

	id, err := apiKeyID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal api key id")
	}

	var apiKey authDomain.APIKey
	var idBytes, ownerBytes []byte

	err = querier.QueryRowContext(ctx, query, id).Scan(
		&idBytes,
		&ownerBytes,
		&apiKey.Name,
		&apiKey.SecretHash,
		&apiKey.CreatedAt,
		&apiKey.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrAPIKeyNotFound
		}
		return nil, database.WrapError(err, "failed to get api key")
	}

	if err := apiKey.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal api key id")
	}
	if err := apiKey.OwnerID.UnmarshalBinary(ownerBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal api key owner id")
	}

	return &apiKey, nil
}

// NewMySQLAPIKeyRepository creates a new MySQL APIKey repository.
func NewMySQLAPIKeyRepository(db *sql.DB) *MySQLAPIKeyRepository {
	return &MySQLAPIKeyRepository{db: db}
}
