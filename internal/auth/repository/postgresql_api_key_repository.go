// Package repository implements data persistence for API keys and projects.
//
// Provides PostgreSQL and MySQL implementations with transaction support via database.GetTx().
// PostgreSQL uses native UUID types, MySQL uses BINARY(16) types. The MySQL implementations
// also serve SQLite, which shares the same placeholders and binary UUID encoding.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	authDomain "github.com/allisson/envvault/internal/auth/domain"
	"github.com/allisson/envvault/internal/database"
)

// PostgreSQLAPIKeyRepository implements APIKey persistence for PostgreSQL.
type PostgreSQLAPIKeyRepository struct {
	db *sql.DB
}

// Create inserts a new APIKey into the PostgreSQL database.
func (p *PostgreSQLAPIKeyRepository) Create(ctx context.Context, apiKey *authDomain.APIKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO api_keys (id, owner_id, name, secret_hash, created_at, revoked_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		apiKey.ID,
		apiKey.OwnerID,
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

// Get retrieves an APIKey by ID from the PostgreSQL database.
func (p *PostgreSQLAPIKeyRepository) Get(ctx context.Context, apiKeyID uuid.UUID) (*authDomain.APIKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, owner_id, name, secret_hash, created_at, revoked_at FROM api_keys WHERE id = $1`

	var apiKey authDomain.APIKey
	err := querier.QueryRowContext(ctx, query, apiKeyID).Scan(
		&apiKey.ID,
		&apiKey.OwnerID,
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

	return &apiKey, nil
}

// NewPostgreSQLAPIKeyRepository creates a new PostgreSQL APIKey repository.
func NewPostgreSQLAPIKeyRepository(db *sql.DB) *PostgreSQLAPIKeyRepository {
	return &PostgreSQLAPIKeyRepository{db: db}
}
