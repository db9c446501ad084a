// Package repository implements data persistence for secret versions.
//
// Provides PostgreSQL and MySQL implementations with transaction support via database.GetTx().
// The MySQL implementation also serves SQLite. Version numbers are never assigned here: the
// caller computes max+1 and the (project_id, environment, version) unique index rejects races.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/envvault/internal/crypto/domain"
	"github.com/allisson/envvault/internal/database"
	secretsDomain "github.com/allisson/envvault/internal/secrets/domain"
)

// PostgreSQLSecretRepository implements SecretVersion persistence for PostgreSQL.
type PostgreSQLSecretRepository struct {
	db *sql.DB
}

// nonNil keeps empty byte columns from being written as NULL.
func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}

// Create inserts a SecretVersion. Returns ErrDuplicateVersion when the version is taken.
func (p *PostgreSQLSecretRepository) Create(ctx context.Context, secretVersion *secretsDomain.SecretVersion) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO secret_versions
			  (id, project_id, environment, version, ciphertext, iv, salt, checksum, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	envelope := secretVersion.Envelope
	_, err := querier.ExecContext(
		ctx,
		query,
		secretVersion.ID,
		secretVersion.ProjectID,
		secretVersion.Environment,
		secretVersion.Version,
		envelope.Ciphertext,
		envelope.IV,
		envelope.Salt,
		nonNil(envelope.Checksum),
		secretVersion.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return secretsDomain.ErrDuplicateVersion
		}
		return database.WrapError(err, "failed to create secret version")
	}
	return nil
}

// MaxVersion returns the highest version of an environment, or 0 when it has none.
func (p *PostgreSQLSecretRepository) MaxVersion(
	ctx context.Context,
	projectID uuid.UUID,
	environment string,
) (uint, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COALESCE(MAX(version), 0) FROM secret_versions
			  WHERE project_id = $1 AND environment = $2`

	var version uint
	if err := querier.QueryRowContext(ctx, query, projectID, environment).Scan(&version); err != nil {
		return 0, database.WrapError(err, "failed to get max secret version")
	}
	return version, nil
}

// ListEnvironments returns each environment of a project with its latest version.
func (p *PostgreSQLSecretRepository) ListEnvironments(
	ctx context.Context,
	projectID uuid.UUID,
) ([]secretsDomain.EnvironmentSummary, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT environment, MAX(version) FROM secret_versions
			  WHERE project_id = $1
			  GROUP BY environment
			  ORDER BY environment`

	rows, err := querier.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, database.WrapError(err, "failed to list environments")
	}
	defer func() {
		_ = rows.Close()
	}()

	environments := make([]secretsDomain.EnvironmentSummary, 0)
	for rows.Next() {
		var summary secretsDomain.EnvironmentSummary
		if err := rows.Scan(&summary.Environment, &summary.LatestVersion); err != nil {
			return nil, database.WrapError(err, "failed to scan environment")
		}
		environments = append(environments, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, database.WrapError(err, "failed to iterate environments")
	}
	return environments, nil
}

// ListVersions returns versions newest first, with envelopes only when includeEnvelope is true.
func (p *PostgreSQLSecretRepository) ListVersions(
	ctx context.Context,
	projectID uuid.UUID,
	environment string,
	includeEnvelope bool,
	offset, limit int,
) ([]*secretsDomain.SecretVersion, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, project_id, environment, version, created_at FROM secret_versions
			  WHERE project_id = $1 AND environment = $2
			  ORDER BY version DESC
			  LIMIT $3 OFFSET $4`
	if includeEnvelope {
		query = `SELECT id, project_id, environment, version, created_at, ciphertext, iv, salt, checksum
				 FROM secret_versions
				 WHERE project_id = $1 AND environment = $2
				 ORDER BY version DESC
				 LIMIT $3 OFFSET $4`
	}

	rows, err := querier.QueryContext(ctx, query, projectID, environment, limit, offset)
	if err != nil {
		return nil, database.WrapError(err, "failed to list secret versions")
	}
	defer func() {
		_ = rows.Close()
	}()

	versions := make([]*secretsDomain.SecretVersion, 0)
	for rows.Next() {
		var sv secretsDomain.SecretVersion
		dest := []any{&sv.ID, &sv.ProjectID, &sv.Environment, &sv.Version, &sv.CreatedAt}
		if includeEnvelope {
			sv.Envelope = &cryptoDomain.Envelope{}
			dest = append(dest, &sv.Envelope.Ciphertext, &sv.Envelope.IV, &sv.Envelope.Salt, &sv.Envelope.Checksum)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, database.WrapError(err, "failed to scan secret version")
		}
		versions = append(versions, &sv)
	}
	if err := rows.Err(); err != nil {
		return nil, database.WrapError(err, "failed to iterate secret versions")
	}
	return versions, nil
}

// GetLatest returns the highest version. Returns ErrSecretVersionNotFound for an empty environment.
func (p *PostgreSQLSecretRepository) GetLatest(
	ctx context.Context,
	projectID uuid.UUID,
	environment string,
) (*secretsDomain.SecretVersion, error) {
	query := `SELECT id, project_id, environment, version, created_at, ciphertext, iv, salt, checksum
			  FROM secret_versions
			  WHERE project_id = $1 AND environment = $2
			  ORDER BY version DESC
			  LIMIT 1`

	return p.getOne(ctx, query, projectID, environment)
}

// GetByID returns a version with its envelope. Returns ErrSecretVersionNotFound if missing.
func (p *PostgreSQLSecretRepository) GetByID(
	ctx context.Context,
	versionID uuid.UUID,
) (*secretsDomain.SecretVersion, error) {
	query := `SELECT id, project_id, environment, version, created_at, ciphertext, iv, salt, checksum
			  FROM secret_versions
			  WHERE id = $1`

	return p.getOne(ctx, query, versionID)
}

func (p *PostgreSQLSecretRepository) getOne(
	ctx context.Context,
	query string,
	args ...any,
) (*secretsDomain.SecretVersion, error) {
	querier := database.GetTx(ctx, p.db)

	sv := secretsDomain.SecretVersion{Envelope: &cryptoDomain.Envelope{}}
	err := querier.QueryRowContext(ctx, query, args...).Scan(
		&sv.ID,
		&sv.ProjectID,
		&sv.Environment,
		&sv.Version,
		&sv.CreatedAt,
		&sv.Envelope.Ciphertext,
		&sv.Envelope.IV,
		&sv.Envelope.Salt,
		&sv.Envelope.Checksum,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, secretsDomain.ErrSecretVersionNotFound
		}
		return nil, database.WrapError(err, "failed to get secret version")
	}
	return &sv, nil
}

// NewPostgreSQLSecretRepository creates a new PostgreSQL SecretVersion repository.
func NewPostgreSQLSecretRepository(db *sql.DB) *PostgreSQLSecretRepository {
	return &PostgreSQLSecretRepository{db: db}
}
