package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/envvault/internal/crypto/domain"
	"github.com/allisson/envvault/internal/database"
	apperrors "github.com/allisson/envvault/internal/errors"
	secretsDomain "github.com/allisson/envvault/internal/secrets/domain"
)

// MySQLSecretRepository implements SecretVersion persistence for MySQL and SQLite.
// UUIDs are stored as BINARY(16).
type MySQLSecretRepository struct {
	db *sql.DB
}

// Create inserts a SecretVersion. Returns ErrDuplicateVersion when the version is taken.
func (m *MySQLSecretRepository) Create(ctx context.Context, secretVersion *secretsDomain.SecretVersion) error {
	querier := database.GetTx(ctx, m.db)

	id, err := secretVersion.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal secret version id")
	}
	projectID, err := secretVersion.ProjectID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal project id")
	}

	query := `INSERT INTO secret_versions
			  (id, project_id, environment, version, ciphertext, iv, salt, checksum, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	envelope := secretVersion.Envelope
	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		projectID,
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
func (m *MySQLSecretRepository) MaxVersion(ctx context.Context, projectID uuid.UUID, environment string) (uint, error) {
	querier := database.GetTx(ctx, m.db)

	pid, err := projectID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal project id")
	}

	query := `SELECT COALESCE(MAX(version), 0) FROM secret_versions WHERE project_id = ? AND environment = ?`

	var version uint
	if err := querier.QueryRowContext(ctx, query, pid, environment).Scan(&version); err != nil {
		return 0, database.WrapError(err, "failed to get max secret version")
	}
	return version, nil
}

// ListEnvironments returns each environment of a project with its latest version.
func (m *MySQLSecretRepository) ListEnvironments(
	ctx context.Context,
	projectID uuid.UUID,
) ([]secretsDomain.EnvironmentSummary, error) {
	querier := database.GetTx(ctx, m.db)

	pid, err := projectID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal project id")
	}

	query := `SELECT environment, MAX(version) FROM secret_versions
			  WHERE project_id = ?
			  GROUP BY environment
			  ORDER BY environment`

	rows, err := querier.QueryContext(ctx, query, pid)
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
func (m *MySQLSecretRepository) ListVersions(
	ctx context.Context,
	projectID uuid.UUID,
	environment string,
	includeEnvelope bool,
	offset, limit int,
) ([]*secretsDomain.SecretVersion, error) {
	querier := database.GetTx(ctx, m.db)

	pid, err := projectID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal project id")
	}

	query := `SELECT id, project_id, environment, version, created_at FROM secret_versions
			  WHERE project_id = ? AND environment = ?
			  ORDER BY version DESC
			  LIMIT ? OFFSET ?`
	if includeEnvelope {
		query = `SELECT id, project_id, environment, version, created_at, ciphertext, iv, salt, checksum
				 FROM secret_versions
				 WHERE project_id = ? AND environment = ?
				 ORDER BY version DESC
				 LIMIT ? OFFSET ?`
	}

	rows, err := querier.QueryContext(ctx, query, pid, environment, limit, offset)
	if err != nil {
		return nil, database.WrapError(err, "failed to list secret versions")
	}
	defer func() {
		_ = rows.Close()
	}()

	versions := make([]*secretsDomain.SecretVersion, 0)
	for rows.Next() {
		var sv secretsDomain.SecretVersion
		var idBytes, projectBytes []byte
		dest := []any{&idBytes, &projectBytes, &sv.Environment, &sv.Version, &sv.CreatedAt}
		if includeEnvelope {
			sv.Envelope = &cryptoDomain.Envelope{}
			dest = append(dest, &sv.Envelope.Ciphertext, &sv.Envelope.IV, &sv.Envelope.Salt, &sv.Envelope.Checksum)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, database.WrapError(err, "failed to scan secret version")
		}
		if err := unmarshalIDs(&sv, idBytes, projectBytes); err != nil {
			return nil, err
		}
		versions = append(versions, &sv)
	}
	if err := rows.Err(); err != nil {
		return nil, database.WrapError(err, "failed to iterate secret versions")
	}
	return versions, nil
}

// GetLatest returns the highest version. Returns ErrSecretVersionNotFound for an empty environment.
func (m *MySQLSecretRepository) GetLatest(
	ctx context.Context,
	projectID uuid.UUID,
	environment string,
) (*secretsDomain.SecretVersion, error) {
	pid, err := projectID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal project id")
	}

	query := `SELECT id, project_id, environment, version, created_at, ciphertext, iv, salt, checksum
			  FROM secret_versions
			  WHERE project_id = ? AND environment = ?
			  ORDER BY version DESC
			  LIMIT 1`

	return m.getOne(ctx, query, pid, environment)
}

// GetByID returns a version with its envelope. Returns ErrSecretVersionNotFound if missing.
func (m *MySQLSecretRepository) GetByID(ctx context.Context, versionID uuid.UUID) (*secretsDomain.SecretVersion, error) {
	id, err := versionID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal secret version id")
	}

	query := `SELECT id, project_id, environment, version, created_at, ciphertext, iv, salt, checksum
			  FROM secret_versions
			  WHERE id = ?`

	return m.getOne(ctx, query, id)
}

func (m *MySQLSecretRepository) getOne(
	ctx context.Context,
	query string,
	args ...any,
) (*secretsDomain.SecretVersion, error) {
	querier := database.GetTx(ctx, m.db)

	sv := secretsDomain.SecretVersion{Envelope: &cryptoDomain.Envelope{}}
	var idBytes, projectBytes []byte
	err := querier.QueryRowContext(ctx, query, args...).Scan(
		&idBytes,
		&projectBytes,
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

	if err := unmarshalIDs(&sv, idBytes, projectBytes); err != nil {
		return nil, err
	}
	return &sv, nil
}

func unmarshalIDs(sv *secretsDomain.SecretVersion, idBytes, projectBytes []byte) error {
	if err := sv.ID.UnmarshalBinary(idBytes); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal secret version id")
	}
	if err := sv.ProjectID.UnmarshalBinary(projectBytes); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal project id")
	}
	return nil
}

// NewMySQLSecretRepository creates a new MySQL SecretVersion repository.
func NewMySQLSecretRepository(db *sql.DB) *MySQLSecretRepository {
	return &MySQLSecretRepository{db: db}
}
