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

// MySQLProjectRepository implements Project persistence for MySQL and SQLite.
type MySQLProjectRepository struct {
	db *sql.DB
}

// Create inserts a new Project using binary UUIDs.
func (m *MySQLProjectRepository) Create(ctx context.Context, project *authDomain.Project) error {
	querier := database.GetTx(ctx, m.db)

	id, err := project.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal project id")
	}
	ownerID, err := project.OwnerID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal project owner id")
	}

	query := `INSERT INTO projects (id, owner_id, name, created_at) VALUES (?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, id, ownerID, project.Name, project.CreatedAt)
	if err != nil {
		return database.WrapError(err, "failed to create project")
	}
	return nil
}

// Get retrieves a Project by ID. Returns ErrProjectNotFound if the project doesn't exist.
func (m *MySQLProjectRepository) Get(ctx context.Context, projectID uuid.UUID) (*authDomain.Project, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, owner_id, name, created_at FROM projects WHERE id = ?`

	id, err := projectID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal project id")
	}

	var project authDomain.Project
	var idBytes, ownerBytes []byte

	err = querier.QueryRowContext(ctx, query, id).Scan(
		&idBytes,
		&ownerBytes,
		&project.Name,
		&project.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrProjectNotFound
		}
		return nil, database.WrapError(err, "failed to get project")
	}

	if err := project.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal project id")
	}
	if err := project.OwnerID.UnmarshalBinary(ownerBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal project owner id")
	}

	return &project, nil
}

// NewMySQLProjectRepository creates a new MySQL Project repository.
func NewMySQLProjectRepository(db *sql.DB) *MySQLProjectRepository {
	return &MySQLProjectRepository{db: db}
}
