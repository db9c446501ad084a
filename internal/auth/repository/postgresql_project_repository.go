package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	authDomain "github.com/allisson/envvault/internal/auth/domain"
	"github.com/allisson/envvault/internal/database"
)

// PostgreSQLProjectRepository implements Project persistence for PostgreSQL.
type PostgreSQLProjectRepository struct {
	db *sql.DB
}

// Create inserts a new Project into the PostgreSQL database.
func (p *PostgreSQLProjectRepository) Create(ctx context.Context, project *authDomain.Project) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO projects (id, owner_id, name, created_at) VALUES ($1, $2, $3, $4)`

	_, err := querier.ExecContext(ctx, query, project.ID, project.OwnerID, project.Name, project.CreatedAt)
	if err != nil {
		return database.WrapError(err, "failed to create project")
	}
	return nil
}

// Get retrieves a Project by ID from the PostgreSQL database.
func (p *PostgreSQLProjectRepository) Get(ctx context.Context, projectID uuid.UUID) (*authDomain.Project, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, owner_id, name, created_at FROM projects WHERE id = $1`

	var project authDomain.Project
	err := querier.QueryRowContext(ctx, query, projectID).Scan(
		&project.ID,
		&project.OwnerID,
		&project.Name,
		&project.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrProjectNotFound
		}
		return nil, database.WrapError(err, "failed to get project")
	}

	return &project, nil
}

// NewPostgreSQLProjectRepository creates a new PostgreSQL Project repository.
func NewPostgreSQLProjectRepository(db *sql.DB) *PostgreSQLProjectRepository {
	return &PostgreSQLProjectRepository{db: db}
}
