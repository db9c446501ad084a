package usecase

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	authDomain "github.com/allisson/envvault/internal/auth/domain"
	apperrors "github.com/allisson/envvault/internal/errors"
)

const maxProjectNameLength = 255

// projectUseCase implements ProjectUseCase.
type projectUseCase struct {
	projectRepo ProjectRepository
}

// Create validates the name and persists a new project.
func (p *projectUseCase) Create(ctx context.Context, ownerID uuid.UUID, name string) (*authDomain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxProjectNameLength {
		return nil, authDomain.ErrInvalidProjectName
	}

	project := &authDomain.Project{
		ID:        uuid.Must(uuid.NewV7()),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := p.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Get hides projects owned by someone else behind ErrProjectNotFound.
func (p *projectUseCase) Get(ctx context.Context, userID, projectID uuid.UUID) (*authDomain.Project, error) {
	project, err := p.projectRepo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsOwnedBy(userID) {
		return nil, authDomain.ErrProjectNotFound
	}
	return project, nil
}

// IsOwner reports ownership. Only backend failures are returned as errors.
func (p *projectUseCase) IsOwner(ctx context.Context, userID, projectID uuid.UUID) (bool, error) {
	project, err := p.projectRepo.Get(ctx, projectID)
	if err != nil {
		if apperrors.Is(err, authDomain.ErrProjectNotFound) {
			return false, nil
		}
		return false, err
	}
	return project.IsOwnedBy(userID), nil
}

// NewProjectUseCase creates a new ProjectUseCase.
func NewProjectUseCase(projectRepo ProjectRepository) ProjectUseCase {
	return &projectUseCase{projectRepo: projectRepo}
}
