// Package dto provides data transfer objects for project HTTP requests and responses.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	authDomain "github.com/allisson/envvault/internal/auth/domain"
	customValidation "github.com/allisson/envvault/internal/validation"
)

// CreateProjectRequest contains the parameters for creating a project owned by the caller.
type CreateProjectRequest struct {
	Name string `json:"name"`
}

// Validate checks if the create project request is valid.
func (r *CreateProjectRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
	)
}

// ProjectResponse is the wire shape of a project.
type ProjectResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// MapProjectToResponse converts a domain project into its response.
func MapProjectToResponse(project *authDomain.Project) ProjectResponse {
	return ProjectResponse{
		ID:        project.ID.String(),
		OwnerID:   project.OwnerID.String(),
		Name:      project.Name,
		CreatedAt: project.CreatedAt,
	}
}
