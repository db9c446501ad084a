package dto

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	authDomain "github.com/allisson/envvault/internal/auth/domain"
)

func TestCreateProjectRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request CreateProjectRequest
		wantErr bool
	}{
		{name: "valid", request: CreateProjectRequest{Name: "billing"}, wantErr: false},
		{name: "empty", request: CreateProjectRequest{Name: ""}, wantErr: true},
		{name: "blank", request: CreateProjectRequest{Name: "   "}, wantErr: true},
		{name: "too long", request: CreateProjectRequest{Name: strings.Repeat("a", 256)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMapProjectToResponse(t *testing.T) {
	project := &authDomain.Project{
		ID:        uuid.Must(uuid.NewV7()),
		OwnerID:   uuid.Must(uuid.NewV7()),
		Name:      "web",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	resp := MapProjectToResponse(project)
	assert.Equal(t, project.ID.String(), resp.ID)
	assert.Equal(t, project.OwnerID.String(), resp.OwnerID)
	assert.Equal(t, "web", resp.Name)
	assert.Equal(t, project.CreatedAt, resp.CreatedAt)
}
