package domain

import (
	"time"

	"github.com/google/uuid"
)

// Caller is the authenticated principal of a request.
type Caller struct {
	UserID   uuid.UUID
	APIKeyID uuid.UUID
}

// Project groups the environments of one application.
type Project struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	CreatedAt time.Time
}

// IsOwnedBy reports whether userID owns the project.
func (p *Project) IsOwnedBy(userID uuid.UUID) bool {
	return p.OwnerID == userID
}
