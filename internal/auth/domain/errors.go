package domain

import (
	"github.com/allisson/envvault/internal/errors"
)

// Authentication and ownership errors.
var (
	// ErrAPIKeyNotFound indicates an API key with the specified ID was not found.
	ErrAPIKeyNotFound = errors.Wrap(errors.ErrNotFound, "api key not found")

	// ErrInvalidAPIKey indicates a malformed, unknown, revoked or mismatched API key.
	ErrInvalidAPIKey = errors.Wrap(errors.ErrUnauthorized, "invalid api key")

	// ErrProjectNotFound indicates the project does not exist or belongs to someone else.
	ErrProjectNotFound = errors.Wrap(errors.ErrNotFound, "project not found")

	// ErrInvalidProjectName indicates an empty or oversized project name.
	ErrInvalidProjectName = errors.Wrap(errors.ErrInvalidInput, "project name must be 1 to 255 characters")
)
