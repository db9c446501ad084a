package domain

import (
	"github.com/allisson/envvault/internal/errors"
)

// Secret-specific error definitions.
var (
	// ErrSecretVersionNotFound indicates no version matched the lookup.
	ErrSecretVersionNotFound = errors.Wrap(errors.ErrNotFound, "secret version not found")

	// ErrInvalidEnvironment indicates an environment name outside [A-Za-z0-9._-]{1,64}.
	ErrInvalidEnvironment = errors.Wrap(errors.ErrInvalidInput, "invalid environment name")

	// ErrPassphraseTooShort indicates a server-side encryption passphrase under 8 characters.
	ErrPassphraseTooShort = errors.Wrap(errors.ErrInvalidInput, "passphrase must be at least 8 characters")

	// ErrEmptyContent indicates a plaintext upload without content.
	ErrEmptyContent = errors.Wrap(errors.ErrInvalidInput, "content is required")

	// ErrDuplicateVersion is returned by repositories when the (project, environment, version)
	// unique index rejects an insert.
	ErrDuplicateVersion = errors.Wrap(errors.ErrConflict, "secret version already exists")

	// ErrVersionConflict indicates concurrent uploads kept winning the next version number.
	//
	// HTTP Status: 409 Conflict
	ErrVersionConflict = errors.Wrap(errors.ErrConflict, "too many concurrent uploads for environment")
)
