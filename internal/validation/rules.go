// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/envvault/internal/errors"
)

var (
	// environmentRegex matches environment names such as "production" or "eu-west.staging"
	environmentRegex = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// EnvironmentName validates environment names: 1 to 64 characters of [A-Za-z0-9._-]
var EnvironmentName = validation.NewStringRuleWithError(
	func(s string) bool {
		return environmentRegex.MatchString(s)
	},
	validation.NewError("validation_environment_name", "must be 1 to 64 characters of letters, digits, '.', '_' or '-'"),
)

// UUID validates that a string is a canonical UUID
var UUID = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := uuid.Parse(s)
		return err == nil
	},
	validation.NewError("validation_uuid", "must be a valid UUID"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
