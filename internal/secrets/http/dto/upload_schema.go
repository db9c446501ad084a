package dto

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "github.com/allisson/envvault/internal/errors"
)

// uploadSchemaJSON accepts exactly one of the two upload shapes. Field formats are checked
// afterwards by UploadSecretRequest.Validate.
const uploadSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "oneOf": [
    {
      "title": "plaintext",
      "properties": {
        "project_id": {"type": "string"},
        "environment": {"type": "string"},
        "content": {"type": "string"},
        "passphrase": {"type": "string"}
      },
      "required": ["project_id", "environment", "content", "passphrase"],
      "additionalProperties": false
    },
    {
      "title": "envelope",
      "properties": {
        "project_id": {"type": "string"},
        "environment": {"type": "string"},
        "ciphertext": {"type": "string"},
        "iv": {"type": "string"},
        "salt": {"type": "string"},
        "checksum": {"type": "string"}
      },
      "required": ["project_id", "environment", "ciphertext", "iv", "salt", "checksum"],
      "additionalProperties": false
    }
  ]
}`

var compiledUploadSchema = mustCompileUploadSchema()

func mustCompileUploadSchema() *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(uploadSchemaJSON))
	if err != nil {
		panic(err)
	}
	return schema
}

// ValidateUploadShape checks body against the upload union schema. A document matching neither
// shape, or both, is rejected with ErrInvalidInput.
func ValidateUploadShape(body []byte) error {
	result, err := compiledUploadSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "malformed upload document")
	}

	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}
		return apperrors.Wrap(
			apperrors.ErrInvalidInput,
			"upload must be either {project_id, environment, content, passphrase} or "+
				"{project_id, environment, ciphertext, iv, salt, checksum}: "+strings.Join(messages, "; "),
		)
	}
	return nil
}
