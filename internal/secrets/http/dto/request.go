// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"encoding/base64"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/allisson/envvault/internal/crypto/domain"
	secretsDomain "github.com/allisson/envvault/internal/secrets/domain"
	customValidation "github.com/allisson/envvault/internal/validation"
)

// UploadSecretRequest is the union of both upload shapes. ValidateUploadShape guarantees only
// one shape's fields are present.
type UploadSecretRequest struct {
	ProjectID   string `json:"project_id"`
	Environment string `json:"environment"`

	// Plaintext upload, encrypted by the server.
	Content    string `json:"content,omitempty"`
	Passphrase string `json:"passphrase,omitempty"`

	// Client-sealed upload, base64 fields.
	Ciphertext string `json:"ciphertext,omitempty"`
	IV         string `json:"iv,omitempty"`
	Salt       string `json:"salt,omitempty"`
	Checksum   string `json:"checksum,omitempty"`
}

// IsPlaintext reports whether the request asks the server to encrypt.
func (r *UploadSecretRequest) IsPlaintext() bool {
	return r.Ciphertext == ""
}

// Validate checks the field formats of whichever shape the request carries.
func (r *UploadSecretRequest) Validate() error {
	rules := []*validation.FieldRules{
		validation.Field(&r.ProjectID, validation.Required, customValidation.UUID),
		validation.Field(&r.Environment, validation.Required, customValidation.EnvironmentName),
	}

	if r.IsPlaintext() {
		rules = append(rules,
			validation.Field(&r.Content, validation.Required),
			validation.Field(&r.Passphrase,
				validation.Required,
				validation.RuneLength(secretsDomain.MinPassphraseLength, 0),
			),
		)
	} else {
		rules = append(rules,
			validation.Field(&r.Ciphertext, validation.Required, customValidation.Base64),
			validation.Field(&r.IV, validation.Required, customValidation.Base64Length(cryptoDomain.IVSize)),
			validation.Field(&r.Salt, validation.Required, customValidation.Base64Length(cryptoDomain.SaltSize)),
			validation.Field(&r.Checksum, validation.Required, customValidation.Base64Length(cryptoDomain.ChecksumSize)),
		)
	}

	return validation.ValidateStruct(r, rules...)
}

// ToPayload converts a validated request into the project id and upload payload.
func (r *UploadSecretRequest) ToPayload() (uuid.UUID, secretsDomain.UploadPayload, error) {
	projectID, err := uuid.Parse(r.ProjectID)
	if err != nil {
		return uuid.Nil, nil, err
	}

	if r.IsPlaintext() {
		return projectID, secretsDomain.PlaintextPayload{
			Content:    []byte(r.Content),
			Passphrase: r.Passphrase,
		}, nil
	}

	var envelope cryptoDomain.Envelope
	fields := []struct {
		src string
		dst *[]byte
	}{
		{r.Ciphertext, &envelope.Ciphertext},
		{r.IV, &envelope.IV},
		{r.Salt, &envelope.Salt},
		{r.Checksum, &envelope.Checksum},
	}
	for _, f := range fields {
		decoded, err := base64.StdEncoding.DecodeString(f.src)
		if err != nil {
			return uuid.Nil, nil, err
		}
		*f.dst = decoded
	}

	return projectID, secretsDomain.EnvelopePayload{Envelope: envelope}, nil
}

// DecryptSecretRequest carries the passphrase for a decrypt call.
type DecryptSecretRequest struct {
	Passphrase string `json:"passphrase"`
}

// Validate checks if the decrypt request is valid.
func (r *DecryptSecretRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Passphrase, validation.Required),
	)
}
