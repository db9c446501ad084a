package dto

import (
	"time"

	secretsDomain "github.com/allisson/envvault/internal/secrets/domain"
)

// UploadSecretResponse identifies the version created by an upload.
type UploadSecretResponse struct {
	ID      string `json:"id"`
	Version uint   `json:"version"`
}

// SecretVersionResponse is the wire shape of a stored version. Byte fields are base64 encoded
// by encoding/json and omitted when the listing excluded the ciphertext.
type SecretVersionResponse struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Environment string    `json:"environment"`
	Version     uint      `json:"version"`
	Ciphertext  []byte    `json:"ciphertext,omitempty"`
	IV          []byte    `json:"iv,omitempty"`
	Salt        []byte    `json:"salt,omitempty"`
	Checksum    []byte    `json:"checksum,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListSecretVersionsResponse represents a page of versions.
type ListSecretVersionsResponse struct {
	Data []SecretVersionResponse `json:"data"`
}

// EnvironmentResponse reports the newest version of one environment.
type EnvironmentResponse struct {
	Environment   string `json:"environment"`
	LatestVersion uint   `json:"latest_version"`
}

// ListEnvironmentsResponse represents the environments of a project.
type ListEnvironmentsResponse struct {
	Data []EnvironmentResponse `json:"data"`
}

// DecryptSecretResponse carries decrypted content.
// SECURITY: Must be transmitted over HTTPS in production.
type DecryptSecretResponse struct {
	Content string `json:"content"`
}

// MapUploadResultToResponse converts an upload result to an API response.
func MapUploadResultToResponse(result *secretsDomain.UploadResult) UploadSecretResponse {
	return UploadSecretResponse{
		ID:      result.ID.String(),
		Version: result.Version,
	}
}

// MapSecretVersionToResponse converts a domain version to an API response.
func MapSecretVersionToResponse(sv *secretsDomain.SecretVersion) SecretVersionResponse {
	resp := SecretVersionResponse{
		ID:          sv.ID.String(),
		ProjectID:   sv.ProjectID.String(),
		Environment: sv.Environment,
		Version:     sv.Version,
		CreatedAt:   sv.CreatedAt,
	}
	if sv.Envelope != nil {
		resp.Ciphertext = sv.Envelope.Ciphertext
		resp.IV = sv.Envelope.IV
		resp.Salt = sv.Envelope.Salt
		resp.Checksum = sv.Envelope.Checksum
	}
	return resp
}

// MapSecretVersionsToListResponse converts domain versions to a list response.
func MapSecretVersionsToListResponse(versions []*secretsDomain.SecretVersion) ListSecretVersionsResponse {
	data := make([]SecretVersionResponse, 0, len(versions))
	for _, sv := range versions {
		data = append(data, MapSecretVersionToResponse(sv))
	}
	return ListSecretVersionsResponse{Data: data}
}

// MapEnvironmentsToListResponse converts environment summaries to a list response.
func MapEnvironmentsToListResponse(environments []secretsDomain.EnvironmentSummary) ListEnvironmentsResponse {
	data := make([]EnvironmentResponse, 0, len(environments))
	for _, env := range environments {
		data = append(data, EnvironmentResponse{
			Environment:   env.Environment,
			LatestVersion: env.LatestVersion,
		})
	}
	return ListEnvironmentsResponse{Data: data}
}
