package dto

import (
	"encoding/base64"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/envvault/internal/errors"
	secretsDomain "github.com/allisson/envvault/internal/secrets/domain"
)

func b64(n int) string {
	return base64.StdEncoding.EncodeToString(make([]byte, n))
}

func TestValidateUploadShape(t *testing.T) {
	projectID := uuid.Must(uuid.NewV7()).String()

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{
			name: "plaintext shape",
			body: `{"project_id":"` + projectID + `","environment":"dev","content":"A=1","passphrase":"passphrase"}`,
		},
		{
			name: "envelope shape",
			body: `{"project_id":"` + projectID + `","environment":"dev","ciphertext":"` + b64(20) +
				`","iv":"` + b64(12) + `","salt":"` + b64(16) + `","checksum":"` + b64(32) + `"}`,
		},
		{
			name: "both shapes",
			body: `{"project_id":"` + projectID + `","environment":"dev","content":"A=1","passphrase":"passphrase",` +
				`"ciphertext":"` + b64(20) + `","iv":"` + b64(12) + `","salt":"` + b64(16) + `","checksum":"` + b64(32) + `"}`,
			wantErr: true,
		},
		{
			name:    "neither shape",
			body:    `{"project_id":"` + projectID + `","environment":"dev"}`,
			wantErr: true,
		},
		{
			name:    "envelope missing salt",
			body:    `{"project_id":"` + projectID + `","environment":"dev","ciphertext":"x","iv":"y","checksum":"z"}`,
			wantErr: true,
		},
		{
			name:    "wrong type",
			body:    `{"project_id":"` + projectID + `","environment":"dev","content":42,"passphrase":"passphrase"}`,
			wantErr: true,
		},
		{
			name:    "not an object",
			body:    `[1,2,3]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUploadShape([]byte(tt.body))
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUploadSecretRequest_Validate(t *testing.T) {
	projectID := uuid.Must(uuid.NewV7()).String()

	tests := []struct {
		name    string
		request UploadSecretRequest
		wantErr string
	}{
		{
			name:    "valid plaintext",
			request: UploadSecretRequest{ProjectID: projectID, Environment: "dev", Content: "A=1", Passphrase: "passphrase"},
		},
		{
			name: "valid envelope",
			request: UploadSecretRequest{
				ProjectID: projectID, Environment: "dev",
				Ciphertext: b64(40), IV: b64(12), Salt: b64(16), Checksum: b64(32),
			},
		},
		{
			name: "envelope without checksum",
			request: UploadSecretRequest{
				ProjectID: projectID, Environment: "dev",
				Ciphertext: b64(40), IV: b64(12), Salt: b64(16),
			},
			wantErr: "checksum",
		},
		{
			name:    "invalid project id",
			request: UploadSecretRequest{ProjectID: "nope", Environment: "dev", Content: "A=1", Passphrase: "passphrase"},
			wantErr: "project_id",
		},
		{
			name:    "invalid environment",
			request: UploadSecretRequest{ProjectID: projectID, Environment: "dev/eu", Content: "A=1", Passphrase: "passphrase"},
			wantErr: "environment",
		},
		{
			name:    "short passphrase",
			request: UploadSecretRequest{ProjectID: projectID, Environment: "dev", Content: "A=1", Passphrase: "1234567"},
			wantErr: "passphrase",
		},
		{
			name:    "passphrase length counts runes",
			request: UploadSecretRequest{ProjectID: projectID, Environment: "dev", Content: "A=1", Passphrase: "ñññññññ"},
			wantErr: "passphrase",
		},
		{
			name:    "multibyte passphrase at minimum",
			request: UploadSecretRequest{ProjectID: projectID, Environment: "dev", Content: "A=1", Passphrase: "ññññññññ"},
		},
		{
			name:    "empty content",
			request: UploadSecretRequest{ProjectID: projectID, Environment: "dev", Passphrase: "passphrase"},
			wantErr: "content",
		},
		{
			name: "wrong iv length",
			request: UploadSecretRequest{
				ProjectID: projectID, Environment: "dev",
				Ciphertext: b64(40), IV: b64(16), Salt: b64(16), Checksum: b64(32),
			},
			wantErr: "iv",
		},
		{
			name: "invalid ciphertext base64",
			request: UploadSecretRequest{
				ProjectID: projectID, Environment: "dev",
				Ciphertext: "not base64!", IV: b64(12), Salt: b64(16), Checksum: b64(32),
			},
			wantErr: "ciphertext",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestUploadSecretRequest_ToPayload(t *testing.T) {
	projectID := uuid.Must(uuid.NewV7())

	t.Run("Plaintext", func(t *testing.T) {
		req := UploadSecretRequest{
			ProjectID: projectID.String(), Environment: "dev", Content: "A=1", Passphrase: "passphrase",
		}

		gotID, payload, err := req.ToPayload()
		require.NoError(t, err)
		assert.Equal(t, projectID, gotID)
		assert.Equal(t, secretsDomain.PlaintextPayload{Content: []byte("A=1"), Passphrase: "passphrase"}, payload)
	})

	t.Run("Envelope", func(t *testing.T) {
		ciphertext := []byte("sealed")
		req := UploadSecretRequest{
			ProjectID:   projectID.String(),
			Environment: "dev",
			Ciphertext:  base64.StdEncoding.EncodeToString(ciphertext),
			IV:          b64(12),
			Salt:        b64(16),
			Checksum:    b64(32),
		}

		_, payload, err := req.ToPayload()
		require.NoError(t, err)
		envelopePayload, ok := payload.(secretsDomain.EnvelopePayload)
		require.True(t, ok)
		assert.Equal(t, ciphertext, envelopePayload.Envelope.Ciphertext)
		assert.Len(t, envelopePayload.Envelope.IV, 12)
		assert.Len(t, envelopePayload.Envelope.Salt, 16)
		assert.Len(t, envelopePayload.Envelope.Checksum, 32)
	})
}

func TestDecryptSecretRequest_Validate(t *testing.T) {
	assert.NoError(t, (&DecryptSecretRequest{Passphrase: "x"}).Validate())
	assert.Error(t, (&DecryptSecretRequest{}).Validate())
}
