// Package domain defines the versioned secret records stored per project environment.
//
// Each upload appends an immutable SecretVersion. Versions of one (project, environment) pair
// start at 1 and grow by one with every upload. The stored envelope is opaque to the server
// unless the client asked it to encrypt on its behalf.
package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/envvault/internal/crypto/domain"
)

// MaxEnvironmentLength bounds environment names.
const MaxEnvironmentLength = 64

// MinPassphraseLength is the shortest passphrase accepted for server-side encryption.
const MinPassphraseLength = 8

var environmentPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// SecretVersion is one immutable upload of an environment file.
type SecretVersion struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	Environment string
	Version     uint
	// Envelope is nil when a listing omitted the ciphertext.
	Envelope  *cryptoDomain.Envelope
	CreatedAt time.Time
}

// EnvironmentSummary reports the newest version of one environment.
type EnvironmentSummary struct {
	Environment   string `json:"environment"`
	LatestVersion uint   `json:"latestVersion"`
}

// UploadResult identifies the version created by an upload.
type UploadResult struct {
	ID      uuid.UUID
	Version uint
}

// UploadPayload is either a PlaintextPayload or an EnvelopePayload.
type UploadPayload interface {
	isUploadPayload()
}

// PlaintextPayload asks the server to encrypt Content with Passphrase.
type PlaintextPayload struct {
	Content    []byte
	Passphrase string
}

// EnvelopePayload carries an envelope the client sealed itself.
type EnvelopePayload struct {
	Envelope cryptoDomain.Envelope
}

func (PlaintextPayload) isUploadPayload() {}

func (EnvelopePayload) isUploadPayload() {}

// ValidateEnvironment checks an environment name: 1 to 64 characters of [A-Za-z0-9._-].
func ValidateEnvironment(environment string) error {
	if environment == "" || len(environment) > MaxEnvironmentLength {
		return ErrInvalidEnvironment
	}
	if !environmentPattern.MatchString(environment) {
		return ErrInvalidEnvironment
	}
	return nil
}
