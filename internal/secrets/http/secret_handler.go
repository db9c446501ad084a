// Package http provides HTTP handlers for the versioned secret store.
// Every route requires an authenticated caller and hides projects the caller does not own.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/allisson/envvault/internal/auth/domain"
	authHTTP "github.com/allisson/envvault/internal/auth/http"
	cryptoDomain "github.com/allisson/envvault/internal/crypto/domain"
	apperrors "github.com/allisson/envvault/internal/errors"
	"github.com/allisson/envvault/internal/httputil"
	secretsDomain "github.com/allisson/envvault/internal/secrets/domain"
	"github.com/allisson/envvault/internal/secrets/http/dto"
	secretsUseCase "github.com/allisson/envvault/internal/secrets/usecase"
	customValidation "github.com/allisson/envvault/internal/validation"
)

// SecretHandler handles HTTP requests for secret versions.
type SecretHandler struct {
	secretUseCase secretsUseCase.SecretUseCase
	logger        *slog.Logger
}

// NewSecretHandler creates a new secret handler with required dependencies.
func NewSecretHandler(secretUseCase secretsUseCase.SecretUseCase, logger *slog.Logger) *SecretHandler {
	return &SecretHandler{
		secretUseCase: secretUseCase,
		logger:        logger,
	}
}

func (h *SecretHandler) caller(c *gin.Context) (*authDomain.Caller, bool) {
	caller, ok := authHTTP.GetCaller(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return nil, false
	}
	return caller, true
}

// projectID parses the :id route parameter. Unparseable ids are reported as unknown projects.
func (h *SecretHandler) projectID(c *gin.Context) (uuid.UUID, bool) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, authDomain.ErrProjectNotFound, h.logger)
		return uuid.Nil, false
	}
	return projectID, true
}

// UploadHandler appends a version to an environment.
// POST /v1/secrets - Accepts exactly one of the plaintext or envelope shapes.
// Returns 201 Created with the version id and number.
func (h *SecretHandler) UploadHandler(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if !json.Valid(body) {
		httputil.HandleBadRequestGin(c, errors.New("request body must be valid JSON"), h.logger)
		return
	}

	if err := dto.ValidateUploadShape(body); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.UploadSecretRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	projectID, payload, err := req.ToPayload()
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if p, ok := payload.(secretsDomain.PlaintextPayload); ok {
		defer cryptoDomain.Zero(p.Content)
	}

	result, err := h.secretUseCase.Upload(c.Request.Context(), caller, projectID, req.Environment, payload)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapUploadResultToResponse(result))
}

// ListEnvironmentsHandler lists the environments of a project.
// GET /v1/projects/:id/environments - Returns 200 OK with each environment's latest version.
func (h *SecretHandler) ListEnvironmentsHandler(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}

	environments, err := h.secretUseCase.ListEnvironments(c.Request.Context(), caller, projectID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEnvironmentsToListResponse(environments))
}

// ListVersionsHandler lists the versions of an environment, newest first.
// GET /v1/projects/:id/environments/:environment/versions?include_ciphertext=true&offset=0&limit=50
func (h *SecretHandler) ListVersionsHandler(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	includeCiphertext, err := strconv.ParseBool(c.DefaultQuery("include_ciphertext", "false"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, errors.New("invalid include_ciphertext parameter: must be a boolean"), h.logger)
		return
	}

	versions, err := h.secretUseCase.ListVersions(
		c.Request.Context(),
		caller,
		projectID,
		c.Param("environment"),
		includeCiphertext,
		offset,
		limit,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecretVersionsToListResponse(versions))
}

// GetLatestHandler returns the newest version of an environment with its envelope.
// GET /v1/projects/:id/environments/:environment/latest - Returns 404 when the environment is empty.
func (h *SecretHandler) GetLatestHandler(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}

	secretVersion, err := h.secretUseCase.GetLatest(c.Request.Context(), caller, projectID, c.Param("environment"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	if secretVersion == nil {
		httputil.HandleErrorGin(c, secretsDomain.ErrSecretVersionNotFound, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecretVersionToResponse(secretVersion))
}

// DecryptHandler decrypts a stored version with the supplied passphrase.
// POST /v1/secrets/:id/decrypt - Returns 404 for an unknown version, a foreign project and a
// wrong passphrase alike. SECURITY: Plaintext is zeroed after the response is written.
func (h *SecretHandler) DecryptHandler(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	versionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, secretsDomain.ErrSecretVersionNotFound, h.logger)
		return
	}

	var req dto.DecryptSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	plaintext, err := h.secretUseCase.Decrypt(c.Request.Context(), caller, versionID, req.Passphrase)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	if plaintext == nil {
		httputil.HandleErrorGin(c, secretsDomain.ErrSecretVersionNotFound, h.logger)
		return
	}
	defer cryptoDomain.Zero(plaintext)

	c.JSON(http.StatusOK, dto.DecryptSecretResponse{Content: string(plaintext)})
}
