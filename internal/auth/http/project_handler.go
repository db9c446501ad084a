package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/allisson/envvault/internal/auth/domain"
	"github.com/allisson/envvault/internal/auth/http/dto"
	authUseCase "github.com/allisson/envvault/internal/auth/usecase"
	apperrors "github.com/allisson/envvault/internal/errors"
	"github.com/allisson/envvault/internal/httputil"
	customValidation "github.com/allisson/envvault/internal/validation"
)

// ProjectHandler handles HTTP requests for project management.
type ProjectHandler struct {
	projectUseCase authUseCase.ProjectUseCase
	logger         *slog.Logger
}

// NewProjectHandler creates a new project handler with required dependencies.
func NewProjectHandler(projectUseCase authUseCase.ProjectUseCase, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectUseCase: projectUseCase,
		logger:         logger,
	}
}

// CreateHandler creates a project owned by the caller.
// POST /v1/projects - Returns 201 Created with the project.
func (h *ProjectHandler) CreateHandler(c *gin.Context) {
	caller, ok := GetCaller(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	project, err := h.projectUseCase.Create(c.Request.Context(), caller.UserID, req.Name)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapProjectToResponse(project))
}

// GetHandler returns a project owned by the caller.
// GET /v1/projects/:id - Returns 404 for unknown projects and projects owned by others.
func (h *ProjectHandler) GetHandler(c *gin.Context) {
	caller, ok := GetCaller(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, authDomain.ErrProjectNotFound, h.logger)
		return
	}

	project, err := h.projectUseCase.Get(c.Request.Context(), caller.UserID, projectID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapProjectToResponse(project))
}
