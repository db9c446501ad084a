package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	authDomain "github.com/allisson/envvault/internal/auth/domain"
	authUseCase "github.com/allisson/envvault/internal/auth/usecase"
	"github.com/allisson/envvault/internal/database"
)

// CreateProjectResult is printed by create-project. Token is shown only once.
type CreateProjectResult struct {
	ProjectID uuid.UUID `json:"project_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	APIKeyID  uuid.UUID `json:"api_key_id"`
	Token     string    `json:"token"` //nolint:gosec // printed once to the operator
}

// RunCreateProject creates a project together with an API key for its owner in one
// transaction. An empty ownerID creates a new owner identity.
//
// Requirements: Database must be migrated and accessible.
func RunCreateProject(
	ctx context.Context,
	txManager database.TxManager,
	projectUseCase authUseCase.ProjectUseCase,
	apiKeyUseCase authUseCase.APIKeyUseCase,
	logger *slog.Logger,
	name string,
	ownerID string,
	keyName string,
	format string,
	io IOTuple,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	owner, err := parseOwnerID(ownerID)
	if err != nil {
		return err
	}
	if keyName == "" {
		keyName = name
	}

	logger.Info("creating new project", slog.String("name", name), slog.String("owner_id", owner.String()))

	var (
		project *authDomain.Project
		apiKey  *authDomain.CreateAPIKeyOutput
	)
	err = txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		project, err = projectUseCase.Create(ctx, owner, name)
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		apiKey, err = apiKeyUseCase.Create(ctx, owner, keyName)
		if err != nil {
			return fmt.Errorf("failed to create api key: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	result := CreateProjectResult{
		ProjectID: project.ID,
		OwnerID:   owner,
		APIKeyID:  apiKey.ID,
		Token:     apiKey.Token,
	}
	if format == "json" {
		if err := outputJSON(result, io.Writer); err != nil {
			return err
		}
	} else {
		outputProjectText(result, io.Writer)
	}

	logger.Info("project created successfully",
		slog.String("project_id", project.ID.String()),
		slog.String("api_key_id", apiKey.ID.String()),
	)
	return nil
}

// parseOwnerID parses ownerID, generating a new identity when it is empty.
func parseOwnerID(ownerID string) (uuid.UUID, error) {
	if ownerID == "" {
		return uuid.NewV7()
	}
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid owner id: %w", err)
	}
	return owner, nil
}

func outputProjectText(result CreateProjectResult, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nProject created successfully!")
	_, _ = fmt.Fprintf(writer, "Project ID: %s\n", result.ProjectID)
	_, _ = fmt.Fprintf(writer, "Owner ID: %s\n", result.OwnerID)
	_, _ = fmt.Fprintf(writer, "API Key ID: %s\n", result.APIKeyID)
	_, _ = fmt.Fprintf(writer, "Token: %s\n", result.Token)
	_, _ = fmt.Fprintln(writer, "\nIMPORTANT: The token is shown only once. Store it securely.")
}
