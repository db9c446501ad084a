package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	authUseCase "github.com/allisson/envvault/internal/auth/usecase"
)

// CreateAPIKeyResult is printed by create-api-key. Token is shown only once.
type CreateAPIKeyResult struct {
	OwnerID  uuid.UUID `json:"owner_id"`
	APIKeyID uuid.UUID `json:"api_key_id"`
	Token    string    `json:"token"` //nolint:gosec // printed once to the operator
}

// RunCreateAPIKey issues an additional API key for an existing owner.
func RunCreateAPIKey(
	ctx context.Context,
	apiKeyUseCase authUseCase.APIKeyUseCase,
	logger *slog.Logger,
	ownerID string,
	name string,
	format string,
	io IOTuple,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return fmt.Errorf("invalid owner id: %w", err)
	}

	output, err := apiKeyUseCase.Create(ctx, owner, name)
	if err != nil {
		return fmt.Errorf("failed to create api key: %w", err)
	}

	result := CreateAPIKeyResult{OwnerID: owner, APIKeyID: output.ID, Token: output.Token}
	if format == "json" {
		if err := outputJSON(result, io.Writer); err != nil {
			return err
		}
	} else {
		outputAPIKeyText(result, io.Writer)
	}

	logger.Info("api key created successfully",
		slog.String("api_key_id", output.ID.String()),
		slog.String("owner_id", owner.String()),
	)
	return nil
}

func outputAPIKeyText(result CreateAPIKeyResult, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nAPI key created successfully!")
	_, _ = fmt.Fprintf(writer, "API Key ID: %s\n", result.APIKeyID)
	_, _ = fmt.Fprintf(writer, "Token: %s\n", result.Token)
	_, _ = fmt.Fprintln(writer, "\nIMPORTANT: The token is shown only once. Store it securely.")
}
