package commands

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/allisson/envvault/internal/database"
)

// RunMigrations applies every pending embedded migration for driver.
// Returns nil when the schema is already current.
func RunMigrations(db *sql.DB, driver string, logger *slog.Logger) error {
	logger.Info("running database migrations", slog.String("driver", driver))

	if err := database.Migrate(db, driver); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}
