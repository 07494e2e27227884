package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"github.com/labcatalog/catalog-sync/database"
)

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply pending database migrations",
		Long: `Apply pending database migrations to bring the catalog schema up to date.
The connection parameters are read from the database section of the config file.`,
		RunE: runMigrateUp,
	}
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	steps, err := numSteps(cmd)
	if err != nil {
		return err
	}

	m, target, err := setupMigration(cmd)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if err := confirmFromFlags(cmd, fmt.Sprintf("About to apply migrations to %s. Continue?", target)); err != nil {
		return err
	}

	if err := executeMigrateUp(m, steps); err != nil {
		return err
	}
	logMigrationVersion(m)
	return nil
}

func executeMigrateUp(m database.Migrator, steps int) error {
	var err error
	if steps == 0 {
		slog.Info("Applying all pending migrations")
		err = m.Up()
	} else {
		slog.Info("Applying migrations", "steps", steps)
		err = m.Steps(steps)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		slog.Info("No migrations to apply, database is up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	slog.Info("Migrations applied successfully")
	return nil
}
