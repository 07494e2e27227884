package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"github.com/labcatalog/catalog-sync/database"
)

func newMigrateDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Migrate the database down",
		Long: `Migrate the catalog schema down by reverting migrations.
WARNING: This operation can result in data loss. Use with caution.

Examples:
  # Revert the latest migration
  catalog-sync migrate down --config config.yaml --num-steps 1 --yes

  # Revert everything (WARNING: destroys all data)
  catalog-sync migrate down --config config.yaml --yes`,
		RunE: runMigrateDown,
	}
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	steps, err := numSteps(cmd)
	if err != nil {
		return err
	}

	m, target, err := setupMigration(cmd)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if err := confirmFromFlags(cmd, downPrompt(target, steps)); err != nil {
		return err
	}

	if err := executeMigrateDown(m, steps); err != nil {
		return err
	}
	logMigrationVersion(m)
	return nil
}

func downPrompt(target string, steps int) string {
	if steps == 0 {
		return fmt.Sprintf("WARNING: This will revert ALL migrations on %s and remove every catalog table. Continue?", target)
	}
	return fmt.Sprintf("WARNING: This will revert %d migration(s) on %s and may result in data loss. Continue?", steps, target)
}

func executeMigrateDown(m database.Migrator, steps int) error {
	var err error
	if steps == 0 {
		slog.Warn("Migrating down all steps, this will remove the whole schema")
		err = m.Down()
	} else {
		slog.Info("Migrating down", "steps", steps)
		err = m.Steps(-steps)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		slog.Info("No migrations to revert, database is already at the oldest version")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	slog.Info("Migration completed successfully")
	return nil
}
