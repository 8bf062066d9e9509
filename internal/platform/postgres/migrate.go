package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/phrazzld/tasks-api/internal/platform/postgres/migrations"
	"github.com/pressly/goose/v3"
)

// MigrationsTable records applied goose versions.
const MigrationsTable = "schema_migrations"

// ConfigureGoose points goose at the embedded migrations. goose keeps this in
// package state, so call it before any goose command.
func ConfigureGoose(logger goose.Logger) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetTableName(MigrationsTable)
	if logger != nil {
		goose.SetLogger(logger)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// Migrate runs a goose command (up, down, reset, status, version, redo)
// against db using the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB, command string, logger goose.Logger, args ...string) error {
	if err := ConfigureGoose(logger); err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, db, ".", args...); err != nil {
		return fmt.Errorf("migration %q failed: %w", command, err)
	}
	return nil
}
