package internal

import (
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
)

// The accounts and site_snapshots schema ships inside the binary; a fresh
// Postgres database is migrated to the current version on startup.
//
//go:embed migrations/*.sql
var migrations embed.FS

// RunMigrations applies any pending goose migrations. Safe to run on every
// boot; goose skips versions already recorded in the database.
func RunMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.Up(db, "migrations")
}
