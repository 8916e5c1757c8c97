package migration

import (
	"context"

	"github.com/MAKRANE-cpu/monographie/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations. Every statement is
// idempotent and valid on both PostgreSQL and SQLite.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createDashboardSessionsTable(ctx, db); err != nil {
		return errors.DatabaseError("create dashboard_sessions table", err)
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.DatabaseError("create indexes", err)
	}

	return nil
}

func (r *MigrationRunner) createDashboardSessionsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS dashboard_sessions (
			id TEXT PRIMARY KEY,
			page TEXT NOT NULL DEFAULT 'overview',
			selected_sheet TEXT NOT NULL DEFAULT '',
			monograph TEXT NOT NULL DEFAULT '',
			history TEXT NOT NULL DEFAULT '[]',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_dashboard_sessions_updated_at
		ON dashboard_sessions (updated_at)
	`)
	return err
}
