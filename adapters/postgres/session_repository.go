package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/MAKRANE-cpu/monographie/internal/errors"
	"github.com/MAKRANE-cpu/monographie/internal/migration"
	"github.com/MAKRANE-cpu/monographie/models"
	"github.com/MAKRANE-cpu/monographie/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open connects to the session store. driver is "postgres" or "sqlite"; the
// SQLite DSN is a file path or ":memory:".
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case "postgres", "sqlite":
	default:
		return nil, errors.ConfigInvalid(fmt.Sprintf("unsupported database driver %q", driver))
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.DatabaseError("connect", err)
	}
	if driver == "sqlite" {
		// a single connection keeps an in-memory database alive and serializes writes
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate creates the session table if needed
func Migrate(ctx context.Context, db *sqlx.DB) error {
	return migration.NewRunner().Run(ctx, db)
}

// SessionRepositoryImpl implements SessionRepository over sqlx
type SessionRepositoryImpl struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sqlx.DB) ports.SessionRepository {
	return &SessionRepositoryImpl{db: db}
}

// Save inserts or replaces a session
func (r *SessionRepositoryImpl) Save(ctx context.Context, session *models.Session) error {
	history := session.History
	if history == nil {
		history = models.ChatHistory{}
	}

	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO dashboard_sessions (id, page, selected_sheet, monograph, history, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			page = excluded.page,
			selected_sheet = excluded.selected_sheet,
			monograph = excluded.monograph,
			history = excluded.history,
			updated_at = excluded.updated_at
	`), session.ID.String(), session.Page, session.SelectedSheet, session.Monograph, history,
		session.CreatedAt.UTC(), session.UpdatedAt.UTC())
	if err != nil {
		return errors.DatabaseError("save session", err)
	}
	return nil
}

// Get retrieves a session by ID
func (r *SessionRepositoryImpl) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var row struct {
		ID            string             `db:"id"`
		Page          string             `db:"page"`
		SelectedSheet string             `db:"selected_sheet"`
		Monograph     string             `db:"monograph"`
		History       models.ChatHistory `db:"history"`
		CreatedAt     time.Time          `db:"created_at"`
		UpdatedAt     time.Time          `db:"updated_at"`
	}

	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT id, page, selected_sheet, monograph, history, created_at, updated_at
		FROM dashboard_sessions
		WHERE id = ?
	`), id.String())
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("session " + id.String())
	}
	if err != nil {
		return nil, errors.DatabaseError("get session", err)
	}

	parsed, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, errors.DatabaseError("decode session id", err)
	}

	return &models.Session{
		ID:            parsed,
		Page:          row.Page,
		SelectedSheet: row.SelectedSheet,
		Monograph:     row.Monograph,
		History:       row.History,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}

// Delete removes a session; a missing session is not an error
func (r *SessionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM dashboard_sessions WHERE id = ?`), id.String())
	if err != nil {
		return errors.DatabaseError("delete session", err)
	}
	return nil
}

// PurgeBefore deletes sessions untouched since cutoff and returns how many
func (r *SessionRepositoryImpl) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM dashboard_sessions WHERE updated_at < ?`), cutoff.UTC())
	if err != nil {
		return 0, errors.DatabaseError("purge sessions", err)
	}
	return res.RowsAffected()
}
