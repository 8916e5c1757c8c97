package ports

import (
	"context"

	"github.com/MAKRANE-cpu/monographie/models"

	"github.com/google/uuid"
)

// SessionRepository defines the interface for dashboard session persistence
type SessionRepository interface {
	// Save inserts or replaces the session
	Save(ctx context.Context, session *models.Session) error

	// Get retrieves a session by ID; a missing session yields a NOT_FOUND error
	Get(ctx context.Context, id uuid.UUID) (*models.Session, error)

	// Delete removes a session; deleting a missing session is not an error
	Delete(ctx context.Context, id uuid.UUID) error
}
