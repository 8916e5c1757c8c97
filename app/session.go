package app

import (
	"context"
	"sync"
	"time"

	"github.com/MAKRANE-cpu/monographie/internal"
	"github.com/MAKRANE-cpu/monographie/internal/errors"
	"github.com/MAKRANE-cpu/monographie/models"
	"github.com/MAKRANE-cpu/monographie/ports"

	"github.com/google/uuid"
)

// SessionManager owns dashboard sessions. Sessions live in memory and, when
// a repository is configured, are written through to it so that they survive
// a restart. Callers always receive copies.
type SessionManager struct {
	repo   ports.SessionRepository
	logger *internal.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*models.Session
}

// NewSessionManager creates a session manager; repo may be nil
func NewSessionManager(repo ports.SessionRepository, logger *internal.Logger) *SessionManager {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SessionManager{
		repo:     repo,
		logger:   logger.With("Sessions"),
		now:      time.Now,
		sessions: make(map[uuid.UUID]*models.Session),
	}
}

// Create starts a new empty session
func (m *SessionManager) Create(ctx context.Context) (*models.Session, error) {
	sess := models.NewSession(newSessionID(), m.now())
	if err := m.store(ctx, sess); err != nil {
		return nil, err
	}
	m.logger.Debug("created session %s", sess.ID)
	return sess.Clone(), nil
}

// Get returns a session from memory, falling back to the repository
func (m *SessionManager) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return sess.Clone(), nil
	}

	if m.repo == nil {
		return nil, errors.NotFound("session " + id.String())
	}

	stored, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[id] = stored.Clone()
	m.mu.Unlock()
	return stored, nil
}

// Resolve parses a cookie value and returns the matching session, creating
// a fresh one when the value is empty, malformed or unknown.
func (m *SessionManager) Resolve(ctx context.Context, raw string) (*models.Session, bool, error) {
	if id, err := uuid.Parse(raw); err == nil {
		sess, err := m.Get(ctx, id)
		if err == nil {
			return sess, false, nil
		}
		if !errors.Is(err, errors.CodeNotFound) {
			return nil, false, err
		}
	}

	sess, err := m.Create(ctx)
	return sess, true, err
}

// Save stores the session state and stamps its update time
func (m *SessionManager) Save(ctx context.Context, sess *models.Session) error {
	if sess == nil || sess.ID == uuid.Nil {
		return errors.InvalidInput("session without id")
	}
	sess.UpdatedAt = m.now()
	return m.store(ctx, sess)
}

// Reset clears the history and monograph of a session
func (m *SessionManager) Reset(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	sess, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Reset(m.now())
	if err := m.store(ctx, sess); err != nil {
		return nil, err
	}
	m.logger.Debug("reset session %s", id)
	return sess, nil
}

func (m *SessionManager) store(ctx context.Context, sess *models.Session) error {
	if m.repo != nil {
		if err := m.repo.Save(ctx, sess); err != nil {
			return errors.Wrap(err, "failed to persist session")
		}
	}
	m.mu.Lock()
	m.sessions[sess.ID] = sess.Clone()
	m.mu.Unlock()
	return nil
}

// newSessionID prefers time-ordered v7 ids so that stored sessions sort by age
func newSessionID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}
