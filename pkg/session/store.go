package session

import (
	"context"
	"sync"
	"time"

	"github.com/harun/literelay/internal/observability"
	"github.com/harun/literelay/internal/tracing"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

// Store manages in-memory conversation sessions keyed by session ID.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewStore creates a new in-memory session store
func NewStore() *Store {
	observability.EnsureRegistered()

	s := &Store{
		sessions: make(map[string]Session),
	}

	log.Info().Msg("Session store initialized")
	observability.SetActiveSessions(0)

	return s
}

// GetOrCreate returns a copy of the stored session, or a fresh empty
// session when the ID is unknown
func (s *Store) GetOrCreate(id string) Session {
	return s.GetOrCreateWithContext(context.Background(), id)
}

// GetOrCreateWithContext returns a copy of the stored session with tracing context.
// A fresh session is not inserted; it only becomes visible after Save.
func (s *Store) GetOrCreateWithContext(ctx context.Context, id string) Session {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = tracing.WithSessionKey(ctx, id)
	ctx, span := tracing.StartSpan(
		ctx,
		"literelay.session",
		"session.get_or_create",
		attribute.String("session_id", id),
	)
	defer span.End()
	logger := tracing.LoggerFromContext(ctx, log.Logger)

	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if ok {
		span.SetAttributes(attribute.Int("turns", sess.Turns()))
		return sess
	}

	logger.Debug().Str("session_id", id).Msg("Session not found, starting fresh")

	return Session{
		ID:        id,
		CreatedAt: time.Now(),
	}
}

// Get returns a copy of the stored session and whether it exists
func (s *Store) Get(id string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	return sess, ok
}

// Save upserts a session
func (s *Store) Save(sess Session) {
	s.SaveWithContext(context.Background(), sess)
}

// SaveWithContext upserts a session with tracing context. The stored value
// is replaced wholesale; the last writer wins for concurrent saves.
func (s *Store) SaveWithContext(ctx context.Context, sess Session) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = tracing.WithSessionKey(ctx, sess.ID)
	ctx, span := tracing.StartSpan(
		ctx,
		"literelay.session",
		"session.save",
		attribute.String("session_id", sess.ID),
		attribute.Int("turns", sess.Turns()),
	)
	defer span.End()
	logger := tracing.LoggerFromContext(ctx, log.Logger)

	sess.UpdatedAt = time.Now()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = sess.UpdatedAt
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	count := len(s.sessions)
	s.mu.Unlock()

	observability.SetActiveSessions(count)

	logger.Debug().
		Str("session_id", sess.ID).
		Int("turns", sess.Turns()).
		Msg("Session saved")
}

// Delete removes a session
func (s *Store) Delete(id string) {
	s.DeleteWithContext(context.Background(), id)
}

// DeleteWithContext removes a session with tracing context.
// Deleting an unknown ID is a no-op.
func (s *Store) DeleteWithContext(ctx context.Context, id string) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = tracing.WithSessionKey(ctx, id)
	ctx, span := tracing.StartSpan(
		ctx,
		"literelay.session",
		"session.delete",
		attribute.String("session_id", id),
	)
	defer span.End()
	logger := tracing.LoggerFromContext(ctx, log.Logger)

	s.mu.Lock()
	delete(s.sessions, id)
	count := len(s.sessions)
	s.mu.Unlock()

	observability.SetActiveSessions(count)

	logger.Info().Str("session_id", id).Msg("Session deleted")
}

// Len returns the number of stored sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}
