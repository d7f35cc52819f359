// ABOUTME: Thread-safe session registry with TTL eviction and bounded history
// ABOUTME: Expired sessions are handed to an Archiver before leaving memory

package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Defaults match the production deployment of the original assistant:
// three hours of inactivity before eviction, five retained messages.
const (
	DefaultTTL           = 3 * time.Hour
	DefaultMaxHistory    = 5
	DefaultSweepInterval = time.Minute
)

// Archiver receives sessions that are leaving memory (eviction or
// shutdown). Implementations must tolerate being called off the request
// hot path; failures are logged by the store, never fatal.
type Archiver interface {
	SaveSessions(ctx context.Context, sessions []*Session) error
}

// Store is a thread-safe registry mapping a user ID to that user's one
// live session. A single mutex guards the whole map; network calls never
// happen under it. A background goroutine sweeps expired sessions.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session

	ttl        time.Duration
	maxHistory int

	nextID   atomic.Int64
	archiver Archiver
	logger   *slog.Logger

	done   chan struct{}
	closed bool
}

// Options tune the store. Zero values fall back to the defaults above.
type Options struct {
	TTL           time.Duration
	MaxHistory    int
	SweepInterval time.Duration
}

// NewStore creates a session store and starts its sweep goroutine.
// archiver may be nil, in which case evicted sessions are discarded.
func NewStore(opts Options, archiver Archiver, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxHistory <= 0 {
		opts.MaxHistory = DefaultMaxHistory
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}

	s := &Store{
		sessions:   make(map[string]*Session),
		ttl:        opts.TTL,
		maxHistory: opts.MaxHistory,
		archiver:   archiver,
		logger:     logger.With("component", "session"),
		done:       make(chan struct{}),
	}
	go s.sweeper(opts.SweepInterval)
	return s
}

// GetOrCreate returns a snapshot of the user's live session, creating a
// fresh one if none exists or the current one has expired. The last-call
// timestamp is refreshed, so a session being resolved cannot be swept
// concurrently. Atomic with respect to concurrent callers for the same
// user: only one session is ever created under a race.
func (s *Store) GetOrCreate(userID string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateLocked(userID).Snapshot()
}

// getOrCreateLocked must be called with mu held.
func (s *Store) getOrCreateLocked(userID string) *Session {
	now := time.Now()
	if sess, ok := s.sessions[userID]; ok {
		if !sess.Expired(now, s.ttl) {
			sess.LastCall = now
			return sess
		}
		// Stale session replaced outside the sweep still goes to the
		// archive, same as an evicted one.
		s.archive([]*Session{sess})
	}

	sess := &Session{
		UserID:   userID,
		ID:       s.nextID.Add(1),
		LastCall: now,
	}
	s.sessions[userID] = sess
	s.logger.Debug("session created", "user_id", userID, "session_id", sess.ID)
	return sess
}

// Append adds messages to the user's session under the store's critical
// section and trims the history to the configured bound, dropping the
// oldest entries first. The session is created if it does not exist, so
// an eviction between resolution and commit cannot lose the exchange.
func (s *Store) Append(userID string, msgs ...Message) {
	if len(msgs) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(userID)
	sess.History = append(sess.History, msgs...)
	if excess := len(sess.History) - s.maxHistory; excess > 0 {
		sess.History = append(sess.History[:0:0], sess.History[excess:]...)
	}
}

// UpdateLastCall refreshes the user's session timestamp without a full
// retrieval. No-op if the user has no live session.
func (s *Store) UpdateLastCall(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[userID]; ok {
		sess.LastCall = time.Now()
	}
}

// SweepExpired removes every session past its TTL at the given time,
// forwards them to the archiver, and returns the eviction count.
func (s *Store) SweepExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []*Session
	for userID, sess := range s.sessions {
		if sess.Expired(now, s.ttl) {
			expired = append(expired, sess)
			delete(s.sessions, userID)
		}
	}
	if len(expired) > 0 {
		s.archive(expired)
		s.logger.Info("expired sessions evicted", "count", len(expired))
	}
	return len(expired)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Shutdown stops the sweeper and flushes all remaining sessions to the
// archiver. Safe to call more than once.
func (s *Store) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)

	remaining := make([]*Session, 0, len(s.sessions))
	for userID, sess := range s.sessions {
		remaining = append(remaining, sess)
		delete(s.sessions, userID)
	}
	s.mu.Unlock()

	if s.archiver == nil || len(remaining) == 0 {
		return nil
	}
	if err := s.archiver.SaveSessions(ctx, remaining); err != nil {
		s.logger.Error("failed to flush sessions on shutdown", "error", err, "count", len(remaining))
		return err
	}
	s.logger.Info("sessions flushed", "count", len(remaining))
	return nil
}

// archive hands sessions to the archiver without blocking the critical
// section on storage I/O. Must be called with mu held; the sessions must
// already be out of (or about to leave) the map.
func (s *Store) archive(sessions []*Session) {
	if s.archiver == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.archiver.SaveSessions(ctx, sessions); err != nil {
			s.logger.Error("failed to archive sessions", "error", err, "count", len(sessions))
		}
	}()
}

// sweeper runs the periodic TTL sweep until Shutdown.
func (s *Store) sweeper(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.SweepExpired(time.Now())
		case <-s.done:
			return
		}
	}
}
