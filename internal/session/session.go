// ABOUTME: Session and Message types for per-user conversation state
// ABOUTME: Sessions are owned by the Store and mutated only through it

package session

import "time"

// Message roles as they appear in model payloads.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single entry in a session's history. Immutable once created.
type Message struct {
	Role   string
	Text   string
	SentAt time.Time
}

// NewMessage creates a message stamped with the current time.
func NewMessage(role, text string) Message {
	return Message{Role: role, Text: text, SentAt: time.Now()}
}

// Session is the bounded, time-limited conversation state for one user.
// The Store owns all live sessions; callers receive value copies via
// Snapshot and never mutate a session directly.
type Session struct {
	UserID   string
	ID       int64 // monotonic, unique within the process
	LastCall time.Time
	History  []Message
}

// Snapshot returns a copy of the session safe to use outside the store's
// critical section. The history slice is cloned so concurrent appends
// cannot be observed by the caller.
func (s *Session) Snapshot() Session {
	history := make([]Message, len(s.History))
	copy(history, s.History)
	return Session{
		UserID:   s.UserID,
		ID:       s.ID,
		LastCall: s.LastCall,
		History:  history,
	}
}

// Expired reports whether the session is past its TTL at the given time.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	return !now.Before(s.LastCall.Add(ttl))
}
