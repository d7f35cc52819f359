// Package session holds the in-memory conversation state for each user:
// a registry of live sessions with TTL-based eviction, bounded message
// history, and archival of expired sessions to persistent storage.
package session
