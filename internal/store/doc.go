// Package store persists evicted conversation sessions and user
// accounts in SQLite. It sits off the request hot path: the session
// registry hands sessions over on eviction and shutdown, and the
// gateway consults users only during authentication.
package store
