// ABOUTME: Store interface and data types for assist-gateway persistence
// ABOUTME: Defines User plus the Store interface for archive and account operations

package store

import (
	"context"
	"errors"
	"time"

	"github.com/averla/assist-gateway/internal/session"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateLogin is returned when creating a user whose login is taken
var ErrDuplicateLogin = errors.New("login already exists")

// User groups, in descending order of privilege. Guests and banned
// users are refused at the gateway.
const (
	GroupOwner  = "owner"
	GroupCommon = "common"
	GroupGuest  = "guest"
	GroupBanned = "banned"
)

// User is an account allowed to talk to the assistant.
type User struct {
	ID           string
	Login        string
	DisplayName  string
	PasswordHash string // bcrypt hash
	Group        string
	CreatedAt    time.Time
	LastSeen     *time.Time
}

// GroupCanConverse reports whether a group permits assistant requests.
func GroupCanConverse(group string) bool {
	return group == GroupOwner || group == GroupCommon
}

// CanConverse reports whether the user's group permits requests.
func (u *User) CanConverse() bool {
	return GroupCanConverse(u.Group)
}

// Store defines the persistence interface for archived sessions and
// user accounts. SaveSessions doubles as the session registry's
// Archiver.
type Store interface {
	// Archived sessions
	SaveSessions(ctx context.Context, sessions []*session.Session) error
	LoadSessions(ctx context.Context, userID string) ([]*session.Session, error)

	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByLogin(ctx context.Context, login string) (*User, error)
	CountUsers(ctx context.Context) (int, error)
	TouchUserSeen(ctx context.Context, id string) error

	// Close releases any resources held by the store
	Close() error
}
