// ABOUTME: Tests for the SQLite store implementation
// ABOUTME: Covers session archival round-trips and user account operations

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/averla/assist-gateway/internal/session"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveSessions_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lastCall := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	sess := &session.Session{
		UserID:   "alice",
		ID:       7,
		LastCall: lastCall,
		History: []session.Message{
			{Role: session.RoleUser, Text: "hello", SentAt: lastCall.Add(-time.Minute)},
			{Role: session.RoleAssistant, Text: "hi there", SentAt: lastCall},
		},
	}

	require.NoError(t, s.SaveSessions(ctx, []*session.Session{sess}))

	loaded, err := s.LoadSessions(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	got := loaded[0]
	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, int64(7), got.ID)
	assert.True(t, got.LastCall.Equal(lastCall))
	require.Len(t, got.History, 2)
	assert.Equal(t, session.RoleUser, got.History[0].Role)
	assert.Equal(t, "hello", got.History[0].Text)
	assert.Equal(t, session.RoleAssistant, got.History[1].Role)
	assert.Equal(t, "hi there", got.History[1].Text)
}

func TestSaveSessions_EmptyBatchIsNoop(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveSessions(context.Background(), nil))
}

func TestSaveSessions_MultipleArchivesPerUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &session.Session{
		UserID:   "bob",
		ID:       1,
		LastCall: time.Now().Add(-time.Hour),
		History:  []session.Message{session.NewMessage(session.RoleUser, "earlier")},
	}
	second := &session.Session{
		UserID:   "bob",
		ID:       2,
		LastCall: time.Now(),
		History:  []session.Message{session.NewMessage(session.RoleUser, "later")},
	}

	require.NoError(t, s.SaveSessions(ctx, []*session.Session{first}))
	require.NoError(t, s.SaveSessions(ctx, []*session.Session{second}))

	loaded, err := s.LoadSessions(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
}

func TestLoadSessions_UnknownUserIsEmpty(t *testing.T) {
	s := newTestStore(t)

	loaded, err := s.LoadSessions(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestCreateUser_AndLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := &User{
		Login:        "alice",
		DisplayName:  "Alice",
		PasswordHash: "$2a$10$fakehash",
		Group:        GroupOwner,
	}
	require.NoError(t, s.CreateUser(ctx, user))
	require.NotEmpty(t, user.ID)

	byLogin, err := s.GetUserByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byLogin.ID)
	assert.Equal(t, GroupOwner, byLogin.Group)
	assert.Nil(t, byLogin.LastSeen)

	byID, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Login)
}

func TestCreateUser_DuplicateLogin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := &User{Login: "alice", DisplayName: "Alice", PasswordHash: "h", Group: GroupCommon}
	require.NoError(t, s.CreateUser(ctx, user))

	dup := &User{Login: "alice", DisplayName: "Other Alice", PasswordHash: "h", Group: GroupCommon}
	err := s.CreateUser(ctx, dup)
	assert.ErrorIs(t, err, ErrDuplicateLogin)
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetUserByLogin(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCountUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	count, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, s.CreateUser(ctx, &User{Login: "a", DisplayName: "A", PasswordHash: "h", Group: GroupCommon}))
	require.NoError(t, s.CreateUser(ctx, &User{Login: "b", DisplayName: "B", PasswordHash: "h", Group: GroupGuest}))

	count, err = s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestTouchUserSeen(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := &User{Login: "alice", DisplayName: "Alice", PasswordHash: "h", Group: GroupCommon}
	require.NoError(t, s.CreateUser(ctx, user))

	require.NoError(t, s.TouchUserSeen(ctx, user.ID))

	got, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastSeen)
	assert.WithinDuration(t, time.Now(), *got.LastSeen, 5*time.Second)

	assert.ErrorIs(t, s.TouchUserSeen(ctx, "missing"), ErrNotFound)
}

func TestCanConverse(t *testing.T) {
	assert.True(t, (&User{Group: GroupOwner}).CanConverse())
	assert.True(t, (&User{Group: GroupCommon}).CanConverse())
	assert.False(t, (&User{Group: GroupGuest}).CanConverse())
	assert.False(t, (&User{Group: GroupBanned}).CanConverse())
}
