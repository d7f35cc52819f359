// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Persists archived sessions and user accounts with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/averla/assist-gateway/internal/session"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS archived_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			session_id INTEGER NOT NULL,
			last_call DATETIME NOT NULL,
			archived_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_archived_sessions_user
			ON archived_sessions(user_id, archived_at);

		CREATE TABLE IF NOT EXISTS archived_messages (
			id TEXT PRIMARY KEY,
			archive_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			sent_at DATETIME NOT NULL,
			FOREIGN KEY (archive_id) REFERENCES archived_sessions(id)
		);

		CREATE INDEX IF NOT EXISTS idx_archived_messages_archive
			ON archived_messages(archive_id, seq);

		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			login TEXT UNIQUE NOT NULL,
			display_name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			user_group TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			last_seen DATETIME,

			CHECK (user_group IN ('owner', 'common', 'guest', 'banned'))
		);

		CREATE INDEX IF NOT EXISTS idx_users_login ON users(login);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// SaveSessions archives the given sessions with their full histories.
// Each batch is written in a single transaction so a crash mid-archive
// never leaves messages without their session row.
func (s *SQLiteStore) SaveSessions(ctx context.Context, sessions []*session.Session) error {
	if len(sessions) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning archive transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)

	for _, sess := range sessions {
		archiveID := uuid.NewString()

		_, err := tx.ExecContext(ctx, `
			INSERT INTO archived_sessions (id, user_id, session_id, last_call, archived_at)
			VALUES (?, ?, ?, ?, ?)
		`, archiveID, sess.UserID, sess.ID, sess.LastCall.UTC().Format(time.RFC3339), now)
		if err != nil {
			return fmt.Errorf("inserting archived session: %w", err)
		}

		for i, msg := range sess.History {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO archived_messages (id, archive_id, seq, role, content, sent_at)
				VALUES (?, ?, ?, ?, ?, ?)
			`, uuid.NewString(), archiveID, i, msg.Role, msg.Text, msg.SentAt.UTC().Format(time.RFC3339))
			if err != nil {
				return fmt.Errorf("inserting archived message: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing archive transaction: %w", err)
	}

	s.logger.Debug("archived sessions", "count", len(sessions))
	return nil
}

// LoadSessions returns all archived sessions for a user, most recently
// archived first, with messages in their original order.
func (s *SQLiteStore) LoadSessions(ctx context.Context, userID string) ([]*session.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, last_call
		FROM archived_sessions
		WHERE user_id = ?
		ORDER BY archived_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying archived sessions: %w", err)
	}
	defer rows.Close()

	type archived struct {
		archiveID string
		sess      *session.Session
	}

	var result []archived
	for rows.Next() {
		var a archived
		var lastCallStr string
		a.sess = &session.Session{UserID: userID}

		if err := rows.Scan(&a.archiveID, &a.sess.ID, &lastCallStr); err != nil {
			return nil, fmt.Errorf("scanning archived session row: %w", err)
		}
		a.sess.LastCall, err = time.Parse(time.RFC3339, lastCallStr)
		if err != nil {
			return nil, fmt.Errorf("parsing last_call: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating archived session rows: %w", err)
	}

	for _, a := range result {
		msgs, err := s.loadMessages(ctx, a.archiveID)
		if err != nil {
			return nil, err
		}
		a.sess.History = msgs
	}

	sessions := make([]*session.Session, len(result))
	for i, a := range result {
		sessions[i] = a.sess
	}
	return sessions, nil
}

func (s *SQLiteStore) loadMessages(ctx context.Context, archiveID string) ([]session.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, sent_at
		FROM archived_messages
		WHERE archive_id = ?
		ORDER BY seq ASC
	`, archiveID)
	if err != nil {
		return nil, fmt.Errorf("querying archived messages: %w", err)
	}
	defer rows.Close()

	var msgs []session.Message
	for rows.Next() {
		var msg session.Message
		var sentAtStr string
		if err := rows.Scan(&msg.Role, &msg.Text, &sentAtStr); err != nil {
			return nil, fmt.Errorf("scanning archived message row: %w", err)
		}
		msg.SentAt, err = time.Parse(time.RFC3339, sentAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing sent_at: %w", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

// CreateUser inserts a new user account.
// Returns ErrDuplicateLogin if the login is already taken.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, login, display_name, password_hash, user_group, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, user.ID, user.Login, user.DisplayName, user.PasswordHash, user.Group,
		user.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicateLogin
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	s.logger.Info("created user", "login", user.Login, "group", user.Group)
	return nil
}

// GetUser retrieves a user by ID.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, login, display_name, password_hash, user_group, created_at, last_seen
		FROM users WHERE id = ?
	`, id))
}

// GetUserByLogin retrieves a user by login.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) GetUserByLogin(ctx context.Context, login string) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, login, display_name, password_hash, user_group, created_at, last_seen
		FROM users WHERE login = ?
	`, login))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*User, error) {
	var user User
	var createdAtStr string
	var lastSeen sql.NullString

	err := row.Scan(&user.ID, &user.Login, &user.DisplayName, &user.PasswordHash,
		&user.Group, &createdAtStr, &lastSeen)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	user.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if lastSeen.Valid {
		t, err := time.Parse(time.RFC3339, lastSeen.String)
		if err != nil {
			return nil, fmt.Errorf("parsing last_seen: %w", err)
		}
		user.LastSeen = &t
	}

	return &user, nil
}

// CountUsers returns the number of registered users
func (s *SQLiteStore) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

// TouchUserSeen records that the user was active now.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) TouchUserSeen(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET last_seen = ? WHERE id = ?
	`, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating last_seen: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// isConstraintViolation checks if the error is a SQLite UNIQUE constraint violation
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed")
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
