// Package sqlite is a single-file store.Store used for local development and tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"legalchat-backend/internal/models"
	"legalchat-backend/internal/store"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var _ store.Store = (*SQLiteStore)(nil)

// schema mirrors migrations/ for the postgres backend.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    first_name    TEXT NOT NULL,
    last_name     TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password      TEXT NOT NULL,
    phone_number  TEXT,
    user_type     TEXT NOT NULL CHECK (user_type IN ('lawyer', 'client', 'student', 'chatbot')),
    bar_number    TEXT,
    created_at    TIMESTAMP NOT NULL,
    CHECK (user_type <> 'lawyer' OR bar_number IS NOT NULL)
);

CREATE TABLE IF NOT EXISTS sessions (
    id          TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at  TIMESTAMP NOT NULL,
    expires_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS conversations (
    id          TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title       TEXT NOT NULL,
    status      TEXT NOT NULL DEFAULT 'active',
    created_at  TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversations_user_created ON conversations (user_id, created_at);

CREATE TABLE IF NOT EXISTS messages (
    id               TEXT PRIMARY KEY,
    conversation_id  TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
    sender_id        TEXT NOT NULL REFERENCES users(id),
    message_type     TEXT NOT NULL DEFAULT 'text',
    message_content  TEXT NOT NULL,
    sender_role      TEXT NOT NULL CHECK (sender_role IN ('user', 'chatbot')),
    sent_at          TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation_sent ON messages (conversation_id, sent_at);
`

type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// New opens (or creates) the database at path and applies the schema.
// Pass ":memory:" for a throwaway database.
func New(path string, logger *zap.Logger) (*SQLiteStore, error) {
	dsn := "file::memory:?_foreign_keys=on"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dsn = "file:" + path + "?_foreign_keys=on&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: serialises writers, and keeps an in-memory database alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.Named("sqlite_store"),
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Warn("error closing database", zap.Error(err))
	}
}

// wrapWriteError converts driver errors from INSERT/UPDATE statements into store errors.
func (s *SQLiteStore) wrapWriteError(op string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		s.logger.Error("sqlite error",
			zap.String("op", op),
			zap.Int("code", int(sqliteErr.ExtendedCode)),
			zap.String("message", sqliteErr.Error()))
		if sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return store.ErrDuplicate
		}
	} else {
		s.logger.Error("query failed", zap.String("op", op), zap.Error(err))
	}
	return fmt.Errorf("database error in %s: %w", op, err)
}

// --- User Methods ---

const userColumns = `id, first_name, last_name, email, password, phone_number, user_type, bar_number, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.HashedPassword,
		&u.PhoneNumber,
		&u.UserType,
		&u.BarNumber,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("database error fetching user by email: %w", err)
	}
	return user, nil
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("database error fetching user by id: %w", err)
	}
	return user, nil
}

const createUser = `
INSERT INTO users (id, first_name, last_name, email, password, phone_number, user_type, bar_number, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// CreateUser inserts a user and reads the row back so the result carries stored values.
func (s *SQLiteStore) CreateUser(ctx context.Context, arg store.CreateUserParams) (*models.User, error) {
	_, err := s.db.ExecContext(ctx, createUser,
		arg.ID,
		arg.FirstName,
		arg.LastName,
		arg.Email,
		arg.HashedPassword,
		arg.PhoneNumber,
		arg.UserType,
		arg.BarNumber,
		s.now(),
	)
	if err != nil {
		return nil, s.wrapWriteError("CreateUser", err)
	}

	user, err := s.GetUserByID(ctx, arg.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user created", zap.Stringer("user_id", user.ID), zap.String("user_type", user.UserType))
	return user, nil
}

// --- Session Methods ---

func (s *SQLiteStore) CreateSession(ctx context.Context, arg store.CreateSessionParams) (*models.Session, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		arg.ID, arg.UserID, s.now(), arg.ExpiresAt.UTC(),
	)
	if err != nil {
		return nil, s.wrapWriteError("CreateSession", err)
	}
	return s.GetSession(ctx, arg.ID)
}

func (s *SQLiteStore) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var sess models.Session
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, expires_at FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.UserID, &sess.CreatedAt, &sess.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning session: %w", err)
	}
	return &sess, nil
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error executing delete session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}
