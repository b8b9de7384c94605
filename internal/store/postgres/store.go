package postgres

import (
	"context"
	"errors"
	"fmt"

	db_models "legalchat-backend/internal/models"
	"legalchat-backend/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Compile-time check to ensure PostgresStore implements store.Store
var _ store.Store = (*PostgresStore)(nil)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

type PostgresStore struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresStore(db *pgxpool.Pool, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger.Named("postgres_store")}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

// wrapWriteError converts driver errors from INSERT/UPDATE statements into store errors.
func (s *PostgresStore) wrapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		s.logger.Error("postgres error",
			zap.String("op", op),
			zap.String("code", pgErr.Code),
			zap.String("message", pgErr.Message),
			zap.String("detail", pgErr.Detail))
		if pgErr.Code == uniqueViolation {
			return store.ErrDuplicate
		}
	} else {
		s.logger.Error("query failed", zap.String("op", op), zap.Error(err))
	}
	return fmt.Errorf("database error in %s: %w", op, err)
}

// --- User Methods ---

const userColumns = `id, first_name, last_name, email, password, phone_number, user_type, bar_number, created_at`

func scanUser(row pgx.Row) (*db_models.User, error) {
	user := &db_models.User{}
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.HashedPassword,
		&user.PhoneNumber,
		&user.UserType,
		&user.BarNumber,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
// Returns store.ErrNotFound if the user does not exist.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*db_models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(s.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Debug("user not found by email", zap.String("email", email))
			return nil, store.ErrNotFound
		}
		s.logger.Error("failed to query user by email", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("database error fetching user by email: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by primary key.
func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*db_models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		s.logger.Error("failed to query user by id", zap.Stringer("user_id", id), zap.Error(err))
		return nil, fmt.Errorf("database error fetching user by id: %w", err)
	}
	return user, nil
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (
    id, first_name, last_name, email, password, phone_number, user_type, bar_number
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8
)
RETURNING ` + userColumns

// CreateUser inserts a new user record. created_at comes from the column default.
func (s *PostgresStore) CreateUser(ctx context.Context, arg store.CreateUserParams) (*db_models.User, error) {
	user, err := scanUser(s.db.QueryRow(ctx, createUser,
		arg.ID,
		arg.FirstName,
		arg.LastName,
		arg.Email,
		arg.HashedPassword,
		arg.PhoneNumber,
		arg.UserType,
		arg.BarNumber,
	))
	if err != nil {
		return nil, s.wrapWriteError("CreateUser", err)
	}

	s.logger.Info("user created", zap.Stringer("user_id", user.ID), zap.String("user_type", user.UserType))
	return user, nil
}

// --- Session Methods ---

const createSession = `-- name: CreateSession :one
INSERT INTO sessions (id, user_id, expires_at)
VALUES ($1, $2, $3)
RETURNING id, user_id, created_at, expires_at;
`

func (s *PostgresStore) CreateSession(ctx context.Context, arg store.CreateSessionParams) (*db_models.Session, error) {
	var sess db_models.Session
	err := s.db.QueryRow(ctx, createSession, arg.ID, arg.UserID, arg.ExpiresAt).Scan(
		&sess.ID,
		&sess.UserID,
		&sess.CreatedAt,
		&sess.ExpiresAt,
	)
	if err != nil {
		return nil, s.wrapWriteError("CreateSession", err)
	}
	return &sess, nil
}

const getSession = `-- name: GetSession :one
SELECT id, user_id, created_at, expires_at
FROM sessions
WHERE id = $1;
`

func (s *PostgresStore) GetSession(ctx context.Context, id uuid.UUID) (*db_models.Session, error) {
	var sess db_models.Session
	err := s.db.QueryRow(ctx, getSession, id).Scan(
		&sess.ID,
		&sess.UserID,
		&sess.CreatedAt,
		&sess.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning session: %w", err)
	}
	return &sess, nil
}

const deleteSession = `-- name: DeleteSession :exec
DELETE FROM sessions
WHERE id = $1;
`

func (s *PostgresStore) DeleteSession(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, deleteSession, id)
	if err != nil {
		return fmt.Errorf("error executing delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
