package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"legalchat-backend/internal/models"
	"legalchat-backend/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// --- Conversation Methods ---

const conversationColumns = `id, user_id, title, status, created_at`

func scanConversation(row pgx.Row) (*models.Conversation, error) {
	var c models.Conversation
	if err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Title,
		&c.Status,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

const createConversation = `-- name: CreateConversation :one
INSERT INTO conversations (
    id, user_id, title, status
) VALUES (
    $1, $2, $3, $4
)
RETURNING ` + conversationColumns

func (s *PostgresStore) CreateConversation(ctx context.Context, arg store.CreateConversationParams) (*models.Conversation, error) {
	conv, err := scanConversation(s.db.QueryRow(ctx, createConversation,
		arg.ID,
		arg.UserID,
		arg.Title,
		arg.Status,
	))
	if err != nil {
		return nil, s.wrapWriteError("CreateConversation", err)
	}
	s.logger.Debug("conversation created", zap.Stringer("conversation_id", conv.ID), zap.Stringer("user_id", conv.UserID))
	return conv, nil
}

const listConversationsByOwner = `-- name: ListConversationsByOwner :many
SELECT ` + conversationColumns + `
FROM conversations
WHERE user_id = $1
ORDER BY created_at DESC;
`

func (s *PostgresStore) ListConversationsByOwner(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	rows, err := s.db.Query(ctx, listConversationsByOwner, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying conversations: %w", err)
	}
	defer rows.Close()

	items := make([]models.Conversation, 0)
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning conversation row: %w", err)
		}
		items = append(items, *conv)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversation rows: %w", err)
	}

	return items, nil
}

const getConversationByIDAndOwner = `-- name: GetConversationByIDAndOwner :one
SELECT ` + conversationColumns + `
FROM conversations
WHERE id = $1 AND user_id = $2;
`

func (s *PostgresStore) GetConversationByIDAndOwner(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Conversation, error) {
	conv, err := scanConversation(s.db.QueryRow(ctx, getConversationByIDAndOwner, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning conversation: %w", err)
	}
	return conv, nil
}

// UpdateConversation builds the query dynamically based on which fields are provided.
func (s *PostgresStore) UpdateConversation(ctx context.Context, arg store.UpdateConversationParams) (*models.Conversation, error) {
	setClauses := []string{}
	args := []interface{}{}
	argID := 1

	if arg.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", argID))
		args = append(args, *arg.Title)
		argID++
	}
	if arg.Status != nil {
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", argID))
		args = append(args, *arg.Status)
		argID++
	}

	if len(setClauses) == 0 {
		return s.GetConversationByIDAndOwner(ctx, arg.ID, arg.UserID)
	}

	args = append(args, arg.ID, arg.UserID)

	query := fmt.Sprintf(`-- name: UpdateConversation :one
		UPDATE conversations
		SET %s
		WHERE id = $%d AND user_id = $%d
		RETURNING %s;`,
		strings.Join(setClauses, ", "),
		argID,   // ID placeholder index
		argID+1, // UserID placeholder index
		conversationColumns,
	)

	conv, err := scanConversation(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the conversation doesn't exist or it belongs to someone else
			return nil, store.ErrNotFound
		}
		return nil, s.wrapWriteError("UpdateConversation", err)
	}
	return conv, nil
}

const deleteConversation = `-- name: DeleteConversation :one
DELETE FROM conversations
WHERE id = $1 AND user_id = $2
RETURNING ` + conversationColumns

func (s *PostgresStore) DeleteConversation(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Conversation, error) {
	conv, err := scanConversation(s.db.QueryRow(ctx, deleteConversation, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error executing delete conversation: %w", err)
	}
	s.logger.Debug("conversation deleted", zap.Stringer("conversation_id", id))
	return conv, nil
}
