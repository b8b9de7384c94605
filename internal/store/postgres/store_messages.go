package postgres

import (
	"context"
	"errors"
	"fmt"

	"legalchat-backend/internal/models"
	"legalchat-backend/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// --- Message Methods ---

const messageColumns = `id, conversation_id, sender_id, message_type, message_content, sender_role, sent_at`

func scanMessage(row pgx.Row) (*models.Message, error) {
	var m models.Message
	if err := row.Scan(
		&m.ID,
		&m.ConversationID,
		&m.SenderID,
		&m.MessageType,
		&m.MessageContent,
		&m.SenderRole,
		&m.SentAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

const createMessage = `-- name: CreateMessage :one
INSERT INTO messages (
    id, conversation_id, sender_id, message_type, message_content, sender_role
) VALUES (
    $1, $2, $3, $4, $5, $6
)
RETURNING ` + messageColumns

func (s *PostgresStore) CreateMessage(ctx context.Context, arg store.CreateMessageParams) (*models.Message, error) {
	msg, err := scanMessage(s.db.QueryRow(ctx, createMessage,
		arg.ID,
		arg.ConversationID,
		arg.SenderID,
		arg.MessageType,
		arg.MessageContent,
		arg.SenderRole,
	))
	if err != nil {
		return nil, s.wrapWriteError("CreateMessage", err)
	}
	return msg, nil
}

const listMessagesByConversation = `-- name: ListMessagesByConversation :many
SELECT m.id, m.conversation_id, m.sender_id, m.message_type, m.message_content, m.sender_role, m.sent_at,
       u.first_name, u.last_name, u.user_type
FROM messages m
JOIN users u ON m.sender_id = u.id
WHERE m.conversation_id = $1
ORDER BY m.sent_at ASC, m.id ASC;
`

func (s *PostgresStore) ListMessagesByConversation(ctx context.Context, conversationID uuid.UUID) ([]models.MessageWithSender, error) {
	rows, err := s.db.Query(ctx, listMessagesByConversation, conversationID)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	items := make([]models.MessageWithSender, 0)
	for rows.Next() {
		var m models.MessageWithSender
		if err := rows.Scan(
			&m.ID,
			&m.ConversationID,
			&m.SenderID,
			&m.MessageType,
			&m.MessageContent,
			&m.SenderRole,
			&m.SentAt,
			&m.FirstName,
			&m.LastName,
			&m.UserType,
		); err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}
		items = append(items, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}

	return items, nil
}

const deleteMessage = `-- name: DeleteMessage :one
DELETE FROM messages
WHERE id = $1 AND sender_id = $2
RETURNING ` + messageColumns

func (s *PostgresStore) DeleteMessage(ctx context.Context, id uuid.UUID, senderID uuid.UUID) (*models.Message, error) {
	msg, err := scanMessage(s.db.QueryRow(ctx, deleteMessage, id, senderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error executing delete message: %w", err)
	}
	return msg, nil
}
