package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"legalchat-backend/internal/models"
	"legalchat-backend/internal/store"

	"github.com/google/uuid"
)

const messageColumns = `id, conversation_id, sender_id, message_type, message_content, sender_role, sent_at`

func scanMessage(row rowScanner) (*models.Message, error) {
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

func (s *SQLiteStore) CreateMessage(ctx context.Context, arg store.CreateMessageParams) (*models.Message, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, message_type, message_content, sender_role, sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.ID,
		arg.ConversationID,
		arg.SenderID,
		arg.MessageType,
		arg.MessageContent,
		arg.SenderRole,
		s.now(),
	)
	if err != nil {
		return nil, s.wrapWriteError("CreateMessage", err)
	}

	msg, err := scanMessage(s.db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = ?`, arg.ID))
	if err != nil {
		return nil, fmt.Errorf("error reading created message: %w", err)
	}
	return msg, nil
}

// ListMessagesByConversation orders by send time; rowid breaks ties between same-instant inserts.
func (s *SQLiteStore) ListMessagesByConversation(ctx context.Context, conversationID uuid.UUID) ([]models.MessageWithSender, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.conversation_id, m.sender_id, m.message_type, m.message_content, m.sender_role, m.sent_at,
		       u.first_name, u.last_name, u.user_type
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.conversation_id = ?
		ORDER BY m.sent_at ASC, m.rowid ASC`, conversationID)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}
	return items, nil
}

func (s *SQLiteStore) DeleteMessage(ctx context.Context, id uuid.UUID, senderID uuid.UUID) (*models.Message, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	msg, err := scanMessage(tx.QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE id = ? AND sender_id = ?`, id, senderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning message: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("error executing delete message: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing delete message: %w", err)
	}
	return msg, nil
}
