package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"legalchat-backend/internal/models"
	"legalchat-backend/internal/store"

	"github.com/google/uuid"
)

const conversationColumns = `id, user_id, title, status, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*models.Conversation, error) {
	var c models.Conversation
	if err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.Status, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLiteStore) CreateConversation(ctx context.Context, arg store.CreateConversationParams) (*models.Conversation, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, user_id, title, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		arg.ID, arg.UserID, arg.Title, arg.Status, s.now(),
	)
	if err != nil {
		return nil, s.wrapWriteError("CreateConversation", err)
	}
	return s.GetConversationByIDAndOwner(ctx, arg.ID, arg.UserID)
}

func (s *SQLiteStore) ListConversationsByOwner(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC`, userID)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversation rows: %w", err)
	}
	return items, nil
}

func (s *SQLiteStore) GetConversationByIDAndOwner(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Conversation, error) {
	conv, err := scanConversation(s.db.QueryRowContext(ctx,
		`SELECT `+conversationColumns+` FROM conversations WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning conversation: %w", err)
	}
	return conv, nil
}

// UpdateConversation builds the SET clause from the provided fields.
func (s *SQLiteStore) UpdateConversation(ctx context.Context, arg store.UpdateConversationParams) (*models.Conversation, error) {
	var setClauses []string
	var args []any

	if arg.Title != nil {
		setClauses = append(setClauses, "title = ?")
		args = append(args, *arg.Title)
	}
	if arg.Status != nil {
		setClauses = append(setClauses, "status = ?")
		args = append(args, *arg.Status)
	}
	if len(setClauses) == 0 {
		return s.GetConversationByIDAndOwner(ctx, arg.ID, arg.UserID)
	}
	args = append(args, arg.ID, arg.UserID)

	query := fmt.Sprintf(`UPDATE conversations SET %s WHERE id = ? AND user_id = ?`, strings.Join(setClauses, ", "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, s.wrapWriteError("UpdateConversation", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetConversationByIDAndOwner(ctx, arg.ID, arg.UserID)
}

// DeleteConversation returns the removed row. Messages go with it through the cascade.
func (s *SQLiteStore) DeleteConversation(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Conversation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	conv, err := scanConversation(tx.QueryRowContext(ctx,
		`SELECT `+conversationColumns+` FROM conversations WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning conversation: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return nil, fmt.Errorf("error executing delete conversation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing delete conversation: %w", err)
	}
	return conv, nil
}
