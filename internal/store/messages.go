// ABOUTME: Message persistence for session contexts
// ABOUTME: Append-only history consumed by authorized downstream operations

package store

import (
	"context"
	"fmt"
	"time"
)

// AppendMessage stores a message within a context. The context must exist.
func (s *SQLiteStore) AppendMessage(ctx context.Context, msg *Message) error {
	query := `
		INSERT INTO messages (id, context_id, sender, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		msg.ID,
		msg.ContextID,
		msg.Sender,
		msg.Content,
		msg.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	s.logger.Debug("appended message", "id", msg.ID, "context_id", msg.ContextID)
	return nil
}

// ListMessages retrieves messages for a context in chronological order.
// If limit is 0 or negative, all messages are returned.
func (s *SQLiteStore) ListMessages(ctx context.Context, contextID string, limit int) ([]*Message, error) {
	query := `
		SELECT id, context_id, sender, content, created_at
		FROM messages
		WHERE context_id = ?
		ORDER BY created_at ASC
	`
	args := []any{contextID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var (
			msg       Message
			createdAt string
		)
		if err := rows.Scan(&msg.ID, &msg.ContextID, &msg.Sender, &msg.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msg.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}
