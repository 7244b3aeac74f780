package sqlite

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
)

// Ensure ConversationStore implements the interface.
var _ driven.ConversationStore = (*ConversationStore)(nil)

// ConversationStore persists chat sessions in the messages table.
type ConversationStore struct {
	store *Store
}

// Append adds messages to the end of a session.
func (c *ConversationStore) Append(ctx context.Context, sessionID string, messages ...domain.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, m := range messages {
		ts := m.Time
		if ts.IsZero() {
			ts = time.Now()
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO messages (session_id, role, content, created_at) VALUES (?, ?, ?, ?)",
			sessionID, string(m.Role), m.Content, ts.UTC().Format(timeLayout)); err != nil {
			return fmt.Errorf("saving message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// History returns the last limit messages of a session, oldest first.
// A limit of zero or less returns the whole session.
func (c *ConversationStore) History(ctx context.Context, sessionID string, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT role, content, created_at FROM messages
		WHERE session_id = ?
		ORDER BY id DESC
		LIMIT ?
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	msgs := []domain.ChatMessage{}
	for rows.Next() {
		var (
			m       domain.ChatMessage
			role    string
			created string
		)
		if err := rows.Scan(&role, &m.Content, &created); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.Role = domain.ChatRole(role)
		if t, err := time.Parse(timeLayout, created); err == nil {
			m.Time = t
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	slices.Reverse(msgs)
	return msgs, nil
}

// Clear deletes a session.
func (c *ConversationStore) Clear(ctx context.Context, sessionID string) error {
	if _, err := c.store.db.ExecContext(ctx, "DELETE FROM messages WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("clearing session %s: %w", sessionID, err)
	}
	return nil
}
