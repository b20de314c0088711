package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/pulseph/internal/model"
)

// UpsertMessages inserts or updates cached messages for owner. A message
// once marked read stays read.
func (s *SQLiteStore) UpsertMessages(ctx context.Context, owner string, msgs []model.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO messages (
			owner, id, text, timestamp,
			is_from_user, is_delivered, is_read, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner, id) DO UPDATE SET
			text = excluded.text,
			timestamp = excluded.timestamp,
			is_delivered = excluded.is_delivered,
			is_read = MAX(messages.is_read, excluded.is_read),
			created_at = excluded.created_at`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	for _, m := range msgs {
		_, err := stmt.ExecContext(ctx,
			owner, m.ID, m.Text, m.Timestamp,
			boolToInt(m.IsFromUser), boolToInt(m.IsDelivered), boolToInt(m.IsRead),
			m.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("upserting message %s: %w", m.ID, err)
		}
	}

	return tx.Commit()
}

// GetMessages returns the cached conversation for owner in insertion order.
func (s *SQLiteStore) GetMessages(ctx context.Context, owner string) ([]model.Message, error) {
	var msgs []model.Message
	err := s.db.SelectContext(ctx, &msgs, `
		SELECT id, text, timestamp, is_from_user, is_delivered, is_read, created_at
		FROM messages WHERE owner = ? ORDER BY rowid`, owner)
	if err != nil {
		return nil, fmt.Errorf("querying messages for %s: %w", owner, err)
	}
	return msgs, nil
}

// MarkMessagesRead flips is_read on the given cached messages.
func (s *SQLiteStore) MarkMessagesRead(ctx context.Context, owner string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(
		"UPDATE messages SET is_read = 1 WHERE owner = ? AND id IN (?)",
		owner, ids,
	)
	if err != nil {
		return fmt.Errorf("building mark-read query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("marking messages read for %s: %w", owner, err)
	}
	return nil
}

// DeleteMessages removes the cached conversation for owner.
func (s *SQLiteStore) DeleteMessages(ctx context.Context, owner string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM messages WHERE owner = ?", owner); err != nil {
		return fmt.Errorf("deleting messages for %s: %w", owner, err)
	}
	return nil
}
