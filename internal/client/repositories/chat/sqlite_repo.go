// Package chat stores the append-only assistant conversation history.
package chat

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dverbitsky/chronokeeper/internal/client/models"
	"github.com/google/uuid"
)

// Repository persists chat messages. Messages are never mutated after
// creation and are removed only in bulk.
type Repository interface {
	Append(ctx context.Context, msg *models.ChatMessage) error
	List(ctx context.Context, limit int) ([]*models.ChatMessage, error)
	Clear(ctx context.Context) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Append assigns id and timestamp and inserts the message.
func (r *SQLiteRepository) Append(ctx context.Context, msg *models.ChatMessage) error {
	msg.ID = uuid.NewString()
	msg.Timestamp = time.Now().UTC().Truncate(time.Second)

	payload := ""
	if len(msg.ActionPayload) > 0 {
		payload = string(msg.ActionPayload)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_messages (id, user_text, ai_response, action_type, action_payload, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.UserText, msg.AIResponse, msg.ActionType, payload, msg.Timestamp.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	return nil
}

// List returns the most recent messages in chronological order. A limit of
// zero means no limit.
func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]*models.ChatMessage, error) {
	// rowid keeps insertion order stable for messages within the same second.
	query := `SELECT id, user_text, ai_response, action_type, action_payload, timestamp
		FROM chat_messages ORDER BY timestamp DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select chat messages: %w", err)
	}
	defer rows.Close()

	var result []*models.ChatMessage
	for rows.Next() {
		var (
			m       models.ChatMessage
			payload string
			unix    int64
		)
		if err := rows.Scan(&m.ID, &m.UserText, &m.AIResponse, &m.ActionType, &payload, &unix); err != nil {
			return nil, err
		}
		if payload != "" {
			m.ActionPayload = json.RawMessage(payload)
		}
		m.Timestamp = time.Unix(unix, 0).UTC()
		result = append(result, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order.
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM chat_messages`); err != nil {
		return fmt.Errorf("failed to clear chat messages: %w", err)
	}
	return nil
}
