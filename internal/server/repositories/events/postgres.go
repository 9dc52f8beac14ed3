package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dverbitsky/chronokeeper/internal/common"
	"github.com/dverbitsky/chronokeeper/internal/dbx"
	"github.com/dverbitsky/chronokeeper/internal/server/models"
)

const eventColumns = `id, title, description, location, start_time, end_time, all_day,
	category, status, priority, tags, recurring, reminder_minutes, notification_sent,
	created_at, updated_at`

// PostgresRepository implements event storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateOrUpdate(ctx context.Context, e *models.Event) (*models.Event, error) {
	now := time.Now().UTC().Truncate(time.Second)
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	e.Start = e.Start.UTC().Truncate(time.Second)
	e.End = e.End.UTC().Truncate(time.Second)
	if e.Category == "" {
		e.Category = "personal"
	}
	if e.Status == "" {
		e.Status = "confirmed"
	}
	if e.Priority == "" {
		e.Priority = "medium"
	}

	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id)
		DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			location = EXCLUDED.location,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			all_day = EXCLUDED.all_day,
			category = EXCLUDED.category,
			status = EXCLUDED.status,
			priority = EXCLUDED.priority,
			tags = EXCLUDED.tags,
			recurring = EXCLUDED.recurring,
			reminder_minutes = EXCLUDED.reminder_minutes,
			notification_sent = EXCLUDED.notification_sent,
			updated_at = EXCLUDED.updated_at;
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Title, e.Description, e.Location, e.Start, e.End, e.AllDay,
		e.Category, e.Status, e.Priority, joinTags(e.Tags), e.Recurring,
		e.ReminderMinutes, e.NotificationSent, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, patch *models.EventPatch) (*models.Event, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := patch.Validate(current); err != nil {
		return nil, err
	}

	patch.Apply(current)
	current.Start = current.Start.UTC().Truncate(time.Second)
	current.End = current.End.UTC().Truncate(time.Second)
	current.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	query := `
		UPDATE events SET
			title = $2, description = $3, location = $4, start_time = $5, end_time = $6,
			all_day = $7, category = $8, status = $9, priority = $10, tags = $11,
			recurring = $12, reminder_minutes = $13, notification_sent = $14, updated_at = $15
		WHERE id = $1`
	_, err = r.db.ExecContext(ctx, query,
		current.ID, current.Title, current.Description, current.Location, current.Start,
		current.End, current.AllDay, current.Category, current.Status, current.Priority,
		joinTags(current.Tags), current.Recurring, current.ReminderMinutes,
		current.NotificationSent, current.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return current, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)

	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select event: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter *ListFilter) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	var (
		clauses []string
		args    []any
	)
	if filter != nil && filter.From != nil {
		args = append(args, filter.From.UTC())
		clauses = append(clauses, fmt.Sprintf("end_time >= $%d", len(args)))
	}
	if filter != nil && filter.To != nil {
		args = append(args, filter.To.UTC())
		clauses = append(clauses, fmt.Sprintf("start_time <= $%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY start_time"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select events: %w", err)
	}
	defer rows.Close()

	var result []*models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		if filter != nil && !matchesTags(e, filter.Tags) {
			continue
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (*models.Event, error) {
	var (
		e    models.Event
		tags string
	)
	if err := s.Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.Start, &e.End, &e.AllDay,
		&e.Category, &e.Status, &e.Priority, &tags, &e.Recurring, &e.ReminderMinutes,
		&e.NotificationSent, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	e.Tags = splitTags(tags)
	e.Start = e.Start.UTC()
	e.End = e.End.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return &e, nil
}

func matchesTags(e *models.Event, tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, want := range tags {
		for _, have := range e.Tags {
			if want == have {
				return true
			}
		}
	}
	return false
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
