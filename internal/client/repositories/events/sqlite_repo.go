package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dverbitsky/chronokeeper/internal/client/models"
	"github.com/dverbitsky/chronokeeper/internal/common"
	"github.com/dverbitsky/chronokeeper/internal/dbx"
	"github.com/google/uuid"
)

const eventColumns = `id, title, description, location, start_time, end_time, all_day,
	category, status, priority, tags, recurring, reminder_minutes, notification_sent,
	created_at, updated_at`

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, draft *models.EventDraft) (*models.Event, error) {
	now := time.Now().UTC().Truncate(time.Second)

	e := &models.Event{
		ID:              uuid.NewString(),
		Title:           draft.Title,
		Description:     draft.Description,
		Location:        draft.Location,
		Start:           draft.Start.UTC().Truncate(time.Second),
		End:             draft.End.UTC().Truncate(time.Second),
		AllDay:          draft.AllDay,
		Category:        draft.Category,
		Status:          draft.Status,
		Priority:        draft.Priority,
		Tags:            draft.Tags,
		Recurring:       draft.Recurring,
		ReminderMinutes: draft.ReminderMinutes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if e.Category == "" {
		e.Category = models.CategoryPersonal
	}
	if e.Status == "" {
		e.Status = models.StatusConfirmed
	}
	if e.Priority == "" {
		e.Priority = models.PriorityMedium
	}

	query := `INSERT INTO events (` + eventColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Title, e.Description, e.Location,
		e.Start.Unix(), e.End.Unix(), e.AllDay,
		e.Category, e.Status, e.Priority, joinTags(e.Tags),
		e.Recurring, e.ReminderMinutes, e.NotificationSent,
		e.CreatedAt.Unix(), e.UpdatedAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	return e, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id string, patch *models.EventPatch) (*models.Event, error) {
	var updated *models.Event

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		current, err := scanEvent(tx.QueryRowContext(ctx,
			`SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return common.ErrNotFound
			}
			return fmt.Errorf("failed to select event: %w", err)
		}

		// The merged record must still satisfy the temporal invariant.
		if err := patch.Validate(current); err != nil {
			return err
		}
		patch.Apply(current)
		current.Start = current.Start.UTC().Truncate(time.Second)
		current.End = current.End.UTC().Truncate(time.Second)
		current.UpdatedAt = time.Now().UTC().Truncate(time.Second)

		_, err = tx.ExecContext(ctx, `
			UPDATE events SET title = ?, description = ?, location = ?,
				start_time = ?, end_time = ?, all_day = ?, category = ?,
				status = ?, priority = ?, tags = ?, recurring = ?,
				reminder_minutes = ?, notification_sent = ?, updated_at = ?
			WHERE id = ?`,
			current.Title, current.Description, current.Location,
			current.Start.Unix(), current.End.Unix(), current.AllDay,
			current.Category, current.Status, current.Priority, joinTags(current.Tags),
			current.Recurring, current.ReminderMinutes, current.NotificationSent,
			current.UpdatedAt.Unix(), id,
		)
		if err != nil {
			return fmt.Errorf("failed to update event: %w", err)
		}

		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select event: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.Event, error) {
	return r.selectEvents(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY start_time`)
}

func (r *SQLiteRepository) GetByDateRange(ctx context.Context, from, to time.Time) ([]*models.Event, error) {
	// Inclusive on both ends: an event touching either boundary qualifies.
	return r.selectEvents(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE start_time <= ? AND end_time >= ?
		 ORDER BY start_time`,
		to.Unix(), from.Unix())
}

func (r *SQLiteRepository) Query(ctx context.Context, filter *models.EventFilter) ([]*models.Event, error) {
	var (
		rows []*models.Event
		err  error
	)

	if filter != nil && filter.From != nil && filter.To != nil {
		rows, err = r.GetByDateRange(ctx, *filter.From, *filter.To)
	} else {
		rows, err = r.GetAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	if filter == nil {
		return rows, nil
	}

	result := make([]*models.Event, 0, len(rows))
	for _, e := range rows {
		if filter.Matches(e) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM events`); err != nil {
		return fmt.Errorf("failed to clear events: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) selectEvents(ctx context.Context, query string, args ...any) ([]*models.Event, error) {
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
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (*models.Event, error) {
	var (
		e                  models.Event
		start, end         int64
		createdAt, updated int64
		tags               string
	)
	err := s.Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &start, &end, &e.AllDay,
		&e.Category, &e.Status, &e.Priority, &tags, &e.Recurring,
		&e.ReminderMinutes, &e.NotificationSent, &createdAt, &updated,
	)
	if err != nil {
		return nil, err
	}

	e.Start = time.Unix(start, 0).UTC()
	e.End = time.Unix(end, 0).UTC()
	e.CreatedAt = time.Unix(createdAt, 0).UTC()
	e.UpdatedAt = time.Unix(updated, 0).UTC()
	e.Tags = splitTags(tags)
	return &e, nil
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
