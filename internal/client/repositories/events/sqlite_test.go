package events

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dverbitsky/chronokeeper/internal/client/models"
	"github.com/dverbitsky/chronokeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE events (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  start_time INTEGER NOT NULL,
  end_time INTEGER NOT NULL,
  all_day INTEGER NOT NULL DEFAULT 0,
  category TEXT NOT NULL DEFAULT 'personal',
  status TEXT NOT NULL DEFAULT 'confirmed',
  priority TEXT NOT NULL DEFAULT 'medium',
  tags TEXT NOT NULL DEFAULT '',
  recurring INTEGER NOT NULL DEFAULT 0,
  reminder_minutes INTEGER NOT NULL DEFAULT 0,
  notification_sent INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);
`)
	require.NoError(t, err)

	return db
}

func ts(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func draft(t *testing.T, title, start, end string) *models.EventDraft {
	t.Helper()
	return &models.EventDraft{
		Title: title,
		Start: ts(t, start),
		End:   ts(t, end),
	}
}

func TestCreate_AssignsIdentityAndTimestamps(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	e, err := r.Create(ctx, &models.EventDraft{
		Title:    "Dentist",
		Start:    ts(t, "2026-03-01T10:00:00Z"),
		End:      ts(t, "2026-03-01T11:00:00Z"),
		Category: models.CategoryHealth,
		Priority: models.PriorityHigh,
		Tags:     []string{"medical", "recurring-checkup"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, e.ID)
	assert.True(t, e.End.After(e.Start))
	assert.True(t, e.CreatedAt.Equal(e.UpdatedAt))
	assert.Equal(t, models.StatusConfirmed, e.Status)

	// The stored record round-trips.
	got, err := r.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestCreate_AppliesClassificationDefaults(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	e, err := r.Create(context.Background(), draft(t, "Walk", "2026-03-01T08:00:00Z", "2026-03-01T09:00:00Z"))
	require.NoError(t, err)

	assert.Equal(t, models.CategoryPersonal, e.Category)
	assert.Equal(t, models.StatusConfirmed, e.Status)
	assert.Equal(t, models.PriorityMedium, e.Priority)
}

func TestUpdate_MergesOnlyPatchedFields(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	e, err := r.Create(ctx, &models.EventDraft{
		Title:       "Planning",
		Description: "quarterly",
		Start:       ts(t, "2026-03-02T09:00:00Z"),
		End:         ts(t, "2026-03-02T10:00:00Z"),
	})
	require.NoError(t, err)

	title := "Planning (moved)"
	newStart := ts(t, "2026-03-02T14:00:00Z")
	newEnd := ts(t, "2026-03-02T15:00:00Z")
	got, err := r.Update(ctx, e.ID, &models.EventPatch{
		Title: &title,
		Start: &newStart,
		End:   &newEnd,
	})
	require.NoError(t, err)

	assert.Equal(t, title, got.Title)
	assert.Equal(t, "quarterly", got.Description)
	assert.True(t, got.Start.Equal(newStart))
	assert.True(t, got.End.Equal(newEnd))
	assert.False(t, got.UpdatedAt.Before(e.UpdatedAt))
	assert.True(t, got.CreatedAt.Equal(e.CreatedAt))
}

func TestUpdate_RejectsInvertedInterval(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	e, err := r.Create(ctx, draft(t, "Call", "2026-03-02T09:00:00Z", "2026-03-02T10:00:00Z"))
	require.NoError(t, err)

	badEnd := ts(t, "2026-03-02T08:00:00Z")
	_, err = r.Update(ctx, e.ID, &models.EventPatch{End: &badEnd})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "end", verr.Field)

	// The stored record is untouched.
	got, err := r.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, got.End.Equal(e.End))
}

func TestUpdate_UnknownID(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	title := "x"
	_, err := r.Update(context.Background(), "nope", &models.EventPatch{Title: &title})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDelete_UnknownIDIsAnError(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	e, err := r.Create(ctx, draft(t, "Gym", "2026-03-03T18:00:00Z", "2026-03-03T19:00:00Z"))
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, e.ID))

	// Deleting the same id again signals not-found rather than no-op.
	require.ErrorIs(t, r.Delete(ctx, e.ID), common.ErrNotFound)

	_, err = r.GetByID(ctx, e.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetByDateRange_InclusiveBounds(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	_, err := r.Create(ctx, draft(t, "before", "2026-03-04T07:00:00Z", "2026-03-04T08:00:00Z"))
	require.NoError(t, err)
	_, err = r.Create(ctx, draft(t, "touches start", "2026-03-04T08:30:00Z", "2026-03-04T09:00:00Z"))
	require.NoError(t, err)
	_, err = r.Create(ctx, draft(t, "inside", "2026-03-04T10:00:00Z", "2026-03-04T11:00:00Z"))
	require.NoError(t, err)
	_, err = r.Create(ctx, draft(t, "touches end", "2026-03-04T12:00:00Z", "2026-03-04T13:00:00Z"))
	require.NoError(t, err)
	_, err = r.Create(ctx, draft(t, "after", "2026-03-04T14:00:00Z", "2026-03-04T15:00:00Z"))
	require.NoError(t, err)

	got, err := r.GetByDateRange(ctx, ts(t, "2026-03-04T09:00:00Z"), ts(t, "2026-03-04T12:00:00Z"))
	require.NoError(t, err)

	titles := make([]string, 0, len(got))
	for _, e := range got {
		titles = append(titles, e.Title)
	}
	assert.Equal(t, []string{"touches start", "inside", "touches end"}, titles)
}

func TestQuery_FiltersComposeWithTagOR(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	_, err := r.Create(ctx, &models.EventDraft{
		Title: "standup", Category: models.CategoryWork, Tags: []string{"team", "daily"},
		Start: ts(t, "2026-03-05T09:00:00Z"), End: ts(t, "2026-03-05T09:15:00Z"),
	})
	require.NoError(t, err)
	_, err = r.Create(ctx, &models.EventDraft{
		Title: "yoga", Category: models.CategoryHealth, Tags: []string{"solo"},
		Start: ts(t, "2026-03-05T18:00:00Z"), End: ts(t, "2026-03-05T19:00:00Z"),
	})
	require.NoError(t, err)
	_, err = r.Create(ctx, &models.EventDraft{
		Title: "retro", Category: models.CategoryWork, Tags: []string{"team"},
		Start: ts(t, "2026-03-06T16:00:00Z"), End: ts(t, "2026-03-06T17:00:00Z"),
	})
	require.NoError(t, err)

	work := models.CategoryWork
	from := ts(t, "2026-03-05T00:00:00Z")
	to := ts(t, "2026-03-05T23:59:59Z")
	got, err := r.Query(ctx, &models.EventFilter{
		From:     &from,
		To:       &to,
		Category: &work,
		Tags:     []string{"daily", "weekly"},
	})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "standup", got[0].Title)
}

func TestDeleteAll(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	_, err := r.Create(ctx, draft(t, "a", "2026-03-07T09:00:00Z", "2026-03-07T10:00:00Z"))
	require.NoError(t, err)

	require.NoError(t, r.DeleteAll(ctx))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
