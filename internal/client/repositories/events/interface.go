// Package events implements the local event store, the sole authority for
// durable event state on this device.
package events

import (
	"context"
	"time"

	"github.com/dverbitsky/chronokeeper/internal/client/models"
)

// Repository is the durable event store. Implementations assign identity and
// lifecycle timestamps on create and keep them on every mutation.
type Repository interface {
	// Create assigns a fresh id, sets createdAt = updatedAt = now, persists
	// the draft and returns the stored record. The draft must already be
	// validated by the caller; merged-state validation on update is the
	// store's job.
	Create(ctx context.Context, draft *models.EventDraft) (*models.Event, error)

	// Update merges the patch into the stored record, re-validates the merged
	// temporal invariant, refreshes updatedAt and returns the updated record.
	// Returns common.ErrNotFound for an unknown id.
	Update(ctx context.Context, id string, patch *models.EventPatch) (*models.Event, error)

	// Delete removes the record. Deleting an unknown id returns
	// common.ErrNotFound.
	Delete(ctx context.Context, id string) error

	GetByID(ctx context.Context, id string) (*models.Event, error)
	GetAll(ctx context.Context) ([]*models.Event, error)

	// GetByDateRange returns events whose interval intersects [from, to],
	// boundaries included.
	GetByDateRange(ctx context.Context, from, to time.Time) ([]*models.Event, error)

	// Query composes an optional date-range prefilter with in-memory
	// predicate filtering (category, status, priority, recurring, tag OR).
	Query(ctx context.Context, filter *models.EventFilter) ([]*models.Event, error)

	// DeleteAll clears the table. Used by the full data wipe.
	DeleteAll(ctx context.Context) error
}
