// Package events provides the PostgreSQL-backed repository for server-side
// event persistence.
package events

import (
	"context"
	"time"

	"github.com/dverbitsky/chronokeeper/internal/server/models"
)

// ListFilter narrows List results. Nil bounds are open; tags match with OR
// semantics.
type ListFilter struct {
	From *time.Time
	To   *time.Time
	Tags []string
}

// Repository is the server's event store.
type Repository interface {
	// CreateOrUpdate upserts an event by id. Clients may re-push events they
	// committed while offline, so creation must be idempotent.
	CreateOrUpdate(ctx context.Context, e *models.Event) (*models.Event, error)

	// Update merges the patch into the stored record, re-validates the merged
	// state and refreshes updatedAt. Returns common.ErrNotFound for an
	// unknown id.
	Update(ctx context.Context, id string, patch *models.EventPatch) (*models.Event, error)

	// Delete removes the record. Deleting an unknown id returns
	// common.ErrNotFound.
	Delete(ctx context.Context, id string) error

	GetByID(ctx context.Context, id string) (*models.Event, error)
	List(ctx context.Context, filter *ListFilter) ([]*models.Event, error)
}
