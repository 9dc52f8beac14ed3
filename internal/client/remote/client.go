// Package remote implements the stateless HTTP client for the remote event
// API. It keeps no queue and no retry state: callers decide what a failure
// means. For the coordinator, remote failures are logged and swallowed.
package remote

import (
	"context"
	"time"

	"github.com/dverbitsky/chronokeeper/internal/client/models"
)

// Client is the remote mirror of the event store.
type Client interface {
	// Ping probes the API health endpoint. Used both by the connectivity
	// monitor and by the reconnect reconciliation pass.
	Ping(ctx context.Context) error

	// CreateEvent pushes a locally committed event, keeping its id.
	CreateEvent(ctx context.Context, e *models.Event) error

	// UpdateEvent pushes a partial update; the server performs the merge.
	UpdateEvent(ctx context.Context, id string, patch *models.EventPatch) error

	DeleteEvent(ctx context.Context, id string) error
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	ListEvents(ctx context.Context, from, to *time.Time, tags []string) ([]*models.Event, error)
}
