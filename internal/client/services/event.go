// Package services wires the client's repositories, the remote API client and
// the connectivity monitor into the operations the CLI exposes.
package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dverbitsky/chronokeeper/internal/client/conflict"
	"github.com/dverbitsky/chronokeeper/internal/client/connectivity"
	"github.com/dverbitsky/chronokeeper/internal/client/models"
	"github.com/dverbitsky/chronokeeper/internal/client/remote"
	"github.com/dverbitsky/chronokeeper/internal/client/repositories/events"
	"github.com/dverbitsky/chronokeeper/internal/logging"
)

// EventService coordinates the local event store, the in-memory projection
// used for conflict checks, and best-effort pushes to the remote mirror.
//
// The local write is the durability boundary: once the repository commits,
// the operation has succeeded regardless of what the remote push does.
// Remote failures are logged and never surfaced to the caller.
type EventService interface {
	// Create validates and commits a new event, then returns it together
	// with the advisory list of overlapping events.
	Create(ctx context.Context, draft *models.EventDraft) (*models.Event, []*models.Event, error)

	// Update merges a partial update into the stored event and returns the
	// updated record with its advisory conflicts.
	Update(ctx context.Context, id string, patch *models.EventPatch) (*models.Event, []*models.Event, error)

	// Delete removes the event. Unknown ids return common.ErrNotFound.
	Delete(ctx context.Context, id string) error

	Get(ctx context.Context, id string) (*models.Event, error)
	Query(ctx context.Context, filter *models.EventFilter) ([]*models.Event, error)

	// Agenda returns the events intersecting the given calendar day,
	// ordered by start time.
	Agenda(ctx context.Context, day time.Time) ([]*models.Event, error)

	// Events returns a snapshot of the in-memory projection, ordered by
	// start time.
	Events() []*models.Event

	// CheckConflicts runs overlap detection against the projection without
	// touching storage.
	CheckConflicts(start, end time.Time, excludeID string) []*models.Event

	// Refresh rebuilds the projection from the local store.
	Refresh(ctx context.Context) error

	// Reconcile pushes events the remote mirror is missing. Called after a
	// reconnect; failures are logged per event and do not abort the pass.
	Reconcile(ctx context.Context) error

	// Flush blocks until in-flight remote pushes finish. Called on shutdown.
	Flush()
}

type eventService struct {
	repo          events.Repository
	remote        remote.Client
	monitor       connectivity.Monitor
	logger        logging.Logger
	remoteTimeout time.Duration

	mu     sync.RWMutex
	mirror map[string]*models.Event

	pushes sync.WaitGroup
}

func NewEventService(repo events.Repository, rc remote.Client, monitor connectivity.Monitor, logger logging.Logger, remoteTimeout time.Duration) EventService {
	return &eventService{
		repo:          repo,
		remote:        rc,
		monitor:       monitor,
		logger:        logger,
		remoteTimeout: remoteTimeout,
		mirror:        make(map[string]*models.Event),
	}
}

func (s *eventService) Create(ctx context.Context, draft *models.EventDraft) (*models.Event, []*models.Event, error) {
	if err := draft.Validate(); err != nil {
		return nil, nil, err
	}

	e, err := s.repo.Create(ctx, draft)
	if err != nil {
		return nil, nil, fmt.Errorf("error saving event: %w", err)
	}

	s.mu.Lock()
	s.mirror[e.ID] = e
	s.mu.Unlock()

	conflicts := s.CheckConflicts(e.Start, e.End, e.ID)

	s.pushAsync("create", e.ID, func(ctx context.Context) error {
		return s.remote.CreateEvent(ctx, e)
	})

	return e, conflicts, nil
}

func (s *eventService) Update(ctx context.Context, id string, patch *models.EventPatch) (*models.Event, []*models.Event, error) {
	e, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	s.mirror[e.ID] = e
	s.mu.Unlock()

	conflicts := s.CheckConflicts(e.Start, e.End, e.ID)

	s.pushAsync("update", e.ID, func(ctx context.Context) error {
		return s.remote.UpdateEvent(ctx, id, patch)
	})

	return e, conflicts, nil
}

func (s *eventService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.mirror, id)
	s.mu.Unlock()

	s.pushAsync("delete", id, func(ctx context.Context) error {
		return s.remote.DeleteEvent(ctx, id)
	})

	return nil
}

func (s *eventService) Get(ctx context.Context, id string) (*models.Event, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *eventService) Query(ctx context.Context, filter *models.EventFilter) ([]*models.Event, error) {
	result, err := s.repo.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error querying events: %w", err)
	}
	return result, nil
}

func (s *eventService) Agenda(ctx context.Context, day time.Time) ([]*models.Event, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.AddDate(0, 0, 1).Add(-time.Second)

	result, err := s.repo.GetByDateRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("error loading agenda: %w", err)
	}
	sortByStart(result)
	return result, nil
}

func (s *eventService) Events() []*models.Event {
	s.mu.RLock()
	snapshot := make([]*models.Event, 0, len(s.mirror))
	for _, e := range s.mirror {
		snapshot = append(snapshot, e)
	}
	s.mu.RUnlock()

	sortByStart(snapshot)
	return snapshot
}

func (s *eventService) CheckConflicts(start, end time.Time, excludeID string) []*models.Event {
	return conflict.Detect(s.Events(), start, end, excludeID)
}

func (s *eventService) Refresh(ctx context.Context) error {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("error loading events: %w", err)
	}

	mirror := make(map[string]*models.Event, len(all))
	for _, e := range all {
		mirror[e.ID] = e
	}

	s.mu.Lock()
	s.mirror = mirror
	s.mu.Unlock()
	return nil
}

func (s *eventService) Reconcile(ctx context.Context) error {
	remoteEvents, err := s.remote.ListEvents(ctx, nil, nil, nil)
	if err != nil {
		return fmt.Errorf("error listing remote events: %w", err)
	}

	known := make(map[string]struct{}, len(remoteEvents))
	for _, e := range remoteEvents {
		known[e.ID] = struct{}{}
	}

	local := s.Events()
	pushed := 0
	for _, e := range local {
		if _, ok := known[e.ID]; ok {
			continue
		}
		if err := s.remote.CreateEvent(ctx, e); err != nil {
			s.logger.Warn(ctx, "reconcile push failed", "id", e.ID, "error", err)
			continue
		}
		pushed++
	}

	s.logger.Info(ctx, "reconcile finished", "local", len(local), "remote", len(remoteEvents), "pushed", pushed)
	return nil
}

func (s *eventService) Flush() {
	s.pushes.Wait()
}

// pushAsync runs one remote push on a detached context so the caller's
// cancellation cannot interrupt it. Skipped entirely while offline; the
// reconcile pass covers the gap after reconnect.
func (s *eventService) pushAsync(op, id string, push func(ctx context.Context) error) {
	if !s.monitor.IsOnline() {
		s.logger.Debug(context.Background(), "offline, skipping remote push", "op", op, "id", id)
		return
	}

	s.pushes.Add(1)
	go func() {
		defer s.pushes.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.remoteTimeout)
		defer cancel()

		if err := push(ctx); err != nil {
			s.logger.Warn(ctx, "remote push failed", "op", op, "id", id, "error", err)
			return
		}
		s.logger.Debug(ctx, "remote push succeeded", "op", op, "id", id)
	}()
}

func sortByStart(list []*models.Event) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Start.Equal(list[j].Start) {
			return list[i].ID < list[j].ID
		}
		return list[i].Start.Before(list[j].Start)
	})
}
