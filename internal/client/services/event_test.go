package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dverbitsky/chronokeeper/internal/client/models"
	"github.com/dverbitsky/chronokeeper/internal/common"
	"github.com/dverbitsky/chronokeeper/internal/logging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEventRepo struct {
	mu     sync.Mutex
	events map[string]*models.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[string]*models.Event)}
}

func (r *fakeEventRepo) Create(ctx context.Context, draft *models.EventDraft) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

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
	if e.Status == "" {
		e.Status = models.StatusConfirmed
	}
	r.events[e.ID] = e
	return e, nil
}

func (r *fakeEventRepo) Update(ctx context.Context, id string, patch *models.EventPatch) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.events[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	if err := patch.Validate(e); err != nil {
		return nil, err
	}
	copied := *e
	patch.Apply(&copied)
	copied.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	r.events[id] = &copied
	return &copied, nil
}

func (r *fakeEventRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *fakeEventRepo) GetByID(ctx context.Context, id string) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.events[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return e, nil
}

func (r *fakeEventRepo) GetAll(ctx context.Context) ([]*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*models.Event
	for _, e := range r.events {
		result = append(result, e)
	}
	return result, nil
}

func (r *fakeEventRepo) GetByDateRange(ctx context.Context, from, to time.Time) ([]*models.Event, error) {
	all, _ := r.GetAll(ctx)
	var result []*models.Event
	for _, e := range all {
		if !e.Start.After(to) && !e.End.Before(from) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *fakeEventRepo) Query(ctx context.Context, filter *models.EventFilter) ([]*models.Event, error) {
	all, _ := r.GetAll(ctx)
	var result []*models.Event
	for _, e := range all {
		if filter.Matches(e) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *fakeEventRepo) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = make(map[string]*models.Event)
	return nil
}

type remoteCall struct {
	op string
	id string
}

type fakeRemote struct {
	mu        sync.Mutex
	calls     []remoteCall
	pushErr   error
	listErr   error
	listReply []*models.Event
}

func (f *fakeRemote) record(op, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, remoteCall{op: op, id: id})
}

func (f *fakeRemote) Calls() []remoteCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]remoteCall(nil), f.calls...)
}

func (f *fakeRemote) Ping(ctx context.Context) error {
	f.record("ping", "")
	return nil
}

func (f *fakeRemote) CreateEvent(ctx context.Context, e *models.Event) error {
	f.record("create", e.ID)
	return f.pushErr
}

func (f *fakeRemote) UpdateEvent(ctx context.Context, id string, patch *models.EventPatch) error {
	f.record("update", id)
	return f.pushErr
}

func (f *fakeRemote) DeleteEvent(ctx context.Context, id string) error {
	f.record("delete", id)
	return f.pushErr
}

func (f *fakeRemote) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	f.record("get", id)
	return nil, common.ErrNotFound
}

func (f *fakeRemote) ListEvents(ctx context.Context, from, to *time.Time, tags []string) ([]*models.Event, error) {
	f.record("list", "")
	return f.listReply, f.listErr
}

type fakeMonitor struct {
	online bool
}

func (m *fakeMonitor) IsOnline() bool { return m.online }

func (m *fakeMonitor) Subscribe(func(online bool)) {}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.Default())
}

func newTestService(online bool) (EventService, *fakeEventRepo, *fakeRemote) {
	repo := newFakeEventRepo()
	rc := &fakeRemote{}
	svc := NewEventService(repo, rc, &fakeMonitor{online: online}, testLogger(), time.Second)
	return svc, repo, rc
}

func draftAt(title string, start, end time.Time) *models.EventDraft {
	return &models.EventDraft{Title: title, Start: start, End: end}
}

func TestCreate_CommitsLocallyAndPushes(t *testing.T) {
	svc, _, rc := newTestService(true)
	ctx := context.Background()

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	e, conflicts, err := svc.Create(ctx, draftAt("Standup", start, start.Add(30*time.Minute)))
	require.NoError(t, err)
	require.NotEmpty(t, e.ID)
	assert.Empty(t, conflicts)

	svc.Flush()

	calls := rc.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, remoteCall{op: "create", id: e.ID}, calls[0])

	got, err := svc.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Standup", got.Title)
}

func TestCreate_OfflineSkipsRemote(t *testing.T) {
	svc, _, rc := newTestService(false)
	ctx := context.Background()

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	e, _, err := svc.Create(ctx, draftAt("Standup", start, start.Add(30*time.Minute)))
	require.NoError(t, err)

	svc.Flush()
	assert.Empty(t, rc.Calls())

	// The local commit is the durability boundary.
	got, err := svc.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
}

func TestCreate_RemoteFailureDoesNotUndoLocalCommit(t *testing.T) {
	svc, _, rc := newTestService(true)
	rc.pushErr = errors.New("status 500")
	ctx := context.Background()

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	e, _, err := svc.Create(ctx, draftAt("Standup", start, start.Add(30*time.Minute)))
	require.NoError(t, err)

	svc.Flush()
	require.Len(t, rc.Calls(), 1)

	got, err := svc.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
}

func TestCreate_InvalidDraftRejectedBeforeStorage(t *testing.T) {
	svc, repo, rc := newTestService(true)
	ctx := context.Background()

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	_, _, err := svc.Create(ctx, draftAt("", start, start.Add(time.Hour)))

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)

	svc.Flush()
	assert.Empty(t, repo.events)
	assert.Empty(t, rc.Calls())
}

func TestCreate_ReportsAdvisoryConflicts(t *testing.T) {
	svc, _, _ := newTestService(false)
	ctx := context.Background()

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	first, _, err := svc.Create(ctx, draftAt("Standup", start, start.Add(30*time.Minute)))
	require.NoError(t, err)

	// Overlaps the first event but is still committed.
	second, conflicts, err := svc.Create(ctx, draftAt("1:1", start.Add(15*time.Minute), start.Add(45*time.Minute)))
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, first.ID, conflicts[0].ID)

	_, err = svc.Get(ctx, second.ID)
	require.NoError(t, err)
}

func TestCreate_BackToBackIsNotAConflict(t *testing.T) {
	svc, _, _ := newTestService(false)
	ctx := context.Background()

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	_, _, err := svc.Create(ctx, draftAt("Standup", start, start.Add(30*time.Minute)))
	require.NoError(t, err)

	_, conflicts, err := svc.Create(ctx, draftAt("Review", start.Add(30*time.Minute), start.Add(time.Hour)))
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestUpdate_PushesPatchAndRefreshesMirror(t *testing.T) {
	svc, _, rc := newTestService(true)
	ctx := context.Background()

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	e, _, err := svc.Create(ctx, draftAt("Standup", start, start.Add(30*time.Minute)))
	require.NoError(t, err)
	svc.Flush()

	title := "Daily standup"
	updated, _, err := svc.Update(ctx, e.ID, &models.EventPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Daily standup", updated.Title)

	svc.Flush()
	calls := rc.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, remoteCall{op: "update", id: e.ID}, calls[1])

	events := svc.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "Daily standup", events[0].Title)
}

func TestUpdate_UnknownID(t *testing.T) {
	svc, _, _ := newTestService(true)

	title := "x"
	_, _, err := svc.Update(context.Background(), "no-such-id", &models.EventPatch{Title: &title})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDelete_RemovesLocallyAndPushes(t *testing.T) {
	svc, _, rc := newTestService(true)
	ctx := context.Background()

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	e, _, err := svc.Create(ctx, draftAt("Standup", start, start.Add(30*time.Minute)))
	require.NoError(t, err)
	svc.Flush()

	require.NoError(t, svc.Delete(ctx, e.ID))
	svc.Flush()

	_, err = svc.Get(ctx, e.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.Empty(t, svc.Events())

	calls := rc.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, remoteCall{op: "delete", id: e.ID}, calls[1])
}

func TestDelete_UnknownID(t *testing.T) {
	svc, _, rc := newTestService(true)

	require.ErrorIs(t, svc.Delete(context.Background(), "no-such-id"), common.ErrNotFound)
	svc.Flush()
	assert.Empty(t, rc.Calls())
}

func TestRefresh_RebuildsProjectionFromStore(t *testing.T) {
	svc, repo, _ := newTestService(false)
	ctx := context.Background()

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	_, err := repo.Create(ctx, draftAt("Standup", start, start.Add(30*time.Minute)))
	require.NoError(t, err)
	_, err = repo.Create(ctx, draftAt("Lunch", start.Add(3*time.Hour), start.Add(4*time.Hour)))
	require.NoError(t, err)

	assert.Empty(t, svc.Events())
	require.NoError(t, svc.Refresh(ctx))

	events := svc.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "Standup", events[0].Title)
	assert.Equal(t, "Lunch", events[1].Title)
}

func TestReconcile_PushesEventsMissingRemotely(t *testing.T) {
	svc, _, rc := newTestService(false)
	ctx := context.Background()

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	first, _, err := svc.Create(ctx, draftAt("Standup", start, start.Add(30*time.Minute)))
	require.NoError(t, err)
	second, _, err := svc.Create(ctx, draftAt("Lunch", start.Add(3*time.Hour), start.Add(4*time.Hour)))
	require.NoError(t, err)

	// The remote mirror already has the first event.
	rc.listReply = []*models.Event{{ID: first.ID}}

	require.NoError(t, svc.Reconcile(ctx))

	calls := rc.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "list", calls[0].op)
	assert.Equal(t, remoteCall{op: "create", id: second.ID}, calls[1])
}

func TestReconcile_ListFailure(t *testing.T) {
	svc, _, rc := newTestService(true)
	rc.listErr = errors.New("connection refused")

	require.Error(t, svc.Reconcile(context.Background()))
}

func TestAgenda_ReturnsDayEventsOrdered(t *testing.T) {
	svc, _, _ := newTestService(false)
	ctx := context.Background()

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	_, _, err := svc.Create(ctx, draftAt("Lunch", day.Add(12*time.Hour), day.Add(13*time.Hour)))
	require.NoError(t, err)
	_, _, err = svc.Create(ctx, draftAt("Standup", day.Add(9*time.Hour), day.Add(9*time.Hour+30*time.Minute)))
	require.NoError(t, err)
	_, _, err = svc.Create(ctx, draftAt("Next day", day.Add(33*time.Hour), day.Add(34*time.Hour)))
	require.NoError(t, err)

	agenda, err := svc.Agenda(ctx, day)
	require.NoError(t, err)
	require.Len(t, agenda, 2)
	assert.Equal(t, "Standup", agenda[0].Title)
	assert.Equal(t, "Lunch", agenda[1].Title)
}
