package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dverbitsky/chronokeeper/internal/client/assistant"
	"github.com/dverbitsky/chronokeeper/internal/client/models"
	"github.com/dverbitsky/chronokeeper/internal/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAssistant struct {
	reply *assistant.Reply
	err   error
	last  string
}

func (f *fakeAssistant) Send(ctx context.Context, message string) (*assistant.Reply, error) {
	f.last = message
	return f.reply, f.err
}

type fakeChatRepo struct {
	mu       sync.Mutex
	messages []*models.ChatMessage
}

func (r *fakeChatRepo) Append(ctx context.Context, msg *models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.ID = uuid.NewString()
	msg.Timestamp = time.Now().UTC().Truncate(time.Second)
	r.messages = append(r.messages, msg)
	return nil
}

func (r *fakeChatRepo) List(ctx context.Context, limit int) ([]*models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := append([]*models.ChatMessage(nil), r.messages...)
	if limit > 0 && len(list) > limit {
		list = list[len(list)-limit:]
	}
	return list, nil
}

func (r *fakeChatRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
	return nil
}

func newTestAssistant(online bool, reply *assistant.Reply) (AssistantService, EventService, *fakeChatRepo) {
	eventSvc, _, _ := newTestService(online)
	chatRepo := &fakeChatRepo{}
	svc := NewAssistantService(&fakeAssistant{reply: reply}, eventSvc, chatRepo, &fakeMonitor{online: online}, testLogger())
	return svc, eventSvc, chatRepo
}

func TestChat_FailsFastWhenOffline(t *testing.T) {
	svc, _, chatRepo := newTestAssistant(false, nil)

	_, err := svc.Chat(context.Background(), "schedule lunch tomorrow")
	require.ErrorIs(t, err, common.ErrOffline)
	assert.Empty(t, chatRepo.messages)
}

func TestChat_CreateActionCommitsEventAndRecordsHistory(t *testing.T) {
	payload, _ := json.Marshal(map[string]any{
		"title": "Lunch",
		"start": "2026-03-03T12:00:00Z",
		"end":   "2026-03-03T13:00:00Z",
	})
	reply := &assistant.Reply{
		Action:  &assistant.Action{Type: assistant.ActionCreateEvent, Payload: payload},
		Message: "Lunch scheduled for tomorrow at noon.",
	}

	svc, eventSvc, chatRepo := newTestAssistant(true, reply)

	result, err := svc.Chat(context.Background(), "schedule lunch tomorrow at noon")
	require.NoError(t, err)
	require.NotNil(t, result.Event)
	assert.Equal(t, "Lunch", result.Event.Title)
	assert.Equal(t, "Lunch scheduled for tomorrow at noon.", result.Message)

	eventSvc.Flush()

	got, err := eventSvc.Get(context.Background(), result.Event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lunch", got.Title)

	require.Len(t, chatRepo.messages, 1)
	msg := chatRepo.messages[0]
	assert.Equal(t, "schedule lunch tomorrow at noon", msg.UserText)
	assert.Equal(t, "Lunch scheduled for tomorrow at noon.", msg.AIResponse)
	assert.Equal(t, assistant.ActionCreateEvent, msg.ActionType)
}

func TestChat_QueryActionReturnsMatches(t *testing.T) {
	work := models.CategoryWork
	payload, _ := json.Marshal(map[string]any{"category": work})
	reply := &assistant.Reply{
		Action:  &assistant.Action{Type: assistant.ActionQueryEvents, Payload: payload},
		Message: "Here are your work events.",
	}

	svc, eventSvc, _ := newTestAssistant(true, reply)

	start := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	_, _, err := eventSvc.Create(context.Background(), &models.EventDraft{
		Title: "Planning", Start: start, End: start.Add(time.Hour), Category: work,
	})
	require.NoError(t, err)
	_, _, err = eventSvc.Create(context.Background(), &models.EventDraft{
		Title: "Dentist", Start: start.Add(2 * time.Hour), End: start.Add(3 * time.Hour), Category: models.CategoryHealth,
	})
	require.NoError(t, err)
	eventSvc.Flush()

	result, err := svc.Chat(context.Background(), "what work meetings do I have")
	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	assert.Equal(t, "Planning", result.Events[0].Title)
}

func TestChat_DeleteActionRemovesEvent(t *testing.T) {
	svc, eventSvc, _ := newTestAssistant(true, nil)

	start := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	e, _, err := eventSvc.Create(context.Background(), &models.EventDraft{
		Title: "Old meeting", Start: start, End: start.Add(time.Hour),
	})
	require.NoError(t, err)
	eventSvc.Flush()

	payload, _ := json.Marshal(map[string]string{"id": e.ID})
	impl := svc.(*assistantService)
	impl.client = &fakeAssistant{reply: &assistant.Reply{
		Action:  &assistant.Action{Type: assistant.ActionDeleteEvent, Payload: payload},
		Message: "Deleted.",
	}}

	_, err = svc.Chat(context.Background(), "cancel the old meeting")
	require.NoError(t, err)
	eventSvc.Flush()

	_, err = eventSvc.Get(context.Background(), e.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestChat_NoActionIsConversational(t *testing.T) {
	reply := &assistant.Reply{
		Action:  &assistant.Action{Type: assistant.ActionNone},
		Message: "Hello! How can I help?",
	}
	svc, _, chatRepo := newTestAssistant(true, reply)

	result, err := svc.Chat(context.Background(), "hi")
	require.NoError(t, err)
	assert.Nil(t, result.Event)
	assert.Empty(t, result.Events)
	assert.Equal(t, "Hello! How can I help?", result.Message)
	require.Len(t, chatRepo.messages, 1)
}

func TestHistory_RespectsLimitAndOrder(t *testing.T) {
	reply := &assistant.Reply{
		Action:  &assistant.Action{Type: assistant.ActionNone},
		Message: "ok",
	}
	svc, _, _ := newTestAssistant(true, reply)
	ctx := context.Background()

	for _, msg := range []string{"one", "two", "three"} {
		_, err := svc.Chat(ctx, msg)
		require.NoError(t, err)
	}

	history, err := svc.History(ctx, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "two", history[0].UserText)
	assert.Equal(t, "three", history[1].UserText)

	require.NoError(t, svc.ClearHistory(ctx))
	history, err = svc.History(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}
