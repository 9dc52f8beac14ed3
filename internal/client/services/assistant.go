package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dverbitsky/chronokeeper/internal/client/assistant"
	"github.com/dverbitsky/chronokeeper/internal/client/connectivity"
	"github.com/dverbitsky/chronokeeper/internal/client/models"
	"github.com/dverbitsky/chronokeeper/internal/client/repositories/chat"
	"github.com/dverbitsky/chronokeeper/internal/common"
	"github.com/dverbitsky/chronokeeper/internal/logging"
)

// ChatResult is the outcome of one assistant exchange: the assistant's text
// plus whatever calendar action it triggered.
type ChatResult struct {
	Message   string
	Event     *models.Event
	Events    []*models.Event
	Conflicts []*models.Event
}

// AssistantService runs the natural-language path: send the message to the
// assistant, execute the returned action through the event service, and
// record the exchange in chat history. Unlike direct event commands, this
// path requires the network and fails fast with common.ErrOffline.
type AssistantService interface {
	Chat(ctx context.Context, message string) (*ChatResult, error)
	History(ctx context.Context, limit int) ([]*models.ChatMessage, error)
	ClearHistory(ctx context.Context) error
}

type assistantService struct {
	client   assistant.Client
	eventSvc EventService
	chatRepo chat.Repository
	monitor  connectivity.Monitor
	logger   logging.Logger
}

func NewAssistantService(client assistant.Client, eventSvc EventService, chatRepo chat.Repository, monitor connectivity.Monitor, logger logging.Logger) AssistantService {
	return &assistantService{
		client:   client,
		eventSvc: eventSvc,
		chatRepo: chatRepo,
		monitor:  monitor,
		logger:   logger,
	}
}

type updatePayload struct {
	ID    string            `json:"id"`
	Patch models.EventPatch `json:"patch"`
}

type deletePayload struct {
	ID string `json:"id"`
}

type queryPayload struct {
	From     *time.Time       `json:"from,omitempty"`
	To       *time.Time       `json:"to,omitempty"`
	Category *models.Category `json:"category,omitempty"`
	Status   *models.Status   `json:"status,omitempty"`
	Priority *models.Priority `json:"priority,omitempty"`
	Tags     []string         `json:"tags,omitempty"`
}

func (s *assistantService) Chat(ctx context.Context, message string) (*ChatResult, error) {
	if !s.monitor.IsOnline() {
		return nil, common.ErrOffline
	}

	reply, err := s.client.Send(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("assistant error: %w", err)
	}

	result, err := s.execute(ctx, reply)
	if err != nil {
		return nil, err
	}

	record := &models.ChatMessage{
		UserText:      message,
		AIResponse:    reply.Message,
		ActionType:    reply.Action.Type,
		ActionPayload: reply.Action.Payload,
	}
	if err := s.chatRepo.Append(ctx, record); err != nil {
		// History is a convenience, not part of the action's durability.
		s.logger.Warn(ctx, "failed to record chat message", "error", err)
	}

	return result, nil
}

func (s *assistantService) execute(ctx context.Context, reply *assistant.Reply) (*ChatResult, error) {
	result := &ChatResult{Message: reply.Message}

	switch reply.Action.Type {
	case assistant.ActionCreateEvent:
		var draft models.EventDraft
		if err := json.Unmarshal(reply.Action.Payload, &draft); err != nil {
			return nil, fmt.Errorf("malformed create payload: %w", err)
		}
		e, conflicts, err := s.eventSvc.Create(ctx, &draft)
		if err != nil {
			return nil, err
		}
		result.Event = e
		result.Conflicts = conflicts

	case assistant.ActionUpdateEvent:
		var p updatePayload
		if err := json.Unmarshal(reply.Action.Payload, &p); err != nil {
			return nil, fmt.Errorf("malformed update payload: %w", err)
		}
		e, conflicts, err := s.eventSvc.Update(ctx, p.ID, &p.Patch)
		if err != nil {
			return nil, err
		}
		result.Event = e
		result.Conflicts = conflicts

	case assistant.ActionDeleteEvent:
		var p deletePayload
		if err := json.Unmarshal(reply.Action.Payload, &p); err != nil {
			return nil, fmt.Errorf("malformed delete payload: %w", err)
		}
		if err := s.eventSvc.Delete(ctx, p.ID); err != nil {
			return nil, err
		}

	case assistant.ActionQueryEvents:
		var p queryPayload
		if err := json.Unmarshal(reply.Action.Payload, &p); err != nil {
			return nil, fmt.Errorf("malformed query payload: %w", err)
		}
		list, err := s.eventSvc.Query(ctx, &models.EventFilter{
			From:     p.From,
			To:       p.To,
			Category: p.Category,
			Status:   p.Status,
			Priority: p.Priority,
			Tags:     p.Tags,
		})
		if err != nil {
			return nil, err
		}
		result.Events = list

	case assistant.ActionNone:
		// Conversational reply only.

	default:
		s.logger.Warn(ctx, "unknown assistant action", "type", reply.Action.Type)
	}

	return result, nil
}

func (s *assistantService) History(ctx context.Context, limit int) ([]*models.ChatMessage, error) {
	list, err := s.chatRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("error loading chat history: %w", err)
	}
	return list, nil
}

func (s *assistantService) ClearHistory(ctx context.Context) error {
	if err := s.chatRepo.Clear(ctx); err != nil {
		return fmt.Errorf("error clearing chat history: %w", err)
	}
	return nil
}
