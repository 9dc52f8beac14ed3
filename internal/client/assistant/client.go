// Package assistant implements the client for the natural-language assistant
// endpoint. The assistant translates free-form text into a structured calendar
// action; it never touches the event store itself.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dverbitsky/chronokeeper/internal/client/remote"
)

// Action types the assistant may return.
const (
	ActionCreateEvent = "CREATE_EVENT"
	ActionUpdateEvent = "UPDATE_EVENT"
	ActionDeleteEvent = "DELETE_EVENT"
	ActionQueryEvents = "QUERY_EVENTS"
	ActionNone        = "NO_ACTION"
)

// Action is the structured command parsed out of the user's message.
// Payload shape depends on Type and is interpreted by the caller.
type Action struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Reply is the assistant's answer to one message.
type Reply struct {
	Action  *Action `json:"action,omitempty"`
	Message string  `json:"message"`
}

// Client sends user messages to the assistant service.
type Client interface {
	Send(ctx context.Context, message string) (*Reply, error)
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Send(ctx context.Context, message string) (*Reply, error) {
	data, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", remote.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: status %s", remote.ErrUnavailable, resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("assistant request failed: status %s", resp.Status)
	}

	var reply Reply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if reply.Action == nil {
		reply.Action = &Action{Type: ActionNone}
	}
	return &reply, nil
}
