package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dverbitsky/chronokeeper/internal/client/models"
	"github.com/dverbitsky/chronokeeper/internal/common"
)

// envelope is the JSON response wrapper the remote API uses for every route.
type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
	Event   *models.Event   `json:"event,omitempty"`
	Events  []*models.Event `json:"events,omitempty"`
	Count   int             `json:"count,omitempty"`
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient builds a client for the API at baseURL. Every call is bounded
// by timeout so a dead network cannot stall the coordinator's fire-and-forget
// pushes or the reconnect probe.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	_, err := c.call(ctx, http.MethodGet, "/health", nil)
	return err
}

func (c *HTTPClient) CreateEvent(ctx context.Context, e *models.Event) error {
	_, err := c.call(ctx, http.MethodPost, "/events", e)
	return err
}

func (c *HTTPClient) UpdateEvent(ctx context.Context, id string, patch *models.EventPatch) error {
	_, err := c.call(ctx, http.MethodPut, "/events/"+url.PathEscape(id), patch)
	return err
}

func (c *HTTPClient) DeleteEvent(ctx context.Context, id string) error {
	_, err := c.call(ctx, http.MethodDelete, "/events/"+url.PathEscape(id), nil)
	return err
}

func (c *HTTPClient) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	env, err := c.call(ctx, http.MethodGet, "/events/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	if env.Event == nil {
		return nil, fmt.Errorf("malformed response: missing event")
	}
	return env.Event, nil
}

func (c *HTTPClient) ListEvents(ctx context.Context, from, to *time.Time, tags []string) ([]*models.Event, error) {
	q := url.Values{}
	if from != nil {
		q.Set("startDate", from.UTC().Format(time.RFC3339))
	}
	if to != nil {
		q.Set("endDate", to.UTC().Format(time.RFC3339))
	}
	if len(tags) > 0 {
		q.Set("tags", strings.Join(tags, ","))
	}

	path := "/events"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	env, err := c.call(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return env.Events, nil
}

// call performs one request/response cycle and maps failures:
// transport errors and 5xx to ErrUnavailable, 404 to common.ErrNotFound.
func (c *HTTPClient) call(ctx context.Context, method, path string, body any) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: status %s", ErrUnavailable, resp.Status)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, common.ErrNotFound
	}
	if !env.Success {
		return nil, fmt.Errorf("remote API error: %s", env.Error)
	}

	return &env, nil
}
