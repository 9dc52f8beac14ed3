// Package api implements the HTTP/JSON surface of the event server. Every
// response is wrapped in the same envelope: {"success": ..., ...}.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dverbitsky/chronokeeper/internal/common"
	"github.com/dverbitsky/chronokeeper/internal/logging"
	"github.com/dverbitsky/chronokeeper/internal/server/models"
	"github.com/dverbitsky/chronokeeper/internal/server/repositories/events"
)

type Handler struct {
	repo   events.Repository
	logger logging.Logger
}

func NewHandler(repo events.Repository, logger logging.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// Router builds the route table for the API.
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("POST /events", h.createEvent)
	mux.HandleFunc("GET /events", h.listEvents)
	mux.HandleFunc("GET /events/{id}", h.getEvent)
	mux.HandleFunc("PUT /events/{id}", h.updateEvent)
	mux.HandleFunc("DELETE /events/{id}", h.deleteEvent)

	return h.logRequests(mux)
}

type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
	Event   *models.Event   `json:"event,omitempty"`
	Events  []*models.Event `json:"events,omitempty"`
	Count   *int            `json:"count,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Error: msg})
}

// mapError translates storage errors into HTTP status codes.
func (h *Handler) mapError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.Is(err, common.ErrNotFound):
		writeError(w, http.StatusNotFound, "event not found")
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	default:
		h.logger.Error(r.Context(), "internal error", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "ok"})
}

func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	var e models.Event
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	if err := e.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stored, err := h.repo.CreateOrUpdate(r.Context(), &e)
	if err != nil {
		h.mapError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{Success: true, Event: stored})
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	filter := &events.ListFilter{}

	q := r.URL.Query()
	if s := q.Get("startDate"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid startDate, expected RFC 3339")
			return
		}
		filter.From = &t
	}
	if s := q.Get("endDate"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid endDate, expected RFC 3339")
			return
		}
		filter.To = &t
	}
	if s := q.Get("tags"); s != "" {
		filter.Tags = splitParam(s)
	}

	list, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.mapError(w, r, err)
		return
	}

	count := len(list)
	writeJSON(w, http.StatusOK, envelope{Success: true, Events: list, Count: &count})
}

func (h *Handler) getEvent(w http.ResponseWriter, r *http.Request) {
	e, err := h.repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Event: e})
}

func (h *Handler) updateEvent(w http.ResponseWriter, r *http.Request) {
	var patch models.EventPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	e, err := h.repo.Update(r.Context(), r.PathValue("id"), &patch)
	if err != nil {
		h.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Event: e})
}

func (h *Handler) deleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "event deleted"})
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.logger.Info(r.Context(), "request",
			"method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func splitParam(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
