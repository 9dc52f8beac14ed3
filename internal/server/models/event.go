// Package models defines the server-side calendar records and the request
// DTOs the HTTP API accepts.
package models

import (
	"fmt"
	"time"
)

// Event is the server's copy of a calendar event. Clients own event identity;
// the server stores whatever id the client committed locally.
type Event struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	Location         string    `json:"location,omitempty"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	AllDay           bool      `json:"allDay"`
	Category         string    `json:"category"`
	Status           string    `json:"status"`
	Priority         string    `json:"priority"`
	Tags             []string  `json:"tags,omitempty"`
	Recurring        bool      `json:"recurring"`
	ReminderMinutes  int       `json:"reminderMinutes"`
	NotificationSent bool      `json:"notificationSent"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ValidationError reports a rejected request body.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks the invariants the API enforces on create.
func (e *Event) Validate() error {
	if e.Title == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if e.Start.IsZero() {
		return &ValidationError{Field: "start", Reason: "must be set"}
	}
	if !e.End.After(e.Start) {
		return &ValidationError{Field: "end", Reason: "must be after start"}
	}
	return nil
}

// EventPatch is a partial update for PUT. Nil fields keep the stored value.
type EventPatch struct {
	Title            *string    `json:"title,omitempty"`
	Description      *string    `json:"description,omitempty"`
	Location         *string    `json:"location,omitempty"`
	Start            *time.Time `json:"start,omitempty"`
	End              *time.Time `json:"end,omitempty"`
	AllDay           *bool      `json:"allDay,omitempty"`
	Category         *string    `json:"category,omitempty"`
	Status           *string    `json:"status,omitempty"`
	Priority         *string    `json:"priority,omitempty"`
	Tags             *[]string  `json:"tags,omitempty"`
	Recurring        *bool      `json:"recurring,omitempty"`
	ReminderMinutes  *int       `json:"reminderMinutes,omitempty"`
	NotificationSent *bool      `json:"notificationSent,omitempty"`
}

// Apply merges the patch into e.
func (p *EventPatch) Apply(e *Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Start != nil {
		e.Start = *p.Start
	}
	if p.End != nil {
		e.End = *p.End
	}
	if p.AllDay != nil {
		e.AllDay = *p.AllDay
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Priority != nil {
		e.Priority = *p.Priority
	}
	if p.Tags != nil {
		e.Tags = *p.Tags
	}
	if p.Recurring != nil {
		e.Recurring = *p.Recurring
	}
	if p.ReminderMinutes != nil {
		e.ReminderMinutes = *p.ReminderMinutes
	}
	if p.NotificationSent != nil {
		e.NotificationSent = *p.NotificationSent
	}
}

// Validate checks that the patched event still has a valid interval and a
// non-empty title.
func (p *EventPatch) Validate(current *Event) error {
	start := current.Start
	end := current.End
	if p.Start != nil {
		start = *p.Start
	}
	if p.End != nil {
		end = *p.End
	}
	if !end.After(start) {
		return &ValidationError{Field: "end", Reason: "must be after start"}
	}
	if p.Title != nil && *p.Title == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	return nil
}
