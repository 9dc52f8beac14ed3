// Package models defines the calendar data types shared by the client layers.
package models

import (
	"fmt"
	"time"
)

// Category classifies an event.
type Category string

const (
	CategoryWork      Category = "work"
	CategoryPersonal  Category = "personal"
	CategoryHealth    Category = "health"
	CategorySocial    Category = "social"
	CategoryFinance   Category = "finance"
	CategoryEducation Category = "education"
	CategoryCustom    Category = "custom"
)

// Status is the lifecycle state of an event.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusTentative Status = "tentative"
	StatusCancelled Status = "cancelled"
)

// Priority ranks an event's importance.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ReminderOffsets lists the supported reminder lead times, in minutes before
// the event start. Zero means no reminder.
var ReminderOffsets = []int{0, 5, 10, 15, 30, 60, 1440}

// Event is a scheduled calendar item. The local event store is the sole
// authority for these records; the remote mirror is eventually consistent.
type Event struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	Location         string    `json:"location,omitempty"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	AllDay           bool      `json:"allDay"`
	Category         Category  `json:"category"`
	Status           Status    `json:"status"`
	Priority         Priority  `json:"priority"`
	Tags             []string  `json:"tags,omitempty"`
	Recurring        bool      `json:"recurring"`
	ReminderMinutes  int       `json:"reminderMinutes"`
	NotificationSent bool      `json:"notificationSent"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// EventDraft carries the user-provided fields of a new event. Identity and
// lifecycle timestamps are assigned by the store.
type EventDraft struct {
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Location        string    `json:"location,omitempty"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	AllDay          bool      `json:"allDay"`
	Category        Category  `json:"category"`
	Status          Status    `json:"status"`
	Priority        Priority  `json:"priority"`
	Tags            []string  `json:"tags,omitempty"`
	Recurring       bool      `json:"recurring"`
	ReminderMinutes int       `json:"reminderMinutes"`
}

// ValidationError reports invalid input to create/update, before any storage
// write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks the draft invariants: a non-empty title, a start instant,
// and an end strictly after the start.
func (d *EventDraft) Validate() error {
	if d.Title == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if d.Start.IsZero() {
		return &ValidationError{Field: "start", Reason: "must be set"}
	}
	if !d.End.After(d.Start) {
		return &ValidationError{Field: "end", Reason: "must be after start"}
	}
	return nil
}

// EventPatch is a partial update. Nil fields are left untouched by the merge.
type EventPatch struct {
	Title            *string    `json:"title,omitempty"`
	Description      *string    `json:"description,omitempty"`
	Location         *string    `json:"location,omitempty"`
	Start            *time.Time `json:"start,omitempty"`
	End              *time.Time `json:"end,omitempty"`
	AllDay           *bool      `json:"allDay,omitempty"`
	Category         *Category  `json:"category,omitempty"`
	Status           *Status    `json:"status,omitempty"`
	Priority         *Priority  `json:"priority,omitempty"`
	Tags             *[]string  `json:"tags,omitempty"`
	Recurring        *bool      `json:"recurring,omitempty"`
	ReminderMinutes  *int       `json:"reminderMinutes,omitempty"`
	NotificationSent *bool      `json:"notificationSent,omitempty"`
}

// Apply merges the patch into e. Lifecycle timestamps are the store's
// responsibility and are not touched here.
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
	if p.Priority != nil {
		e.Priority = *p.Priority
	}
	if p.Status != nil {
		e.Status = *p.Status
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

// Validate checks that a patched event still satisfies the temporal invariant
// when either boundary is being changed.
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

// EventFilter selects events for Query. The date range, when present,
// prefilters in SQL; the remaining predicates run in memory.
type EventFilter struct {
	From      *time.Time
	To        *time.Time
	Category  *Category
	Status    *Status
	Priority  *Priority
	Recurring *bool
	// Tags match with OR semantics: an event qualifies if it carries any
	// of the listed tags.
	Tags []string
}

// Matches applies the in-memory part of the filter.
func (f *EventFilter) Matches(e *Event) bool {
	if f.Category != nil && e.Category != *f.Category {
		return false
	}
	if f.Status != nil && e.Status != *f.Status {
		return false
	}
	if f.Priority != nil && e.Priority != *f.Priority {
		return false
	}
	if f.Recurring != nil && e.Recurring != *f.Recurring {
		return false
	}
	if len(f.Tags) > 0 {
		found := false
		for _, want := range f.Tags {
			for _, have := range e.Tags {
				if want == have {
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
