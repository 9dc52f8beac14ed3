package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dverbitsky/chronokeeper/internal/client/models"
)

func formatEvent(e *models.Event) string {
	flags := ""
	if e.AllDay {
		flags = " all-day"
	}
	return fmt.Sprintf("%s  %s - %s  [%s/%s]%s  %s",
		e.ID,
		e.Start.Local().Format("2006-01-02 15:04"),
		e.End.Local().Format("15:04"),
		e.Category, e.Status, flags, e.Title)
}

func printConflicts(conflicts []*models.Event) {
	if len(conflicts) == 0 {
		return
	}
	fmt.Printf("Warning: overlaps with %d event(s):\n", len(conflicts))
	for _, c := range conflicts {
		fmt.Println("  " + formatEvent(c))
	}
}

func (a *App) addEvent(ctx context.Context) {

	title, err := GetSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	start, ok, err := GetTime(a.reader, "Start (YYYY-MM-DD HH:MM)", os.Stdout)
	if err != nil || !ok {
		fmt.Println("Start time is required")
		return
	}

	end, ok, err := GetTime(a.reader, "End (YYYY-MM-DD HH:MM)", os.Stdout)
	if err != nil || !ok {
		fmt.Println("End time is required")
		return
	}

	draft := &models.EventDraft{Title: title, Start: start, End: end}

	if desc, entered, _ := GetOptionalText(a.reader, "Description", os.Stdout); entered {
		draft.Description = desc
	}
	if loc, entered, _ := GetOptionalText(a.reader, "Location", os.Stdout); entered {
		draft.Location = loc
	}
	if cat, entered, _ := GetOptionalText(a.reader, "Category (work/personal/health/social/finance/education/custom)", os.Stdout); entered {
		draft.Category = models.Category(cat)
	}
	if tags, entered, _ := GetOptionalText(a.reader, "Tags (comma separated)", os.Stdout); entered {
		draft.Tags = splitList(tags)
	}

	e, conflicts, err := a.eventService.Create(ctx, draft)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}

	fmt.Println("Created " + formatEvent(e))
	printConflicts(conflicts)
}

func (a *App) listEvents() {
	events := a.eventService.Events()
	if len(events) == 0 {
		fmt.Println("No events")
		return
	}
	for _, e := range events {
		fmt.Println(formatEvent(e))
	}
}

func (a *App) agenda(ctx context.Context, args []string) {
	day := time.Now()
	if len(args) > 0 {
		parsed, err := ParseTime(args[0])
		if err != nil {
			log.Printf("error: %v", err)
			return
		}
		day = parsed
	}

	events, err := a.eventService.Agenda(ctx, day)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}

	fmt.Printf("Agenda for %s:\n", day.Format("2006-01-02"))
	if len(events) == 0 {
		fmt.Println("  (empty)")
		return
	}
	for _, e := range events {
		fmt.Println("  " + formatEvent(e))
	}
}

func (a *App) showEvent(ctx context.Context, id string) {
	e, err := a.eventService.Get(ctx, id)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}

	fmt.Println(formatEvent(e))
	if e.Description != "" {
		fmt.Println("  Description: " + e.Description)
	}
	if e.Location != "" {
		fmt.Println("  Location: " + e.Location)
	}
	if len(e.Tags) > 0 {
		fmt.Println("  Tags: " + strings.Join(e.Tags, ", "))
	}
	fmt.Printf("  Priority: %s, reminder: %d min\n", e.Priority, e.ReminderMinutes)
}

func (a *App) editEvent(ctx context.Context, id string) {

	patch := &models.EventPatch{}

	if title, entered, _ := GetOptionalText(a.reader, "New title", os.Stdout); entered {
		patch.Title = &title
	}
	if start, entered, err := GetTime(a.reader, "New start", os.Stdout); err != nil {
		log.Printf("error: %v", err)
		return
	} else if entered {
		patch.Start = &start
	}
	if end, entered, err := GetTime(a.reader, "New end", os.Stdout); err != nil {
		log.Printf("error: %v", err)
		return
	} else if entered {
		patch.End = &end
	}
	if status, entered, _ := GetOptionalText(a.reader, "New status (confirmed/tentative/cancelled)", os.Stdout); entered {
		s := models.Status(status)
		patch.Status = &s
	}

	e, conflicts, err := a.eventService.Update(ctx, id, patch)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}

	fmt.Println("Updated " + formatEvent(e))
	printConflicts(conflicts)
}

func (a *App) deleteEvent(ctx context.Context, id string) {
	answer, err := GetSimpleText(a.reader, "Delete event "+id+"? (y/n)", os.Stdout)
	if err != nil || answer != "y" {
		return
	}

	if err := a.eventService.Delete(ctx, id); err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}
	fmt.Println("Deleted")
}

func (a *App) findEvents(ctx context.Context) {

	filter := &models.EventFilter{}

	if cat, entered, _ := GetOptionalText(a.reader, "Category", os.Stdout); entered {
		c := models.Category(cat)
		filter.Category = &c
	}
	if status, entered, _ := GetOptionalText(a.reader, "Status", os.Stdout); entered {
		s := models.Status(status)
		filter.Status = &s
	}
	if tags, entered, _ := GetOptionalText(a.reader, "Tags (comma separated, any match)", os.Stdout); entered {
		filter.Tags = splitList(tags)
	}
	if from, entered, err := GetTime(a.reader, "From", os.Stdout); err == nil && entered {
		filter.From = &from
	}
	if to, entered, err := GetTime(a.reader, "To", os.Stdout); err == nil && entered {
		filter.To = &to
	}

	events, err := a.eventService.Query(ctx, filter)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}

	if len(events) == 0 {
		fmt.Println("No matches")
		return
	}
	for _, e := range events {
		fmt.Println(formatEvent(e))
	}
}

func splitList(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
