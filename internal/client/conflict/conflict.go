// Package conflict implements overlap detection over the coordinator's
// in-memory event projection. It never queries storage itself, so results are
// as fresh as the projection handed to it.
package conflict

import (
	"time"

	"github.com/dverbitsky/chronokeeper/internal/client/models"
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Back-to-back intervals (one ending exactly when
// the other starts) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Detect returns every event in events whose interval overlaps
// [start, end), except cancelled events and the event identified by
// excludeID (the one currently being edited). Pass excludeID == "" when
// checking a brand-new event.
func Detect(events []*models.Event, start, end time.Time, excludeID string) []*models.Event {
	var conflicts []*models.Event
	for _, e := range events {
		if e.Status == models.StatusCancelled {
			continue
		}
		if excludeID != "" && e.ID == excludeID {
			continue
		}
		if Overlaps(e.Start, e.End, start, end) {
			conflicts = append(conflicts, e)
		}
	}
	return conflicts
}

// HasConflict is a convenience over Detect.
func HasConflict(events []*models.Event, start, end time.Time, excludeID string) bool {
	return len(Detect(events, start, end, excludeID)) > 0
}
