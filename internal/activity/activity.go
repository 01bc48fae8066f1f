// Package activity creates and removes timed activities on the shared event list.
package activity

import (
	"time"

	"github.com/google/uuid"

	"github.com/duosync/backend/internal/storage/models"
)

// DefaultTitle is used when an activity is submitted without a title.
const DefaultTitle = "New Task"

// newID generates event identifiers.
var newID = uuid.NewString

// Request is the raw input of the activity form. Hours and minutes are
// UTC-denominated.
type Request struct {
	Title       string           `json:"title"`
	StartHour   int              `json:"start_hour"`
	StartMinute int              `json:"start_minute"`
	EndHour     int              `json:"end_hour"`
	EndMinute   int              `json:"end_minute"`
	Type        models.EventType `json:"type"`
	// UserID is ignored; the owner passed to New always wins.
	UserID models.UserID `json:"user_id,omitempty"`
}

// New builds an event on the UTC calendar day of selected. When the end is
// not strictly after the start it is moved to the next UTC day, so equal
// start and end produce a 24 hour activity.
func New(req Request, selected time.Time, owner models.UserID) models.CalendarEvent {
	u := selected.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), req.StartHour, req.StartMinute, 0, 0, time.UTC)
	end := time.Date(u.Year(), u.Month(), u.Day(), req.EndHour, req.EndMinute, 0, 0, time.UTC)
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}

	title := req.Title
	if title == "" {
		title = DefaultTitle
	}

	return models.CalendarEvent{
		ID:              newID(),
		Title:           title,
		StartTime:       start,
		DurationMinutes: int(end.Sub(start) / time.Minute),
		Type:            normalizeType(req.Type),
		UserID:          owner,
	}
}

// Add returns a new list with ev appended.
func Add(events []models.CalendarEvent, ev models.CalendarEvent) []models.CalendarEvent {
	out := make([]models.CalendarEvent, 0, len(events)+1)
	out = append(out, events...)
	return append(out, ev)
}

// Delete returns a new list without the event whose ID matches.
//
// Removal is unconditional. Asking the user for confirmation is the
// caller's job and is not re-checked here.
func Delete(id string, events []models.CalendarEvent) []models.CalendarEvent {
	out := make([]models.CalendarEvent, 0, len(events))
	for _, e := range events {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

// Find returns the event with the given ID.
func Find(id string, events []models.CalendarEvent) (models.CalendarEvent, bool) {
	for _, e := range events {
		if e.ID == id {
			return e, true
		}
	}
	return models.CalendarEvent{}, false
}

func normalizeType(t models.EventType) models.EventType {
	if t == "" {
		return models.EventTypeWork
	}
	if !t.Valid() {
		return models.EventTypeOther
	}
	return t
}
