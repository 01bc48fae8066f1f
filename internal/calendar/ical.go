// Package calendar converts shared events to and from iCalendar feeds.
package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/duosync/backend/internal/storage/models"
)

const (
	productID = "-//duosync//timeline//EN"

	// PropertyUser carries the owning participant of an exported event.
	PropertyUser = ical.ComponentProperty("X-DUOSYNC-USER")
)

// Export builds a calendar with one VEVENT per event. The event type is
// written as CATEGORIES, the owner as X-DUOSYNC-USER and the owner's
// display name as DESCRIPTION.
func Export(events []models.CalendarEvent, names models.Names, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if names.Me != "" || names.Partner != "" {
		cal.SetName(fmt.Sprintf("%s & %s", names.Me, names.Partner))
	}

	for _, e := range events {
		ve := cal.AddEvent(e.ID)
		ve.SetDtStampTime(now.UTC())
		ve.SetStartAt(e.StartTime.UTC())
		ve.SetEndAt(e.EndTime().UTC())
		ve.SetSummary(e.Title)
		if name := names.For(e.UserID); name != "" {
			ve.SetDescription(name)
		}
		ve.SetProperty(ical.ComponentPropertyCategories, string(e.Type))
		ve.SetProperty(PropertyUser, string(e.UserID))
	}
	return cal
}

// WriteICS serializes Export's result to w.
func WriteICS(w io.Writer, events []models.CalendarEvent, names models.Names, now time.Time) error {
	if err := Export(events, names, now).SerializeTo(w); err != nil {
		return fmt.Errorf("serializing calendar: %w", err)
	}
	return nil
}

// Parse reads VEVENTs from an iCalendar feed. Events without an owner
// property are assigned to owner; unknown categories become "other".
// VEVENTs without UID or a positive duration are skipped.
func Parse(r io.Reader, owner models.UserID) ([]models.CalendarEvent, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parsing calendar: %w", err)
	}

	var events []models.CalendarEvent
	for _, ve := range cal.Events() {
		ev, ok := parseVEvent(ve, owner)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseVEvent(ve *ical.VEvent, owner models.UserID) (models.CalendarEvent, bool) {
	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return models.CalendarEvent{}, false
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return models.CalendarEvent{}, false
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return models.CalendarEvent{}, false
	}
	minutes := int(end.Sub(start) / time.Minute)
	if minutes <= 0 {
		return models.CalendarEvent{}, false
	}

	ev := models.CalendarEvent{
		ID:              uid.Value,
		StartTime:       start.UTC(),
		DurationMinutes: minutes,
		Type:            models.EventTypeOther,
		UserID:          owner,
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		ev.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyCategories); p != nil {
		if t := models.EventType(strings.ToLower(strings.TrimSpace(p.Value))); t.Valid() {
			ev.Type = t
		}
	}
	if p := ve.GetProperty(PropertyUser); p != nil {
		if u := models.UserID(p.Value); u.Valid() {
			ev.UserID = u
		}
	}
	return ev, true
}

// FilterByDateRange returns events that overlap the [start, end) range.
func FilterByDateRange(events []models.CalendarEvent, start, end time.Time) []models.CalendarEvent {
	var filtered []models.CalendarEvent
	for _, e := range events {
		if e.Overlaps(start, end) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
