// Package timeline builds the dual-row, 48-slot timeline grid shown for a
// selected day and tracks the "now" marker across both zones.
package timeline

import (
	"time"

	"github.com/duosync/backend/internal/storage/models"
	"github.com/duosync/backend/internal/timeutil"
)

// DefaultFocusHour is the UTC hour scrolled to when the viewed day is not today.
const DefaultFocusHour = 8

// Participant ties a user to the zone and label their row is drawn with.
type Participant struct {
	User  models.UserID
	Label string
	Zone  *time.Location
}

// Row describes one physical row of the grid.
type Row struct {
	User  models.UserID `json:"user"`
	Label string        `json:"label"`
	Zone  string        `json:"zone"`
}

// SlotView is one rendered column of the grid.
type SlotView struct {
	Start           time.Time             `json:"start"`
	TopTimeLabel    string                `json:"top_time_label"`
	TopEvent        *models.CalendarEvent `json:"top_event,omitempty"`
	BottomTimeLabel string                `json:"bottom_time_label"`
	BottomEvent     *models.CalendarEvent `json:"bottom_event,omitempty"`
	IsCurrentSlot   bool                  `json:"is_current_slot"`
}

// View is everything the presentation layer needs to draw the timeline.
type View struct {
	Heading string `json:"heading"`
	DateKey string `json:"date_key"`
	IsToday bool   `json:"is_today"`
	// Marker is the "now" offset in slot widths; nil when the day is not today.
	Marker      *float64   `json:"marker,omitempty"`
	Top         Row        `json:"top"`
	Bottom      Row        `json:"bottom"`
	Slots       []SlotView `json:"slots"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// Engine computes grids for a fixed pair of participants.
type Engine struct {
	me        Participant
	partner   Participant
	display   *time.Location
	focusHour int
}

// NewEngine creates an engine. display is the zone whose calendar decides
// what "today" is; nil means time.Local.
func NewEngine(me, partner Participant, display *time.Location) *Engine {
	if display == nil {
		display = time.Local
	}
	return &Engine{
		me:        me,
		partner:   partner,
		display:   display,
		focusHour: DefaultFocusHour,
	}
}

// SetFocusHour changes the UTC hour used as scroll target for days other than today.
func (e *Engine) SetFocusHour(hour int) {
	if hour < 0 || hour > 23 {
		hour = DefaultFocusHour
	}
	e.focusHour = hour
}

// Display returns the zone used for local calendar decisions.
func (e *Engine) Display() *time.Location {
	return e.display
}

// Participant returns the configuration for u.
func (e *Engine) Participant(u models.UserID) Participant {
	if u == models.UserPartner {
		return e.partner
	}
	return e.me
}

// rows returns (top, bottom) participants for the active user.
func (e *Engine) rows(active models.UserID) (Participant, Participant) {
	if active == models.UserPartner {
		return e.partner, e.me
	}
	return e.me, e.partner
}

// IsToday reports whether selected falls on the same local calendar day as now.
func (e *Engine) IsToday(selected, now time.Time) bool {
	return timeutil.IsSameCivilDay(selected.In(e.display), now.In(e.display))
}

// BuildGrid maps both event lists onto the 48 UTC slots of the selected
// day. Row orientation follows active; input order is the overlap tie-break.
func (e *Engine) BuildGrid(mine, partner []models.CalendarEvent, selected time.Time, active models.UserID, now time.Time) []SlotView {
	top, bottom := e.rows(active)
	topEvents, bottomEvents := mine, partner
	if active == models.UserPartner {
		topEvents, bottomEvents = partner, mine
	}

	today := e.IsToday(selected, now)
	current := CurrentSlotIndex(now)

	slots := timeutil.GenerateDaySlots(selected)
	views := make([]SlotView, len(slots))
	for i, start := range slots {
		views[i] = SlotView{
			Start:           start,
			TopTimeLabel:    timeutil.FormatSlotLabel(start, top.Zone),
			TopEvent:        OccupyingEvent(topEvents, start),
			BottomTimeLabel: timeutil.FormatSlotLabel(start, bottom.Zone),
			BottomEvent:     OccupyingEvent(bottomEvents, start),
			IsCurrentSlot:   today && i == current,
		}
	}
	return views
}

// View builds the full timeline view for the selected day.
func (e *Engine) View(mine, partner []models.CalendarEvent, selected time.Time, active models.UserID, now time.Time) View {
	top, bottom := e.rows(active)
	local := selected.In(e.display)

	v := View{
		Heading:     timeutil.FormatDayHeading(local),
		DateKey:     timeutil.DateKey(local),
		IsToday:     e.IsToday(selected, now),
		Top:         toRow(top),
		Bottom:      toRow(bottom),
		Slots:       e.BuildGrid(mine, partner, selected, active, now),
		GeneratedAt: now.UTC(),
	}
	if v.IsToday {
		m := MarkerOffset(now)
		v.Marker = &m
	}
	return v
}

// SyncTarget returns the scroll offset, in slot widths, that "Sync Now"
// moves to: the marker when viewing today, the focus hour otherwise.
func (e *Engine) SyncTarget(selected, now time.Time) float64 {
	if e.IsToday(selected, now) {
		return MarkerOffset(now)
	}
	return float64(e.focusHour*60) / timeutil.SlotMinutes
}

// OccupyingEvent returns the first event whose interval intersects the
// half-open slot window starting at slotStart, or nil.
func OccupyingEvent(events []models.CalendarEvent, slotStart time.Time) *models.CalendarEvent {
	slotEnd := slotStart.Add(timeutil.SlotDuration)
	for i := range events {
		if events[i].Overlaps(slotStart, slotEnd) {
			ev := events[i]
			return &ev
		}
	}
	return nil
}

// MarkerOffset returns the "now" position in slot widths from 00:00 UTC.
func MarkerOffset(now time.Time) float64 {
	return float64(timeutil.MinutesIntoUTCDay(now)) / timeutil.SlotMinutes
}

// CurrentSlotIndex returns the index of the slot containing now.
func CurrentSlotIndex(now time.Time) int {
	return timeutil.MinutesIntoUTCDay(now) / timeutil.SlotMinutes
}

func toRow(p Participant) Row {
	zone := ""
	if p.Zone != nil {
		zone = p.Zone.String()
	}
	return Row{User: p.User, Label: p.Label, Zone: zone}
}
