// Package timeutil converts between UTC instants and zone-local views of them.
//
// Two date notions coexist here and must not be merged:
//   - Slot generation (GenerateDaySlots) anchors to the UTC calendar day of
//     the selected date.
//   - Day headings, DateKey and IsSameCivilDay read the calendar fields of
//     the time's own Location, which callers set to the device display zone.
package timeutil

import (
	"fmt"
	"time"
)

const (
	// SlotsPerDay is the number of timeline slots in one UTC day.
	SlotsPerDay = 48
	// SlotMinutes is the width of a single slot.
	SlotMinutes = 30
	// SlotDuration is SlotMinutes as a time.Duration.
	SlotDuration = SlotMinutes * time.Minute
)

// CurrentTimeLabel formats now in zone as a 12-hour clock label, e.g. "02:37 PM".
func CurrentTimeLabel(now time.Time, zone *time.Location) string {
	return now.In(zone).Format("03:04 PM")
}

// LocalHourAt projects a UTC instant into zone and returns the hour of day (0-23).
func LocalHourAt(instant time.Time, zone *time.Location) int {
	return instant.In(zone).Hour()
}

// StartOfUTCDay clears the UTC hour, minute, second and nanosecond fields of t.
func StartOfUTCDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// GenerateDaySlots returns the 48 slot starts of the UTC day containing
// selected, 30 minutes apart, beginning at 00:00 UTC.
func GenerateDaySlots(selected time.Time) []time.Time {
	start := StartOfUTCDay(selected)
	slots := make([]time.Time, SlotsPerDay)
	for i := range slots {
		slots[i] = start.Add(time.Duration(i) * SlotDuration)
	}
	return slots
}

// FormatSlotLabel formats instant in zone as a 24-hour "H:MM" label.
func FormatSlotLabel(instant time.Time, zone *time.Location) string {
	local := instant.In(zone)
	return fmt.Sprintf("%d:%02d", local.Hour(), local.Minute())
}

// FormatDayHeading renders "Weekday, Month Day, Year" from the calendar
// fields of date's own Location.
func FormatDayHeading(date time.Time) string {
	return date.Format("Monday, January 2, 2006")
}

// IsSameCivilDay reports whether a and b share year, month and day. Each is
// read in its own Location.
func IsSameCivilDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DateKey returns "YYYY-MM-DD" built from the calendar fields of date's
// own Location.
func DateKey(date time.Time) string {
	y, m, d := date.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// ParseDateKey parses a "YYYY-MM-DD" key as midnight in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date key %q: %w", key, err)
	}
	return t, nil
}

// DaysInMonth returns the number of days in month (1-12) of year.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekdayOfMonth returns the weekday (0 = Sunday) of the first day of month.
func FirstWeekdayOfMonth(year int, month time.Month) int {
	return int(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday())
}

// ShiftDays moves date by n whole calendar days in its own Location,
// keeping the wall-clock time.
func ShiftDays(date time.Time, n int) time.Time {
	return date.AddDate(0, 0, n)
}

// MinutesIntoUTCDay returns the minutes elapsed since 00:00 UTC for t.
func MinutesIntoUTCDay(t time.Time) int {
	u := t.UTC()
	return u.Hour()*60 + u.Minute()
}
