package timeutil

import (
	"testing"
	"time"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("loading %s: %v", name, err)
	}
	return loc
}

func TestGenerateDaySlots(t *testing.T) {
	selected := time.Date(2024, 1, 1, 17, 42, 13, 999, time.UTC)
	slots := GenerateDaySlots(selected)

	if len(slots) != SlotsPerDay {
		t.Fatalf("len(slots) = %d, want %d", len(slots), SlotsPerDay)
	}
	if want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC); !slots[0].Equal(want) {
		t.Errorf("slots[0] = %v, want %v", slots[0], want)
	}
	if want := time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC); !slots[47].Equal(want) {
		t.Errorf("slots[47] = %v, want %v", slots[47], want)
	}
	for i := 1; i < len(slots); i++ {
		if d := slots[i].Sub(slots[i-1]); d != 30*time.Minute {
			t.Fatalf("gap between slot %d and %d = %v", i-1, i, d)
		}
	}
}

func TestGenerateDaySlots_AnchorsToUTCDay(t *testing.T) {
	seoul := mustLoad(t, "Asia/Seoul")
	// 2024-01-02 08:00 in Seoul is still 2024-01-01 in UTC.
	selected := time.Date(2024, 1, 2, 8, 0, 0, 0, seoul)
	slots := GenerateDaySlots(selected)

	if want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC); !slots[0].Equal(want) {
		t.Errorf("slots[0] = %v, want %v", slots[0], want)
	}
	if DateKey(selected) != "2024-01-02" {
		t.Errorf("DateKey(selected) = %s, want local day 2024-01-02", DateKey(selected))
	}
}

func TestFormatSlotLabel(t *testing.T) {
	seoul := mustLoad(t, "Asia/Seoul")
	newYork := mustLoad(t, "America/New_York")

	tests := []struct {
		name    string
		instant time.Time
		zone    *time.Location
		want    string
	}{
		{"utc midnight in seoul", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), seoul, "9:00"},
		{"utc midnight in new york", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), newYork, "19:00"},
		{"half hour", time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC), seoul, "0:30"},
		{"summer time", time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC), newYork, "8:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSlotLabel(tt.instant, tt.zone); got != tt.want {
				t.Errorf("FormatSlotLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocalHourAt(t *testing.T) {
	newYork := mustLoad(t, "America/New_York")

	// DST starts 2024-03-10 at 07:00 UTC in New York.
	if got := LocalHourAt(time.Date(2024, 3, 10, 6, 30, 0, 0, time.UTC), newYork); got != 1 {
		t.Errorf("before transition hour = %d, want 1", got)
	}
	if got := LocalHourAt(time.Date(2024, 3, 10, 7, 30, 0, 0, time.UTC), newYork); got != 3 {
		t.Errorf("after transition hour = %d, want 3", got)
	}
}

func TestCurrentTimeLabel(t *testing.T) {
	seoul := mustLoad(t, "Asia/Seoul")
	now := time.Date(2024, 1, 1, 5, 37, 0, 0, time.UTC)

	if got := CurrentTimeLabel(now, seoul); got != "02:37 PM" {
		t.Errorf("CurrentTimeLabel() = %q, want %q", got, "02:37 PM")
	}
	if got := CurrentTimeLabel(now, time.UTC); got != "05:37 AM" {
		t.Errorf("CurrentTimeLabel() = %q, want %q", got, "05:37 AM")
	}
}

func TestFormatDayHeading(t *testing.T) {
	d := time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)
	if got := FormatDayHeading(d); got != "Monday, January 1, 2024" {
		t.Errorf("FormatDayHeading() = %q", got)
	}
}

func TestIsSameCivilDay(t *testing.T) {
	seoul := mustLoad(t, "Asia/Seoul")
	a := time.Date(2024, 5, 3, 0, 1, 0, 0, seoul)
	b := time.Date(2024, 5, 3, 23, 59, 0, 0, seoul)
	c := time.Date(2024, 5, 4, 0, 0, 0, 0, seoul)

	if !IsSameCivilDay(a, b) {
		t.Error("same day reported different")
	}
	if IsSameCivilDay(b, c) {
		t.Error("different days reported same")
	}
}

func TestDateKey(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), "2024-01-05"},
		{time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC), "2024-12-31"},
		{time.Date(987, 3, 9, 12, 0, 0, 0, time.UTC), "0987-03-09"},
	}
	for _, tt := range tests {
		if got := DateKey(tt.date); got != tt.want {
			t.Errorf("DateKey(%v) = %q, want %q", tt.date, got, tt.want)
		}
	}
}

func TestParseDateKey(t *testing.T) {
	seoul := mustLoad(t, "Asia/Seoul")
	got, err := ParseDateKey("2024-02-29", seoul)
	if err != nil {
		t.Fatalf("ParseDateKey() error = %v", err)
	}
	if DateKey(got) != "2024-02-29" || got.Location() != seoul {
		t.Errorf("ParseDateKey() = %v", got)
	}
	if _, err := ParseDateKey("2024/02/29", seoul); err == nil {
		t.Error("expected error for malformed key")
	}
}

func TestCalendarArithmetic(t *testing.T) {
	tests := []struct {
		year         int
		month        time.Month
		days         int
		firstWeekday int
	}{
		{2024, time.February, 29, 4},
		{2023, time.February, 28, 3},
		{2024, time.January, 31, 1},
		{2024, time.September, 30, 0},
		{2024, time.December, 31, 0},
	}
	for _, tt := range tests {
		if got := DaysInMonth(tt.year, tt.month); got != tt.days {
			t.Errorf("DaysInMonth(%d, %v) = %d, want %d", tt.year, tt.month, got, tt.days)
		}
		if got := FirstWeekdayOfMonth(tt.year, tt.month); got != tt.firstWeekday {
			t.Errorf("FirstWeekdayOfMonth(%d, %v) = %d, want %d", tt.year, tt.month, got, tt.firstWeekday)
		}
	}
}

func TestShiftDays(t *testing.T) {
	d := time.Date(2024, 2, 28, 10, 0, 0, 0, time.UTC)
	if got := DateKey(ShiftDays(d, 1)); got != "2024-02-29" {
		t.Errorf("ShiftDays(+1) = %s", got)
	}
	if got := DateKey(ShiftDays(d, -28)); got != "2024-01-31" {
		t.Errorf("ShiftDays(-28) = %s", got)
	}
}
