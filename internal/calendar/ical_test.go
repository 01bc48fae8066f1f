package calendar

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/duosync/backend/internal/storage/models"
)

func TestWriteICS_RoundTrip(t *testing.T) {
	events := []models.CalendarEvent{
		{
			ID:              "evt-1",
			Title:           "Standup",
			StartTime:       time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
			DurationMinutes: 30,
			Type:            models.EventTypeWork,
			UserID:          models.UserMe,
		},
		{
			ID:              "evt-2",
			Title:           "Night",
			StartTime:       time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC),
			DurationMinutes: 480,
			Type:            models.EventTypeSleep,
			UserID:          models.UserPartner,
		},
	}

	var buf bytes.Buffer
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if err := WriteICS(&buf, events, models.Names{Me: "Min", Partner: "Sam"}, now); err != nil {
		t.Fatalf("WriteICS() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"BEGIN:VCALENDAR", "UID:evt-1", "CATEGORIES:sleep", "X-DUOSYNC-USER:partner", "DESCRIPTION:Sam"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	got, err := Parse(strings.NewReader(out), models.UserMe)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got) != len(events) {
		t.Fatalf("parsed %d events, want %d", len(got), len(events))
	}
	for i := range events {
		if !got[i].StartTime.Equal(events[i].StartTime) {
			t.Errorf("event %d start = %v, want %v", i, got[i].StartTime, events[i].StartTime)
		}
		got[i].StartTime = events[i].StartTime
		if !reflect.DeepEqual(got[i], events[i]) {
			t.Errorf("event %d = %+v, want %+v", i, got[i], events[i])
		}
	}
}

func TestParse_DefaultsAndSkips(t *testing.T) {
	feed := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:keep",
		"DTSTART:20240102T100000Z",
		"DTEND:20240102T113000Z",
		"SUMMARY:Lunch",
		"CATEGORIES:Brunch",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:empty",
		"DTSTART:20240102T100000Z",
		"DTEND:20240102T100000Z",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	got, err := Parse(strings.NewReader(feed), models.UserPartner)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("parsed %d events, want 1: %+v", len(got), got)
	}
	ev := got[0]
	if ev.ID != "keep" || ev.DurationMinutes != 90 || ev.Type != models.EventTypeOther || ev.UserID != models.UserPartner {
		t.Errorf("event = %+v", ev)
	}
}

func TestFilterByDateRange(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []models.CalendarEvent{
		{ID: "before", StartTime: day.Add(-2 * time.Hour), DurationMinutes: 60},
		{ID: "spans", StartTime: day.Add(-30 * time.Minute), DurationMinutes: 60},
		{ID: "inside", StartTime: day.Add(5 * time.Hour), DurationMinutes: 30},
		{ID: "after", StartTime: day.Add(24 * time.Hour), DurationMinutes: 30},
	}

	got := FilterByDateRange(events, day, day.Add(24*time.Hour))
	var ids []string
	for _, e := range got {
		ids = append(ids, e.ID)
	}
	if want := []string{"spans", "inside"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}
