package journal

import (
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/duosync/backend/internal/storage/models"
)

func TestSetHighlight(t *testing.T) {
	tests := []struct {
		name  string
		title string
		color string
		want  models.DailyHighlight
	}{
		{
			name:  "empty title defaults",
			title: "",
			color: "#10b981",
			want:  models.DailyHighlight{DateKey: "2024-01-01", Title: "Main Event", Color: "#10b981"},
		},
		{
			name:  "empty color defaults to first preset",
			title: "Flight",
			want:  models.DailyHighlight{DateKey: "2024-01-01", Title: "Flight", Color: "#ec4899"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SetHighlight(nil, "2024-01-01", tt.title, tt.color)
			if !reflect.DeepEqual(got["2024-01-01"], tt.want) {
				t.Errorf("SetHighlight() = %+v, want %+v", got["2024-01-01"], tt.want)
			}
		})
	}
}

func TestSetHighlight_LastWriteWins(t *testing.T) {
	base := map[string]models.DailyHighlight{}
	first := SetHighlight(base, "2024-01-01", "Birthday", "#f43f5e")
	second := SetHighlight(first, "2024-01-01", "Date Night", "#6366f1")

	if len(second) != 1 || second["2024-01-01"].Title != "Date Night" {
		t.Errorf("second = %+v", second)
	}
	if first["2024-01-01"].Title != "Birthday" {
		t.Errorf("SetHighlight mutated its input")
	}
	if len(base) != 0 {
		t.Errorf("SetHighlight mutated the base map")
	}
}

func TestProperty_SetHighlightIdempotent(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("setting twice equals setting once", prop.ForAll(
		func(title, color string) bool {
			once := SetHighlight(nil, "2024-06-01", title, color)
			twice := SetHighlight(once, "2024-06-01", title, color)
			return reflect.DeepEqual(once, twice)
		},
		gen.AlphaString(),
		gen.OneConstOf("", "#ec4899", "#0ea5e9"),
	))

	properties.TestingRun(t)
}

func TestClearHighlight(t *testing.T) {
	h := SetHighlight(nil, "2024-01-01", "A", "")
	h = SetHighlight(h, "2024-01-02", "B", "")

	got := ClearHighlight(h, "2024-01-01")
	if _, ok := got["2024-01-01"]; ok || len(got) != 1 {
		t.Errorf("ClearHighlight() = %+v", got)
	}
	if len(h) != 2 {
		t.Errorf("ClearHighlight mutated its input")
	}
}

func TestAddFeeling(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatal(err)
	}
	selected := time.Date(2024, 3, 1, 0, 30, 0, 0, seoul)
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

	feelings := AddFeeling(nil, "missing you", "🥺", models.UserPartner, selected, now)
	feelings = AddFeeling(feelings, "great day", "😊", models.UserMe, selected, now)

	if len(feelings) != 2 {
		t.Fatalf("len = %d", len(feelings))
	}
	f := feelings[0]
	if f.ID == "" || f.ID == feelings[1].ID {
		t.Errorf("ids must be unique and non-empty")
	}
	if f.DateKey != "2024-03-01" {
		t.Errorf("DateKey = %s, want local day 2024-03-01", f.DateKey)
	}
	if !f.Timestamp.Equal(now) || f.UserID != models.UserPartner || f.Emoji != "🥺" {
		t.Errorf("feeling = %+v", f)
	}
}

func TestFeelingsForDay(t *testing.T) {
	all := []models.DailyFeeling{
		{ID: "1", DateKey: "2024-01-01"},
		{ID: "2", DateKey: "2024-01-02"},
		{ID: "3", DateKey: "2024-01-01"},
	}

	got := FeelingsForDay(all, "2024-01-01")
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Errorf("FeelingsForDay() = %+v", got)
	}
	if got := FeelingsForDay(all, "2023-12-31"); got == nil || len(got) != 0 {
		t.Errorf("FeelingsForDay() for empty day = %#v, want empty slice", got)
	}
}

func TestHighlightsForMonth(t *testing.T) {
	h := SetHighlight(nil, "2024-01-31", "A", "")
	h = SetHighlight(h, "2024-02-01", "B", "")
	h = SetHighlight(h, "2024-02-29", "C", "")

	got := HighlightsForMonth(h, 2024, time.February)
	if len(got) != 2 || got["2024-02-29"].Title != "C" {
		t.Errorf("HighlightsForMonth() = %+v", got)
	}
}
