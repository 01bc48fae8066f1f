// Package journal keeps the per-day annotations: one highlight ("day theme")
// per date key and an append-only list of mood entries.
package journal

import (
	"time"

	"github.com/google/uuid"

	"github.com/duosync/backend/internal/storage/models"
	"github.com/duosync/backend/internal/timeutil"
)

// DefaultHighlightTitle is stored when a highlight is saved without a title.
const DefaultHighlightTitle = "Main Event"

var newID = uuid.NewString

// SetHighlight returns a copy of highlights with the entry for dateKey
// replaced. An empty title becomes DefaultHighlightTitle and an empty
// color the first palette preset.
func SetHighlight(highlights map[string]models.DailyHighlight, dateKey, title, color string) map[string]models.DailyHighlight {
	if title == "" {
		title = DefaultHighlightTitle
	}
	if color == "" {
		color = models.HighlightPalette[0].Hex
	}

	out := CloneHighlights(highlights)
	out[dateKey] = models.DailyHighlight{
		DateKey: dateKey,
		Title:   title,
		Color:   color,
	}
	return out
}

// ClearHighlight returns a copy of highlights without dateKey.
func ClearHighlight(highlights map[string]models.DailyHighlight, dateKey string) map[string]models.DailyHighlight {
	out := CloneHighlights(highlights)
	delete(out, dateKey)
	return out
}

// AddFeeling returns feelings with a new entry appended. The entry is keyed
// by the local calendar day of selected and stamped with now.
func AddFeeling(feelings []models.DailyFeeling, text, emoji string, owner models.UserID, selected, now time.Time) []models.DailyFeeling {
	out := make([]models.DailyFeeling, 0, len(feelings)+1)
	out = append(out, feelings...)
	return append(out, models.DailyFeeling{
		ID:        newID(),
		UserID:    owner,
		Text:      text,
		Emoji:     emoji,
		Timestamp: now.UTC(),
		DateKey:   timeutil.DateKey(selected),
	})
}

// FeelingsForDay returns the entries recorded for dateKey in insertion order.
func FeelingsForDay(feelings []models.DailyFeeling, dateKey string) []models.DailyFeeling {
	out := make([]models.DailyFeeling, 0)
	for _, f := range feelings {
		if f.DateKey == dateKey {
			out = append(out, f)
		}
	}
	return out
}

// HighlightsForMonth returns the highlights whose key falls in the given month.
func HighlightsForMonth(highlights map[string]models.DailyHighlight, year int, month time.Month) map[string]models.DailyHighlight {
	prefix := timeutil.DateKey(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))[:8]
	out := make(map[string]models.DailyHighlight)
	for k, h := range highlights {
		if len(k) >= 8 && k[:8] == prefix {
			out[k] = h
		}
	}
	return out
}

// CloneHighlights returns a shallow copy of in; nil yields an empty map.
func CloneHighlights(in map[string]models.DailyHighlight) map[string]models.DailyHighlight {
	out := make(map[string]models.DailyHighlight, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
