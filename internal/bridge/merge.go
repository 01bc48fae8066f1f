package bridge

import (
	"github.com/duosync/backend/internal/storage/models"
)

// MergeByID appends every remote item whose id is not already present
// locally. Local items keep their position and content; nothing is removed,
// so an item deleted on one side reappears after merging with the other.
func MergeByID[T any](local, remote []T, id func(T) string) []T {
	combined := make([]T, 0, len(local)+len(remote))
	combined = append(combined, local...)

	seen := make(map[string]bool, len(combined))
	for _, item := range combined {
		seen[id(item)] = true
	}
	for _, item := range remote {
		key := id(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		combined = append(combined, item)
	}
	return combined
}

// MergeEvents merges event lists by id.
func MergeEvents(local, remote []models.CalendarEvent) []models.CalendarEvent {
	return MergeByID(local, remote, func(e models.CalendarEvent) string { return e.ID })
}

// MergeFeelings merges feeling lists by id.
func MergeFeelings(local, remote []models.DailyFeeling) []models.DailyFeeling {
	return MergeByID(local, remote, func(f models.DailyFeeling) string { return f.ID })
}

// MergeHighlights applies the same union policy to the highlight map: a
// remote day is taken only when the local side has none.
func MergeHighlights(local, remote map[string]models.DailyHighlight) map[string]models.DailyHighlight {
	out := make(map[string]models.DailyHighlight, len(local)+len(remote))
	for k, v := range local {
		out[k] = v
	}
	for k, v := range remote {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}
