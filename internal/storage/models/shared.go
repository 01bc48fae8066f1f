package models

import (
	"time"
)

// SharedData is the whole-state document exchanged with the remote blob store.
type SharedData struct {
	Events      []CalendarEvent           `json:"events"`
	Highlights  map[string]DailyHighlight `json:"highlights"`
	Feelings    []DailyFeeling            `json:"feelings"`
	Names       Names                     `json:"names"`
	LastUpdated string                    `json:"lastUpdated"`
}

// Stamp sets LastUpdated to t in ISO-8601 (UTC, millisecond precision).
func (d *SharedData) Stamp(t time.Time) {
	d.LastUpdated = t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// Blob is a stored JSON document in the blob store.
type Blob struct {
	ID        string    `json:"id"`
	Data      []byte    `json:"-"`
	ETag      string    `json:"etag"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
