// Package models contains the domain models for the application.
//
// JSON tags on the shared entities follow the blob document written by
// both devices, so they stay camelCase even where the REST API wrappers
// use snake_case.
package models

import (
	"time"
)

// EventType categorizes a timed activity.
type EventType string

// EventType constants
const (
	EventTypeWork    EventType = "work"
	EventTypeSleep   EventType = "sleep"
	EventTypeLeisure EventType = "leisure"
	EventTypeDate    EventType = "date"
	EventTypeOther   EventType = "other"
)

// Valid reports whether t is one of the known categories.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeWork, EventTypeSleep, EventTypeLeisure, EventTypeDate, EventTypeOther:
		return true
	}
	return false
}

// CalendarEvent is a timed activity owned by one of the two users.
// Its occupied interval is [StartTime, StartTime+DurationMinutes).
type CalendarEvent struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	StartTime       time.Time `json:"startTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Type            EventType `json:"type"`
	UserID          UserID    `json:"userId"`
}

// EndTime returns the exclusive end of the event's interval.
func (e CalendarEvent) EndTime() time.Time {
	return e.StartTime.Add(time.Duration(e.DurationMinutes) * time.Minute)
}

// Overlaps reports whether the event has a positive-width intersection
// with the half-open window [start, end).
func (e CalendarEvent) Overlaps(start, end time.Time) bool {
	lo := e.StartTime
	if start.After(lo) {
		lo = start
	}
	hi := e.EndTime()
	if end.Before(hi) {
		hi = end
	}
	return lo.Before(hi)
}

// PartitionByUser splits events into the two owners' lists, keeping input order.
func PartitionByUser(events []CalendarEvent) (mine, partner []CalendarEvent) {
	for _, e := range events {
		switch e.UserID {
		case UserMe:
			mine = append(mine, e)
		case UserPartner:
			partner = append(partner, e)
		}
	}
	return mine, partner
}
