package models

import (
	"time"
)

// DailyHighlight is the per-day "theme" annotation. One per DateKey.
type DailyHighlight struct {
	DateKey string `json:"dateKey"`
	Title   string `json:"title"`
	Color   string `json:"color"`
}

// DailyFeeling is a short mood entry recorded against a day.
type DailyFeeling struct {
	ID        string    `json:"id"`
	UserID    UserID    `json:"userId"`
	Text      string    `json:"text"`
	Emoji     string    `json:"emoji"`
	Timestamp time.Time `json:"timestamp"`
	DateKey   string    `json:"dateKey"`
}

// ColorPreset is a named highlight color offered by the theme editor.
type ColorPreset struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// HighlightPalette lists the preset highlight colors. The first entry is
// the default when no color is chosen.
var HighlightPalette = []ColorPreset{
	{Name: "Pink", Hex: "#ec4899"},
	{Name: "Indigo", Hex: "#6366f1"},
	{Name: "Emerald", Hex: "#10b981"},
	{Name: "Amber", Hex: "#f59e0b"},
	{Name: "Rose", Hex: "#f43f5e"},
	{Name: "Sky", Hex: "#0ea5e9"},
	{Name: "Violet", Hex: "#8b5cf6"},
}
