package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/duosync/backend/internal/api/middleware"
	"github.com/duosync/backend/internal/session"
	"github.com/duosync/backend/internal/storage/models"
	"github.com/duosync/backend/internal/timeutil"
)

type HighlightRequest struct {
	Title string `json:"title"`
	Color string `json:"color"`
}

type FeelingRequest struct {
	Text  string `json:"text"`
	Emoji string `json:"emoji"`
}

// MonthResponse is the date-picker grid for one month.
type MonthResponse struct {
	Year         int                              `json:"year"`
	Month        int                              `json:"month"`
	DaysInMonth  int                              `json:"days_in_month"`
	FirstWeekday int                              `json:"first_weekday"`
	Highlights   map[string]models.DailyHighlight `json:"highlights"`
}

// ListHighlights returns every highlight keyed by date.
func ListHighlights(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sess.Highlights())
	}
}

// GetHighlightPalette returns the preset highlight colors.
func GetHighlightPalette() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.HighlightPalette)
	}
}

// GetHighlight returns the highlight for one date key.
func GetHighlight(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := dateKeyVar(w, r, sess)
		if !ok {
			return
		}

		h, found := sess.Highlight(key)
		if !found {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "No highlight for this day")
			return
		}
		writeJSON(w, http.StatusOK, h)
	}
}

// PutHighlight upserts the highlight for one date key.
func PutHighlight(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := dateKeyVar(w, r, sess)
		if !ok {
			return
		}

		var req HighlightRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		highlights := sess.SetHighlight(key, req.Title, req.Color)
		writeJSON(w, http.StatusOK, highlights[key])
	}
}

// DeleteHighlight clears the highlight for one date key.
func DeleteHighlight(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := dateKeyVar(w, r, sess)
		if !ok {
			return
		}

		sess.ClearHighlight(key)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListFeelings returns the feelings of the day given by ?date=, or of the
// selected day when absent.
func ListFeelings(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("date")
		if key == "" {
			key = timeutil.DateKey(sess.SelectedDate())
		} else if _, err := timeutil.ParseDateKey(key, time.UTC); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "date must be YYYY-MM-DD")
			return
		}

		writeJSON(w, http.StatusOK, sess.Feelings(key))
	}
}

// CreateFeeling records a feeling for the active user on the selected day.
func CreateFeeling(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req FeelingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		sess.AddFeeling(req.Text, req.Emoji)
		writeJSON(w, http.StatusCreated, sess.Feelings(timeutil.DateKey(sess.SelectedDate())))
	}
}

// GetCalendarMonth returns the grid metrics and highlights of a month.
// Defaults to the month of the selected day.
func GetCalendarMonth(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		selected := sess.SelectedDate()
		year, month := selected.Year(), int(selected.Month())

		q := r.URL.Query()
		if v := q.Get("year"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 9999 {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Invalid year")
				return
			}
			year = n
		}
		if v := q.Get("month"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 12 {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "month must be 1-12")
				return
			}
			month = n
		}

		writeJSON(w, http.StatusOK, MonthResponse{
			Year:         year,
			Month:        month,
			DaysInMonth:  timeutil.DaysInMonth(year, time.Month(month)),
			FirstWeekday: timeutil.FirstWeekdayOfMonth(year, time.Month(month)),
			Highlights:   sess.HighlightsForMonth(year, time.Month(month)),
		})
	}
}

func dateKeyVar(w http.ResponseWriter, r *http.Request, sess *session.Session) (string, bool) {
	key := mux.Vars(r)["dateKey"]
	if _, err := timeutil.ParseDateKey(key, sess.Engine().Display()); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "date key must be YYYY-MM-DD")
		return "", false
	}
	return key, true
}
