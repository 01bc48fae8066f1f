package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/duosync/backend/internal/activity"
	"github.com/duosync/backend/internal/api/middleware"
	"github.com/duosync/backend/internal/session"
	"github.com/duosync/backend/internal/storage/models"
)

// CreateEventResponse returns the new event with the updated event list.
type CreateEventResponse struct {
	Event  models.CalendarEvent   `json:"event"`
	Events []models.CalendarEvent `json:"events"`
}

// ListEvents returns every event of both participants.
func ListEvents(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sess.Events())
	}
}

// CreateEvent adds an activity for the active user on the selected day.
func CreateEvent(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req activity.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if !validClock(req.StartHour, req.StartMinute) || !validClock(req.EndHour, req.EndMinute) {
			middleware.WriteErrorWithDetails(w, http.StatusBadRequest, middleware.ErrValidation,
				"hours must be 0-23 and minutes 0-59", map[string]int{
					"start_hour":   req.StartHour,
					"start_minute": req.StartMinute,
					"end_hour":     req.EndHour,
					"end_minute":   req.EndMinute,
				})
			return
		}

		ev, events := sess.AddEvent(req)
		writeJSON(w, http.StatusCreated, CreateEventResponse{Event: ev, Events: events})
	}
}

// DeleteEvent removes an event. The caller must pass confirm=true.
func DeleteEvent(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		if r.URL.Query().Get("confirm") != "true" {
			middleware.WriteError(w, http.StatusPreconditionRequired, middleware.ErrConfirmationRequired,
				"Deleting an activity must be confirmed with confirm=true")
			return
		}

		if _, ok := activity.Find(id, sess.Events()); !ok {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Event not found")
			return
		}

		writeJSON(w, http.StatusOK, sess.DeleteEvent(id))
	}
}

func validClock(hour, minute int) bool {
	return hour >= 0 && hour <= 23 && minute >= 0 && minute <= 59
}
