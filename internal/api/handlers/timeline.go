package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/duosync/backend/internal/api/middleware"
	"github.com/duosync/backend/internal/session"
	"github.com/duosync/backend/internal/storage/models"
	"github.com/duosync/backend/internal/timeutil"
)

// SelectDateRequest selects a day either absolutely or relative to the
// current selection.
type SelectDateRequest struct {
	Date      string `json:"date,omitempty"`
	ShiftDays int    `json:"shift_days,omitempty"`
}

// SelectUserRequest switches which participant's row sits on top.
type SelectUserRequest struct {
	User models.UserID `json:"user"`
}

// SelectionResponse echoes the selected day and active user after a change.
type SelectionResponse struct {
	Date       string        `json:"date"`
	ActiveUser models.UserID `json:"active_user"`
}

// SyncNowResponse carries the scroll offset of the current moment.
type SyncNowResponse struct {
	Offset float64 `json:"offset"`
}

// GetClock returns both participants' current-time labels.
func GetClock(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sess.Clock())
	}
}

// GetTimeline returns the rendered timeline. The optional date and user
// query parameters update the session before rendering.
func GetTimeline(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if u := q.Get("user"); u != "" {
			user := models.UserID(u)
			if !user.Valid() {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "user must be me or partner")
				return
			}
			if user != sess.ActiveUser() {
				sess.SetActiveUser(user)
			}
		}

		if d := q.Get("date"); d != "" {
			date, err := timeutil.ParseDateKey(d, sess.Engine().Display())
			if err != nil {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "date must be YYYY-MM-DD")
				return
			}
			if timeutil.DateKey(sess.SelectedDate()) != d {
				sess.SelectDate(date)
			}
		}

		writeJSON(w, http.StatusOK, sess.Timeline())
	}
}

// SelectDate changes the viewed day.
func SelectDate(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SelectDateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		switch {
		case req.Date != "":
			date, err := timeutil.ParseDateKey(req.Date, sess.Engine().Display())
			if err != nil {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "date must be YYYY-MM-DD")
				return
			}
			sess.SelectDate(date)
		case req.ShiftDays != 0:
			sess.ChangeDate(req.ShiftDays)
		default:
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "date or shift_days is required")
			return
		}

		writeJSON(w, http.StatusOK, selection(sess))
	}
}

// SelectUser switches the active user.
func SelectUser(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SelectUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if !req.User.Valid() {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "user must be me or partner")
			return
		}

		sess.SetActiveUser(req.User)
		writeJSON(w, http.StatusOK, selection(sess))
	}
}

// SyncNow returns the scroll target and pushes it to connected clients.
func SyncNow(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, SyncNowResponse{Offset: sess.SyncNow()})
	}
}

func selection(sess *session.Session) SelectionResponse {
	return SelectionResponse{
		Date:       timeutil.DateKey(sess.SelectedDate()),
		ActiveUser: sess.ActiveUser(),
	}
}
