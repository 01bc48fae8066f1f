package handlers

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/duosync/backend/internal/api/middleware"
	"github.com/duosync/backend/internal/calendar"
	"github.com/duosync/backend/internal/session"
	"github.com/duosync/backend/internal/timeutil"
)

const maxImportBytes = 1 << 20

type ImportResponse struct {
	Parsed int `json:"parsed"`
	Added  int `json:"added"`
}

// ExportICS serves the events as an iCalendar feed. The optional from and
// to date keys (to inclusive, UTC days) narrow the feed to events that
// overlap the range.
func ExportICS(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events := sess.Events()

		q := r.URL.Query()
		if from, to := q.Get("from"), q.Get("to"); from != "" || to != "" {
			start, end, err := exportRange(from, to)
			if err != nil {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "from and to must be YYYY-MM-DD")
				return
			}
			events = calendar.FilterByDateRange(events, start, end)
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="duosync.ics"`)

		if err := calendar.WriteICS(w, events, sess.Names(), sess.Now()); err != nil {
			log.WithError(err).Error("Failed to write calendar export")
		}
	}
}

// ImportICS merges the VEVENTs of an uploaded feed into the shared events.
// Events without an owner property belong to the active user.
func ImportICS(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := calendar.Parse(http.MaxBytesReader(w, r.Body, maxImportBytes), sess.ActiveUser())
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid iCalendar body")
			return
		}

		added, _ := sess.ImportEvents(events)
		writeJSON(w, http.StatusOK, ImportResponse{Parsed: len(events), Added: added})
	}
}

// exportRange turns the from/to keys into a half-open UTC range. A missing
// bound is left open.
func exportRange(from, to string) (time.Time, time.Time, error) {
	start, end := time.Time{}, time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	if from != "" {
		t, err := timeutil.ParseDateKey(from, time.UTC)
		if err != nil {
			return start, end, err
		}
		start = t
	}
	if to != "" {
		t, err := timeutil.ParseDateKey(to, time.UTC)
		if err != nil {
			return start, end, err
		}
		end = t.AddDate(0, 0, 1)
	}
	return start, end, nil
}
