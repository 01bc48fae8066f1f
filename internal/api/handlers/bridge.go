package handlers

import (
	"net/http"

	"github.com/duosync/backend/internal/session"
)

// GetState returns the shared document exactly as it would be pushed.
func GetState(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sess.Snapshot())
	}
}

// PullBridge fetches and merges remote state immediately. Bridge failures
// are reported as an unmerged result, never as an HTTP error.
func PullBridge(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, _ := sess.Pull(r.Context())
		writeJSON(w, http.StatusOK, res)
	}
}
