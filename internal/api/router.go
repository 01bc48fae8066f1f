// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/duosync/backend/internal/api/handlers"
	"github.com/duosync/backend/internal/api/middleware"
	"github.com/duosync/backend/internal/session"
	"github.com/duosync/backend/internal/storage"
	"github.com/duosync/backend/internal/websocket"
)

// Options holds optional router wiring.
type Options struct {
	// StaticDir, when set, is served at / for the presentation layer.
	StaticDir        string
	BridgeConfigured bool
}

// NewRouter creates and configures the HTTP router with all session routes.
func NewRouter(sess *session.Session, hub *websocket.Hub, opts Options) *mux.Router {
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", handlers.HealthCheck(sess, hub, opts.BridgeConfigured)).Methods("GET")
	api.HandleFunc("/clock", handlers.GetClock(sess)).Methods("GET")

	// WebSocket endpoint
	if hub != nil {
		api.HandleFunc("/ws", handlers.WebSocketUpgrade(hub)).Methods("GET")
	}

	// Timeline endpoints
	api.HandleFunc("/timeline", handlers.GetTimeline(sess)).Methods("GET")
	api.HandleFunc("/timeline/date", handlers.SelectDate(sess)).Methods("POST")
	api.HandleFunc("/timeline/user", handlers.SelectUser(sess)).Methods("POST")
	api.HandleFunc("/timeline/sync-now", handlers.SyncNow(sess)).Methods("POST")

	// Event endpoints
	api.HandleFunc("/events", handlers.ListEvents(sess)).Methods("GET")
	api.HandleFunc("/events", handlers.CreateEvent(sess)).Methods("POST")
	api.HandleFunc("/events/{id}", handlers.DeleteEvent(sess)).Methods("DELETE")

	// Highlight endpoints; the palette route is registered before {dateKey}
	api.HandleFunc("/highlights", handlers.ListHighlights(sess)).Methods("GET")
	api.HandleFunc("/highlights/palette", handlers.GetHighlightPalette()).Methods("GET")
	api.HandleFunc("/highlights/{dateKey}", handlers.GetHighlight(sess)).Methods("GET")
	api.HandleFunc("/highlights/{dateKey}", handlers.PutHighlight(sess)).Methods("PUT")
	api.HandleFunc("/highlights/{dateKey}", handlers.DeleteHighlight(sess)).Methods("DELETE")

	// Feeling endpoints
	api.HandleFunc("/feelings", handlers.ListFeelings(sess)).Methods("GET")
	api.HandleFunc("/feelings", handlers.CreateFeeling(sess)).Methods("POST")

	api.HandleFunc("/state", handlers.GetState(sess)).Methods("GET")
	api.HandleFunc("/calendar", handlers.GetCalendarMonth(sess)).Methods("GET")
	api.HandleFunc("/export.ics", handlers.ExportICS(sess)).Methods("GET")
	api.HandleFunc("/import.ics", handlers.ImportICS(sess)).Methods("POST")
	api.HandleFunc("/bridge/pull", handlers.PullBridge(sess)).Methods("POST")

	if opts.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(opts.StaticDir)))
	}

	return r
}

// NewBlobRouter creates the router of the standalone blob store.
func NewBlobRouter(db *storage.DB, blobs *storage.BlobRepository) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", handlers.BlobHealthCheck(db, blobs)).Methods("GET")
	api.HandleFunc("/jsonBlob", handlers.CreateBlob(blobs)).Methods("POST")
	api.HandleFunc("/jsonBlob/{id}", handlers.GetBlob(blobs)).Methods("GET")
	api.HandleFunc("/jsonBlob/{id}", handlers.PutBlob(blobs)).Methods("PUT")
	api.HandleFunc("/jsonBlob/{id}", handlers.DeleteBlob(blobs)).Methods("DELETE")

	return r
}
