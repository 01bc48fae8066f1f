// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/duosync/backend/internal/session"
	"github.com/duosync/backend/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status           string `json:"status"`
	BridgeConfigured bool   `json:"bridge_configured"`
	WebSocketClients int    `json:"websocket_clients"`
	Time             string `json:"time"`
}

// HealthCheck returns a handler that performs a health check. The session
// never blocks on the bridge, so the check is always healthy.
func HealthCheck(sess *session.Session, hub *websocket.Hub, bridgeConfigured bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := HealthResponse{
			Status:           "healthy",
			BridgeConfigured: bridgeConfigured,
			Time:             sess.Now().UTC().Format("2006-01-02T15:04:05Z07:00"),
		}
		if hub != nil {
			response.WebSocketClients = hub.ClientCount()
		}

		writeJSON(w, http.StatusOK, response)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
