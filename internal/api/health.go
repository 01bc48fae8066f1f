package api

import (
	"fmt"
	"net"
	"net/http"
	"time"
)

// HealthURL returns the health endpoint of a server listening on addr.
// An empty or unspecified host is reached through localhost.
func HealthURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr + "/api/health"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/api/health"
}

// CheckHealth performs a health check against a running server.
func CheckHealth(addr string) error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(HealthURL(addr))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned %d", resp.StatusCode)
	}
	return nil
}
