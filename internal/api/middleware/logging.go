package middleware

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// responseWriter wraps http.ResponseWriter to capture the status code and
// the error code written by WriteError.
// It also implements http.Hijacker to support WebSocket connections.
type responseWriter struct {
	http.ResponseWriter
	status  int
	size    int
	errCode string
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// Hijack implements http.Hijacker interface to support WebSocket upgrades.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return h.Hijack()
}

// Flush implements http.Flusher interface for streaming responses.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// queryFields are the query parameters that select what a timeline, feeling
// or export request looks at.
var queryFields = []string{"date", "user", "from", "to", "year", "month"}

// requestFields describes r by its route template, its path variables (event
// id, blob id, date key) and the day or user it selects.
func requestFields(r *http.Request) log.Fields {
	fields := log.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			fields["route"] = tpl
		}
	}
	for k, v := range mux.Vars(r) {
		fields[k] = v
	}
	q := r.URL.Query()
	for _, k := range queryFields {
		if v := q.Get(k); v != "" {
			fields[k] = v
		}
	}
	return fields
}

// Logging is middleware that logs HTTP requests. Server errors log at error
// level and client errors at warn, each carrying the API error code.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{
			ResponseWriter: w,
			status:         http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		entry := log.WithFields(requestFields(r)).WithFields(log.Fields{
			"status":   wrapped.status,
			"size":     wrapped.size,
			"duration": time.Since(start),
		})
		if wrapped.errCode != "" {
			entry = entry.WithField("error_code", wrapped.errCode)
		}

		switch {
		case wrapped.status >= http.StatusInternalServerError:
			entry.Error("request")
		case wrapped.status >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	})
}
