package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func newRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(Logging)
	r.Use(ErrorRecovery)

	r.HandleFunc("/api/timeline", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}).Methods("GET")
	r.HandleFunc("/api/highlights/{dateKey}", func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, ErrNotFound, "No highlight for this day")
	}).Methods("GET")
	r.HandleFunc("/api/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		panic("event store corrupted")
	}).Methods("DELETE")
	return r
}

func serve(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func requestEntry(t *testing.T, hook *test.Hook) *log.Entry {
	t.Helper()
	for _, e := range hook.AllEntries() {
		if e.Message == "request" {
			return e
		}
	}
	t.Fatalf("no request entry in %d log entries", len(hook.AllEntries()))
	return nil
}

func TestLogging_RouteContext(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		level  log.Level
		fields log.Fields
	}{
		{
			name:   "timeline selection",
			method: http.MethodGet,
			target: "/api/timeline?date=2024-01-03&user=partner",
			level:  log.InfoLevel,
			fields: log.Fields{"route": "/api/timeline", "date": "2024-01-03", "user": "partner", "status": http.StatusOK},
		},
		{
			name:   "missing highlight",
			method: http.MethodGet,
			target: "/api/highlights/2024-01-05",
			level:  log.WarnLevel,
			fields: log.Fields{"route": "/api/highlights/{dateKey}", "dateKey": "2024-01-05", "status": http.StatusNotFound, "error_code": ErrNotFound},
		},
		{
			name:   "panicking delete",
			method: http.MethodDelete,
			target: "/api/events/ev-42",
			level:  log.ErrorLevel,
			fields: log.Fields{"route": "/api/events/{id}", "id": "ev-42", "status": http.StatusInternalServerError, "error_code": ErrInternalError},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hook := test.NewGlobal()
			defer hook.Reset()

			serve(t, tt.method, tt.target)

			entry := requestEntry(t, hook)
			if entry.Level != tt.level {
				t.Errorf("level = %v, want %v", entry.Level, tt.level)
			}
			for k, want := range tt.fields {
				if got := entry.Data[k]; got != want {
					t.Errorf("%s = %v, want %v", k, got, want)
				}
			}
		})
	}
}

func TestErrorRecovery_LogsRequestContext(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	rec := serve(t, http.MethodDelete, "/api/events/ev-42")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var body ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error != ErrInternalError {
		t.Errorf("error = %q", body.Error)
	}

	var panicked *log.Entry
	for _, e := range hook.AllEntries() {
		if strings.HasPrefix(e.Message, "Handler panicked") {
			panicked = e
		}
	}
	if panicked == nil {
		t.Fatal("panic not logged")
	}
	if panicked.Data["id"] != "ev-42" || panicked.Data["panic"] != "event store corrupted" || panicked.Data["method"] != http.MethodDelete {
		t.Errorf("panic fields = %+v", panicked.Data)
	}
}

func TestWriteErrorWithDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteErrorWithDetails(rec, http.StatusBadRequest, ErrValidation, "Invalid event", map[string]string{"title": "required"})

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	var body struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error != ErrValidation || body.Details["title"] != "required" {
		t.Errorf("body = %+v", body)
	}
}
