package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/duosync/backend/internal/api/middleware"
	"github.com/duosync/backend/internal/storage"
	"github.com/duosync/backend/internal/storage/models"
)

const maxBlobBytes = 4 << 20

// BlobHealthResponse represents the blob store health check response.
type BlobHealthResponse struct {
	Status      string `json:"status"`
	DBConnected bool   `json:"db_connected"`
	Blobs       int    `json:"blobs"`
}

// BlobHealthCheck reports whether the blob database is reachable and how
// many blobs it holds.
func BlobHealthCheck(db *storage.DB, blobs *storage.BlobRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := db.PingContext(r.Context()) == nil
		n, err := blobs.Count(r.Context())

		status, code := "healthy", http.StatusOK
		if !dbConnected || err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}

		writeJSON(w, code, BlobHealthResponse{Status: status, DBConnected: dbConnected, Blobs: n})
	}
}

// CreateBlob stores the request body under a new id.
func CreateBlob(blobs *storage.BlobRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, ok := readBlobBody(w, r)
		if !ok {
			return
		}

		blob, err := blobs.Create(r.Context(), data)
		if errors.Is(err, storage.ErrInvalidJSON) {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Body must be a JSON document")
			return
		}
		if err != nil {
			log.WithError(err).Error("Failed to create blob")
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create blob")
			return
		}

		w.Header().Set("Location", "/api/jsonBlob/"+blob.ID)
		writeBlob(w, http.StatusCreated, blob)
	}
}

// GetBlob returns the stored JSON document. A matching If-None-Match
// yields 304.
func GetBlob(blobs *storage.BlobRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		blob, err := blobs.Get(r.Context(), id)
		if errors.Is(err, storage.ErrBlobNotFound) {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Blob not found")
			return
		}
		if err != nil {
			log.WithError(err).WithField("id", id).Error("Failed to read blob")
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to read blob")
			return
		}

		if match := r.Header.Get("If-None-Match"); match != "" && match == quoteETag(blob.ETag) {
			w.Header().Set("ETag", quoteETag(blob.ETag))
			w.WriteHeader(http.StatusNotModified)
			return
		}

		writeBlob(w, http.StatusOK, blob)
	}
}

// PutBlob replaces the document stored under id, creating it if needed.
func PutBlob(blobs *storage.BlobRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		data, ok := readBlobBody(w, r)
		if !ok {
			return
		}

		blob, created, err := blobs.Put(r.Context(), id, data)
		if errors.Is(err, storage.ErrInvalidJSON) {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Body must be a JSON document")
			return
		}
		if err != nil {
			log.WithError(err).WithField("id", id).Error("Failed to store blob")
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to store blob")
			return
		}

		if created {
			log.WithField("id", id).Info("Blob created by PUT")
		}
		writeBlob(w, http.StatusOK, blob)
	}
}

// DeleteBlob removes the document stored under id.
func DeleteBlob(blobs *storage.BlobRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		err := blobs.Delete(r.Context(), id)
		if errors.Is(err, storage.ErrBlobNotFound) {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Blob not found")
			return
		}
		if err != nil {
			log.WithError(err).WithField("id", id).Error("Failed to delete blob")
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to delete blob")
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func readBlobBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBlobBytes))
	if err != nil {
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, middleware.ErrBadRequest, "Body too large")
		return nil, false
	}
	return data, true
}

func writeBlob(w http.ResponseWriter, status int, blob *models.Blob) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", quoteETag(blob.ETag))
	w.WriteHeader(status)
	w.Write(blob.Data)
}

func quoteETag(tag string) string {
	return `"` + tag + `"`
}
