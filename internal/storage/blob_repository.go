package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang/snappy"
	"github.com/spaolacci/murmur3"

	"github.com/duosync/backend/internal/storage/models"
)

var (
	// ErrBlobNotFound is returned when no blob has the requested id.
	ErrBlobNotFound = errors.New("blob not found")
	// ErrInvalidJSON is returned when a payload is not a JSON document.
	ErrInvalidJSON = errors.New("payload is not valid JSON")
)

// BlobRepository stores JSON documents compressed with snappy.
type BlobRepository struct {
	BaseRepository
}

// NewBlobRepository creates a new blob repository.
func NewBlobRepository(db *DB) *BlobRepository {
	return &BlobRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// ETag returns the murmur3 hash of data as hex.
func ETag(data []byte) string {
	h1, h2 := murmur3.Sum128(data)
	return fmt.Sprintf("%016x%016x", h1, h2)
}

// Create stores data under a fresh id.
func (r *BlobRepository) Create(ctx context.Context, data []byte) (*models.Blob, error) {
	if !json.Valid(data) {
		return nil, ErrInvalidJSON
	}

	now := r.Now()
	blob := &models.Blob{
		ID:        GenerateID(),
		Data:      data,
		ETag:      ETag(data),
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO blobs (id, data, etag, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, blob.ID, snappy.Encode(nil, data), blob.ETag, blob.CreatedAt, blob.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting blob: %w", err)
	}

	return blob, nil
}

// Get retrieves and decompresses the blob with id.
func (r *BlobRepository) Get(ctx context.Context, id string) (*models.Blob, error) {
	return r.get(ctx, r.DB(), id)
}

func (r *BlobRepository) get(ctx context.Context, q Queryable, id string) (*models.Blob, error) {
	blob := &models.Blob{}
	var compressed []byte

	err := q.QueryRowContext(ctx, `
		SELECT id, data, etag, created_at, updated_at
		FROM blobs WHERE id = ?
	`, id).Scan(&blob.ID, &compressed, &blob.ETag, &blob.CreatedAt, &blob.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying blob: %w", err)
	}

	blob.Data, err = snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("decompressing blob %s: %w", id, err)
	}

	return blob, nil
}

// Put replaces the blob with id, creating it when absent. It reports
// whether the blob was created. Each step is a single statement so
// concurrent first writes to one id wait on the database lock instead of
// failing on a read-to-write lock upgrade.
func (r *BlobRepository) Put(ctx context.Context, id string, data []byte) (*models.Blob, bool, error) {
	if !json.Valid(data) {
		return nil, false, ErrInvalidJSON
	}

	now := r.Now()
	blob := &models.Blob{
		ID:        id,
		Data:      data,
		ETag:      ETag(data),
		CreatedAt: now,
		UpdatedAt: now,
	}
	compressed := snappy.Encode(nil, data)

	// A delete between the insert and the update sends us round again.
	for attempt := 0; attempt < 2; attempt++ {
		res, err := r.DB().ExecContext(ctx, `
			INSERT INTO blobs (id, data, etag, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`, id, compressed, blob.ETag, now, now)
		if err != nil {
			return nil, false, fmt.Errorf("inserting blob %s: %w", id, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return nil, false, fmt.Errorf("checking inserted rows: %w", err)
		} else if n == 1 {
			return blob, true, nil
		}

		res, err = r.DB().ExecContext(ctx, `
			UPDATE blobs SET data = ?, etag = ?, updated_at = ? WHERE id = ?
		`, compressed, blob.ETag, now, id)
		if err != nil {
			return nil, false, fmt.Errorf("updating blob %s: %w", id, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return nil, false, fmt.Errorf("checking updated rows: %w", err)
		} else if n == 0 {
			continue
		}

		err = r.DB().QueryRowContext(ctx, "SELECT created_at FROM blobs WHERE id = ?", id).Scan(&blob.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, false, fmt.Errorf("querying blob %s: %w", id, err)
		}
		return blob, false, nil
	}
	return nil, false, fmt.Errorf("storing blob %s: concurrently deleted", id)
}

// Delete removes the blob with id.
func (r *BlobRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB().ExecContext(ctx, "DELETE FROM blobs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting blob: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted rows: %w", err)
	}
	if n == 0 {
		return ErrBlobNotFound
	}
	return nil
}

// Count returns the number of stored blobs.
func (r *BlobRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM blobs").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting blobs: %w", err)
	}
	return n, nil
}
