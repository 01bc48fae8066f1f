// Package bridge shares the whole application state with the partner's
// device through a remote JSON blob store.
//
// All blob traffic targets one configured blob id, so every deployment that
// points at the same store and id shares one document.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/duosync/backend/internal/storage/models"
)

// DefaultBaseURL is the public blob store the client talks to unless configured otherwise.
const DefaultBaseURL = "https://jsonblob.com/api/jsonBlob"

// ErrNoRemoteState is returned by Fetch when there is no usable remote document.
var ErrNoRemoteState = errors.New("no remote state")

// HTTPClient is the subset of *http.Client used by the bridge.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config describes where the shared document lives.
type Config struct {
	BaseURL string
	BlobID  string
}

// Client reads and writes the shared document.
type Client struct {
	Config Config
	HTTP   HTTPClient
}

// NewClient creates a bridge client with a default HTTP client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		Config: cfg,
		HTTP:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) blobURL() string {
	return c.Config.BaseURL + "/" + c.Config.BlobID
}

// Push replaces the remote document with data. Any non-2xx answer counts as failure.
func (c *Client) Push(ctx context.Context, data models.SharedData) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding shared data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.blobURL(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("updating bridge: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("bridge returned status %d", resp.StatusCode)
	}
	return nil
}

// Fetch reads the remote document. A non-2xx answer, an empty body or a
// body that does not decode all yield ErrNoRemoteState.
func (c *Client) Fetch(ctx context.Context) (*models.SharedData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.blobURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching bridge: %w", err)
	}
	if resp.Body != nil {
		defer resp.Body.Close()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrNoRemoteState, resp.StatusCode)
	}
	if resp.Body == nil {
		return nil, ErrNoRemoteState
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading bridge body: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, ErrNoRemoteState
	}

	var data models.SharedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoRemoteState, err)
	}
	return &data, nil
}

// Create posts data as a new blob and returns the id the store assigned,
// taken from the Location header.
func (c *Client) Create(ctx context.Context, data models.SharedData) (string, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encoding shared data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("creating blob: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("blob store returned status %d", resp.StatusCode)
	}

	loc := resp.Header.Get("Location")
	if loc == "" {
		return "", errors.New("blob store did not return a Location header")
	}
	id := loc[strings.LastIndex(loc, "/")+1:]
	if id == "" {
		return "", fmt.Errorf("unusable Location header %q", loc)
	}
	return id, nil
}
