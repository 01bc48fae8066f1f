// Package config loads the YAML configuration shared by both binaries.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/duosync/backend/internal/storage/models"
)

const (
	DefaultListen          = "127.0.0.1:8080"
	DefaultBlobStoreListen = "127.0.0.1:8081"
	DefaultBlobStoreDB     = "data/blobs.db"
	DefaultBridgeURL       = "https://jsonblob.com/api/jsonBlob"
	DefaultPullInterval    = "@every 30s"
	DefaultScrollDelayMS   = 100
	DefaultFocusHour       = 8
	DefaultLogLevel        = "info"
)

// PairConfig holds one value per participant.
type PairConfig struct {
	Me      string `yaml:"me" json:"me"`
	Partner string `yaml:"partner" json:"partner"`
}

// BridgeConfig points at the remote blob shared by both devices.
type BridgeConfig struct {
	BaseURL string `yaml:"base_url" json:"base_url"`
	// BlobID is the single shared document; every deployment using the
	// same id sees the same state. Empty disables the bridge.
	BlobID string `yaml:"blob_id" json:"blob_id"`
	// PullInterval is a cron spec. "off" disables periodic pulls.
	PullInterval string `yaml:"pull_interval" json:"pull_interval"`
}

// TimelineConfig tunes the timeline view.
type TimelineConfig struct {
	ScrollDelayMS int `yaml:"scroll_delay_ms" json:"scroll_delay_ms"`
	// DefaultFocusHour is the UTC hour "Sync Now" jumps to on other days.
	DefaultFocusHour *int `yaml:"default_focus_hour" json:"default_focus_hour"`
}

// BlobStoreConfig configures cmd/blobstore.
type BlobStoreConfig struct {
	Listen string `yaml:"listen" json:"listen"`
	DBPath string `yaml:"db_path" json:"db_path"`
}

// Config is the top-level application configuration.
type Config struct {
	Listen   string `yaml:"listen" json:"listen"`
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Zones are IANA ids fixed for the lifetime of the process.
	Zones  PairConfig   `yaml:"zones" json:"zones"`
	Labels PairConfig   `yaml:"labels" json:"labels"`
	Names  models.Names `yaml:"names" json:"names"`
	// DisplayZone decides what "today" is. Empty means the system zone.
	DisplayZone string `yaml:"display_zone" json:"display_zone"`

	// StaticDir, if set, is served at / by the session server.
	StaticDir string `yaml:"static_dir,omitempty" json:"static_dir,omitempty"`

	Bridge    BridgeConfig    `yaml:"bridge" json:"bridge"`
	Timeline  TimelineConfig  `yaml:"timeline" json:"timeline"`
	BlobStore BlobStoreConfig `yaml:"blobstore" json:"blobstore"`
}

type envOverrides struct {
	Listen    string `env:"DUOSYNC_LISTEN"`
	BridgeURL string `env:"DUOSYNC_BRIDGE_URL"`
	BridgeID  string `env:"DUOSYNC_BRIDGE_ID"`
	LogLevel  string `env:"DUOSYNC_LOG_LEVEL"`
	BlobDB    string `env:"DUOSYNC_BLOBSTORE_DB"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	focus := DefaultFocusHour
	return &Config{
		Listen:   DefaultListen,
		LogLevel: DefaultLogLevel,
		Zones: PairConfig{
			Me:      models.DefaultZoneMe,
			Partner: models.DefaultZonePartner,
		},
		Labels: PairConfig{
			Me:      models.DefaultLabelMe,
			Partner: models.DefaultLabelPartner,
		},
		Names: models.Names{Me: "Me", Partner: "Partner"},
		Bridge: BridgeConfig{
			BaseURL:      DefaultBridgeURL,
			PullInterval: DefaultPullInterval,
		},
		Timeline: TimelineConfig{
			ScrollDelayMS:    DefaultScrollDelayMS,
			DefaultFocusHour: &focus,
		},
		BlobStore: BlobStoreConfig{
			Listen: DefaultBlobStoreListen,
			DBPath: DefaultBlobStoreDB,
		},
	}
}

// Normalize fills in missing/zero values with defaults.
func (c *Config) Normalize() {
	d := DefaultConfig()

	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		c.LogLevel = d.LogLevel
	}
	if c.Zones.Me == "" {
		c.Zones.Me = d.Zones.Me
	}
	if c.Zones.Partner == "" {
		c.Zones.Partner = d.Zones.Partner
	}
	if c.Labels.Me == "" {
		c.Labels.Me = d.Labels.Me
	}
	if c.Labels.Partner == "" {
		c.Labels.Partner = d.Labels.Partner
	}
	if c.Names.Me == "" {
		c.Names.Me = d.Names.Me
	}
	if c.Names.Partner == "" {
		c.Names.Partner = d.Names.Partner
	}
	if c.Bridge.BaseURL == "" {
		c.Bridge.BaseURL = d.Bridge.BaseURL
	}
	if c.Bridge.PullInterval == "" {
		c.Bridge.PullInterval = d.Bridge.PullInterval
	}
	if c.Timeline.ScrollDelayMS <= 0 {
		c.Timeline.ScrollDelayMS = d.Timeline.ScrollDelayMS
	}
	if h := c.Timeline.DefaultFocusHour; h == nil || *h < 0 || *h > 23 {
		c.Timeline.DefaultFocusHour = d.Timeline.DefaultFocusHour
	}
	if c.BlobStore.Listen == "" {
		c.BlobStore.Listen = d.BlobStore.Listen
	}
	if c.BlobStore.DBPath == "" {
		c.BlobStore.DBPath = d.BlobStore.DBPath
	}
}

// ApplyEnv overrides config values from DUOSYNC_* environment variables.
func (c *Config) ApplyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parsing environment variables: %w", err)
	}

	if o.Listen != "" {
		c.Listen = o.Listen
	}
	if o.BridgeURL != "" {
		c.Bridge.BaseURL = o.BridgeURL
	}
	if o.BridgeID != "" {
		c.Bridge.BlobID = o.BridgeID
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.BlobDB != "" {
		c.BlobStore.DBPath = o.BlobDB
	}
	c.Normalize()
	return nil
}

// Level returns the configured logrus level.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// PullSpec returns the cron spec of the periodic pull, or "" when disabled.
func (c *Config) PullSpec() string {
	if c.Bridge.BlobID == "" || c.Bridge.PullInterval == "off" {
		return ""
	}
	return c.Bridge.PullInterval
}

// ScrollDelay returns the deferred scroll delay.
func (c *Config) ScrollDelay() time.Duration {
	return time.Duration(c.Timeline.ScrollDelayMS) * time.Millisecond
}

// FocusHour returns the default focus hour.
func (c *Config) FocusHour() int {
	if c.Timeline.DefaultFocusHour == nil {
		return DefaultFocusHour
	}
	return *c.Timeline.DefaultFocusHour
}

// Locations resolves both participant zones and the display zone.
func (c *Config) Locations() (me, partner, display *time.Location, err error) {
	if me, err = time.LoadLocation(c.Zones.Me); err != nil {
		return nil, nil, nil, fmt.Errorf("loading zone %q: %w", c.Zones.Me, err)
	}
	if partner, err = time.LoadLocation(c.Zones.Partner); err != nil {
		return nil, nil, nil, fmt.Errorf("loading zone %q: %w", c.Zones.Partner, err)
	}
	display = time.Local
	if c.DisplayZone != "" {
		if display, err = time.LoadLocation(c.DisplayZone); err != nil {
			return nil, nil, nil, fmt.Errorf("loading display zone %q: %w", c.DisplayZone, err)
		}
	}
	return me, partner, display, nil
}

// Load loads configuration from the given YAML path. A missing file is
// created with defaults and 0600 permissions.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// SetBlobID records the shared document id in the file at path. Only the
// file's own values are rewritten; environment overrides stay out of it.
func SetBlobID(path, id string) error {
	cfg, err := Load(path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	cfg.Bridge.BlobID = id
	return Save(path, cfg)
}

// Save writes cfg to path atomically via a temp file and rename.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".duosync-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
