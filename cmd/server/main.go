// Package main is the entry point for the DuoSync session server.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/duosync/backend/internal/api"
	"github.com/duosync/backend/internal/bridge"
	"github.com/duosync/backend/internal/config"
	"github.com/duosync/backend/internal/session"
	"github.com/duosync/backend/internal/storage/models"
	"github.com/duosync/backend/internal/timeline"
	"github.com/duosync/backend/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
// Defaults to "dev" when not provided.
var version = "dev"

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config.yaml", "Path to the YAML config file")
	addr := flag.String("addr", "", "HTTP server address (overrides config)")
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	initBridge := flag.Bool("init-bridge", false, "Create the remote shared blob, store its id in the config and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config %q: %v", *configPath, err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("Failed to apply environment: %v", err)
	}
	if *addr != "" {
		cfg.Listen = *addr
	}

	// Health check mode for Docker HEALTHCHECK
	if *healthCheck {
		if err := api.CheckHealth(cfg.Listen); err != nil {
			log.Fatalf("Health check failed: %v", err)
		}
		os.Exit(0)
	}

	if *initBridge {
		if err := createRemoteBlob(*configPath, cfg); err != nil {
			log.Fatalf("Failed to initialize bridge: %v", err)
		}
		os.Exit(0)
	}

	log.SetLevel(cfg.Level())
	if _, err := maxprocs.Set(maxprocs.Logger(log.Debugf)); err != nil {
		log.Warnf("Failed to set GOMAXPROCS: %v", err)
	}

	// Allow overriding version via environment (e.g., injected by container build/runtime)
	if envVer := os.Getenv("VERSION"); envVer != "" {
		version = envVer
	}

	log.Printf("Starting DuoSync session server (version: %s)...", version)

	me, partner, display, err := cfg.Locations()
	if err != nil {
		log.Fatalf("Invalid zone configuration: %v", err)
	}

	engine := timeline.NewEngine(
		timeline.Participant{User: models.UserMe, Label: cfg.Labels.Me, Zone: me},
		timeline.Participant{User: models.UserPartner, Label: cfg.Labels.Partner, Zone: partner},
		display,
	)
	engine.SetFocusHour(cfg.FocusHour())

	// Initialize WebSocket hub
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	var remote session.Bridge
	if cfg.Bridge.BlobID != "" {
		remote = bridge.NewClient(bridge.Config{
			BaseURL: cfg.Bridge.BaseURL,
			BlobID:  cfg.Bridge.BlobID,
		})
		log.Printf("Bridge enabled: %s/%s", cfg.Bridge.BaseURL, cfg.Bridge.BlobID)
	} else {
		log.Warn("No bridge blob_id configured, running with local state only")
	}

	sess := session.New(engine, remote, websocket.NewEventBroadcaster(hub), session.Options{
		Names:       cfg.Names,
		ScrollDelay: cfg.ScrollDelay(),
		PullSpec:    cfg.PullSpec(),
	})

	if err := sess.Start(ctx); err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}

	router := api.NewRouter(sess, hub, api.Options{
		StaticDir:        cfg.StaticDir,
		BridgeConfigured: remote != nil,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Printf("Server listening on %s", cfg.Listen)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	sess.Stop()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	cancel()

	log.Println("Server stopped")
}

// createRemoteBlob publishes an empty shared document and records the id
// the remote store assigned to it.
func createRemoteBlob(configPath string, cfg *config.Config) error {
	if cfg.Bridge.BlobID != "" {
		log.Printf("Bridge already initialized: %s", cfg.Bridge.BlobID)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := bridge.NewClient(bridge.Config{BaseURL: cfg.Bridge.BaseURL})
	data := models.SharedData{
		Events:     []models.CalendarEvent{},
		Highlights: map[string]models.DailyHighlight{},
		Feelings:   []models.DailyFeeling{},
		Names:      cfg.Names,
	}
	data.Stamp(time.Now())

	id, err := client.Create(ctx, data)
	if err != nil {
		return err
	}

	if err := config.SetBlobID(configPath, id); err != nil {
		return err
	}
	log.Printf("Created shared blob %s at %s", id, cfg.Bridge.BaseURL)
	return nil
}
