// Package main runs the JSON blob store that both devices sync through.
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
	"github.com/duosync/backend/internal/config"
	"github.com/duosync/backend/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML config file")
	addr := flag.String("addr", "", "HTTP server address (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config %q: %v", *configPath, err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("Failed to apply environment: %v", err)
	}
	if *addr != "" {
		cfg.BlobStore.Listen = *addr
	}
	if *dbPath != "" {
		cfg.BlobStore.DBPath = *dbPath
	}

	if *healthCheck {
		if err := api.CheckHealth(cfg.BlobStore.Listen); err != nil {
			log.Fatalf("Health check failed: %v", err)
		}
		os.Exit(0)
	}

	log.SetLevel(cfg.Level())
	if _, err := maxprocs.Set(maxprocs.Logger(log.Debugf)); err != nil {
		log.Warnf("Failed to set GOMAXPROCS: %v", err)
	}

	log.Println("Starting DuoSync blob store...")

	db, err := storage.NewDB(cfg.BlobStore.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations complete")

	router := api.NewBlobRouter(db, storage.NewBlobRepository(db))

	server := &http.Server{
		Addr:         cfg.BlobStore.Listen,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Blob store listening on %s (db: %s)", cfg.BlobStore.Listen, db.Path())
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down blob store...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Blob store stopped")
}
