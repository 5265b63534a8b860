package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jwgray1010/unsaid/internal/coach"
	"github.com/jwgray1010/unsaid/internal/config"
	"github.com/jwgray1010/unsaid/internal/remote"
	"github.com/jwgray1010/unsaid/internal/server"
	"github.com/jwgray1010/unsaid/internal/storage"
	"github.com/jwgray1010/unsaid/internal/storage/sqlite"
)

func main() {
	userID := flag.String("user", "default", "Profile owner for this session")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store := openStore(cfg)
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var remoteClient *remote.Client
	if cfg.Features.EnableRemote && cfg.Remote.Endpoint != "" {
		remoteClient = remote.NewClient(remote.Config{
			Endpoint:          cfg.Remote.Endpoint,
			APIKey:            cfg.Remote.APIKey,
			Timeout:           cfg.Remote.Timeout,
			RequestsPerMinute: cfg.Remote.RequestsPerMinute,
		})
		log.Printf("Remote enhancement enabled: %s", cfg.Remote.Endpoint)
	}

	c, err := coach.New(ctx, coach.Options{
		Store:     store,
		UserID:    *userID,
		Remote:    remoteClient,
		Workers:   cfg.Coach.Workers,
		CacheSize: cfg.Coach.CacheSize,
	})
	if err != nil {
		log.Fatalf("Failed to initialize coach: %v", err)
	}
	defer c.Close()

	handlers := server.NewHandlers(c, cfg.Features.EnableWebSocket)
	addr, err := server.Start(ctx, cfg.Server.Host, cfg.Server.Port, handlers)
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	log.Printf("Unsaid coach running at http://%s", addr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")
	cancel()
	time.Sleep(1 * time.Second) // Give time for connections to close
}

// openStore opens the configured profile store, degrading to the in-memory
// store when sqlite is unavailable so the pipeline still runs.
func openStore(cfg *config.Config) storage.ProfileStore {
	if cfg.Storage.StorageEngine == "memory" {
		return storage.NewMemoryProfileStore()
	}

	if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
		log.Printf("Failed to create data dir, using in-memory profiles: %v", err)
		return storage.NewMemoryProfileStore()
	}

	store, err := sqlite.NewProfileStore(filepath.Join(cfg.Storage.DataPath, "unsaid.db"))
	if err != nil {
		log.Printf("Failed to open profile store, using in-memory profiles: %v", err)
		return storage.NewMemoryProfileStore()
	}
	return store
}
