// Command mirror-sync copies the remote health API into the local SQLite
// mirror once and exits.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mr1hm/go-migrant-health/internal/config"
	internalgrpc "github.com/mr1hm/go-migrant-health/internal/grpc"
	"github.com/mr1hm/go-migrant-health/internal/ingestion"
	"github.com/mr1hm/go-migrant-health/internal/logging"
	"github.com/mr1hm/go-migrant-health/internal/repository"
	"github.com/mr1hm/go-migrant-health/internal/source"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.File)

	if err := os.MkdirAll(filepath.Dir(cfg.DB.Path), 0o755); err != nil {
		logging.Fatalf("Failed to create data directory: %v", err)
	}
	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// one-shot: no poller, no subscribers
	cfg.Sync.Enabled = false
	broadcaster := internalgrpc.NewBroadcaster()
	defer broadcaster.Close()

	mgr := ingestion.NewManager(cfg, source.NewClient(cfg.API.BaseURL, cfg.API.Timeout), db, broadcaster, nil)
	mgr.Start(ctx)
	syncErr := mgr.Sync(ctx)
	stop()
	mgr.Stop()

	if syncErr != nil {
		logging.Fatalf("mirror sync failed: %v", syncErr)
	}

	status := mgr.Status()
	slog.Info("mirror sync complete",
		"db", cfg.DB.Path,
		"locations", status.Counts.Locations,
		"migrants", status.Counts.Migrants,
		"hotspots", status.Hotspots)
}
