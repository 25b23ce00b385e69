package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mr1hm/go-migrant-health/internal/aggregate"
	"github.com/mr1hm/go-migrant-health/internal/api"
	"github.com/mr1hm/go-migrant-health/internal/cache"
	"github.com/mr1hm/go-migrant-health/internal/config"
	internalgrpc "github.com/mr1hm/go-migrant-health/internal/grpc"
	"github.com/mr1hm/go-migrant-health/internal/ingestion"
	"github.com/mr1hm/go-migrant-health/internal/logging"
	"github.com/mr1hm/go-migrant-health/internal/repository"
	"github.com/mr1hm/go-migrant-health/internal/session"
	"github.com/mr1hm/go-migrant-health/internal/source"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.File)

	slog.Info("Server starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"api", cfg.API.BaseURL,
		"data_source", cfg.API.DataSource)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	remote := source.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	var src source.Source = remote

	var db *repository.SQLiteDB
	if cfg.Sync.Enabled {
		if err := os.MkdirAll(filepath.Dir(cfg.DB.Path), 0o755); err != nil {
			logging.Fatalf("Failed to create data directory: %v", err)
		}
		db, err = repository.NewSQLiteDB(cfg.DB.Path)
		if err != nil {
			logging.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()

		if cfg.API.DataSource == config.DataSourceMirror {
			src = db
		}
	}

	c := cache.New(src, cfg.Cache.TTL)
	agg := aggregate.New(c)

	grpcServer := internalgrpc.NewServer()
	go func() {
		grpcAddr := fmt.Sprintf(":%d", cfg.GRPC.Port)
		if err := grpcServer.Start(grpcAddr); err != nil {
			logging.Fatalf("gRPC server error: %v", err)
		}
	}()

	sessions := session.NewStore(agg, c)
	go sessions.Janitor(ctx, cfg.Auth.SessionTTL, time.Minute)

	deps := api.Deps{
		Data:     agg,
		Cache:    c,
		Auth:     session.NewStaticAuthenticator(official(cfg), cfg.Official.PasswordHash),
		Sessions: sessions,
		Issuer:   session.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL),
	}

	var (
		mgr         *ingestion.Manager
		broadcaster *internalgrpc.Broadcaster
	)
	if cfg.Sync.Enabled {
		broadcaster = internalgrpc.NewBroadcaster()
		mgr = ingestion.NewManager(cfg, remote, db, broadcaster, grpcServer)
		if cfg.API.DataSource == config.DataSourceMirror {
			mgr.OnSync(c.Refresh)
		}
		mgr.Start(ctx)

		deps.Broadcaster = broadcaster
		deps.Sync = mgr
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.CORSOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
	}))
	limiters := api.NewRateLimiterStore(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	go limiters.Janitor(ctx, 10*time.Minute, time.Minute)
	router.Use(api.RateLimitMiddleware(limiters))

	handler := api.NewHandler(deps)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	if mgr != nil {
		mgr.Stop()
	}
	if broadcaster != nil {
		broadcaster.Close()
	}
	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}

func official(cfg *config.Config) session.Official {
	return session.Official{
		Email:        cfg.Official.Email,
		Name:         cfg.Official.Name,
		Title:        cfg.Official.Title,
		Username:     cfg.Official.Username,
		Role:         cfg.Official.Role,
		Jurisdiction: cfg.Official.Jurisdiction,
	}
}
