package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"brigade/api/internal/app"
	"brigade/api/internal/assets"
	"brigade/api/internal/config"
	"brigade/api/internal/history"
	"brigade/api/internal/search"
	"brigade/api/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	projects, err := store.NewRedisStore(cfg.RedisURL, cfg.Profile)
	if err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	defer projects.Close()

	var archive *store.PostgresStore
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		defer db.Close()
		if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
		archive = store.NewPostgresStore(db)
		log.Printf("contribution archive enabled")
	} else {
		log.Printf("DATABASE_URL not set, contribution archive disabled")
	}

	var historyService *history.Service
	if strings.TrimSpace(cfg.HistoryDir) != "" {
		if err := os.MkdirAll(cfg.HistoryDir, 0o755); err != nil {
			log.Fatalf("failed to create history dir: %v", err)
		}
		historyService = history.New(cfg.HistoryDir)
	} else {
		log.Printf("BRIGADE_HISTORY_DIR not set, snapshot history disabled")
	}

	var assetStore *assets.Store
	if strings.TrimSpace(cfg.MinioEndpoint) != "" {
		assetStore, err = assets.New(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("object storage connection failed: %v", err)
		}
		log.Printf("photo offload enabled, bucket %s", cfg.MinioBucket)
	} else {
		log.Printf("MINIO_ENDPOINT not set, photos stay inline")
	}

	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey, cfg.Profile)
		defer meiliClient.Close()
	}

	service := app.New(ctx, cfg, projects, archive, historyService, nil, assetStore)
	scanner := search.NewScanner(service.SearchRecords)
	service.SetSearch(search.NewService(meiliClient, scanner))

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Brigade API listening on %s, profile %s", cfg.Addr, cfg.Profile)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
