package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/api"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/config"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/embedding"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/primary"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/retrieval"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/search"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/settings"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/store"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/syncer"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/threshold"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/vectorstore"
)

func main() {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	// Logger
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// SQLite
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Stores
	settingsStore := store.NewSettingsStore(db)
	metricsStore := store.NewMetricsStore(db)
	embCacheStore := store.NewEmbeddingCacheStore(db)

	// External services
	ollamaClient := embedding.NewOllamaClient(cfg.OllamaBaseURL, cfg.EmbeddingModel, cfg.EmbeddingDim)
	qdrantClient := vectorstore.NewQdrantClient(cfg.QdrantURL)

	// Embedding with cache
	embedder, err := embedding.NewCachedEmbedder(ollamaClient, embCacheStore, cfg.EmbeddingModel, cfg.EmbeddingCacheBytes)
	if err != nil {
		logger.Error("failed to create embedder", "error", err)
		os.Exit(1)
	}
	defer embedder.Close()

	// Primary store
	prim, err := primary.New(cfg.EmbeddingDim)
	if err != nil {
		logger.Error("failed to create primary store", "error", err)
		os.Exit(1)
	}

	// Operation lock and settings
	lock := syncer.NewLockManager()
	settingsMgr, err := settings.NewManager(settingsStore, lock, cfg.SettingsDefaultsPath, logger)
	if err != nil {
		logger.Error("failed to load settings", "error", err)
		os.Exit(1)
	}

	// Pipelines and retrieval
	pipeline := syncer.NewPipeline(lock, prim, qdrantClient, settingsMgr, metricsStore, cfg.SyncBatchSize, logger)
	engine := search.NewEngine(prim)
	retrievalSvc := retrieval.NewService(settingsMgr, threshold.NewResolver(nil), embedder, engine, logger)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 5*time.Second)
	if err := qdrantClient.HealthCheck(startupCtx); err != nil {
		logger.Warn("qdrant not available at startup, will retry on first use", "error", err)
	}
	cancelStartup()

	// Router
	router := api.NewRouter(db, settingsMgr, lock, retrievalSvc, pipeline, metricsStore,
		prim, embedder, ollamaClient, qdrantClient, cfg.APIKey, logger)

	// Server
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("retrieval engine starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
