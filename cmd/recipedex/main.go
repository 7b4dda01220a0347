package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tastebase/recipedex/internal/config"
	"github.com/tastebase/recipedex/internal/db"
	dbBolt "github.com/tastebase/recipedex/internal/db/bolt"
	dbRedis "github.com/tastebase/recipedex/internal/db/redis"
	"github.com/tastebase/recipedex/internal/domain"
	"github.com/tastebase/recipedex/internal/embedding"
	logpkg "github.com/tastebase/recipedex/internal/logger"
	"github.com/tastebase/recipedex/internal/metrics"
	"github.com/tastebase/recipedex/internal/repository/embcache"
	"github.com/tastebase/recipedex/internal/repository/recipestore"
	"github.com/tastebase/recipedex/internal/tagger"
	chiTransport "github.com/tastebase/recipedex/internal/transport/chi"
	healthuc "github.com/tastebase/recipedex/internal/usecase/health"
	ingestuc "github.com/tastebase/recipedex/internal/usecase/ingest"
	searchuc "github.com/tastebase/recipedex/internal/usecase/search"
	"github.com/tastebase/recipedex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting recipedex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	// Create database store based on driver
	var store db.Store
	switch cfg.Database.Driver {
	case "redis":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
	case "bolt":
		store, err = dbBolt.NewStore(cfg.Database.BoltPath)
	default:
		logger.Fatal("Unknown database driver", zap.String("driver", cfg.Database.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Register non-init metrics explicitly
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	embedder := buildEmbedder(cfg, store, logger)
	logger.Info("Embedder created",
		zap.String("strategy", cfg.Embedding.Strategy),
		zap.Int("dimensions", embedder.Dimensions()),
	)

	// Resolve primary-or-fallback once, at construction. Both collections
	// share one backend and one decision.
	ctx := context.Background()
	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	hnsw := recipestore.HNSWConfig{
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	}

	recipeStore := recipestore.New(
		ctx, store, embedder, cfg.Storage.KeyPrefix, "recipes", readiness, hnsw, logger,
	)
	var cacheStore recipestore.Store
	if cfg.SearchCache.Enabled {
		cacheStore = recipestore.New(
			ctx, store, embedder, cfg.Storage.KeyPrefix, "searchdocs", readiness, hnsw, logger,
		)
	}
	if !recipeStore.Available() {
		logger.Warn("Serving from in-memory fallback store")
	}

	// Create use case services
	ingestSvc := ingestuc.New(recipeStore, tagger.Heuristic{}, logger)
	searchSvc := searchuc.New(
		recipeStore, cacheStore,
		time.Duration(cfg.SearchCache.TTLSec)*time.Second, logger,
	)
	healthSvc := healthuc.New(store, embeddingHealthChecker(embedder), recipeStore)

	server := chiTransport.NewServer(
		ingestSvc, searchSvc, healthSvc,
		chiTransport.PageConfig{
			DefaultPageSize: cfg.Index.DefaultPageSize,
			MaxPageSize:     cfg.Index.MaxPageSize,
		},
		cfg.Auth.APIKeys,
		logger,
	)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the embedder chain: strategy -> cache.
func buildEmbedder(cfg config.Config, store db.Store, logger *zap.Logger) domain.Embedder {
	var base domain.Embedder
	switch cfg.Embedding.Strategy {
	case "token":
		base = embedding.NewTokenFeature(cfg.Embedding.Dimensions)
	case "openai":
		base = embedding.NewOpenAI(&embedding.OpenAIConfig{
			APIKey:     cfg.Embedding.OpenAI.APIKey,
			BaseURL:    cfg.Embedding.OpenAI.BaseURL,
			Model:      cfg.Embedding.OpenAI.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Logger:     logger,
		})
	default:
		base = embedding.NewHash(cfg.Embedding.Dimensions)
	}

	if cfg.Embedding.Cache && store != nil {
		return embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)
	}
	return base
}

// embeddingHealthChecker adapts an embedder to the health check contract.
// Deterministic local strategies have nothing to check and report nil.
func embeddingHealthChecker(embedder domain.Embedder) healthuc.EmbeddingChecker {
	if hc, ok := embedder.(domain.HealthChecker); ok {
		return hc
	}
	return nil
}
