package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/user/legaldoc-crawler/internal/adapter/chromedp_fetcher"
	"github.com/user/legaldoc-crawler/internal/adapter/postgres"
	redis_adapter "github.com/user/legaldoc-crawler/internal/adapter/redis"
	"github.com/user/legaldoc-crawler/internal/delivery/http/handler"
	"github.com/user/legaldoc-crawler/internal/delivery/http/router"
	"github.com/user/legaldoc-crawler/internal/extractor"
	"github.com/user/legaldoc-crawler/internal/usecase"
	"github.com/user/legaldoc-crawler/pkg/config"
	"github.com/user/legaldoc-crawler/pkg/logger"
	"github.com/user/legaldoc-crawler/pkg/metrics"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Unable to load configuration", "error", err)
		os.Exit(1)
	}

	// --- Logger ---
	logLevel := logger.ParseLevel(cfg.LogLevel)
	logger.Init(os.Stdout, logLevel)
	slog.Info("Logger initialized", "level", logLevel.String())

	// --- Metrics ---
	metrics.Init()
	slog.Info("Metrics initialized")

	ctx := context.Background()

	// --- PostgreSQL ---
	dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		slog.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()

	if err := postgres.ApplySchema(ctx, dbpool); err != nil {
		slog.Error("Unable to apply database schema", "error", err)
		os.Exit(1)
	}
	slog.Info("PostgreSQL connection pool established")

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		slog.Error("Unable to connect to Redis", "error", err)
		os.Exit(1)
	}
	slog.Info("Redis connection established")

	// --- Repositories ---
	urlRepo := postgres.NewCrawlURLRepo(dbpool)
	versionRepo := postgres.NewDocumentVersionRepo(dbpool)
	relRepo := postgres.NewRelationshipRepo(dbpool)
	catalogRepo := postgres.NewCatalogRepo(dbpool)
	sessionRepo := postgres.NewSessionRepo(dbpool)
	visitedRepo := redis_adapter.NewVisitedRepo(rdb)
	queueRepo := redis_adapter.NewQueueRepo(rdb)

	// --- Fetcher and Extractor ---
	fetcher := chromedp_fetcher.NewChromedpFetcher(cfg.CrawlWorkers, time.Duration(cfg.CrawlTimeout)*time.Second)
	docExtractor := extractor.New()

	// --- Use Cases ---
	dedupWindow := time.Duration(cfg.DeduplicationDays) * 24 * time.Hour
	sessions := usecase.NewSessionTracker(sessionRepo)
	links := usecase.NewLinkManager(urlRepo, visitedRepo, queueRepo, dedupWindow, cfg.MaxRetries)
	documents := usecase.NewDocumentStore(urlRepo, versionRepo)
	relationships := usecase.NewRelationshipResolver(relRepo, urlRepo, versionRepo)
	catalog := usecase.NewCatalogService(catalogRepo)
	crawler := usecase.NewCrawler(sessions, links, documents, relationships, catalog,
		urlRepo, queueRepo, fetcher, docExtractor, cfg.CrawlWorkers)

	// Sessions left RUNNING by a previous interrupted process are dead.
	staleAge := time.Duration(cfg.SessionStaleHours) * time.Hour
	if _, err := sessions.FailStale(ctx, staleAge); err != nil {
		slog.Warn("Unable to close stale sessions", "error", err)
	}

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(links, documents, sessions, catalog, crawler, cfg.CrawlBatchLimit)
	httpRouter := router.New(apiHandler)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httpRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Minute, // crawl sessions run inside a request
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", "port", cfg.ServerPort, "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}
