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

	"github.com/chatvat/chatvat/internal/config"
	dbRedis "github.com/chatvat/chatvat/internal/db/redis"
	"github.com/chatvat/chatvat/internal/domain"
	"github.com/chatvat/chatvat/internal/fetch"
	"github.com/chatvat/chatvat/internal/fetch/jsonapi"
	"github.com/chatvat/chatvat/internal/fetch/localfile"
	"github.com/chatvat/chatvat/internal/fetch/webpage"
	logpkg "github.com/chatvat/chatvat/internal/logger"
	"github.com/chatvat/chatvat/internal/metrics"
	knowledgerepo "github.com/chatvat/chatvat/internal/repository/knowledge"
	"github.com/chatvat/chatvat/internal/scheduler"
	chiTransport "github.com/chatvat/chatvat/internal/transport/chi"
	openaiTransport "github.com/chatvat/chatvat/internal/transport/openai"
	chatuc "github.com/chatvat/chatvat/internal/usecase/chat"
	healthuc "github.com/chatvat/chatvat/internal/usecase/health"
	ingestuc "github.com/chatvat/chatvat/internal/usecase/ingest"
	knowledgeuc "github.com/chatvat/chatvat/internal/usecase/knowledge"
	"github.com/chatvat/chatvat/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(config.GetPath())
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting chatvat",
		zap.String("bot", cfg.BotName),
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Int("sources", len(cfg.Sources)),
		zap.Int("refresh_interval_minutes", cfg.Refresh.IntervalMinutes),
	)
	if len(cfg.Unresolved) > 0 {
		logger.Warn("Config placeholders left unresolved, set the environment variables",
			zap.Strings("vars", cfg.Unresolved))
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register ingestion metrics explicitly (no init())
	metrics.RegisterIngestionMetrics()

	embedder := openaiTransport.NewEmbedder(openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
	})
	completer := openaiTransport.NewCompleter(openaiTransport.CompleterConfig{
		APIKey:  cfg.Embedding.APIKey,
		BaseURL: cfg.Embedding.BaseURL,
		Model:   cfg.Chat.Model,
	})

	repo := knowledgerepo.New(store, cfg.Storage.KeyPrefix, cfg.Storage.IndexName, cfg.Embedding.Dimensions)
	if err := repo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure vector index", zap.Error(err))
	}

	knowSvc := knowledgeuc.New(repo, embedder, logger)

	fetchers := fetch.Map{
		domain.KindCrawledPage: webpage.NewFetcher(
			webpage.WithRateLimit(cfg.Ingest.CrawlRPS),
			webpage.WithMinWords(cfg.Ingest.MinWords),
		),
		domain.KindJSONAPI:   jsonapi.NewFetcher(),
		domain.KindLocalFile: localfile.NewFetcher(),
	}

	orchestrator := ingestuc.New(cfg.Sources, fetchers, knowSvc, logger).
		WithConcurrency(cfg.Ingest.Concurrency).
		WithSourceTimeout(time.Duration(cfg.Ingest.SourceTimeoutSec) * time.Second)

	sched := scheduler.New(orchestrator,
		time.Duration(cfg.Refresh.WarmupSec)*time.Second,
		time.Duration(cfg.Refresh.IntervalMinutes)*time.Minute,
		logger)
	schedCtx, stopSched := context.WithCancel(ctx)
	go sched.Loop(schedCtx)

	chatSvc := chatuc.New(knowSvc, completer, cfg.SystemPrompt, cfg.Chat.TopK)
	healthSvc := healthuc.New(store, embedder)

	server := chiTransport.NewServer(chatSvc, healthSvc, logger)

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	// Stop scheduling new runs, then wait for any in-flight run to finish
	// so a half-written refresh is never left behind.
	stopSched()
	<-sched.Done()

	logger.Info("Server stopped gracefully")
}
