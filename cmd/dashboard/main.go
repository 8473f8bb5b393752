package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/traffic-ops-analytics/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/traffic-ops-analytics/internal/adapter/kafka"
	"github.com/couchcryptid/traffic-ops-analytics/internal/adapter/lrucache"
	redisadapter "github.com/couchcryptid/traffic-ops-analytics/internal/adapter/redis"
	"github.com/couchcryptid/traffic-ops-analytics/internal/adapter/sqlite"
	"github.com/couchcryptid/traffic-ops-analytics/internal/config"
	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
	"github.com/couchcryptid/traffic-ops-analytics/internal/ingest"
	"github.com/couchcryptid/traffic-ops-analytics/internal/observability"
	"github.com/couchcryptid/traffic-ops-analytics/internal/pipeline"
	"github.com/couchcryptid/traffic-ops-analytics/internal/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seeded := observability.NewGate("seed data not loaded")
	checks := observability.Readiness{store, seeded}

	// Report cache: Redis when configured, otherwise an in-process LRU.
	var cache report.Cache
	var redisCache *redisadapter.Cache
	if cfg.RedisAddr != "" {
		redisCache, err = redisadapter.NewCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		if err != nil {
			logger.Error("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		cache = redisCache
		checks = append(checks, redisCache)
		logger.Info("redis report cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	} else {
		cache = lrucache.New(cfg.CacheSize, cfg.CacheTTL)
		logger.Info("in-process report cache enabled", "size", cfg.CacheSize, "ttl", cfg.CacheTTL)
	}

	// Kafka ingest (feature-flagged via KAFKA_ENABLED).
	var (
		p      *pipeline.Pipeline
		reader *kafkaadapter.Reader
		writer *kafkaadapter.Writer
		sink   pipeline.BatchLoader
	)
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		if cfg.KafkaSinkTopic != "" {
			writer = kafkaadapter.NewWriter(cfg, logger)
			sink = writer
		}
		loader := pipeline.NewFanOutLoader(store, sink, logger)
		p = pipeline.New(reader, pipeline.NewTransformer(), loader, logger, metrics, cfg.BatchSize)
		checks = append(checks, p)
		logger.Info("kafka ingest enabled", "topic", cfg.KafkaSourceTopic, "sink", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka ingest disabled")
	}

	svc := report.NewService(store, cache, report.Settings{
		Thresholds:       cfg.Analysis.Thresholds,
		NodeOrder:        cfg.Analysis.NodeOrder,
		TopIntersections: cfg.Analysis.TopIntersections,
	}, logger, metrics)
	ingester := ingest.NewCSVIngester(store, logger, metrics)
	api := httpadapter.NewAPI(svc, ingester, cfg.Analysis.RowLimit, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, checks, api, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Load seed CSVs, then start the ingest pipeline.
	go func() {
		seed(ctx, ingester, cfg, logger)
		seeded.Open()
		if p == nil {
			return
		}
		p.MarkReady()
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}
	if err := store.Close(); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("shutdown complete")
}

// seed ingests the configured CSV files. Failures are logged and the service
// keeps serving whatever the store already holds.
func seed(ctx context.Context, ingester *ingest.CSVIngester, cfg *config.Config, logger *slog.Logger) {
	for _, f := range []struct {
		path string
		kind domain.RecordKind
	}{
		{cfg.TravelTimeCSV, domain.KindTravelTime},
		{cfg.VolumeCSV, domain.KindVolume},
	} {
		if f.path == "" {
			continue
		}
		if _, err := ingester.IngestFile(ctx, f.path, f.kind, ingest.SourceSeed); err != nil {
			logger.Error("seed ingest failed", "path", f.path, "kind", f.kind, "error", err)
		}
	}
}
