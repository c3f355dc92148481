// Command termsearch starts the academic-calendar search service.
//
// It loads the term table from the configured source (file, HTTP, or
// PostgreSQL), then serves natural-language queries like "Week 5
// Michaelmas 2026" or "4 May 2025" over HTTP, with optional Redis
// result caching and Kafka-backed query analytics.
//
// Usage:
//
//	go run ./cmd/termsearch [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/oxterm/termsearch/internal/analytics"
	"github.com/oxterm/termsearch/internal/analytics/collector"
	"github.com/oxterm/termsearch/internal/ratelimit"
	"github.com/oxterm/termsearch/internal/search/cache"
	"github.com/oxterm/termsearch/internal/search/engine"
	"github.com/oxterm/termsearch/internal/search/handler"
	"github.com/oxterm/termsearch/internal/search/router"
	"github.com/oxterm/termsearch/internal/search/suggest"
	"github.com/oxterm/termsearch/internal/term/table"
	"github.com/oxterm/termsearch/pkg/config"
	"github.com/oxterm/termsearch/pkg/health"
	"github.com/oxterm/termsearch/pkg/kafka"
	"github.com/oxterm/termsearch/pkg/logger"
	"github.com/oxterm/termsearch/pkg/metrics"
	"github.com/oxterm/termsearch/pkg/postgres"
	pkgredis "github.com/oxterm/termsearch/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting term search service",
		"port", cfg.Server.Port,
		"table_source", cfg.TermTable.Source,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, pgClient, err := buildSource(cfg)
	if err != nil {
		slog.Error("failed to configure term table source", "error", err)
		os.Exit(1)
	}
	if pgClient != nil {
		defer pgClient.Close()
	}

	loader := table.NewLoader(source)
	tbl, err := loader.Load(ctx)
	if err != nil {
		slog.Error("failed to load term table", "error", err)
		os.Exit(1)
	}
	slog.Info("term table loaded", "years", tbl.NumYears())

	m := metrics.New()
	m.TableYearsLoaded.Set(float64(tbl.NumYears()))

	var resultCache *cache.ResultCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, result caching disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		resultCache = cache.New(redisClient, cfg.Redis)
		slog.Info("result cache enabled",
			"addr", cfg.Redis.Addr,
			"ttl", cfg.Redis.CacheTTL,
		)
	}

	var tracker handler.Tracker
	if cfg.Analytics.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
		if cfg.Analytics.BatchSize > 1 {
			bc := collector.NewBatchCollector(producer, cfg.Analytics.BatchSize, cfg.Analytics.FlushInterval)
			bc.Start(ctx)
			defer bc.Close()
			tracker = bc
		} else {
			c := analytics.NewCollector(producer, cfg.Analytics.BufferSize)
			c.Start(ctx)
			defer c.Close()
			tracker = c
		}
		slog.Info("analytics collector started",
			"topic", cfg.Kafka.Topics.AnalyticsEvents,
			"batch_size", cfg.Analytics.BatchSize,
		)
	}

	checker := health.NewChecker()
	checker.Register("term_table", func(ctx context.Context) health.ComponentHealth {
		if loader.Loaded() {
			return health.ComponentHealth{
				Status:  health.StatusUp,
				Message: fmt.Sprintf("%d academic years loaded", tbl.NumYears()),
			}
		}
		return health.ComponentHealth{Status: health.StatusDown, Message: "table not loaded"}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	eng := engine.New(tbl)
	suggester := suggest.New(suggest.Config{
		MinInputLength: cfg.Search.SuggestionMinLength,
		MaxSuggestions: cfg.Search.SuggestionMax,
	}, tbl.Years())
	h := handler.New(eng, tbl, resultCache, suggester, tracker, m, cfg.Search.MaxBatchQueries)

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.New(cfg.RateLimit.Window)
	}

	chain := router.New(h, checker, router.Options{
		Limiter:   limiter,
		RateLimit: cfg.RateLimit,
		Metrics:   m,
		Timeout:   cfg.Server.WriteTimeout,
	})

	var metricsShutdown func(context.Context) error
	if cfg.Metrics.Enabled {
		metricsShutdown = metrics.StartServer(cfg.Metrics.Port)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
		if metricsShutdown != nil {
			if err := metricsShutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}
	}()

	slog.Info("term search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("term search service stopped")
}

// buildSource selects the term-table source from config. The Postgres
// client, when created, is returned so main can close it on exit.
func buildSource(cfg *config.Config) (table.Source, *postgres.Client, error) {
	switch cfg.TermTable.Source {
	case "file":
		return table.FileSource{Path: cfg.TermTable.Path}, nil, nil
	case "http":
		return table.HTTPSource{URL: cfg.TermTable.URL}, nil, nil
	case "postgres":
		client, err := postgres.New(cfg.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		return table.PostgresSource{Client: client}, client, nil
	default:
		return nil, nil, fmt.Errorf("unknown term table source %q", cfg.TermTable.Source)
	}
}
