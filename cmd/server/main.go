// Package main runs the dashboard service: periodic snapshot loading,
// six-domain aggregation, the HTTP/WebSocket API, and scheduled report
// exports.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"shitdash/internal/cache"
	"shitdash/internal/domain"
	"shitdash/internal/engine"
	"shitdash/internal/loader"
	"shitdash/internal/logging"
	"shitdash/internal/observability"
	"shitdash/internal/reporting"
	"shitdash/internal/server"
	"shitdash/internal/storage"
	chstore "shitdash/internal/storage/clickhouse"
	"shitdash/internal/storage/memory"
	"shitdash/internal/storage/migrations"
	pgstore "shitdash/internal/storage/postgres"
	"shitdash/internal/window"
)

func main() {
	loadEnvFile()

	// Parse flags (env vars as defaults)
	httpAddr := flag.String("http-addr", envOr("HTTP_ADDR", ":8080"), "Dashboard API HTTP address")
	metricsAddr := flag.String("metrics-addr", envOr("METRICS_ADDR", ":9090"), "Prometheus metrics HTTP address")
	backendURL := flag.String("backend-url", os.Getenv("BACKEND_URL"), "Backend export API base URL")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	redisAddr := flag.String("redis-addr", os.Getenv("REDIS_ADDR"), "Redis address for the dashboard cache")
	redisPassword := flag.String("redis-password", os.Getenv("REDIS_PASSWORD"), "Redis password")
	useMemory := flag.Bool("use-memory", false, "Use in-memory snapshot storage")
	refreshInterval := flag.Duration("refresh-interval", 5*time.Minute, "Snapshot refresh interval")
	reportCron := flag.String("report-cron", envOr("REPORT_CRON", "0 0 * * *"), "Cron spec for scheduled report exports")
	outputDir := flag.String("output-dir", envOr("OUTPUT_DIR", "output"), "Output directory for reports")

	flag.Parse()

	logger, err := logging.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *backendURL == "" && *useMemory {
		logger.Fatal("--backend-url is required with --use-memory (no data source)")
	}
	if !*useMemory && *postgresDSN == "" && *clickhouseDSN == "" {
		logger.Fatal("--postgres-dsn or --clickhouse-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, cleanup, err := createStore(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatal("create store", zap.Error(err))
	}
	defer cleanup()

	metrics := observability.NewMetrics("")

	var dashCache *cache.DashboardCache
	if *redisAddr != "" {
		dashCache = cache.NewDashboardCache(*redisAddr, *redisPassword, 0, 24*time.Hour)
		if err := dashCache.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, continuing without cache", zap.Error(err))
			dashCache.Close()
			dashCache = nil
		} else {
			defer dashCache.Close()
		}
	}

	eng := engine.New(engine.Options{
		Cache:   dashCache,
		Logger:  logger.Named("engine"),
		Metrics: metrics,
	})
	defer eng.Close()

	srv := server.New(server.Options{
		Addr:    *httpAddr,
		Engine:  eng,
		Logger:  logger.Named("server"),
		Metrics: metrics,
	})

	// Seed the engine from persisted records before the first backend fetch.
	if snap, err := store.Load(ctx); err == nil {
		if err := eng.ReplaceSnapshot(ctx, snap); err != nil {
			logger.Warn("seed from store failed", zap.Error(err))
		} else {
			logger.Info("seeded snapshot from store", zap.Int("records", snap.TotalRecords()))
		}
	} else if !errors.Is(err, storage.ErrNoSnapshot) {
		logger.Warn("load persisted snapshot failed", zap.Error(err))
	}

	done := make(chan error, 1)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("received signal, initiating graceful shutdown", zap.String("signal", sig.String()))
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown failed", zap.Error(err))
		}

		select {
		case sig := <-sigCh:
			logger.Warn("received second signal, forcing immediate shutdown", zap.String("signal", sig.String()))
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Warn("graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	// Metrics endpoint on its own listener.
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		logger.Info("metrics server listening", zap.String("addr", *metricsAddr))
		if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	// Periodic snapshot loading from the backend.
	if *backendURL != "" {
		client, err := loader.NewClient(loader.ClientOptions{
			BaseURL: *backendURL,
			Logger:  logger.Named("loader"),
		})
		if err != nil {
			logger.Fatal("create loader client", zap.Error(err))
		}
		runner, err := loader.NewRunner(loader.RunnerOptions{
			Client:   client,
			Sink:     eng,
			Store:    store,
			Interval: *refreshInterval,
			Logger:   logger.Named("loader"),
			Metrics:  metrics,
		})
		if err != nil {
			logger.Fatal("create loader runner", zap.Error(err))
		}
		go func() {
			if err := runner.Run(ctx); err != nil && err != context.Canceled {
				logger.Error("loader stopped", zap.Error(err))
			}
		}()
	} else {
		logger.Info("no backend URL configured, serving persisted snapshot only")
	}

	// Scheduled report exports.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(*reportCron, func() {
		if err := exportReport(eng, *outputDir, logger); err != nil {
			logger.Error("scheduled report failed", zap.Error(err))
		}
	}); err != nil {
		logger.Fatal("invalid report cron spec", zap.String("spec", *reportCron), zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	err = srv.ListenAndServe()
	done <- err
	cancel()

	if err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// createStore picks the snapshot store backend. Postgres is preferred when
// both DSNs are set; ClickHouse serves archival deployments.
func createStore(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (storage.SnapshotStore, func(), error) {
	if useMemory {
		return memory.NewSnapshotStore(), func() {}, nil
	}

	if postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		return pgstore.NewSnapshotStore(pool), pool.Close, nil
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}
	return chstore.NewSnapshotStore(conn), func() { conn.Close() }, nil
}

// exportReport writes the default-range report as Markdown and CSV.
func exportReport(eng *engine.Engine, outputDir string, logger *zap.Logger) error {
	startDate, endDate := window.DefaultRange(time.Now())
	d, err := eng.Dashboard(context.Background(), startDate, endDate)
	if err != nil {
		return fmt.Errorf("compute dashboard: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	report := reporting.NewGenerator().Generate(d, eng.Snapshot())
	mdPath := filepath.Join(outputDir, fmt.Sprintf("report_%s_%s.md", startDate, endDate))
	if err := os.WriteFile(mdPath, []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}

	csvPath := filepath.Join(outputDir, fmt.Sprintf("daily_%s_%s.csv", startDate, endDate))
	if err := os.WriteFile(csvPath, []byte(reporting.RenderCSV(reporting.DailyRows(d))), 0o644); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	logger.Info("report exported",
		zap.String("markdown", mdPath),
		zap.String("csv", csvPath),
		zap.Int("domains", len(domain.DomainNames)))
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
