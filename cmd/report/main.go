// Package main generates a one-shot period report from persisted records.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"shitdash/internal/aggregate"
	"shitdash/internal/logging"
	"shitdash/internal/reporting"
	"shitdash/internal/storage"
	chstore "shitdash/internal/storage/clickhouse"
	pgstore "shitdash/internal/storage/postgres"
	"shitdash/internal/window"
)

func main() {
	startDate := flag.String("start", "", "Range start date (YYYY-MM-DD), defaults to 7 days ago")
	endDate := flag.String("end", "", "Range end date (YYYY-MM-DD), defaults to today")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	outputDir := flag.String("output-dir", "output", "Output directory for the report files")

	flag.Parse()

	logger, err := logging.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *postgresDSN == "" && *clickhouseDSN == "" {
		logger.Fatal("--postgres-dsn or --clickhouse-dsn is required")
	}

	defStart, defEnd := window.DefaultRange(time.Now())
	if *startDate == "" {
		*startDate = defStart
	}
	if *endDate == "" {
		*endDate = defEnd
	}

	ctx := context.Background()

	var store storage.SnapshotStore
	if *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatal("connect to postgres", zap.Error(err))
		}
		defer pool.Close()
		store = pgstore.NewSnapshotStore(pool)
	} else {
		conn, err := chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatal("connect to clickhouse", zap.Error(err))
		}
		defer conn.Close()
		store = chstore.NewSnapshotStore(conn)
	}

	snap, err := store.Load(ctx)
	if err != nil {
		logger.Fatal("load snapshot", zap.Error(err))
	}
	logger.Info("snapshot loaded", zap.Int("records", snap.TotalRecords()))

	d, err := aggregate.ComputeDashboard(snap, *startDate, *endDate)
	if err != nil {
		logger.Fatal("compute dashboard", zap.Error(err))
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		logger.Fatal("create output dir", zap.Error(err))
	}

	report := reporting.NewGenerator().Generate(d, snap)
	mdPath := filepath.Join(*outputDir, fmt.Sprintf("report_%s_%s.md", *startDate, *endDate))
	if err := os.WriteFile(mdPath, []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
		logger.Fatal("write markdown", zap.Error(err))
	}

	csvPath := filepath.Join(*outputDir, fmt.Sprintf("daily_%s_%s.csv", *startDate, *endDate))
	if err := os.WriteFile(csvPath, []byte(reporting.RenderCSV(reporting.DailyRows(d))), 0o644); err != nil {
		logger.Fatal("write csv", zap.Error(err))
	}

	logger.Info("report written", zap.String("markdown", mdPath), zap.String("csv", csvPath))
}
