// Package main performs a one-shot fetch of all collections from the
// backend API and persists them, bootstrapping a fresh deployment.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"shitdash/internal/loader"
	"shitdash/internal/logging"
	"shitdash/internal/storage"
	chstore "shitdash/internal/storage/clickhouse"
	"shitdash/internal/storage/migrations"
	pgstore "shitdash/internal/storage/postgres"
)

func main() {
	backendURL := flag.String("backend-url", os.Getenv("BACKEND_URL"), "Backend export API base URL")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")

	flag.Parse()

	logger, err := logging.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *backendURL == "" {
		logger.Fatal("--backend-url is required")
	}
	if *postgresDSN == "" && *clickhouseDSN == "" {
		logger.Fatal("--postgres-dsn or --clickhouse-dsn is required")
	}

	ctx := context.Background()

	var store storage.SnapshotStore
	if *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatal("connect to postgres", zap.Error(err))
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatal("postgres migrations", zap.Error(err))
		}
		store = pgstore.NewSnapshotStore(pool)
	} else {
		conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatal("clickhouse migrations", zap.Error(err))
		}
		defer conn.Close()
		store = chstore.NewSnapshotStore(conn)
	}

	client, err := loader.NewClient(loader.ClientOptions{
		BaseURL: *backendURL,
		Logger:  logger.Named("loader"),
	})
	if err != nil {
		logger.Fatal("create loader client", zap.Error(err))
	}

	snap, err := client.FetchSnapshot(ctx)
	if err != nil {
		logger.Fatal("fetch snapshot", zap.Error(err))
	}
	logger.Info("snapshot fetched", zap.Int("records", snap.TotalRecords()))

	if err := store.Replace(ctx, snap); err != nil {
		logger.Fatal("persist snapshot", zap.Error(err))
	}
	logger.Info("backfill complete")
}
