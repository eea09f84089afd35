package loader

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"shitdash/internal/domain"
	"shitdash/internal/observability"
	"shitdash/internal/storage"
)

// Sink receives freshly loaded snapshots.
type Sink interface {
	ReplaceSnapshot(ctx context.Context, snap *domain.Snapshot) error
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Client   *Client
	Sink     Sink
	Store    storage.SnapshotStore // optional, persists each fetched snapshot
	Interval time.Duration
	Logger   *zap.Logger
	Metrics  *observability.Metrics
}

// Runner periodically fetches snapshots from the backend and pushes them
// into the sink. The first fetch happens immediately on Run.
type Runner struct {
	client   *Client
	sink     Sink
	store    storage.SnapshotStore
	interval time.Duration
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewRunner creates a Runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("loader: client is required")
	}
	if opts.Sink == nil {
		return nil, fmt.Errorf("loader: sink is required")
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		client:   opts.Client,
		sink:     opts.Sink,
		store:    opts.Store,
		interval: interval,
		logger:   logger,
		metrics:  opts.Metrics,
	}, nil
}

// Run blocks until ctx is cancelled. Fetch failures are logged and the
// previous snapshot stays in effect until the next tick succeeds.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.refresh(ctx); err != nil {
		r.logger.Error("initial snapshot load failed", zap.Error(err))
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.refresh(ctx); err != nil {
				r.logger.Error("snapshot refresh failed", zap.Error(err))
			}
		}
	}
}

func (r *Runner) refresh(ctx context.Context) error {
	start := time.Now()
	snap, err := r.client.FetchSnapshot(ctx)
	r.metrics.RecordSnapshotLoad("backend", time.Since(start).Seconds(), err)
	if err != nil {
		return fmt.Errorf("fetch snapshot: %w", err)
	}

	if r.store != nil {
		if err := r.store.Replace(ctx, snap); err != nil {
			// Persisting is best effort: the in-memory snapshot still serves.
			r.logger.Warn("persist snapshot failed", zap.Error(err))
		}
	}

	if err := r.sink.ReplaceSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}

	r.observe(snap)
	r.logger.Info("snapshot loaded",
		zap.Int("records", snap.TotalRecords()),
		zap.Duration("took", time.Since(start)))
	return nil
}

func (r *Runner) observe(snap *domain.Snapshot) {
	if r.metrics == nil {
		return
	}
	r.metrics.RecordsLoaded.WithLabelValues("staking").Set(float64(len(snap.Staking)))
	r.metrics.RecordsLoaded.WithLabelValues("staking_rewards").Set(float64(len(snap.StakingRewards)))
	r.metrics.RecordsLoaded.WithLabelValues("trades").Set(float64(len(snap.Trades)))
	r.metrics.RecordsLoaded.WithLabelValues("discord_rewards").Set(float64(len(snap.DiscordRewards)))
	r.metrics.RecordsLoaded.WithLabelValues("pos").Set(float64(len(snap.POS)))
	r.metrics.RecordsLoaded.WithLabelValues("claims").Set(float64(len(snap.Claims)))
	r.metrics.RecordsLoaded.WithLabelValues("revenue").Set(float64(len(snap.Revenue)))
	r.metrics.RecordsLoaded.WithLabelValues("liquidity").Set(float64(len(snap.Liquidity)))
	r.metrics.RecordsLoaded.WithLabelValues("prices").Set(float64(len(snap.Prices)))
	r.metrics.LastSuccessfulLoad.Set(float64(time.Now().Unix()))
}
