// Package engine holds the current snapshot and turns it into dashboards.
// All aggregation is recomputed from scratch on every snapshot replacement,
// so results never drift from the underlying records.
package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"shitdash/internal/aggregate"
	"shitdash/internal/cache"
	"shitdash/internal/domain"
	"shitdash/internal/observability"
	"shitdash/internal/window"
)

// UpdateHandler receives every freshly published default-range dashboard.
type UpdateHandler func(*domain.Dashboard)

// Options configures an Engine.
type Options struct {
	Cache   *cache.DashboardCache // optional, persists published dashboards
	Logger  *zap.Logger
	Metrics *observability.Metrics
	Workers int // aggregation pool size, defaults to 6 (one per domain)
}

// Engine serves dashboards computed from the most recent snapshot.
type Engine struct {
	snapshot atomic.Pointer[domain.Snapshot]
	current  atomic.Pointer[domain.Dashboard]

	pool    pond.Pool
	cache   *cache.DashboardCache
	logger  *zap.Logger
	metrics *observability.Metrics

	mu        sync.RWMutex
	onUpdate  UpdateHandler
	computing atomic.Bool
}

// New creates an Engine.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = len(domain.DomainNames)
	}
	return &Engine{
		pool:    pond.NewPool(workers),
		cache:   opts.Cache,
		logger:  logger,
		metrics: opts.Metrics,
	}
}

// SetUpdateHandler registers the handler called after each publish.
func (e *Engine) SetUpdateHandler(fn UpdateHandler) {
	e.mu.Lock()
	e.onUpdate = fn
	e.mu.Unlock()
}

// Snapshot returns the current snapshot, or nil before the first load.
func (e *Engine) Snapshot() *domain.Snapshot {
	return e.snapshot.Load()
}

// Current returns the last published default-range dashboard, or nil.
func (e *Engine) Current() *domain.Dashboard {
	return e.current.Load()
}

// Computing reports whether a default-range recompute is in flight.
func (e *Engine) Computing() bool {
	return e.computing.Load()
}

// ReplaceSnapshot swaps in a new snapshot and recomputes the default-range
// dashboard from it. Implements loader.Sink.
func (e *Engine) ReplaceSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	e.snapshot.Store(snap)

	start, end := window.DefaultRange(time.Now())
	e.computing.Store(true)
	defer e.computing.Store(false)

	d, err := e.Dashboard(ctx, start, end)
	if err != nil {
		return err
	}
	e.publish(ctx, d)
	return nil
}

// Dashboard computes all six domains for the given inclusive date range,
// fanning the domains out across the worker pool. Returns ErrInvalidRange
// (wrapped) when end precedes start.
func (e *Engine) Dashboard(ctx context.Context, startDate, endDate string) (*domain.Dashboard, error) {
	if _, err := window.MakePeriod(startDate, endDate, 0); err != nil {
		return nil, err
	}

	snap := e.snapshot.Load()
	if snap == nil {
		if d := e.cached(ctx, startDate, endDate); d != nil {
			return d, nil
		}
		return computingDashboard(startDate, endDate), nil
	}

	d := &domain.Dashboard{
		StartDate:   startDate,
		EndDate:     endDate,
		GeneratedAt: time.Now(),
		Domains:     make(map[domain.DomainName]domain.DomainState, len(domain.DomainNames)),
	}

	var mu sync.Mutex
	group := e.pool.NewGroupContext(ctx)
	for _, name := range domain.DomainNames {
		group.Submit(func() {
			began := time.Now()
			state := aggregate.SafeComputeDomain(name, snap, startDate, endDate)
			e.metrics.RecordAggregation(string(name), string(state.Status), time.Since(began).Seconds())
			if state.Status == domain.StatusFailed {
				e.logger.Warn("domain aggregation failed",
					zap.String("domain", string(name)),
					zap.String("error", state.Error))
			}
			mu.Lock()
			d.Domains[name] = state
			mu.Unlock()
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.DashboardsComputed.Inc()
		e.metrics.LastSuccessfulCompute.Set(float64(time.Now().Unix()))
	}
	return d, nil
}

// Domain computes a single domain for the given range against the current
// snapshot. Range errors surface; domain failures are absorbed into the state.
func (e *Engine) Domain(ctx context.Context, name domain.DomainName, startDate, endDate string) (domain.DomainState, error) {
	if _, err := window.MakePeriod(startDate, endDate, 0); err != nil {
		return domain.DomainState{}, err
	}
	snap := e.snapshot.Load()
	if snap == nil {
		return domain.DomainState{Status: domain.StatusComputing}, nil
	}
	return aggregate.SafeComputeDomain(name, snap, startDate, endDate), nil
}

// Close stops the worker pool.
func (e *Engine) Close() {
	e.pool.StopAndWait()
}

func (e *Engine) publish(ctx context.Context, d *domain.Dashboard) {
	e.current.Store(d)

	if e.cache != nil {
		if err := e.cache.Save(ctx, d); err != nil {
			e.logger.Warn("cache dashboard failed", zap.Error(err))
		}
	}

	e.mu.RLock()
	fn := e.onUpdate
	e.mu.RUnlock()
	if fn != nil {
		fn(d)
	}
}

func (e *Engine) cached(ctx context.Context, startDate, endDate string) *domain.Dashboard {
	if e.cache == nil {
		return nil
	}
	d, err := e.cache.Load(ctx, startDate, endDate)
	if err != nil {
		e.logger.Warn("load cached dashboard failed", zap.Error(err))
		return nil
	}
	return d
}

// computingDashboard is served before the first snapshot arrives.
func computingDashboard(startDate, endDate string) *domain.Dashboard {
	d := &domain.Dashboard{
		StartDate:   startDate,
		EndDate:     endDate,
		GeneratedAt: time.Now(),
		Domains:     make(map[domain.DomainName]domain.DomainState, len(domain.DomainNames)),
	}
	for _, name := range domain.DomainNames {
		d.Domains[name] = domain.DomainState{Status: domain.StatusComputing}
	}
	return d
}
