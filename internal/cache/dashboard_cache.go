// Package cache keeps the last computed dashboard per date range in Redis
// so restarts can serve results before the first aggregation finishes.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"shitdash/internal/domain"
)

// DashboardCache stores serialized dashboards keyed by date range.
type DashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDashboardCache connects to Redis. A zero ttl means entries never expire.
func NewDashboardCache(addr, password string, db int, ttl time.Duration) *DashboardCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &DashboardCache{client: client, ttl: ttl}
}

func dashboardKey(startDate, endDate string) string {
	return fmt.Sprintf("dashboard:%s:%s", startDate, endDate)
}

// Save serializes and stores a dashboard.
func (c *DashboardCache) Save(ctx context.Context, d *domain.Dashboard) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal dashboard: %w", err)
	}
	key := dashboardKey(d.StartDate, d.EndDate)
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache dashboard %s: %w", key, err)
	}
	return nil
}

// Load returns the cached dashboard for a range, or nil if absent.
func (c *DashboardCache) Load(ctx context.Context, startDate, endDate string) (*domain.Dashboard, error) {
	data, err := c.client.Get(ctx, dashboardKey(startDate, endDate)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("load cached dashboard: %w", err)
	}

	var d domain.Dashboard
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("unmarshal cached dashboard: %w", err)
	}
	return &d, nil
}

// Ping verifies the connection.
func (c *DashboardCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the client.
func (c *DashboardCache) Close() error {
	return c.client.Close()
}
