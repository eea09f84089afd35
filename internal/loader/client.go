// Package loader fetches transaction log collections from the upstream
// backend API and assembles them into an in-memory snapshot.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"shitdash/internal/domain"
	"shitdash/internal/window"
)

// Collection endpoint paths on the backend API. Endpoints that return
// 404 are treated as empty collections, since not every deployment
// enables every product line.
const (
	pathStaking        = "/export/staking"
	pathStakingRewards = "/export/staking-rewards"
	pathTrades         = "/export/trades"
	pathDiscordRewards = "/export/discord-rewards"
	pathPOS            = "/export/pos"
	pathClaims         = "/export/claims"
	pathRevenue        = "/export/revenue"
	pathLiquidity      = "/export/liquidity"
	pathPrices         = "/export/prices"
)

// ClientOptions configures a Client.
type ClientOptions struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client fetches log collections over HTTP. Record timestamps arrive as
// UTC+8 civil strings and are kept verbatim; the client only validates
// that they parse.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a Client. A nil HTTPClient gets a 30s-timeout default.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("loader: base URL is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{baseURL: opts.BaseURL, http: httpClient, logger: logger}, nil
}

// FetchSnapshot pulls all collections and returns a snapshot stamped with
// the current time. Records with unparseable timestamps are dropped and
// counted rather than failing the whole load.
func (c *Client) FetchSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{LoadedAt: time.Now()}
	dropped := 0

	var staking []*domain.StakingRecord
	if err := c.getJSON(ctx, pathStaking, &staking); err != nil {
		return nil, err
	}
	for _, r := range staking {
		if !validTimestamp(r.Timestamp) {
			dropped++
			continue
		}
		snap.Staking = append(snap.Staking, r)
	}

	var rewards []*domain.StakingRewardRecord
	if err := c.getJSON(ctx, pathStakingRewards, &rewards); err != nil {
		return nil, err
	}
	for _, r := range rewards {
		if !validTimestamp(r.Timestamp) {
			dropped++
			continue
		}
		snap.StakingRewards = append(snap.StakingRewards, r)
	}

	var trades []*domain.TradeRecord
	if err := c.getJSON(ctx, pathTrades, &trades); err != nil {
		return nil, err
	}
	for _, r := range trades {
		if !validTimestamp(r.Timestamp) {
			dropped++
			continue
		}
		snap.Trades = append(snap.Trades, r)
	}

	var discord []*domain.DiscordRewardRecord
	if err := c.getJSON(ctx, pathDiscordRewards, &discord); err != nil {
		return nil, err
	}
	for _, r := range discord {
		if !validTimestamp(r.Timestamp) {
			dropped++
			continue
		}
		snap.DiscordRewards = append(snap.DiscordRewards, r)
	}

	var pos []*domain.POSRecord
	if err := c.getJSON(ctx, pathPOS, &pos); err != nil {
		return nil, err
	}
	for _, r := range pos {
		if !validTimestamp(r.Timestamp) {
			dropped++
			continue
		}
		snap.POS = append(snap.POS, r)
	}

	var claims []*domain.ClaimRecord
	if err := c.getJSON(ctx, pathClaims, &claims); err != nil {
		return nil, err
	}
	for _, r := range claims {
		if !validTimestamp(r.Timestamp) {
			dropped++
			continue
		}
		snap.Claims = append(snap.Claims, r)
	}

	var revenue []*domain.RevenueRecord
	if err := c.getJSON(ctx, pathRevenue, &revenue); err != nil {
		return nil, err
	}
	for _, r := range revenue {
		if !validTimestamp(r.Timestamp) {
			dropped++
			continue
		}
		snap.Revenue = append(snap.Revenue, r)
	}

	var liquidity []*domain.LiquidityRecord
	if err := c.getJSON(ctx, pathLiquidity, &liquidity); err != nil {
		return nil, err
	}
	for _, r := range liquidity {
		if !validTimestamp(r.Timestamp) {
			dropped++
			continue
		}
		snap.Liquidity = append(snap.Liquidity, r)
	}

	var prices []*domain.PricePoint
	if err := c.getJSON(ctx, pathPrices, &prices); err != nil {
		return nil, err
	}
	for _, r := range prices {
		if !validTimestamp(r.Timestamp) {
			dropped++
			continue
		}
		snap.Prices = append(snap.Prices, r)
	}

	if dropped > 0 {
		c.logger.Warn("dropped records with unparseable timestamps", zap.Int("count", dropped))
	}
	return snap, nil
}

func validTimestamp(s string) bool {
	_, err := window.ParseTimestamp(s)
	return err == nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.logger.Debug("collection not exported by backend", zap.String("path", path))
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
