package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"shitdash/internal/domain"
	"shitdash/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using PostgreSQL. Replace
// rewrites every log table inside one transaction so readers never observe
// a half-replaced snapshot.
type SnapshotStore struct {
	pool *Pool
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(pool *Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// logTables lists every collection table, truncated together on Replace.
var logTables = []string{
	"staking_log", "staking_reward_log", "trade_log", "discord_reward_log",
	"pos_log", "claim_log", "revenue_log", "liquidity_log", "price_log",
}

// Load reads every collection, ordered by timestamp ascending.
func (s *SnapshotStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{LoadedAt: time.Now()}

	if err := s.loadStaking(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadStakingRewards(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadTrades(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadDiscordRewards(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadPOS(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadClaims(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadRevenue(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadLiquidity(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadPrices(ctx, snap); err != nil {
		return nil, err
	}

	if snap.TotalRecords() == 0 {
		return nil, storage.ErrNoSnapshot
	}
	return snap, nil
}

// Replace rewrites all collection tables atomically.
func (s *SnapshotStore) Replace(ctx context.Context, snap *domain.Snapshot) error {
	if snap == nil {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range logTables {
		if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+table); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}

	batch := &pgx.Batch{}
	for _, r := range snap.Staking {
		batch.Queue(`INSERT INTO staking_log (ts, address, amount, action) VALUES ($1, $2, $3, $4)`,
			r.Timestamp, r.Address, r.Amount, string(r.Action))
	}
	for _, r := range snap.StakingRewards {
		batch.Queue(`INSERT INTO staking_reward_log (ts, address, amount) VALUES ($1, $2, $3)`,
			r.Timestamp, r.Address, r.Amount)
	}
	for _, r := range snap.Trades {
		batch.Queue(`INSERT INTO trade_log (ts, address, token_amount, revenue, category) VALUES ($1, $2, $3, $4, $5)`,
			r.Timestamp, r.Address, r.TokenAmount, r.Revenue, int(r.Category))
	}
	for _, r := range snap.DiscordRewards {
		batch.Queue(`INSERT INTO discord_reward_log (ts, address, amount) VALUES ($1, $2, $3)`,
			r.Timestamp, r.Address, r.Amount)
	}
	for _, r := range snap.POS {
		batch.Queue(`INSERT INTO pos_log (ts, address, amount) VALUES ($1, $2, $3)`,
			r.Timestamp, r.Address, r.Amount)
	}
	for _, r := range snap.Claims {
		batch.Queue(`INSERT INTO claim_log (ts, address, amount, code) VALUES ($1, $2, $3, $4)`,
			r.Timestamp, r.Address, r.Amount, r.Code)
	}
	for _, r := range snap.Revenue {
		batch.Queue(`INSERT INTO revenue_log (ts, address, amount, cost, source) VALUES ($1, $2, $3, $4, $5)`,
			r.Timestamp, r.Address, r.Amount, r.Cost, string(r.Source))
	}
	for _, r := range snap.Liquidity {
		batch.Queue(`INSERT INTO liquidity_log (ts, address, token_change, quote_change, kind) VALUES ($1, $2, $3, $4, $5)`,
			r.Timestamp, r.Address, r.TokenChange, r.QuoteChange, string(r.Kind))
	}
	for _, r := range snap.Prices {
		batch.Queue(`INSERT INTO price_log (ts, price) VALUES ($1, $2)`,
			r.Timestamp, r.Price)
	}

	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotStore) loadStaking(ctx context.Context, snap *domain.Snapshot) error {
	rows, err := s.pool.Query(ctx, `SELECT ts, address, amount, action FROM staking_log ORDER BY ts ASC`)
	if err != nil {
		return fmt.Errorf("query staking_log: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r domain.StakingRecord
		var action string
		if err := rows.Scan(&r.Timestamp, &r.Address, &r.Amount, &action); err != nil {
			return fmt.Errorf("scan staking_log: %w", err)
		}
		r.Action = domain.StakingAction(action)
		snap.Staking = append(snap.Staking, &r)
	}
	return rows.Err()
}

func (s *SnapshotStore) loadStakingRewards(ctx context.Context, snap *domain.Snapshot) error {
	rows, err := s.pool.Query(ctx, `SELECT ts, address, amount FROM staking_reward_log ORDER BY ts ASC`)
	if err != nil {
		return fmt.Errorf("query staking_reward_log: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r domain.StakingRewardRecord
		if err := rows.Scan(&r.Timestamp, &r.Address, &r.Amount); err != nil {
			return fmt.Errorf("scan staking_reward_log: %w", err)
		}
		snap.StakingRewards = append(snap.StakingRewards, &r)
	}
	return rows.Err()
}

func (s *SnapshotStore) loadTrades(ctx context.Context, snap *domain.Snapshot) error {
	rows, err := s.pool.Query(ctx, `SELECT ts, address, token_amount, revenue, category FROM trade_log ORDER BY ts ASC`)
	if err != nil {
		return fmt.Errorf("query trade_log: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r domain.TradeRecord
		var category int
		if err := rows.Scan(&r.Timestamp, &r.Address, &r.TokenAmount, &r.Revenue, &category); err != nil {
			return fmt.Errorf("scan trade_log: %w", err)
		}
		r.Category = domain.TradeCategory(category)
		snap.Trades = append(snap.Trades, &r)
	}
	return rows.Err()
}

func (s *SnapshotStore) loadDiscordRewards(ctx context.Context, snap *domain.Snapshot) error {
	rows, err := s.pool.Query(ctx, `SELECT ts, address, amount FROM discord_reward_log ORDER BY ts ASC`)
	if err != nil {
		return fmt.Errorf("query discord_reward_log: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r domain.DiscordRewardRecord
		if err := rows.Scan(&r.Timestamp, &r.Address, &r.Amount); err != nil {
			return fmt.Errorf("scan discord_reward_log: %w", err)
		}
		snap.DiscordRewards = append(snap.DiscordRewards, &r)
	}
	return rows.Err()
}

func (s *SnapshotStore) loadPOS(ctx context.Context, snap *domain.Snapshot) error {
	rows, err := s.pool.Query(ctx, `SELECT ts, address, amount FROM pos_log ORDER BY ts ASC`)
	if err != nil {
		return fmt.Errorf("query pos_log: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r domain.POSRecord
		if err := rows.Scan(&r.Timestamp, &r.Address, &r.Amount); err != nil {
			return fmt.Errorf("scan pos_log: %w", err)
		}
		snap.POS = append(snap.POS, &r)
	}
	return rows.Err()
}

func (s *SnapshotStore) loadClaims(ctx context.Context, snap *domain.Snapshot) error {
	rows, err := s.pool.Query(ctx, `SELECT ts, address, amount, code FROM claim_log ORDER BY ts ASC`)
	if err != nil {
		return fmt.Errorf("query claim_log: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r domain.ClaimRecord
		if err := rows.Scan(&r.Timestamp, &r.Address, &r.Amount, &r.Code); err != nil {
			return fmt.Errorf("scan claim_log: %w", err)
		}
		snap.Claims = append(snap.Claims, &r)
	}
	return rows.Err()
}

func (s *SnapshotStore) loadRevenue(ctx context.Context, snap *domain.Snapshot) error {
	rows, err := s.pool.Query(ctx, `SELECT ts, address, amount, cost, source FROM revenue_log ORDER BY ts ASC`)
	if err != nil {
		return fmt.Errorf("query revenue_log: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r domain.RevenueRecord
		var source string
		if err := rows.Scan(&r.Timestamp, &r.Address, &r.Amount, &r.Cost, &source); err != nil {
			return fmt.Errorf("scan revenue_log: %w", err)
		}
		r.Source = domain.RevenueSource(source)
		snap.Revenue = append(snap.Revenue, &r)
	}
	return rows.Err()
}

func (s *SnapshotStore) loadLiquidity(ctx context.Context, snap *domain.Snapshot) error {
	rows, err := s.pool.Query(ctx, `SELECT ts, address, token_change, quote_change, kind FROM liquidity_log ORDER BY ts ASC`)
	if err != nil {
		return fmt.Errorf("query liquidity_log: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r domain.LiquidityRecord
		var kind string
		if err := rows.Scan(&r.Timestamp, &r.Address, &r.TokenChange, &r.QuoteChange, &kind); err != nil {
			return fmt.Errorf("scan liquidity_log: %w", err)
		}
		r.Kind = domain.LiquidityKind(kind)
		snap.Liquidity = append(snap.Liquidity, &r)
	}
	return rows.Err()
}

func (s *SnapshotStore) loadPrices(ctx context.Context, snap *domain.Snapshot) error {
	rows, err := s.pool.Query(ctx, `SELECT ts, price FROM price_log ORDER BY ts ASC`)
	if err != nil {
		return fmt.Errorf("query price_log: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r domain.PricePoint
		if err := rows.Scan(&r.Timestamp, &r.Price); err != nil {
			return fmt.Errorf("scan price_log: %w", err)
		}
		snap.Prices = append(snap.Prices, &r)
	}
	return rows.Err()
}
