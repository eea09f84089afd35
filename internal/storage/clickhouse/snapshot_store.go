package clickhouse

import (
	"context"
	"fmt"
	"time"

	"shitdash/internal/domain"
	"shitdash/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using ClickHouse. Replace
// truncates and batch-reinserts each log table; ClickHouse has no
// multi-table transactions, so the swap is atomic per table only and this
// backend is meant for archival loads, not the serving hot path.
type SnapshotStore struct {
	conn *Conn
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(conn *Conn) *SnapshotStore {
	return &SnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

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

// Replace truncates and rewrites every log table.
func (s *SnapshotStore) Replace(ctx context.Context, snap *domain.Snapshot) error {
	if snap == nil {
		return storage.ErrInvalidInput
	}

	if err := s.replaceStaking(ctx, snap.Staking); err != nil {
		return err
	}
	if err := s.replaceStakingRewards(ctx, snap.StakingRewards); err != nil {
		return err
	}
	if err := s.replaceTrades(ctx, snap.Trades); err != nil {
		return err
	}
	if err := s.replaceDiscordRewards(ctx, snap.DiscordRewards); err != nil {
		return err
	}
	if err := s.replacePOS(ctx, snap.POS); err != nil {
		return err
	}
	if err := s.replaceClaims(ctx, snap.Claims); err != nil {
		return err
	}
	if err := s.replaceRevenue(ctx, snap.Revenue); err != nil {
		return err
	}
	if err := s.replaceLiquidity(ctx, snap.Liquidity); err != nil {
		return err
	}
	return s.replacePrices(ctx, snap.Prices)
}

func (s *SnapshotStore) truncate(ctx context.Context, table string) error {
	if err := s.conn.Exec(ctx, "TRUNCATE TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("truncate %s: %w", table, err)
	}
	return nil
}

func (s *SnapshotStore) replaceStaking(ctx context.Context, records []*domain.StakingRecord) error {
	if err := s.truncate(ctx, "staking_log"); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO staking_log (ts, address, amount, action)`)
	if err != nil {
		return fmt.Errorf("prepare staking_log batch: %w", err)
	}
	for _, r := range records {
		if err := batch.Append(r.Timestamp, r.Address, r.Amount, string(r.Action)); err != nil {
			return fmt.Errorf("append staking_log: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send staking_log batch: %w", err)
	}
	return nil
}

func (s *SnapshotStore) replaceStakingRewards(ctx context.Context, records []*domain.StakingRewardRecord) error {
	if err := s.truncate(ctx, "staking_reward_log"); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO staking_reward_log (ts, address, amount)`)
	if err != nil {
		return fmt.Errorf("prepare staking_reward_log batch: %w", err)
	}
	for _, r := range records {
		if err := batch.Append(r.Timestamp, r.Address, r.Amount); err != nil {
			return fmt.Errorf("append staking_reward_log: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send staking_reward_log batch: %w", err)
	}
	return nil
}

func (s *SnapshotStore) replaceTrades(ctx context.Context, records []*domain.TradeRecord) error {
	if err := s.truncate(ctx, "trade_log"); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO trade_log (ts, address, token_amount, revenue, category)`)
	if err != nil {
		return fmt.Errorf("prepare trade_log batch: %w", err)
	}
	for _, r := range records {
		if err := batch.Append(r.Timestamp, r.Address, r.TokenAmount, r.Revenue, int32(r.Category)); err != nil {
			return fmt.Errorf("append trade_log: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send trade_log batch: %w", err)
	}
	return nil
}

func (s *SnapshotStore) replaceDiscordRewards(ctx context.Context, records []*domain.DiscordRewardRecord) error {
	if err := s.truncate(ctx, "discord_reward_log"); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO discord_reward_log (ts, address, amount)`)
	if err != nil {
		return fmt.Errorf("prepare discord_reward_log batch: %w", err)
	}
	for _, r := range records {
		if err := batch.Append(r.Timestamp, r.Address, r.Amount); err != nil {
			return fmt.Errorf("append discord_reward_log: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send discord_reward_log batch: %w", err)
	}
	return nil
}

func (s *SnapshotStore) replacePOS(ctx context.Context, records []*domain.POSRecord) error {
	if err := s.truncate(ctx, "pos_log"); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO pos_log (ts, address, amount)`)
	if err != nil {
		return fmt.Errorf("prepare pos_log batch: %w", err)
	}
	for _, r := range records {
		if err := batch.Append(r.Timestamp, r.Address, r.Amount); err != nil {
			return fmt.Errorf("append pos_log: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send pos_log batch: %w", err)
	}
	return nil
}

func (s *SnapshotStore) replaceClaims(ctx context.Context, records []*domain.ClaimRecord) error {
	if err := s.truncate(ctx, "claim_log"); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO claim_log (ts, address, amount, code)`)
	if err != nil {
		return fmt.Errorf("prepare claim_log batch: %w", err)
	}
	for _, r := range records {
		if err := batch.Append(r.Timestamp, r.Address, r.Amount, r.Code); err != nil {
			return fmt.Errorf("append claim_log: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send claim_log batch: %w", err)
	}
	return nil
}

func (s *SnapshotStore) replaceRevenue(ctx context.Context, records []*domain.RevenueRecord) error {
	if err := s.truncate(ctx, "revenue_log"); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO revenue_log (ts, address, amount, cost, source)`)
	if err != nil {
		return fmt.Errorf("prepare revenue_log batch: %w", err)
	}
	for _, r := range records {
		if err := batch.Append(r.Timestamp, r.Address, r.Amount, r.Cost, string(r.Source)); err != nil {
			return fmt.Errorf("append revenue_log: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send revenue_log batch: %w", err)
	}
	return nil
}

func (s *SnapshotStore) replaceLiquidity(ctx context.Context, records []*domain.LiquidityRecord) error {
	if err := s.truncate(ctx, "liquidity_log"); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO liquidity_log (ts, address, token_change, quote_change, kind)`)
	if err != nil {
		return fmt.Errorf("prepare liquidity_log batch: %w", err)
	}
	for _, r := range records {
		if err := batch.Append(r.Timestamp, r.Address, r.TokenChange, r.QuoteChange, string(r.Kind)); err != nil {
			return fmt.Errorf("append liquidity_log: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send liquidity_log batch: %w", err)
	}
	return nil
}

func (s *SnapshotStore) replacePrices(ctx context.Context, records []*domain.PricePoint) error {
	if err := s.truncate(ctx, "price_log"); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO price_log (ts, price)`)
	if err != nil {
		return fmt.Errorf("prepare price_log batch: %w", err)
	}
	for _, r := range records {
		if err := batch.Append(r.Timestamp, r.Price); err != nil {
			return fmt.Errorf("append price_log: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send price_log batch: %w", err)
	}
	return nil
}

func (s *SnapshotStore) loadStaking(ctx context.Context, snap *domain.Snapshot) error {
	rows, err := s.conn.Query(ctx, `SELECT ts, address, amount, action FROM staking_log ORDER BY ts ASC`)
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
	rows, err := s.conn.Query(ctx, `SELECT ts, address, amount FROM staking_reward_log ORDER BY ts ASC`)
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
	rows, err := s.conn.Query(ctx, `SELECT ts, address, token_amount, revenue, category FROM trade_log ORDER BY ts ASC`)
	if err != nil {
		return fmt.Errorf("query trade_log: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r domain.TradeRecord
		var category int32
		if err := rows.Scan(&r.Timestamp, &r.Address, &r.TokenAmount, &r.Revenue, &category); err != nil {
			return fmt.Errorf("scan trade_log: %w", err)
		}
		r.Category = domain.TradeCategory(category)
		snap.Trades = append(snap.Trades, &r)
	}
	return rows.Err()
}

func (s *SnapshotStore) loadDiscordRewards(ctx context.Context, snap *domain.Snapshot) error {
	rows, err := s.conn.Query(ctx, `SELECT ts, address, amount FROM discord_reward_log ORDER BY ts ASC`)
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
	rows, err := s.conn.Query(ctx, `SELECT ts, address, amount FROM pos_log ORDER BY ts ASC`)
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
	rows, err := s.conn.Query(ctx, `SELECT ts, address, amount, code FROM claim_log ORDER BY ts ASC`)
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
	rows, err := s.conn.Query(ctx, `SELECT ts, address, amount, cost, source FROM revenue_log ORDER BY ts ASC`)
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
	rows, err := s.conn.Query(ctx, `SELECT ts, address, token_change, quote_change, kind FROM liquidity_log ORDER BY ts ASC`)
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
	rows, err := s.conn.Query(ctx, `SELECT ts, price FROM price_log ORDER BY ts ASC`)
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
