package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shitdash/internal/domain"
	"shitdash/internal/storage"
)

func TestSnapshotStore_LoadEmpty(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(conn)
	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, storage.ErrNoSnapshot)
}

func TestSnapshotStore_ReplaceAndLoad(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSnapshotStore(conn)

	in := &domain.Snapshot{
		Staking: []*domain.StakingRecord{
			{Timestamp: "2024-03-06 11:00:00", Address: "walletB", Amount: 4, Action: domain.ActionUnstake},
			{Timestamp: "2024-03-05 10:00:00", Address: "walletA", Amount: 10, Action: domain.ActionStake},
		},
		Trades: []*domain.TradeRecord{
			{Timestamp: "2024-03-05 09:00:00", Address: "walletC", TokenAmount: 100, Revenue: 5, Category: domain.CategoryLuckyDraw},
		},
		Liquidity: []*domain.LiquidityRecord{
			{Timestamp: "2024-03-05 16:00:00", Address: "walletG", TokenChange: -50, QuoteChange: 100, Kind: domain.LiquiditySell},
		},
		Prices: []*domain.PricePoint{
			{Timestamp: "2024-03-05 17:00:00", Price: 2.5},
		},
	}
	require.NoError(t, store.Replace(ctx, in))

	out, err := store.Load(ctx)
	require.NoError(t, err)

	require.Len(t, out.Staking, 2)
	// Load orders by the lexical timestamp string, which is chronological.
	assert.Equal(t, "walletA", out.Staking[0].Address)
	assert.Equal(t, domain.ActionStake, out.Staking[0].Action)

	require.Len(t, out.Trades, 1)
	assert.Equal(t, domain.CategoryLuckyDraw, out.Trades[0].Category)

	require.Len(t, out.Liquidity, 1)
	assert.Equal(t, domain.LiquiditySell, out.Liquidity[0].Kind)
	assert.InDelta(t, -50, out.Liquidity[0].TokenChange, 0.0001)

	require.Len(t, out.Prices, 1)
	assert.InDelta(t, 2.5, out.Prices[0].Price, 0.0001)
}

func TestSnapshotStore_ReplaceIsWholesale(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSnapshotStore(conn)

	require.NoError(t, store.Replace(ctx, &domain.Snapshot{
		POS: []*domain.POSRecord{
			{Timestamp: "2024-03-05 13:00:00", Address: "walletA", Amount: 5},
		},
	}))
	require.NoError(t, store.Replace(ctx, &domain.Snapshot{
		POS: []*domain.POSRecord{
			{Timestamp: "2024-04-01 13:00:00", Address: "walletX", Amount: 9},
		},
	}))

	out, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out.POS, 1)
	assert.Equal(t, "walletX", out.POS[0].Address)
}

func TestSnapshotStore_ReplaceNil(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(conn)
	err := store.Replace(context.Background(), nil)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
