package domain

import "time"

// All record timestamps are UTC+8 civil-time strings as delivered by the
// transaction-log API, e.g. "2024-01-02 09:30:00". Windowing and bucketing
// always interpret them in UTC+8, never in server-local time.

// StakingAction distinguishes stake from unstake operations.
type StakingAction string

const (
	ActionStake   StakingAction = "stake"
	ActionUnstake StakingAction = "unstake"
)

// StakingRecord is one staking-contract transaction.
type StakingRecord struct {
	Timestamp string        `json:"timestamp"`
	Address   string        `json:"address"`
	Amount    float64       `json:"amount"`
	Action    StakingAction `json:"action"`
}

// StakingRewardRecord is one reward payout from the staking contract.
// The collection is optional; dependent metrics degrade to 0 without it.
type StakingRewardRecord struct {
	Timestamp string  `json:"timestamp"`
	Address   string  `json:"address"`
	Amount    float64 `json:"amount"`
}

// TradeCategory classifies a trading-system payout.
type TradeCategory int

const (
	CategoryDirect     TradeCategory = 0
	CategoryReferralL1 TradeCategory = 1
	CategoryReferralL2 TradeCategory = 2
	CategoryLuckyDraw  TradeCategory = 3
)

// TradeRecord is one trading-system (TS) payout: tokens sent to an address
// against native-currency revenue received.
type TradeRecord struct {
	Timestamp   string        `json:"timestamp"`
	Address     string        `json:"address"`
	TokenAmount float64       `json:"tokenAmount"`
	Revenue     float64       `json:"revenue"`
	Category    TradeCategory `json:"category"`
}

// DiscordRewardRecord is one Discord-campaign reward tied to the TS domain.
// The collection is optional.
type DiscordRewardRecord struct {
	Timestamp string  `json:"timestamp"`
	Address   string  `json:"address"`
	Amount    float64 `json:"amount"`
}

// POSRecord is one point-of-sale transaction.
type POSRecord struct {
	Timestamp string  `json:"timestamp"`
	Address   string  `json:"address"`
	Amount    float64 `json:"amount"`
}

// ClaimRecord is one shit-code claim redemption.
type ClaimRecord struct {
	Timestamp string  `json:"timestamp"`
	Address   string  `json:"address"`
	Amount    float64 `json:"amount"`
	Code      string  `json:"code,omitempty"`
}

// RevenueSource classifies where a revenue entry originated.
type RevenueSource string

const (
	RevenueSourcePOS   RevenueSource = "pos"
	RevenueSourceTS    RevenueSource = "ts"
	RevenueSourceOther RevenueSource = "other"
)

// RevenueRecord is one revenue entry with its associated emission cost.
type RevenueRecord struct {
	Timestamp string        `json:"timestamp"`
	Address   string        `json:"address"`
	Amount    float64       `json:"amount"`
	Cost      float64       `json:"cost"`
	Source    RevenueSource `json:"source"`
}

// LiquidityKind classifies liquidity-pool activity. Direction lives here,
// not in the sign of the change fields.
type LiquidityKind string

const (
	LiquidityBuy    LiquidityKind = "buy"
	LiquiditySell   LiquidityKind = "sell"
	LiquidityAdd    LiquidityKind = "add"
	LiquidityRemove LiquidityKind = "remove"
)

// LiquidityRecord is one liquidity-pool activity entry. TokenChange and
// QuoteChange are signed pool deltas; volume metrics take absolute values.
type LiquidityRecord struct {
	Timestamp   string        `json:"timestamp"`
	Address     string        `json:"address"`
	TokenChange float64       `json:"tokenChange"`
	QuoteChange float64       `json:"quoteChange"`
	Kind        LiquidityKind `json:"kind"`
}

// PricePoint is one token-price observation. The collection is optional.
type PricePoint struct {
	Timestamp string  `json:"timestamp"`
	Price     float64 `json:"price"`
}

// Snapshot is one immutable load of every record collection. Aggregation
// reads exactly one snapshot reference per run; refreshes replace the
// snapshot wholesale rather than mutating it.
type Snapshot struct {
	Staking        []*StakingRecord       `json:"staking"`
	StakingRewards []*StakingRewardRecord `json:"stakingRewards"`
	Trades         []*TradeRecord         `json:"trades"`
	DiscordRewards []*DiscordRewardRecord `json:"discordRewards"`
	POS            []*POSRecord           `json:"pos"`
	Claims         []*ClaimRecord         `json:"claims"`
	Revenue        []*RevenueRecord       `json:"revenue"`
	Liquidity      []*LiquidityRecord     `json:"liquidity"`
	Prices         []*PricePoint          `json:"prices"`

	LoadedAt time.Time `json:"loadedAt"`
}

// TotalRecords returns the number of records across all collections.
func (s *Snapshot) TotalRecords() int {
	if s == nil {
		return 0
	}
	return len(s.Staking) + len(s.StakingRewards) + len(s.Trades) +
		len(s.DiscordRewards) + len(s.POS) + len(s.Claims) +
		len(s.Revenue) + len(s.Liquidity) + len(s.Prices)
}
