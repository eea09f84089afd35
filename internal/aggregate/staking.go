package aggregate

import (
	"shitdash/internal/domain"
	"shitdash/internal/ranking"
	"shitdash/internal/timeseries"
	"shitdash/internal/window"
)

// stakingTotals holds the scalar KPIs of one window's staking activity.
type stakingTotals struct {
	staked, unstaked, rewards float64
	stakeCount                float64
	uniqueStakers             float64
}

// ComputeStaking aggregates the staking domain for both windows of p.
// The rewards collection is optional; reward metrics degrade to 0 without it.
func ComputeStaking(snap *domain.Snapshot, p window.Period) *domain.StakingResult {
	stakingTS := func(r *domain.StakingRecord) string { return r.Timestamp }
	rewardTS := func(r *domain.StakingRewardRecord) string { return r.Timestamp }

	cur := filterWindow(snap.Staking, stakingTS, p.Current)
	prev := filterWindow(snap.Staking, stakingTS, p.Previous)
	curRewards := filterWindow(snap.StakingRewards, rewardTS, p.Current)
	prevRewards := filterWindow(snap.StakingRewards, rewardTS, p.Previous)

	curT := stakingWindowTotals(cur, curRewards)
	prevT := stakingWindowTotals(prev, prevRewards)

	m := domain.MetricSet{}
	m.Set("totalStaked", curT.staked, prevT.staked)
	m.Set("totalUnstaked", curT.unstaked, prevT.unstaked)
	m.Set("netStaked", curT.staked-curT.unstaked, prevT.staked-prevT.unstaked)
	m.Set("stakeCount", curT.stakeCount, prevT.stakeCount)
	m.Set("uniqueStakers", curT.uniqueStakers, prevT.uniqueStakers)
	m.Set("totalRewards", curT.rewards, prevT.rewards)

	b := timeseries.NewBuilder()
	for _, r := range cur {
		t, err := window.ParseTimestamp(r.Timestamp)
		if err != nil {
			continue
		}
		date := window.AdjustedDate(t, boundaryStaking)
		switch r.Action {
		case domain.ActionStake:
			b.Add(date, "staked", abs(r.Amount))
			b.Add(date, "net", abs(r.Amount))
		case domain.ActionUnstake:
			b.Add(date, "unstaked", abs(r.Amount))
			b.Add(date, "net", -abs(r.Amount))
		}
	}
	for _, r := range curRewards {
		t, err := window.ParseTimestamp(r.Timestamp)
		if err != nil {
			continue
		}
		b.Add(window.AdjustedDate(t, boundaryStaking), "rewards", abs(r.Amount))
	}
	daily := b.Series()

	var stakes []*domain.StakingRecord
	for _, r := range cur {
		if r.Action == domain.ActionStake {
			stakes = append(stakes, r)
		}
	}

	return &domain.StakingResult{
		Metrics:    m,
		Daily:      daily,
		Cumulative: timeseries.Cumulative(daily, "net", "cumulativeNet"),
		TopStakers: ranking.TopN(stakes,
			func(r *domain.StakingRecord) string { return r.Address },
			func(r *domain.StakingRecord) float64 { return abs(r.Amount) },
			func(r *domain.StakingRecord) float64 { return 1 },
			ranking.DefaultTopN),
	}
}

func stakingWindowTotals(records []*domain.StakingRecord, rewards []*domain.StakingRewardRecord) stakingTotals {
	var t stakingTotals
	var stakerAddrs []string
	for _, r := range records {
		switch r.Action {
		case domain.ActionStake:
			t.staked += abs(r.Amount)
			t.stakeCount++
			stakerAddrs = append(stakerAddrs, r.Address)
		case domain.ActionUnstake:
			t.unstaked += abs(r.Amount)
		}
	}
	t.uniqueStakers = distinct(stakerAddrs)
	for _, r := range rewards {
		t.rewards += abs(r.Amount)
	}
	return t
}
