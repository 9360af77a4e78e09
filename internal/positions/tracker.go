// Package positions keeps a volatile in-memory view of user positions
// refreshed from authoritative chain state. It is never a system of
// record: everything here can be rebuilt from a round of queries.
package positions

import (
	"fmt"
	"math/big"
	"strings"
	"sync"

	"amm-settlement-lab/internal/chain"
	"amm-settlement-lab/internal/domain"
	"amm-settlement-lab/internal/units"
)

// Tracker caches liquidity and stake positions by owner.
type Tracker struct {
	mu        sync.RWMutex
	liquidity map[string]domain.LiquidityPosition // owner+"/"+pool
	stakes    map[string]domain.StakePosition     // owner
}

// NewTracker creates an empty position tracker.
func NewTracker() *Tracker {
	return &Tracker{
		liquidity: make(map[string]domain.LiquidityPosition),
		stakes:    make(map[string]domain.StakePosition),
	}
}

// ApplyUserInfo replaces the cached liquidity position of one owner in
// one pool with freshly queried chain state.
func (t *Tracker) ApplyUserInfo(owner, pool string, info *chain.UserInfo) (domain.LiquidityPosition, error) {
	staked, err := units.ParseBaseUnits(info.StakedShares)
	if err != nil {
		return domain.LiquidityPosition{}, fmt.Errorf("staked_shares: %w", err)
	}

	unbonding := make([]domain.UnbondRequest, 0, len(info.UnbondingEntries))
	for _, e := range info.UnbondingEntries {
		shares, err := units.ParseBaseUnits(e.Amount)
		if err != nil {
			return domain.LiquidityPosition{}, fmt.Errorf("unbonding amount: %w", err)
		}
		unbonding = append(unbonding, domain.UnbondRequest{
			Shares:    shares,
			StartTime: e.StartTime,
		})
	}

	pos := domain.LiquidityPosition{
		Pool:         pool,
		Owner:        owner,
		StakedShares: staked,
		Unbonding:    unbonding,
	}

	t.mu.Lock()
	t.liquidity[owner+"/"+pool] = pos
	t.mu.Unlock()
	return copyLiquidity(pos), nil
}

// ApplyStakeInfo replaces the cached stake position of one owner.
func (t *Tracker) ApplyStakeInfo(owner string, info *chain.UserInfo) (domain.StakePosition, error) {
	staked, err := units.ParseBaseUnits(info.StakedShares)
	if err != nil {
		return domain.StakePosition{}, fmt.Errorf("staked_shares: %w", err)
	}
	pending, err := units.ParseBaseUnits(info.PendingRewards)
	if err != nil {
		return domain.StakePosition{}, fmt.Errorf("pending_rewards: %w", err)
	}

	pos := domain.StakePosition{
		Owner:         owner,
		StakedBase:    staked,
		PendingReward: pending,
		LastAccrual:   info.LastAccrual,
	}

	t.mu.Lock()
	t.stakes[owner] = pos
	t.mu.Unlock()
	return copyStake(pos), nil
}

// Liquidity returns the cached position of one owner in one pool.
func (t *Tracker) Liquidity(owner, pool string) (domain.LiquidityPosition, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	pos, ok := t.liquidity[owner+"/"+pool]
	if !ok {
		return domain.LiquidityPosition{}, false
	}
	return copyLiquidity(pos), true
}

// Stake returns the cached stake position of one owner.
func (t *Tracker) Stake(owner string) (domain.StakePosition, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	pos, ok := t.stakes[owner]
	if !ok {
		return domain.StakePosition{}, false
	}
	return copyStake(pos), true
}

// ClearPendingReward zeroes the cached pending reward after a claim
// settles. The next ApplyStakeInfo overwrites it with chain truth; this
// just keeps the view from double-showing an already-paid reward.
func (t *Tracker) ClearPendingReward(owner string, claimedAt int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	pos, ok := t.stakes[owner]
	if !ok {
		return
	}
	pos.PendingReward = new(big.Int)
	pos.LastAccrual = claimedAt
	t.stakes[owner] = pos
}

// Invalidate drops every cached position of one owner.
func (t *Tracker) Invalidate(owner string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key := range t.liquidity {
		if strings.HasPrefix(key, owner+"/") {
			delete(t.liquidity, key)
		}
	}
	delete(t.stakes, owner)
}

func copyLiquidity(pos domain.LiquidityPosition) domain.LiquidityPosition {
	cp := pos
	cp.StakedShares = new(big.Int).Set(pos.StakedShares)
	cp.Unbonding = make([]domain.UnbondRequest, len(pos.Unbonding))
	for i, r := range pos.Unbonding {
		cp.Unbonding[i] = domain.UnbondRequest{
			Shares:    new(big.Int).Set(r.Shares),
			StartTime: r.StartTime,
		}
	}
	return cp
}

func copyStake(pos domain.StakePosition) domain.StakePosition {
	cp := pos
	cp.StakedBase = new(big.Int).Set(pos.StakedBase)
	cp.PendingReward = new(big.Int).Set(pos.PendingReward)
	return cp
}
