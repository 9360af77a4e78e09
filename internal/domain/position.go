package domain

import "math/big"

// UnbondState is the lifecycle of a single unbonding request:
// Pending -> Claimable -> Claimed. No transition skips a state; claimed
// requests are removed from the position.
type UnbondState string

// Unbond state constants
const (
	UnbondPending   UnbondState = "pending"
	UnbondClaimable UnbondState = "claimable"
	UnbondClaimed   UnbondState = "claimed"
)

// UnbondRequest is a pending withdrawal of staked liquidity shares.
type UnbondRequest struct {
	Shares    *big.Int // base units of LP shares
	StartTime int64    // Unix timestamp in seconds
}

// LiquidityPosition tracks one owner's stake in one pool: currently
// staked shares plus zero or more unbonding requests. The sum of
// unbonding shares and staked shares never exceeds the owner's
// historical contribution.
type LiquidityPosition struct {
	Pool         string
	Owner        string
	StakedShares *big.Int
	Unbonding    []UnbondRequest
}

// UnbondingTotal returns the sum of shares across all pending unbonding
// requests.
func (p *LiquidityPosition) UnbondingTotal() *big.Int {
	total := new(big.Int)
	for _, r := range p.Unbonding {
		total.Add(total, r.Shares)
	}
	return total
}

// StakePosition tracks one owner's hub-token stake. PendingReward is
// monotonically non-decreasing between claims and resets to zero at
// claim time.
type StakePosition struct {
	Owner         string
	StakedBase    *big.Int
	PendingReward *big.Int
	LastAccrual   int64 // Unix timestamp in seconds
}
