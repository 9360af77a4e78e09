// Package settlement builds and submits settlement requests to the
// authoritative on-chain program.
//
// Requests carry amounts as integer base units encoded as decimal
// strings. Bounds computed by the slippage guard travel inside the
// request; the program enforces them at execution time against its own
// state, which may have moved since the quote.
package settlement

import (
	"math/big"

	"amm-settlement-lab/internal/units"
)

// Request is a settlement payload; RequestKind reports its wire kind.
type Request interface {
	RequestKind() string
}

// SwapRequest asks the program to execute a swap. MinimumReceived is
// the floor under which the program must reject rather than fill.
// HopTarget, when set, names the final output asset of a two-leg trade
// through the hub; the program routes the intermediate leg itself.
type SwapRequest struct {
	Kind            string `json:"kind"`
	Pool            string `json:"pool"`
	AssetIn         string `json:"asset_in"`
	AmountIn        string `json:"amount_in"`
	MinimumReceived string `json:"minimum_received"`
	HopTarget       string `json:"hop_target,omitempty"`
}

// NewSwapRequest builds a swap request from base-unit amounts.
func NewSwapRequest(pool, assetIn string, amountIn, minReceived *big.Int) SwapRequest {
	return SwapRequest{
		Kind:            "swap",
		Pool:            pool,
		AssetIn:         assetIn,
		AmountIn:        units.FormatBaseUnits(amountIn),
		MinimumReceived: units.FormatBaseUnits(minReceived),
	}
}

// WithHopTarget marks the request as a hub-routed trade ending in the
// given asset.
func (r SwapRequest) WithHopTarget(asset string) SwapRequest {
	r.HopTarget = asset
	return r
}

// AddLiquidityRequest deposits both assets of a pair at the pool's
// current ratio.
type AddLiquidityRequest struct {
	Kind    string `json:"kind"`
	Pool    string `json:"pool"`
	AmountA string `json:"amount_a"`
	AmountB string `json:"amount_b"`
}

// NewAddLiquidityRequest builds an add-liquidity request from ordered
// base-unit amounts.
func NewAddLiquidityRequest(pool string, amountA, amountB *big.Int) AddLiquidityRequest {
	return AddLiquidityRequest{
		Kind:    "add_liquidity",
		Pool:    pool,
		AmountA: units.FormatBaseUnits(amountA),
		AmountB: units.FormatBaseUnits(amountB),
	}
}

// RemoveLiquidityRequest begins unbonding a share amount. The shares
// leave the staked position now and become claimable after the
// unbonding period.
type RemoveLiquidityRequest struct {
	Kind        string `json:"kind"`
	Pool        string `json:"pool"`
	ShareAmount string `json:"share_amount"`
}

// NewRemoveLiquidityRequest builds a remove-liquidity request.
func NewRemoveLiquidityRequest(pool string, shares *big.Int) RemoveLiquidityRequest {
	return RemoveLiquidityRequest{
		Kind:        "remove_liquidity",
		Pool:        pool,
		ShareAmount: units.FormatBaseUnits(shares),
	}
}

// ClaimUnbondedRequest redeems every matured unbonding entry in a pool.
type ClaimUnbondedRequest struct {
	Kind string `json:"kind"`
	Pool string `json:"pool"`
}

// NewClaimUnbondedRequest builds a claim-unbonded request.
func NewClaimUnbondedRequest(pool string) ClaimUnbondedRequest {
	return ClaimUnbondedRequest{Kind: "claim_unbonded", Pool: pool}
}

// CancelUnbondRequest returns one unbonding entry, identified by its
// start time, to the staked position.
type CancelUnbondRequest struct {
	Kind      string `json:"kind"`
	Pool      string `json:"pool"`
	StartTime int64  `json:"start_time"`
}

// NewCancelUnbondRequest builds a cancel-unbond request.
func NewCancelUnbondRequest(pool string, startTime int64) CancelUnbondRequest {
	return CancelUnbondRequest{Kind: "cancel_unbond", Pool: pool, StartTime: startTime}
}

// StakeRequest stakes hub-asset base units into reward emission.
type StakeRequest struct {
	Kind   string `json:"kind"`
	Amount string `json:"amount"`
}

// NewStakeRequest builds a stake request.
func NewStakeRequest(amount *big.Int) StakeRequest {
	return StakeRequest{Kind: "stake", Amount: units.FormatBaseUnits(amount)}
}

// UnstakeRequest withdraws staked hub-asset base units.
type UnstakeRequest struct {
	Kind   string `json:"kind"`
	Amount string `json:"amount"`
}

// NewUnstakeRequest builds an unstake request.
func NewUnstakeRequest(amount *big.Int) UnstakeRequest {
	return UnstakeRequest{Kind: "unstake", Amount: units.FormatBaseUnits(amount)}
}

// ClaimRewardsRequest pays out all accrued staking rewards.
type ClaimRewardsRequest struct {
	Kind string `json:"kind"`
}

// NewClaimRewardsRequest builds a claim-rewards request.
func NewClaimRewardsRequest() ClaimRewardsRequest {
	return ClaimRewardsRequest{Kind: "claim_rewards"}
}

func (r SwapRequest) RequestKind() string            { return r.Kind }
func (r AddLiquidityRequest) RequestKind() string    { return r.Kind }
func (r RemoveLiquidityRequest) RequestKind() string { return r.Kind }
func (r ClaimUnbondedRequest) RequestKind() string   { return r.Kind }
func (r CancelUnbondRequest) RequestKind() string    { return r.Kind }
func (r StakeRequest) RequestKind() string           { return r.Kind }
func (r UnstakeRequest) RequestKind() string         { return r.Kind }
func (r ClaimRewardsRequest) RequestKind() string    { return r.Kind }

var (
	_ Request = SwapRequest{}
	_ Request = AddLiquidityRequest{}
	_ Request = RemoveLiquidityRequest{}
	_ Request = ClaimUnbondedRequest{}
	_ Request = CancelUnbondRequest{}
	_ Request = StakeRequest{}
	_ Request = UnstakeRequest{}
	_ Request = ClaimRewardsRequest{}
)
