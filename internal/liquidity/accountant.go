// Package liquidity computes provisioning and withdrawal amounts and
// tracks the unbonding lifecycle of staked pool shares.
package liquidity

import (
	"errors"
	"fmt"
	"math/big"

	"amm-settlement-lab/internal/domain"
)

// DefaultUnbondSeconds is the mandatory delay between requesting a
// withdrawal and it becoming claimable.
const DefaultUnbondSeconds int64 = 21 * 24 * 60 * 60

// ErrUnbondNotFound is returned when cancelling an unbonding entry that
// does not exist on the position.
var ErrUnbondNotFound = errors.New("unbonding entry not found")

// PairedDeposit computes the amount of the other asset required to
// match a one-sided deposit at the snapshot's current reserve ratio:
// other = floor(given * otherReserve / givenReserve).
//
// The ratio drifts with every intervening trade. Callers must re-derive
// the pair from a fresh snapshot immediately before submission; a stale
// ratio produces a deposit the authoritative program will reject or
// settle unfavorably.
func PairedDeposit(oneSided *big.Int, sideAsset string, snap domain.ReserveSnapshot) (amountA, amountB *big.Int, err error) {
	if oneSided == nil || oneSided.Sign() <= 0 {
		return nil, nil, fmt.Errorf("%w: deposit must be positive", domain.ErrInvalidAmount)
	}
	if !snap.Active() {
		return nil, nil, fmt.Errorf("%w: pool %s", domain.ErrPoolInactive, snap.Pool)
	}

	givenReserve, otherReserve, ok := snap.Reserves(sideAsset)
	if !ok {
		return nil, nil, fmt.Errorf("%w: asset %s not in pool %s", domain.ErrInvalidRoute, sideAsset, snap.Pool)
	}

	other := new(big.Int).Mul(oneSided, otherReserve)
	other.Quo(other, givenReserve)

	given := new(big.Int).Set(oneSided)
	if sideAsset == snap.AssetA {
		return given, other, nil
	}
	return other, given, nil
}

// WithdrawalValue computes the proportional share of both reserves for
// a share count: amount_i = floor(shares * reserve_i / totalShares).
func WithdrawalValue(shares *big.Int, snap domain.ReserveSnapshot, totalShares *big.Int) (amountA, amountB *big.Int, err error) {
	if shares == nil || shares.Sign() <= 0 {
		return nil, nil, fmt.Errorf("%w: shares must be positive", domain.ErrInvalidAmount)
	}
	if totalShares == nil || totalShares.Sign() <= 0 {
		return nil, nil, fmt.Errorf("%w: total shares must be positive", domain.ErrInvalidAmount)
	}
	if shares.Cmp(totalShares) > 0 {
		return nil, nil, fmt.Errorf("%w: %s shares of %s total", domain.ErrInsufficientShares, shares, totalShares)
	}

	amountA = new(big.Int).Mul(shares, snap.ReserveA)
	amountA.Quo(amountA, totalShares)
	amountB = new(big.Int).Mul(shares, snap.ReserveB)
	amountB.Quo(amountB, totalShares)
	return amountA, amountB, nil
}

// Accountant applies unbonding transitions to liquidity positions.
type Accountant struct {
	unbondSeconds int64
}

// NewAccountant creates an Accountant with the given unbonding duration
// in seconds; non-positive durations fall back to DefaultUnbondSeconds.
func NewAccountant(unbondSeconds int64) *Accountant {
	if unbondSeconds <= 0 {
		unbondSeconds = DefaultUnbondSeconds
	}
	return &Accountant{unbondSeconds: unbondSeconds}
}

// UnbondSeconds returns the configured unbonding duration.
func (a *Accountant) UnbondSeconds() int64 {
	return a.unbondSeconds
}

// BeginUnbond moves shares from the staked balance into a new pending
// unbonding request. Requesting more than the currently staked
// (non-unbonding) shares fails with ErrInsufficientShares.
func (a *Accountant) BeginUnbond(pos *domain.LiquidityPosition, shares *big.Int, now int64) (domain.UnbondRequest, error) {
	if shares == nil || shares.Sign() <= 0 {
		return domain.UnbondRequest{}, fmt.Errorf("%w: shares must be positive", domain.ErrInvalidAmount)
	}
	if pos.StakedShares == nil || shares.Cmp(pos.StakedShares) > 0 {
		return domain.UnbondRequest{}, fmt.Errorf("%w: %s of %s staked", domain.ErrInsufficientShares, shares, pos.StakedShares)
	}

	pos.StakedShares = new(big.Int).Sub(pos.StakedShares, shares)
	req := domain.UnbondRequest{Shares: new(big.Int).Set(shares), StartTime: now}
	pos.Unbonding = append(pos.Unbonding, req)
	return req, nil
}

// ClaimableAt returns the time at which a request matures.
func (a *Accountant) ClaimableAt(req domain.UnbondRequest) int64 {
	return req.StartTime + a.unbondSeconds
}

// State reports the request's position in the Pending -> Claimable ->
// Claimed lifecycle at the given time. Claimed requests no longer
// appear on a position, so only the first two states are observable
// here.
func (a *Accountant) State(req domain.UnbondRequest, now int64) domain.UnbondState {
	if a.ClaimableAt(req) <= now {
		return domain.UnbondClaimable
	}
	return domain.UnbondPending
}

// Claim removes and returns every matured request on the position.
// Claiming before any request matures is rejected with
// ErrNothingClaimable, never silently queued.
func (a *Accountant) Claim(pos *domain.LiquidityPosition, now int64) ([]domain.UnbondRequest, error) {
	var claimed []domain.UnbondRequest
	var remaining []domain.UnbondRequest
	for _, req := range pos.Unbonding {
		if a.ClaimableAt(req) <= now {
			claimed = append(claimed, req)
		} else {
			remaining = append(remaining, req)
		}
	}
	if len(claimed) == 0 {
		return nil, domain.ErrNothingClaimable
	}
	pos.Unbonding = remaining
	return claimed, nil
}

// CancelUnbond removes the unbonding entry started at startTime and
// returns its shares to the staked balance.
func (a *Accountant) CancelUnbond(pos *domain.LiquidityPosition, startTime int64) error {
	for i, req := range pos.Unbonding {
		if req.StartTime == startTime {
			pos.Unbonding = append(pos.Unbonding[:i], pos.Unbonding[i+1:]...)
			if pos.StakedShares == nil {
				pos.StakedShares = new(big.Int)
			}
			pos.StakedShares = new(big.Int).Add(pos.StakedShares, req.Shares)
			return nil
		}
	}
	return fmt.Errorf("%w: start time %d", ErrUnbondNotFound, startTime)
}
