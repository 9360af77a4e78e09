// Package rewards computes stake reward accrual and annualized yield
// from a fixed per-second emission rate.
//
// This is presentation math only: the authoritative program's
// cumulative reward value is ground truth for owed amounts, and
// confirmed claims must clear any locally derived pending value so a
// stale figure is never displayed.
package rewards

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"amm-settlement-lab/internal/domain"
)

// SecondsPerYear uses a 365-day year for APR estimation.
const SecondsPerYear int64 = 365 * 24 * 60 * 60

// DefaultEmissionPerSecond is one hub token per second at 6 decimals.
var DefaultEmissionPerSecond = big.NewInt(1_000_000)

// PendingReward extends the position's accrued reward by linear
// pro-rata emission since the last accrual:
//
//	accrued = floor(elapsed * rate * staked / totalStaked)
//
// The result is monotonically non-decreasing between claims.
func PendingReward(pos domain.StakePosition, ratePerSecond, totalStaked *big.Int, now int64) (*big.Int, error) {
	pending := new(big.Int)
	if pos.PendingReward != nil {
		pending.Set(pos.PendingReward)
	}
	if pos.StakedBase == nil || pos.StakedBase.Sign() == 0 {
		return pending, nil
	}
	if totalStaked == nil || totalStaked.Sign() <= 0 || totalStaked.Cmp(pos.StakedBase) < 0 {
		return nil, fmt.Errorf("%w: total staked %s below position stake %s",
			domain.ErrInvalidAmount, totalStaked, pos.StakedBase)
	}
	if ratePerSecond == nil || ratePerSecond.Sign() < 0 {
		return nil, fmt.Errorf("%w: emission rate %s", domain.ErrInvalidAmount, ratePerSecond)
	}

	elapsed := now - pos.LastAccrual
	if elapsed <= 0 {
		return pending, nil
	}

	accrued := new(big.Int).Mul(big.NewInt(elapsed), ratePerSecond)
	accrued.Mul(accrued, pos.StakedBase)
	accrued.Quo(accrued, totalStaked)
	return pending.Add(pending, accrued), nil
}

// EstimatedAPR returns the annualized emission as a ratio of total
// stake: rate * SecondsPerYear / totalStaked. With zero total stake the
// APR is undefined and reported as ErrUndefinedAPR, never as a numeric
// zero.
func EstimatedAPR(totalStaked, ratePerSecond *big.Int) (decimal.Decimal, error) {
	if totalStaked == nil || totalStaked.Sign() == 0 {
		return decimal.Zero, domain.ErrUndefinedAPR
	}
	if totalStaked.Sign() < 0 || ratePerSecond == nil || ratePerSecond.Sign() < 0 {
		return decimal.Zero, fmt.Errorf("%w: negative stake or rate", domain.ErrInvalidAmount)
	}

	annual := decimal.NewFromBigInt(ratePerSecond, 0).Mul(decimal.NewFromInt(SecondsPerYear))
	return annual.DivRound(decimal.NewFromBigInt(totalStaked, 0), 18), nil
}

// ApplyStake settles accrual up to now and adds amount to the staked
// balance. It mirrors a confirmed stake transaction.
func ApplyStake(pos *domain.StakePosition, amount, ratePerSecond, totalStaked *big.Int, now int64) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("%w: stake must be positive", domain.ErrInvalidAmount)
	}
	if err := settle(pos, ratePerSecond, totalStaked, now); err != nil {
		return err
	}
	if pos.StakedBase == nil {
		pos.StakedBase = new(big.Int)
	}
	pos.StakedBase = new(big.Int).Add(pos.StakedBase, amount)
	return nil
}

// ApplyUnstake settles accrual up to now and removes amount from the
// staked balance. Unstaking more than staked fails with
// ErrInsufficientShares.
func ApplyUnstake(pos *domain.StakePosition, amount, ratePerSecond, totalStaked *big.Int, now int64) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("%w: unstake must be positive", domain.ErrInvalidAmount)
	}
	if pos.StakedBase == nil || amount.Cmp(pos.StakedBase) > 0 {
		return fmt.Errorf("%w: %s of %s staked", domain.ErrInsufficientShares, amount, pos.StakedBase)
	}
	if err := settle(pos, ratePerSecond, totalStaked, now); err != nil {
		return err
	}
	pos.StakedBase = new(big.Int).Sub(pos.StakedBase, amount)
	return nil
}

// ApplyClaim settles accrual up to now, returns the claimed reward, and
// resets the pending balance to zero. A claim with nothing pending
// fails with ErrNothingClaimable.
func ApplyClaim(pos *domain.StakePosition, ratePerSecond, totalStaked *big.Int, now int64) (*big.Int, error) {
	if err := settle(pos, ratePerSecond, totalStaked, now); err != nil {
		return nil, err
	}
	if pos.PendingReward == nil || pos.PendingReward.Sign() == 0 {
		return nil, domain.ErrNothingClaimable
	}
	claimed := pos.PendingReward
	pos.PendingReward = new(big.Int)
	return claimed, nil
}

// settle folds accrual since LastAccrual into PendingReward and stamps
// the position with now.
func settle(pos *domain.StakePosition, ratePerSecond, totalStaked *big.Int, now int64) error {
	pending, err := PendingReward(*pos, ratePerSecond, totalStaked, now)
	if err != nil {
		return err
	}
	pos.PendingReward = pending
	pos.LastAccrual = now
	return nil
}
