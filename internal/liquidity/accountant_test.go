package liquidity

import (
	"errors"
	"math/big"
	"testing"

	"amm-settlement-lab/internal/domain"
)

func poolSnapshot() domain.ReserveSnapshot {
	return domain.ReserveSnapshot{
		Pool:     "pool-ab",
		AssetA:   "A",
		AssetB:   "B",
		ReserveA: big.NewInt(1_000_000_000),
		ReserveB: big.NewInt(50_000_000),
		FeeBps:   30,
	}
}

func TestPairedDeposit_FromAssetA(t *testing.T) {
	a, b, err := PairedDeposit(big.NewInt(2_500_000), "A", poolSnapshot())
	if err != nil {
		t.Fatalf("PairedDeposit: %v", err)
	}
	if a.Int64() != 2_500_000 {
		t.Errorf("expected amountA 2500000, got %s", a)
	}
	// floor(2_500_000 * 50_000_000 / 1_000_000_000) = 125_000
	if b.Int64() != 125_000 {
		t.Errorf("expected amountB 125000, got %s", b)
	}
}

func TestPairedDeposit_FromAssetB(t *testing.T) {
	a, b, err := PairedDeposit(big.NewInt(125_000), "B", poolSnapshot())
	if err != nil {
		t.Fatalf("PairedDeposit: %v", err)
	}
	// floor(125_000 * 1_000_000_000 / 50_000_000) = 2_500_000
	if a.Int64() != 2_500_000 {
		t.Errorf("expected amountA 2500000, got %s", a)
	}
	if b.Int64() != 125_000 {
		t.Errorf("expected amountB 125000, got %s", b)
	}
}

func TestPairedDeposit_Errors(t *testing.T) {
	snap := poolSnapshot()

	if _, _, err := PairedDeposit(big.NewInt(0), "A", snap); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("zero amount: expected ErrInvalidAmount, got %v", err)
	}
	if _, _, err := PairedDeposit(big.NewInt(100), "C", snap); !errors.Is(err, domain.ErrInvalidRoute) {
		t.Errorf("unknown asset: expected ErrInvalidRoute, got %v", err)
	}

	drained := snap
	drained.ReserveB = big.NewInt(0)
	if _, _, err := PairedDeposit(big.NewInt(100), "A", drained); !errors.Is(err, domain.ErrPoolInactive) {
		t.Errorf("drained pool: expected ErrPoolInactive, got %v", err)
	}
}

func TestWithdrawalValue(t *testing.T) {
	a, b, err := WithdrawalValue(big.NewInt(123_456), poolSnapshot(), big.NewInt(10_000_000))
	if err != nil {
		t.Fatalf("WithdrawalValue: %v", err)
	}
	// floor(123_456 * 1_000_000_000 / 10_000_000) = 12_345_600
	if a.Int64() != 12_345_600 {
		t.Errorf("expected amountA 12345600, got %s", a)
	}
	// floor(123_456 * 50_000_000 / 10_000_000) = 617_280
	if b.Int64() != 617_280 {
		t.Errorf("expected amountB 617280, got %s", b)
	}
}

func TestWithdrawalValue_MoreThanTotalShares(t *testing.T) {
	_, _, err := WithdrawalValue(big.NewInt(11), poolSnapshot(), big.NewInt(10))
	if !errors.Is(err, domain.ErrInsufficientShares) {
		t.Errorf("expected ErrInsufficientShares, got %v", err)
	}
}

func position(staked int64) *domain.LiquidityPosition {
	return &domain.LiquidityPosition{
		Pool:         "pool-ab",
		Owner:        "owner-1",
		StakedShares: big.NewInt(staked),
	}
}

func TestBeginUnbond(t *testing.T) {
	acct := NewAccountant(0)
	pos := position(1000)

	req, err := acct.BeginUnbond(pos, big.NewInt(400), 1_700_000_000)
	if err != nil {
		t.Fatalf("BeginUnbond: %v", err)
	}

	if pos.StakedShares.Int64() != 600 {
		t.Errorf("expected 600 staked after unbond, got %s", pos.StakedShares)
	}
	if pos.UnbondingTotal().Int64() != 400 {
		t.Errorf("expected 400 unbonding, got %s", pos.UnbondingTotal())
	}
	if req.StartTime != 1_700_000_000 {
		t.Errorf("expected start time 1700000000, got %d", req.StartTime)
	}
	if acct.State(req, 1_700_000_000) != domain.UnbondPending {
		t.Errorf("expected pending state, got %s", acct.State(req, 1_700_000_000))
	}
}

func TestBeginUnbond_MoreThanStaked(t *testing.T) {
	acct := NewAccountant(0)
	pos := position(1000)

	// A pending unbond does not count as staked; a second request may
	// only draw from the remaining 600.
	if _, err := acct.BeginUnbond(pos, big.NewInt(400), 100); err != nil {
		t.Fatalf("BeginUnbond: %v", err)
	}
	if _, err := acct.BeginUnbond(pos, big.NewInt(700), 200); !errors.Is(err, domain.ErrInsufficientShares) {
		t.Errorf("expected ErrInsufficientShares, got %v", err)
	}
}

func TestClaim_BeforeMaturityRejected(t *testing.T) {
	acct := NewAccountant(100)
	pos := position(1000)

	if _, err := acct.BeginUnbond(pos, big.NewInt(400), 1000); err != nil {
		t.Fatalf("BeginUnbond: %v", err)
	}

	if _, err := acct.Claim(pos, 1099); !errors.Is(err, domain.ErrNothingClaimable) {
		t.Errorf("expected ErrNothingClaimable, got %v", err)
	}
	if len(pos.Unbonding) != 1 {
		t.Errorf("rejected claim must not modify the position")
	}
}

func TestClaim_AfterMaturity(t *testing.T) {
	acct := NewAccountant(100)
	pos := position(1000)

	req, err := acct.BeginUnbond(pos, big.NewInt(400), 1000)
	if err != nil {
		t.Fatalf("BeginUnbond: %v", err)
	}
	if got := acct.ClaimableAt(req); got != 1100 {
		t.Fatalf("expected claimable at 1100, got %d", got)
	}

	claimed, err := acct.Claim(pos, 1100)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if len(claimed) != 1 || claimed[0].Shares.Int64() != 400 {
		t.Fatalf("expected exactly the 400-share request, got %+v", claimed)
	}
	if len(pos.Unbonding) != 0 {
		t.Errorf("claimed request must be removed from the position")
	}

	// A second claim finds nothing.
	if _, err := acct.Claim(pos, 2000); !errors.Is(err, domain.ErrNothingClaimable) {
		t.Errorf("expected ErrNothingClaimable, got %v", err)
	}
}

func TestClaim_OnlyMaturedRequests(t *testing.T) {
	acct := NewAccountant(100)
	pos := position(1000)

	if _, err := acct.BeginUnbond(pos, big.NewInt(100), 1000); err != nil {
		t.Fatalf("BeginUnbond: %v", err)
	}
	if _, err := acct.BeginUnbond(pos, big.NewInt(200), 1050); err != nil {
		t.Fatalf("BeginUnbond: %v", err)
	}

	claimed, err := acct.Claim(pos, 1100)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if len(claimed) != 1 || claimed[0].Shares.Int64() != 100 {
		t.Fatalf("expected only the matured 100-share request, got %+v", claimed)
	}
	if len(pos.Unbonding) != 1 || pos.Unbonding[0].Shares.Int64() != 200 {
		t.Errorf("unmatured request must remain on the position")
	}
}

func TestCancelUnbond(t *testing.T) {
	acct := NewAccountant(100)
	pos := position(1000)

	if _, err := acct.BeginUnbond(pos, big.NewInt(400), 1000); err != nil {
		t.Fatalf("BeginUnbond: %v", err)
	}

	if err := acct.CancelUnbond(pos, 1000); err != nil {
		t.Fatalf("CancelUnbond: %v", err)
	}
	if pos.StakedShares.Int64() != 1000 {
		t.Errorf("expected shares restored to 1000, got %s", pos.StakedShares)
	}
	if len(pos.Unbonding) != 0 {
		t.Errorf("cancelled entry must be removed")
	}

	if err := acct.CancelUnbond(pos, 1000); !errors.Is(err, ErrUnbondNotFound) {
		t.Errorf("expected ErrUnbondNotFound, got %v", err)
	}
}
