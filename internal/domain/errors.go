package domain

import (
	"errors"
	"fmt"
)

// Quoting and accounting errors. All of these are recovered locally and
// returned as typed results; none is ever downgraded to a default value.
var (
	// ErrInvalidAmount is returned for non-positive or malformed amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidRoute is returned for same-asset swaps and routes whose
	// hub asset does not connect both legs.
	ErrInvalidRoute = errors.New("invalid route")

	// ErrPoolInactive is returned when either reserve of a pool is zero.
	ErrPoolInactive = errors.New("pool inactive: zero reserve")

	// ErrInsufficientLiquidity is returned when a requested output would
	// meet or exceed the counter-reserve.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")

	// ErrInsufficientShares is returned when unbonding more shares than
	// are currently staked.
	ErrInsufficientShares = errors.New("insufficient staked shares")

	// ErrNothingClaimable is returned when a claim is attempted before
	// any unbonding request has matured.
	ErrNothingClaimable = errors.New("nothing claimable")

	// ErrStaleSnapshot is returned when a snapshot is older than the
	// configured maximum age for submission.
	ErrStaleSnapshot = errors.New("stale snapshot")

	// ErrUndefinedAPR is returned when APR cannot be computed because
	// total stake is zero. Callers must report this explicitly, never
	// as a numeric zero.
	ErrUndefinedAPR = errors.New("apr undefined: zero total staked")

	// ErrSettlementRejected is the sentinel wrapped by
	// SettlementRejectedError.
	ErrSettlementRejected = errors.New("settlement rejected")
)

// SettlementRejectedError carries the authoritative program's rejection
// verbatim. It is propagated to the caller unmodified and never retried
// automatically.
type SettlementRejectedError struct {
	Code   int
	RawLog string
	TxHash string
}

func (e *SettlementRejectedError) Error() string {
	return fmt.Sprintf("settlement rejected (code %d): %s", e.Code, e.RawLog)
}

func (e *SettlementRejectedError) Unwrap() error {
	return ErrSettlementRejected
}
