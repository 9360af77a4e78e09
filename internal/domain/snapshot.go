package domain

import "math/big"

// ReserveSnapshot is an immutable observation of a pool's state. A new
// query produces a new snapshot; no component mutates one in place.
type ReserveSnapshot struct {
	Pool       string   // pool identifier
	AssetA     string   // symbol of reserve A
	AssetB     string   // symbol of reserve B
	ReserveA   *big.Int // base units, non-negative
	ReserveB   *big.Int // base units, non-negative
	FeeBps     uint32   // protocol fee in basis points, 0..10000
	ObservedAt int64    // Unix timestamp in seconds
}

// Reserves orients the snapshot for a trade entering with assetIn.
// Returns (reserveIn, reserveOut). The second return is false when
// assetIn is not one of the snapshot's assets.
func (s ReserveSnapshot) Reserves(assetIn string) (*big.Int, *big.Int, bool) {
	switch assetIn {
	case s.AssetA:
		return s.ReserveA, s.ReserveB, true
	case s.AssetB:
		return s.ReserveB, s.ReserveA, true
	default:
		return nil, nil, false
	}
}

// Active reports whether both reserves are strictly positive. Quotes
// against an inactive pool fail with ErrPoolInactive.
func (s ReserveSnapshot) Active() bool {
	if s.ReserveA == nil || s.ReserveB == nil {
		return false
	}
	return s.ReserveA.Sign() > 0 && s.ReserveB.Sign() > 0
}

// AgeAt returns the snapshot age in seconds at the given time.
func (s ReserveSnapshot) AgeAt(now int64) int64 {
	return now - s.ObservedAt
}
