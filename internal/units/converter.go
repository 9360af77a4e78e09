// Package units converts between human-readable display amounts and
// integer base-unit amounts.
//
// Conversion to base units truncates toward zero. The round trip
// ToBaseUnits(ToDisplayUnits(x)) therefore need not reproduce x at the
// margin; the truncation is intentional and prevents over-spending.
package units

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"amm-settlement-lab/internal/domain"
)

// ToBaseUnits converts a display amount to integer base units by
// multiplying by 10^decimals and truncating toward zero. Negative
// amounts are rejected with ErrInvalidAmount.
func ToBaseUnits(amount decimal.Decimal, token domain.Token) (*big.Int, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: negative display amount %s", domain.ErrInvalidAmount, amount)
	}
	return amount.Shift(int32(token.Decimals)).BigInt(), nil
}

// ToDisplayUnits converts integer base units to a display amount with
// up to token.Decimals fraction digits. The conversion is exact; no
// rounding occurs beyond the base-unit truncation already applied.
func ToDisplayUnits(base *big.Int, token domain.Token) decimal.Decimal {
	if base == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(base, -int32(token.Decimals))
}

// ParseDisplayAmount parses a user-supplied decimal string. Anything
// that is not a finite non-negative decimal is rejected with
// ErrInvalidAmount.
func ParseDisplayAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative amount %q", domain.ErrInvalidAmount, s)
	}
	return d, nil
}

// ParseBaseUnits parses an integer base-unit amount encoded as a
// decimal string, the wire encoding used across the settlement
// boundary.
func ParseBaseUnits(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("%w: base amount %q", domain.ErrInvalidAmount, s)
	}
	return n, nil
}

// FormatBaseUnits encodes a base-unit amount as a decimal string for
// the settlement boundary.
func FormatBaseUnits(n *big.Int) string {
	if n == nil {
		return "0"
	}
	return n.String()
}
