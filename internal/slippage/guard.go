// Package slippage derives the submission bounds and trade estimates
// from a quote. The minimum-received / maximum-input bound computed
// here is the only enforceable safety contract between quote time and
// settlement time; the authoritative program is the final arbiter of
// whether a submitted transaction still satisfies it.
package slippage

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"amm-settlement-lab/internal/domain"
	"amm-settlement-lab/internal/units"
)

var bpsDenom = big.NewInt(10000)

// MinimumReceived returns floor(out * (10000 - slippageBps) / 10000),
// the least output the caller will accept at settlement. slippageBps
// must lie in [0, 10000).
func MinimumReceived(outputBase *big.Int, slippageBps uint32) (*big.Int, error) {
	if err := validateBps(slippageBps); err != nil {
		return nil, err
	}
	if outputBase == nil || outputBase.Sign() < 0 {
		return nil, fmt.Errorf("%w: output must be non-negative", domain.ErrInvalidAmount)
	}
	min := new(big.Int).Mul(outputBase, big.NewInt(int64(10000-slippageBps)))
	return min.Quo(min, bpsDenom), nil
}

// MaximumInput returns ceil(in * (10000 + slippageBps) / 10000), the
// most input the caller will supply at settlement. slippageBps must lie
// in [0, 10000).
func MaximumInput(inputBase *big.Int, slippageBps uint32) (*big.Int, error) {
	if err := validateBps(slippageBps); err != nil {
		return nil, err
	}
	if inputBase == nil || inputBase.Sign() < 0 {
		return nil, fmt.Errorf("%w: input must be non-negative", domain.ErrInvalidAmount)
	}
	num := new(big.Int).Mul(inputBase, big.NewInt(int64(10000+slippageBps)))
	q, r := new(big.Int).QuoRem(num, bpsDenom, new(big.Int))
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q, nil
}

// PriceImpact compares the spot price implied by the quote's snapshots
// to the post-trade price and returns the signed percentage change.
// Informational only; it never gates execution.
func PriceImpact(q *domain.Quote) (decimal.Decimal, error) {
	if q == nil || len(q.Legs) == 0 || len(q.Legs) != len(q.Route.Legs) {
		return decimal.Zero, domain.ErrInvalidRoute
	}

	spot := decimal.NewFromInt(1)
	post := decimal.NewFromInt(1)
	for i, leg := range q.Legs {
		rin, rout, ok := q.Route.Legs[i].Snapshot.Reserves(leg.AssetIn)
		if !ok {
			return decimal.Zero, domain.ErrInvalidRoute
		}
		rinD := decimal.NewFromBigInt(rin, 0)
		routD := decimal.NewFromBigInt(rout, 0)
		inD := decimal.NewFromBigInt(leg.Input, 0)
		outD := decimal.NewFromBigInt(leg.Output, 0)

		postOut := routD.Sub(outD)
		if routD.IsZero() || postOut.IsZero() {
			return decimal.Zero, domain.ErrPoolInactive
		}
		spot = spot.Mul(rinD.DivRound(routD, 18))
		post = post.Mul(rinD.Add(inD).DivRound(postOut, 18))
	}
	if spot.IsZero() {
		return decimal.Zero, domain.ErrPoolInactive
	}
	return post.Sub(spot).DivRound(spot, 18).Mul(decimal.NewFromInt(100)), nil
}

// TradeFeeDisplay converts the fee captured in the quote to display
// units of the input asset.
func TradeFeeDisplay(q *domain.Quote, inputToken domain.Token) decimal.Decimal {
	if q == nil {
		return decimal.Zero
	}
	return units.ToDisplayUnits(q.Fee, inputToken)
}

func validateBps(bps uint32) error {
	if bps >= 10000 {
		return fmt.Errorf("%w: slippage %d bps out of [0, 10000)", domain.ErrInvalidAmount, bps)
	}
	return nil
}
