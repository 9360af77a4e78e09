// Package quote implements deterministic constant-product quoting over
// immutable reserve snapshots.
//
// All arithmetic is integer (math/big), mirroring the math the
// authoritative on-chain program enforces. QuoteOutput rounds down at
// every step; QuoteInput rounds up at every step. The asymmetry is
// intentional: rounding only ever favors the pool, never the trader.
package quote

import (
	"fmt"
	"math/big"

	"amm-settlement-lab/internal/domain"
)

var bpsDenom = big.NewInt(10000)

// QuoteOutput computes the output received for inputBase along route.
// The fee is deducted from the input before the ratio division on every
// leg; charging it after the division is a materially different formula
// and is never substituted. A computed output meeting or exceeding the
// counter-reserve yields a quote flagged InsufficientLiquidity rather
// than draining the reserve.
func QuoteOutput(route domain.Route, inputBase *big.Int) (*domain.Quote, error) {
	if err := validateRoute(route); err != nil {
		return nil, err
	}
	if inputBase == nil || inputBase.Sign() <= 0 {
		return nil, fmt.Errorf("%w: input must be positive", domain.ErrInvalidAmount)
	}

	q := &domain.Quote{Route: route, Input: new(big.Int).Set(inputBase)}
	amount := new(big.Int).Set(inputBase)
	for _, leg := range route.Legs {
		out, fee, ok := legOutput(leg, amount)
		if !ok {
			return &domain.Quote{
				Route:                 route,
				Input:                 new(big.Int),
				Output:                new(big.Int),
				Fee:                   new(big.Int),
				InsufficientLiquidity: true,
			}, nil
		}
		q.Legs = append(q.Legs, domain.LegQuote{
			AssetIn:  leg.AssetIn,
			AssetOut: leg.AssetOut,
			Input:    amount,
			Output:   out,
			Fee:      fee,
		})
		amount = out
	}
	q.Output = amount
	q.Fee = q.Legs[0].Fee
	return q, nil
}

// QuoteInput computes the input required to realize outputBase along
// route. The requested output must be strictly below every traversed
// counter-reserve; otherwise ErrInsufficientLiquidity is returned.
func QuoteInput(route domain.Route, outputBase *big.Int) (*domain.Quote, error) {
	if err := validateRoute(route); err != nil {
		return nil, err
	}
	if outputBase == nil || outputBase.Sign() <= 0 {
		return nil, fmt.Errorf("%w: output must be positive", domain.ErrInvalidAmount)
	}

	// Walk the legs backwards: the input required by the second leg is
	// the output the first leg must produce.
	legQuotes := make([]domain.LegQuote, len(route.Legs))
	amount := new(big.Int).Set(outputBase)
	for i := len(route.Legs) - 1; i >= 0; i-- {
		leg := route.Legs[i]
		in, fee, err := legInput(leg, amount)
		if err != nil {
			return nil, err
		}
		legQuotes[i] = domain.LegQuote{
			AssetIn:  leg.AssetIn,
			AssetOut: leg.AssetOut,
			Input:    in,
			Output:   amount,
			Fee:      fee,
		}
		amount = in
	}
	return &domain.Quote{
		Route:  route,
		Input:  amount,
		Output: new(big.Int).Set(outputBase),
		Fee:    legQuotes[0].Fee,
		Legs:   legQuotes,
	}, nil
}

// legOutput applies the forward constant-product formula to one leg:
//
//	fee = floor(in * f / 10000)
//	net = in - fee
//	out = floor(net * Rout / (Rin + net))
//
// ok is false when out would meet or exceed Rout.
func legOutput(leg domain.Leg, input *big.Int) (out, fee *big.Int, ok bool) {
	rin, rout, _ := leg.Snapshot.Reserves(leg.AssetIn)

	fee = new(big.Int).Mul(input, feeRate(leg.Snapshot))
	fee.Quo(fee, bpsDenom)
	net := new(big.Int).Sub(input, fee)

	num := new(big.Int).Mul(net, rout)
	den := new(big.Int).Add(rin, net)
	out = num.Quo(num, den)

	if out.Cmp(rout) >= 0 {
		return nil, nil, false
	}
	return out, fee, true
}

// legInput inverts the formula for one leg:
//
//	net = ceil(out * Rin / (Rout - out))
//	in  = ceil(net * 10000 / (10000 - f))
//	fee = in - net
//
// The gross-up uses 10000/(10000-f) rather than adding ceil(net*f/10000)
// so that re-quoting the returned input always realizes at least the
// requested output.
func legInput(leg domain.Leg, output *big.Int) (in, fee *big.Int, err error) {
	rin, rout, _ := leg.Snapshot.Reserves(leg.AssetIn)

	if output.Cmp(rout) >= 0 {
		return nil, nil, fmt.Errorf("%w: requested output %s >= reserve %s",
			domain.ErrInsufficientLiquidity, output, rout)
	}
	f := feeRate(leg.Snapshot)
	if f.Cmp(bpsDenom) >= 0 {
		// A 100% fee rate consumes the whole input; no finite input
		// realizes a positive output.
		return nil, nil, fmt.Errorf("%w: fee rate %s bps", domain.ErrInsufficientLiquidity, f)
	}

	num := new(big.Int).Mul(output, rin)
	den := new(big.Int).Sub(rout, output)
	net := ceilDiv(num, den)

	in = ceilDiv(new(big.Int).Mul(net, bpsDenom), new(big.Int).Sub(bpsDenom, f))
	fee = new(big.Int).Sub(in, net)
	return in, fee, nil
}

func validateRoute(route domain.Route) error {
	if len(route.Legs) == 0 || route.AssetIn == route.AssetOut {
		return domain.ErrInvalidRoute
	}
	for _, leg := range route.Legs {
		if _, _, ok := leg.Snapshot.Reserves(leg.AssetIn); !ok {
			return domain.ErrInvalidRoute
		}
		if leg.Snapshot.FeeBps > 10000 {
			return fmt.Errorf("%w: fee %d bps out of range", domain.ErrInvalidRoute, leg.Snapshot.FeeBps)
		}
		if !leg.Snapshot.Active() {
			return fmt.Errorf("%w: pool %s", domain.ErrPoolInactive, leg.Snapshot.Pool)
		}
	}
	return nil
}

func feeRate(snap domain.ReserveSnapshot) *big.Int {
	return new(big.Int).SetUint64(uint64(snap.FeeBps))
}

// ceilDiv divides num by den rounding up. Both operands are positive.
func ceilDiv(num, den *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}
