package domain

import "math/big"

// LegQuote holds the amounts of one pool trade within a quote.
type LegQuote struct {
	AssetIn  string
	AssetOut string
	Input    *big.Int // base units entering this leg
	Output   *big.Int // base units leaving this leg
	Fee      *big.Int // fee charged on this leg, denominated in AssetIn
}

// Quote is a derived result of the quote engine. It is never persisted.
//
// Fee is denominated in the route's input asset; for hop routes it is
// the first leg's fee and Legs carries the hub-denominated second-leg
// fee.
type Quote struct {
	Route  Route
	Input  *big.Int // base units of AssetIn
	Output *big.Int // base units of AssetOut
	Fee    *big.Int
	Legs   []LegQuote

	// InsufficientLiquidity is set when the computed output would meet
	// or exceed the counter-reserve. Input/Output are zero in that case.
	InsufficientLiquidity bool
}
