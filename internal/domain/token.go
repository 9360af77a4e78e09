package domain

// Token describes a tradeable asset. Tokens are defined at configuration
// load and never mutated afterwards.
type Token struct {
	Symbol   string // display symbol, unique within a registry
	Address  string // on-chain token address
	Decimals uint8  // base units per display unit = 10^Decimals
	LogoURI  string // optional display metadata
}
