// Package registry holds the token and pool configuration. A Registry
// is immutable once built; refreshing configuration means building a
// new Registry and swapping the reference atomically through Store,
// never mutating fields in place.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync/atomic"

	"amm-settlement-lab/internal/domain"
)

// Pool identifies one constant-product pool and the pair it trades.
type Pool struct {
	ID      string `json:"id"`
	Address string `json:"address"`
	AssetA  string `json:"asset_a"`
	AssetB  string `json:"asset_b"`
}

// Config is the JSON shape of a registry file.
type Config struct {
	Hub    string        `json:"hub"`
	Tokens []TokenConfig `json:"tokens"`
	Pools  []Pool        `json:"pools"`
}

// TokenConfig is the JSON shape of one token entry.
type TokenConfig struct {
	Symbol   string `json:"symbol"`
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	LogoURI  string `json:"logo_uri,omitempty"`
}

// RoutePlan names the pools a trade must traverse. The quote engine
// consumes it together with fresh snapshots of those pools.
type RoutePlan struct {
	Kind  domain.RouteKind
	Pools []Pool // one for direct, two (in leg order) for hop
	Hub   string // set for hop plans
}

// Registry is an immutable view of the configured tokens and pools.
type Registry struct {
	hub    string
	tokens map[string]domain.Token
	pools  map[string]Pool
	byPair map[string]Pool
}

// New validates a Config and builds a Registry from it.
func New(cfg Config) (*Registry, error) {
	if cfg.Hub == "" {
		return nil, fmt.Errorf("registry: hub asset is required")
	}

	tokens := make(map[string]domain.Token, len(cfg.Tokens))
	for _, tc := range cfg.Tokens {
		if tc.Symbol == "" {
			return nil, fmt.Errorf("registry: token with empty symbol")
		}
		if _, dup := tokens[tc.Symbol]; dup {
			return nil, fmt.Errorf("registry: duplicate token %s", tc.Symbol)
		}
		tokens[tc.Symbol] = domain.Token{
			Symbol:   tc.Symbol,
			Address:  tc.Address,
			Decimals: tc.Decimals,
			LogoURI:  tc.LogoURI,
		}
	}
	if _, ok := tokens[cfg.Hub]; !ok {
		return nil, fmt.Errorf("registry: hub asset %s not among tokens", cfg.Hub)
	}

	pools := make(map[string]Pool, len(cfg.Pools))
	byPair := make(map[string]Pool, len(cfg.Pools))
	for _, p := range cfg.Pools {
		if p.ID == "" {
			return nil, fmt.Errorf("registry: pool with empty id")
		}
		if _, dup := pools[p.ID]; dup {
			return nil, fmt.Errorf("registry: duplicate pool %s", p.ID)
		}
		if _, ok := tokens[p.AssetA]; !ok {
			return nil, fmt.Errorf("registry: pool %s references unknown token %s", p.ID, p.AssetA)
		}
		if _, ok := tokens[p.AssetB]; !ok {
			return nil, fmt.Errorf("registry: pool %s references unknown token %s", p.ID, p.AssetB)
		}
		if p.AssetA == p.AssetB {
			return nil, fmt.Errorf("registry: pool %s pairs %s with itself", p.ID, p.AssetA)
		}
		key := pairKey(p.AssetA, p.AssetB)
		if _, dup := byPair[key]; dup {
			return nil, fmt.Errorf("registry: duplicate pool for pair %s/%s", p.AssetA, p.AssetB)
		}
		pools[p.ID] = p
		byPair[key] = p
	}

	return &Registry{hub: cfg.Hub, tokens: tokens, pools: pools, byPair: byPair}, nil
}

// LoadFile reads and validates a registry JSON file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: read %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("registry: parse %s: %w", path, err)
	}
	return New(cfg)
}

// Hub returns the designated hub token.
func (r *Registry) Hub() domain.Token {
	return r.tokens[r.hub]
}

// Token looks up a token by symbol.
func (r *Registry) Token(symbol string) (domain.Token, bool) {
	t, ok := r.tokens[symbol]
	return t, ok
}

// Tokens returns all configured tokens sorted by symbol.
func (r *Registry) Tokens() []domain.Token {
	out := make([]domain.Token, 0, len(r.tokens))
	for _, t := range r.tokens {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Pool looks up a pool by ID.
func (r *Registry) Pool(id string) (Pool, bool) {
	p, ok := r.pools[id]
	return p, ok
}

// Pools returns all configured pools sorted by ID.
func (r *Registry) Pools() []Pool {
	out := make([]Pool, 0, len(r.pools))
	for _, p := range r.pools {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PoolByAddress looks up a pool by its on-chain address.
func (r *Registry) PoolByAddress(addr string) (Pool, bool) {
	for _, p := range r.pools {
		if p.Address == addr {
			return p, true
		}
	}
	return Pool{}, false
}

// PoolForPair looks up the pool trading the given pair, in either
// orientation.
func (r *Registry) PoolForPair(a, b string) (Pool, bool) {
	p, ok := r.byPair[pairKey(a, b)]
	return p, ok
}

// PlanRoute resolves the pools a trade from assetIn to assetOut must
// traverse: the direct pool when one exists, otherwise two pools
// chained through the hub asset. A pair with no direct pool and no hub
// path is an invalid route.
func (r *Registry) PlanRoute(assetIn, assetOut string) (RoutePlan, error) {
	if assetIn == assetOut {
		return RoutePlan{}, fmt.Errorf("%w: %s to itself", domain.ErrInvalidRoute, assetIn)
	}
	if _, ok := r.tokens[assetIn]; !ok {
		return RoutePlan{}, fmt.Errorf("%w: unknown asset %s", domain.ErrInvalidRoute, assetIn)
	}
	if _, ok := r.tokens[assetOut]; !ok {
		return RoutePlan{}, fmt.Errorf("%w: unknown asset %s", domain.ErrInvalidRoute, assetOut)
	}

	if p, ok := r.PoolForPair(assetIn, assetOut); ok {
		return RoutePlan{Kind: domain.RouteDirect, Pools: []Pool{p}}, nil
	}

	if assetIn == r.hub || assetOut == r.hub {
		// One endpoint is the hub and no direct pool exists.
		return RoutePlan{}, fmt.Errorf("%w: no pool for %s/%s", domain.ErrInvalidRoute, assetIn, assetOut)
	}
	first, ok1 := r.PoolForPair(assetIn, r.hub)
	second, ok2 := r.PoolForPair(r.hub, assetOut)
	if !ok1 || !ok2 {
		return RoutePlan{}, fmt.Errorf("%w: no path from %s to %s through %s",
			domain.ErrInvalidRoute, assetIn, assetOut, r.hub)
	}
	return RoutePlan{Kind: domain.RouteHop, Pools: []Pool{first, second}, Hub: r.hub}, nil
}

// Store publishes the current Registry and allows atomic replacement on
// configuration refresh.
type Store struct {
	current atomic.Pointer[Registry]
}

// NewStore creates a Store seeded with reg.
func NewStore(reg *Registry) *Store {
	s := &Store{}
	s.current.Store(reg)
	return s
}

// Load returns the current Registry.
func (s *Store) Load() *Registry {
	return s.current.Load()
}

// Swap replaces the current Registry.
func (s *Store) Swap(reg *Registry) {
	s.current.Store(reg)
}

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}
