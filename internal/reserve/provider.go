// Package reserve fetches pool reserves from the authoritative chain
// and turns them into immutable snapshots for quoting.
package reserve

import (
	"context"
	"fmt"
	"time"

	"amm-settlement-lab/internal/chain"
	"amm-settlement-lab/internal/domain"
	"amm-settlement-lab/internal/observability"
	"amm-settlement-lab/internal/registry"
	"amm-settlement-lab/internal/units"
)

// DefaultMaxAge bounds how stale a snapshot may be before quoting
// refuses to use it.
const DefaultMaxAge = 30 * time.Second

// Provider fetches reserve snapshots for registered pools.
type Provider struct {
	client poolQuerier
	store  *registry.Store
	maxAge int64 // seconds
	now    func() int64
}

// poolQuerier is the slice of chain.QueryClient the provider needs.
type poolQuerier interface {
	PoolState(ctx context.Context, pool string) (*chain.PoolState, error)
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithMaxAge sets the staleness bound for snapshots.
func WithMaxAge(d time.Duration) ProviderOption {
	return func(p *Provider) {
		p.maxAge = int64(d / time.Second)
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() int64) ProviderOption {
	return func(p *Provider) {
		p.now = now
	}
}

// NewProvider creates a reserve snapshot provider.
func NewProvider(client poolQuerier, store *registry.Store, opts ...ProviderOption) *Provider {
	p := &Provider{
		client: client,
		store:  store,
		maxAge: int64(DefaultMaxAge / time.Second),
		now:    func() int64 { return time.Now().Unix() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Snapshot fetches the current reserves of one registered pool. The
// returned snapshot is immutable; a change in pool state is observed
// by fetching a new one. ErrStaleSnapshot is returned when the chain
// reports a block time older than the staleness bound.
func (p *Provider) Snapshot(ctx context.Context, poolID string) (domain.ReserveSnapshot, error) {
	reg := p.store.Load()
	pool, ok := reg.Pool(poolID)
	if !ok {
		return domain.ReserveSnapshot{}, fmt.Errorf("%w: unknown pool %q", domain.ErrInvalidRoute, poolID)
	}

	st, err := p.client.PoolState(ctx, pool.Address)
	if err != nil {
		return domain.ReserveSnapshot{}, fmt.Errorf("pool %s: %w", poolID, err)
	}

	reserveA, err := units.ParseBaseUnits(st.ReserveA)
	if err != nil {
		return domain.ReserveSnapshot{}, fmt.Errorf("pool %s reserve_a: %w", poolID, err)
	}
	reserveB, err := units.ParseBaseUnits(st.ReserveB)
	if err != nil {
		return domain.ReserveSnapshot{}, fmt.Errorf("pool %s reserve_b: %w", poolID, err)
	}
	if st.ProtocolFeeBps > 10000 {
		return domain.ReserveSnapshot{}, fmt.Errorf("%w: pool %s fee %d bps", domain.ErrInvalidAmount, poolID, st.ProtocolFeeBps)
	}

	snap := domain.ReserveSnapshot{
		Pool:       poolID,
		AssetA:     pool.AssetA,
		AssetB:     pool.AssetB,
		ReserveA:   reserveA,
		ReserveB:   reserveB,
		FeeBps:     st.ProtocolFeeBps,
		ObservedAt: st.BlockTime,
	}

	age := snap.AgeAt(p.now())
	if age > p.maxAge {
		observability.RecordStaleSnapshot()
		return domain.ReserveSnapshot{}, fmt.Errorf("%w: pool %s observed %ds ago", domain.ErrStaleSnapshot, poolID, age)
	}
	observability.RecordSnapshot(float64(age), snap.ObservedAt)
	return snap, nil
}
