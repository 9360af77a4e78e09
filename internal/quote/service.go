package quote

import (
	"context"
	"math/big"

	"amm-settlement-lab/internal/domain"
	"amm-settlement-lab/internal/registry"
)

// SnapshotSource yields reserve snapshots by pool ID. Satisfied by
// reserve.Provider and reserve.Cache.
type SnapshotSource interface {
	Snapshot(ctx context.Context, poolID string) (domain.ReserveSnapshot, error)
}

// Service resolves a trading pair to a route with fresh snapshots and
// quotes it. Both directions share route resolution; only the engine
// entry point differs.
type Service struct {
	snapshots SnapshotSource
	store     *registry.Store
}

// NewService creates a quoting service.
func NewService(snapshots SnapshotSource, store *registry.Store) *Service {
	return &Service{snapshots: snapshots, store: store}
}

// QuoteExactInput quotes the output obtainable for a fixed input.
func (s *Service) QuoteExactInput(ctx context.Context, assetIn, assetOut string, inputBase *big.Int) (*domain.Quote, error) {
	route, err := s.buildRoute(ctx, assetIn, assetOut)
	if err != nil {
		return nil, err
	}
	return QuoteOutput(route, inputBase)
}

// QuoteExactOutput quotes the input required for a fixed output.
func (s *Service) QuoteExactOutput(ctx context.Context, assetIn, assetOut string, outputBase *big.Int) (*domain.Quote, error) {
	route, err := s.buildRoute(ctx, assetIn, assetOut)
	if err != nil {
		return nil, err
	}
	return QuoteInput(route, outputBase)
}

// buildRoute plans the pools for a pair and snapshots each one. Every
// quote sees a consistent set of snapshots; pool state changing under
// a quote is caught by the program's bounds at settlement, not here.
func (s *Service) buildRoute(ctx context.Context, assetIn, assetOut string) (domain.Route, error) {
	reg := s.store.Load()
	plan, err := reg.PlanRoute(assetIn, assetOut)
	if err != nil {
		return domain.Route{}, err
	}

	switch plan.Kind {
	case domain.RouteDirect:
		snap, err := s.snapshots.Snapshot(ctx, plan.Pools[0].ID)
		if err != nil {
			return domain.Route{}, err
		}
		return domain.NewDirectRoute(snap, assetIn, assetOut)
	default:
		first, err := s.snapshots.Snapshot(ctx, plan.Pools[0].ID)
		if err != nil {
			return domain.Route{}, err
		}
		second, err := s.snapshots.Snapshot(ctx, plan.Pools[1].ID)
		if err != nil {
			return domain.Route{}, err
		}
		return domain.NewHopRoute(first, second, assetIn, plan.Hub, assetOut)
	}
}
