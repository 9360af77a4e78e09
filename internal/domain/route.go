package domain

// RouteKind distinguishes the two route variants.
type RouteKind string

// Route kind constants
const (
	RouteDirect RouteKind = "direct"
	RouteHop    RouteKind = "hop"
)

// Leg is a single pool trade within a route.
type Leg struct {
	Snapshot ReserveSnapshot
	AssetIn  string
	AssetOut string
}

// Route is a validated trade path: either one direct pool trade or two
// trades chained through a hub asset. Construct through NewDirectRoute
// or NewHopRoute; a zero Route is not valid.
type Route struct {
	Kind     RouteKind
	Legs     []Leg
	AssetIn  string
	AssetOut string
	Hub      string // set for hop routes only
}

// NewDirectRoute builds a single-pool route. The snapshot must hold
// both assets and the assets must differ.
func NewDirectRoute(snap ReserveSnapshot, assetIn, assetOut string) (Route, error) {
	if assetIn == assetOut {
		return Route{}, ErrInvalidRoute
	}
	if !holdsPair(snap, assetIn, assetOut) {
		return Route{}, ErrInvalidRoute
	}
	return Route{
		Kind:     RouteDirect,
		Legs:     []Leg{{Snapshot: snap, AssetIn: assetIn, AssetOut: assetOut}},
		AssetIn:  assetIn,
		AssetOut: assetOut,
	}, nil
}

// NewHopRoute builds a two-pool route through hub. The hub asset must be
// shared between both snapshots and must equal neither endpoint.
func NewHopRoute(first, second ReserveSnapshot, assetIn, hub, assetOut string) (Route, error) {
	if assetIn == assetOut || assetIn == hub || assetOut == hub {
		return Route{}, ErrInvalidRoute
	}
	if !holdsPair(first, assetIn, hub) || !holdsPair(second, hub, assetOut) {
		return Route{}, ErrInvalidRoute
	}
	return Route{
		Kind: RouteHop,
		Legs: []Leg{
			{Snapshot: first, AssetIn: assetIn, AssetOut: hub},
			{Snapshot: second, AssetIn: hub, AssetOut: assetOut},
		},
		AssetIn:  assetIn,
		AssetOut: assetOut,
		Hub:      hub,
	}, nil
}

func holdsPair(snap ReserveSnapshot, a, b string) bool {
	return (snap.AssetA == a && snap.AssetB == b) || (snap.AssetA == b && snap.AssetB == a)
}
