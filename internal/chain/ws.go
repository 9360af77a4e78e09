package chain

import "context"

// PoolNotification announces that a pool's state changed on chain.
// Consumers use it to invalidate cached snapshots; the payload is a
// pointer to re-query, not a state update.
type PoolNotification struct {
	Pool      string `json:"pool"`
	BlockTime int64  `json:"block_time"` // Unix seconds
}

// WSClient streams pool-change notifications.
type WSClient interface {
	// SubscribePools subscribes to state changes of the given pools.
	// The returned channel closes when ctx is cancelled or the client
	// is closed.
	SubscribePools(ctx context.Context, pools []string) (<-chan PoolNotification, error)
	Close() error
}
