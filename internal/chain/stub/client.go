// Package stub provides in-memory chain client implementations for testing.
package stub

import (
	"context"
	"errors"
	"sync"

	"amm-settlement-lab/internal/chain"
)

// ErrNotFound is returned when a pool or account is not found.
var ErrNotFound = errors.New("not found")

// QueryClient implements chain.QueryClient for testing.
type QueryClient struct {
	mu    sync.Mutex
	Pools map[string]*chain.PoolState
	Users map[string]*chain.UserInfo
	Stake *chain.StakeState

	// Err, when set, is returned by every query.
	Err error

	// PoolStateCalls counts PoolState invocations per pool address.
	PoolStateCalls map[string]int
}

// NewQueryClient creates a new stub query client.
func NewQueryClient() *QueryClient {
	return &QueryClient{
		Pools:          make(map[string]*chain.PoolState),
		Users:          make(map[string]*chain.UserInfo),
		PoolStateCalls: make(map[string]int),
	}
}

// PoolState retrieves a pool state from the stub store.
func (c *QueryClient) PoolState(_ context.Context, pool string) (*chain.PoolState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.PoolStateCalls[pool]++
	if c.Err != nil {
		return nil, c.Err
	}
	st, ok := c.Pools[pool]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *st
	return &cp, nil
}

// UserInfo retrieves a user's position in a pool from the stub store.
// Entries are keyed by owner + "/" + pool.
func (c *QueryClient) UserInfo(_ context.Context, owner, pool string) (*chain.UserInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	info, ok := c.Users[owner+"/"+pool]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *info
	cp.UnbondingEntries = append([]chain.UnbondingEntry(nil), info.UnbondingEntries...)
	return &cp, nil
}

// StakeState retrieves the global staking state from the stub store.
func (c *QueryClient) StakeState(_ context.Context) (*chain.StakeState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	if c.Stake == nil {
		return nil, ErrNotFound
	}
	cp := *c.Stake
	return &cp, nil
}

// SetPool stores a pool state in the stub.
func (c *QueryClient) SetPool(pool string, st *chain.PoolState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Pools[pool] = st
}

// SetUser stores a user position in the stub.
func (c *QueryClient) SetUser(owner, pool string, info *chain.UserInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Users[owner+"/"+pool] = info
}

// SetStake stores the global staking state in the stub.
func (c *QueryClient) SetStake(st *chain.StakeState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Stake = st
}

// SettlementClient implements chain.SettlementClient for testing.
type SettlementClient struct {
	mu        sync.Mutex
	Submitted []interface{}

	// Result is returned for every submission. Defaults to code 0.
	Result *chain.SubmitResult
	// Err, when set, is returned instead of a result.
	Err error
}

// NewSettlementClient creates a new stub settlement client.
func NewSettlementClient() *SettlementClient {
	return &SettlementClient{}
}

// SubmitSettlement records the payload and returns the configured result.
func (c *SettlementClient) SubmitSettlement(_ context.Context, payload interface{}) (*chain.SubmitResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	c.Submitted = append(c.Submitted, payload)
	if c.Result != nil {
		cp := *c.Result
		return &cp, nil
	}
	return &chain.SubmitResult{TxHash: "stubtx", Code: 0}, nil
}

// WSClient implements chain.WSClient for testing.
type WSClient struct {
	mu         sync.Mutex
	Ch         chan chain.PoolNotification
	Subscribed []string
	closed     bool
}

// NewWSClient creates a new stub WebSocket client.
func NewWSClient() *WSClient {
	return &WSClient{Ch: make(chan chain.PoolNotification, 64)}
}

// SubscribePools records the subscription and returns the notification channel.
func (c *WSClient) SubscribePools(_ context.Context, pools []string) (<-chan chain.PoolNotification, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Subscribed = append([]string(nil), pools...)
	return c.Ch, nil
}

// Notify pushes a notification to subscribers.
func (c *WSClient) Notify(n chain.PoolNotification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.Ch <- n
}

// Close closes the notification channel.
func (c *WSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Ch)
	}
	return nil
}

var (
	_ chain.QueryClient      = (*QueryClient)(nil)
	_ chain.SettlementClient = (*SettlementClient)(nil)
	_ chain.WSClient         = (*WSClient)(nil)
)
