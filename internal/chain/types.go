// Package chain talks to the authoritative on-chain program: state
// queries, settlement submission, and pool-change notifications.
//
// Every query kind has its own explicit response type, decided here at
// the collaborator boundary; callers never infer meaning from payload
// shape. All amounts cross the boundary as integer base units encoded
// as decimal strings.
package chain

import "context"

// PoolState is the reserve-query response for one pool.
type PoolState struct {
	Pool           string `json:"pool"`
	AssetA         string `json:"asset_a"`
	AssetB         string `json:"asset_b"`
	ReserveA       string `json:"reserve_a"`         // base units, decimal string
	ReserveB       string `json:"reserve_b"`         // base units, decimal string
	ProtocolFeeBps uint32 `json:"protocol_fee_bps"`  // 0..10000
	BlockTime      int64  `json:"block_time"`        // Unix seconds
}

// UnbondingEntry is one pending unbonding request in a user-info
// response.
type UnbondingEntry struct {
	Amount    string `json:"amount"`     // base units, decimal string
	StartTime int64  `json:"start_time"` // Unix seconds
}

// UserInfo is the user-info-query response for one identity and pool.
type UserInfo struct {
	Owner            string           `json:"owner"`
	Pool             string           `json:"pool,omitempty"`
	StakedShares     string           `json:"staked_shares"`
	UnbondingEntries []UnbondingEntry `json:"unbonding_entries"`
	PendingRewards   string           `json:"pending_rewards"`
	LastAccrual      int64            `json:"last_accrual"` // Unix seconds
}

// StakeState is the global staking-state response.
type StakeState struct {
	TotalStaked       string `json:"total_staked"`        // base units, decimal string
	EmissionPerSecond string `json:"emission_per_second"` // base units, decimal string
	BlockTime         int64  `json:"block_time"`          // Unix seconds
}

// SubmitResult is the settlement-submission response. A non-zero Code
// means the authoritative program declined the transaction; RawLog
// carries its reason verbatim.
type SubmitResult struct {
	TxHash string `json:"tx_hash"`
	Code   int    `json:"code"`
	RawLog string `json:"raw_log"`
}

// QueryClient reads authoritative state. Every call is a single-shot
// request bounded by the caller's context; there is no implicit retry.
type QueryClient interface {
	PoolState(ctx context.Context, pool string) (*PoolState, error)
	UserInfo(ctx context.Context, owner, pool string) (*UserInfo, error)
	StakeState(ctx context.Context) (*StakeState, error)
}

// SettlementClient submits signed settlement requests. Submission is
// single-shot; rejection surfaces through the result, never through a
// retry.
type SettlementClient interface {
	SubmitSettlement(ctx context.Context, payload interface{}) (*SubmitResult, error)
}
