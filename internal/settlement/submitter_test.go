package settlement

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amm-settlement-lab/internal/chain"
	"amm-settlement-lab/internal/chain/stub"
	"amm-settlement-lab/internal/domain"
	"amm-settlement-lab/internal/observability"
)

func TestSubmitter_Accepted(t *testing.T) {
	client := stub.NewSettlementClient()
	client.Result = &chain.SubmitResult{TxHash: "deadbeef", Code: 0}
	sub := NewSubmitter(client)

	req := NewSwapRequest("hub-usdx", "HUB", big.NewInt(10000000), big.NewInt(491111))
	hash, err := sub.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", hash)
	require.Len(t, client.Submitted, 1)

	got, ok := client.Submitted[0].(SwapRequest)
	require.True(t, ok)
	assert.Equal(t, "swap", got.Kind)
	assert.Equal(t, "10000000", got.AmountIn)
	assert.Equal(t, "491111", got.MinimumReceived)
	assert.Empty(t, got.HopTarget)
}

func TestSubmitter_Rejected(t *testing.T) {
	client := stub.NewSettlementClient()
	client.Result = &chain.SubmitResult{
		TxHash: "cafe",
		Code:   5,
		RawLog: "execution would breach minimum_received",
	}
	sub := NewSubmitter(client)

	_, err := sub.Submit(context.Background(), NewClaimRewardsRequest())
	require.Error(t, err)

	var rej *domain.SettlementRejectedError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, 5, rej.Code)
	assert.Equal(t, "execution would breach minimum_received", rej.RawLog)
	assert.Equal(t, "cafe", rej.TxHash)
	assert.ErrorIs(t, err, domain.ErrSettlementRejected)
}

func TestSubmitter_TransportError(t *testing.T) {
	client := stub.NewSettlementClient()
	client.Err = errors.New("connection refused")
	sub := NewSubmitter(client)

	_, err := sub.Submit(context.Background(), NewStakeRequest(big.NewInt(1)))
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSettlementRejected)
	assert.Empty(t, client.Submitted, "nothing may be recorded as submitted on transport failure")
}

func TestSubmitter_RecordsMetrics(t *testing.T) {
	submitted := observability.DefaultMetrics.SettlementsSubmitted.WithLabelValues("swap")
	rejected := observability.DefaultMetrics.SettlementsRejected.WithLabelValues("swap", "5")
	submittedBefore := testutil.ToFloat64(submitted)
	rejectedBefore := testutil.ToFloat64(rejected)

	client := stub.NewSettlementClient()
	sub := NewSubmitter(client)
	req := NewSwapRequest("hub-usdx", "HUB", big.NewInt(1), big.NewInt(1))

	_, err := sub.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, submittedBefore+1, testutil.ToFloat64(submitted))
	assert.Equal(t, rejectedBefore, testutil.ToFloat64(rejected))

	client.Result = &chain.SubmitResult{TxHash: "x", Code: 5, RawLog: "rejected"}
	_, err = sub.Submit(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, submittedBefore+2, testutil.ToFloat64(submitted))
	assert.Equal(t, rejectedBefore+1, testutil.ToFloat64(rejected))
}

func TestRequestShapes(t *testing.T) {
	swap := NewSwapRequest("p", "A", big.NewInt(5), big.NewInt(3)).WithHopTarget("C")
	assert.Equal(t, "C", swap.HopTarget)

	add := NewAddLiquidityRequest("p", big.NewInt(10000000), big.NewInt(500000))
	assert.Equal(t, "add_liquidity", add.Kind)
	assert.Equal(t, "10000000", add.AmountA)
	assert.Equal(t, "500000", add.AmountB)

	rem := NewRemoveLiquidityRequest("p", big.NewInt(2500000))
	assert.Equal(t, "remove_liquidity", rem.Kind)
	assert.Equal(t, "2500000", rem.ShareAmount)

	claim := NewClaimUnbondedRequest("p")
	assert.Equal(t, "claim_unbonded", claim.Kind)

	cancel := NewCancelUnbondRequest("p", 1700000000)
	assert.Equal(t, "cancel_unbond", cancel.Kind)
	assert.Equal(t, int64(1700000000), cancel.StartTime)

	unstake := NewUnstakeRequest(big.NewInt(7))
	assert.Equal(t, "unstake", unstake.Kind)
	assert.Equal(t, "7", unstake.Amount)
}
