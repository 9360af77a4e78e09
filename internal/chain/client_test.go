package chain

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"amm-settlement-lab/internal/observability"
)

// testPool decodes to 32 zero bytes, a valid curve point encoding.
const testPool = "11111111111111111111111111111111"

func TestHTTPClient_PoolState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		if req.Method != "query_pool_state" {
			t.Errorf("expected method query_pool_state, got %s", req.Method)
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"pool":             testPool,
				"asset_a":          "HUB",
				"asset_b":          "USDX",
				"reserve_a":        "1000000000",
				"reserve_b":        "50000000",
				"protocol_fee_bps": 30,
				"block_time":       int64(1700000000),
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	ctx := context.Background()

	st, err := client.PoolState(ctx, testPool)
	if err != nil {
		t.Fatalf("PoolState: %v", err)
	}

	if st.ReserveA != "1000000000" {
		t.Errorf("expected reserve_a 1000000000, got %s", st.ReserveA)
	}
	if st.ReserveB != "50000000" {
		t.Errorf("expected reserve_b 50000000, got %s", st.ReserveB)
	}
	if st.ProtocolFeeBps != 30 {
		t.Errorf("expected fee 30 bps, got %d", st.ProtocolFeeBps)
	}
	if st.BlockTime != 1700000000 {
		t.Errorf("expected block_time 1700000000, got %d", st.BlockTime)
	}
}

func TestHTTPClient_PoolState_InvalidAddress(t *testing.T) {
	client := NewHTTPClient("http://unused")
	if _, err := client.PoolState(context.Background(), "not-base58!"); err == nil {
		t.Fatal("expected error for malformed pool address")
	}
}

func TestHTTPClient_UserInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		if req.Method != "query_user_info" {
			t.Errorf("expected method query_user_info, got %s", req.Method)
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"owner":         testPool,
				"pool":          testPool,
				"staked_shares": "2500000",
				"unbonding_entries": []map[string]interface{}{
					{"amount": "100000", "start_time": int64(1699000000)},
				},
				"pending_rewards": "42",
				"last_accrual":    int64(1700000000),
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	info, err := client.UserInfo(context.Background(), testPool, testPool)
	if err != nil {
		t.Fatalf("UserInfo: %v", err)
	}

	if info.StakedShares != "2500000" {
		t.Errorf("expected staked_shares 2500000, got %s", info.StakedShares)
	}
	if len(info.UnbondingEntries) != 1 {
		t.Fatalf("expected 1 unbonding entry, got %d", len(info.UnbondingEntries))
	}
	if info.UnbondingEntries[0].StartTime != 1699000000 {
		t.Errorf("expected start_time 1699000000, got %d", info.UnbondingEntries[0].StartTime)
	}
}

func TestHTTPClient_StakeState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		if req.Method != "query_stake_state" {
			t.Errorf("expected method query_stake_state, got %s", req.Method)
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"total_staked":        "4000000000000",
				"emission_per_second": "1000000",
				"block_time":          int64(1700000000),
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	st, err := client.StakeState(context.Background())
	if err != nil {
		t.Fatalf("StakeState: %v", err)
	}
	if st.TotalStaked != "4000000000000" {
		t.Errorf("expected total_staked 4000000000000, got %s", st.TotalStaked)
	}
	if st.EmissionPerSecond != "1000000" {
		t.Errorf("expected emission 1000000, got %s", st.EmissionPerSecond)
	}
}

func TestHTTPClient_SubmitSettlement(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		if req.Method != "submit_settlement" {
			t.Errorf("expected method submit_settlement, got %s", req.Method)
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"tx_hash": "abc123",
				"code":    5,
				"raw_log": "slippage tolerance exceeded",
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	res, err := client.SubmitSettlement(context.Background(), map[string]string{"kind": "swap"})
	if err != nil {
		t.Fatalf("SubmitSettlement: %v", err)
	}
	if res.Code != 5 {
		t.Errorf("expected code 5, got %d", res.Code)
	}
	if res.RawLog != "slippage tolerance exceeded" {
		t.Errorf("unexpected raw_log: %s", res.RawLog)
	}
}

func TestHTTPClient_RPCError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error": map[string]interface{}{
				"code":    -32601,
				"message": "method not found",
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	_, err := client.StakeState(context.Background())
	if err == nil {
		t.Fatal("expected RPC error")
	}
	var rpcErr *rpcError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected *rpcError, got %T", err)
	}
	if rpcErr.Code != -32601 {
		t.Errorf("expected code -32601, got %d", rpcErr.Code)
	}
}

func TestHTTPClient_NoRetryOnFailure(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	if _, err := client.StakeState(context.Background()); err == nil {
		t.Fatal("expected error on 500")
	}
	if calls != 1 {
		t.Errorf("expected exactly 1 request, got %d", calls)
	}
}

func TestHTTPClient_RecordsRPCLatency(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"total_staked":        "1",
				"emission_per_second": "1",
				"block_time":          int64(1700000000),
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	if _, err := client.StakeState(context.Background()); err != nil {
		t.Fatalf("StakeState: %v", err)
	}

	// Latency children only materialize when call() observes them.
	if n := testutil.CollectAndCount(observability.DefaultMetrics.RPCCallLatency); n < 1 {
		t.Errorf("expected at least 1 rpc latency series, got %d", n)
	}
}

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{"all ones system address", "11111111111111111111111111111111", false},
		{"empty", "", true},
		{"not base58", "0OIl", true},
		{"too short", "abc", true},
		{"wrong length decoded", "2g", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.address)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAddress(%q) error = %v, wantErr %v", tt.address, err, tt.wantErr)
			}
		})
	}
}
