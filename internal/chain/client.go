package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"amm-settlement-lab/internal/observability"
)

// DefaultTimeout bounds a single query or submission when the caller's
// context carries no earlier deadline.
const DefaultTimeout = 30 * time.Second

// HTTPClient implements QueryClient and SettlementClient over HTTP
// JSON-RPC 2.0. Calls are single-shot: a transport failure or timeout
// surfaces to the caller, who decides whether to re-quote and retry.
type HTTPClient struct {
	endpoint  string
	client    *http.Client
	requestID atomic.Uint64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a chain client for the given endpoint.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      uint64      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// call performs one JSON-RPC call. No retries: the quote-then-bound-
// then-submit contract requires failures to surface so the caller can
// re-quote against fresh state instead of silently re-sending.
func (c *HTTPClient) call(ctx context.Context, method string, params, result interface{}) error {
	start := time.Now()
	defer func() {
		observability.RecordRPCLatency(method, time.Since(start).Seconds())
	}()

	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("unmarshal result: %w", err)
		}
	}
	return nil
}

// poolStateParams identifies a pool in a reserve query.
type poolStateParams struct {
	Pool string `json:"pool"`
}

// PoolState queries the current reserves and fee of a pool.
func (c *HTTPClient) PoolState(ctx context.Context, pool string) (*PoolState, error) {
	if err := ValidateAddress(pool); err != nil {
		return nil, err
	}
	var result PoolState
	if err := c.call(ctx, "query_pool_state", poolStateParams{Pool: pool}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// userInfoParams identifies an owner (and optionally a pool) in a
// user-info query.
type userInfoParams struct {
	Owner string `json:"owner"`
	Pool  string `json:"pool,omitempty"`
}

// UserInfo queries an identity's staked shares, unbonding entries, and
// pending rewards. pool may be empty for the global stake position.
func (c *HTTPClient) UserInfo(ctx context.Context, owner, pool string) (*UserInfo, error) {
	if err := ValidateAddress(owner); err != nil {
		return nil, err
	}
	var result UserInfo
	if err := c.call(ctx, "query_user_info", userInfoParams{Owner: owner, Pool: pool}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// StakeState queries the global total stake and emission rate.
func (c *HTTPClient) StakeState(ctx context.Context) (*StakeState, error) {
	var result StakeState
	if err := c.call(ctx, "query_stake_state", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SubmitSettlement submits one settlement request payload. The result
// carries the program's verdict; a rejection is returned in the result
// verbatim, never retried here.
func (c *HTTPClient) SubmitSettlement(ctx context.Context, payload interface{}) (*SubmitResult, error) {
	var result SubmitResult
	if err := c.call(ctx, "submit_settlement", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

var (
	_ QueryClient      = (*HTTPClient)(nil)
	_ SettlementClient = (*HTTPClient)(nil)
)
