package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ERC-20 function selectors
const (
	selectorDecimals  = "0x313ce567"
	selectorBalanceOf = "0x70a08231"
	selectorTransfer  = "0xa9059cbb"
)

type Client struct {
	config     *ChainConfig
	httpClient *http.Client
	requestID  int64
}

func NewClient(config *ChainConfig) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.RequestTimeout) * time.Second,
		},
	}
}

var _ TokenClient = (*Client)(nil)

type rpcRequest struct {
	JsonRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int64         `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type callParams struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	Data string `json:"data"`
}

func (client *Client) GetDecimals(ctx context.Context) (int32, error) {
	result, err := client.ethCall(ctx, selectorDecimals)
	if err != nil {
		return 0, err
	}
	decimals, ok := new(big.Int).SetString(strings.TrimPrefix(result, "0x"), 16)
	if !ok {
		return 0, fmt.Errorf("malformed decimals() result %q", result)
	}
	return int32(decimals.Int64()), nil
}

// ResolveDecimals retries the startup metadata read with exponential backoff.
// On final failure the caller falls back to a configured default, degraded
// but available.
func (client *Client) ResolveDecimals(ctx context.Context, fallback int32) (int32, error) {
	var decimals int32
	expontentialBackoff := backoff.NewExponentialBackOff()
	expontentialBackoff.MaxElapsedTime = 30 * time.Second
	err := backoff.Retry(func() error {
		result, err := client.GetDecimals(ctx)
		if err != nil {
			return err
		}
		decimals = result
		return nil
	}, backoff.WithContext(expontentialBackoff, ctx))
	if err != nil {
		return fallback, err
	}
	return decimals, nil
}

func (client *Client) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	addressWord, err := encodeAddress(address)
	if err != nil {
		return nil, err
	}
	result, err := client.ethCall(ctx, selectorBalanceOf+addressWord)
	if err != nil {
		return nil, err
	}
	balance, ok := new(big.Int).SetString(strings.TrimPrefix(result, "0x"), 16)
	if !ok {
		return nil, fmt.Errorf("malformed balanceOf() result %q", result)
	}
	return balance, nil
}

// Transfer submits a token transfer from the gateway account, signed by the
// node. Fire and forget: the returned transaction id is not tracked further.
func (client *Client) Transfer(ctx context.Context, toAddress string, amountBase *big.Int) (string, error) {
	addressWord, err := encodeAddress(toAddress)
	if err != nil {
		return "", err
	}
	data := selectorTransfer + addressWord + encodeUint256(amountBase)
	var txID string
	err = client.Request(ctx, "eth_sendTransaction", []interface{}{callParams{
		From: client.config.GatewayAddress,
		To:   client.config.TokenContract,
		Data: data,
	}}, &txID)
	if err != nil {
		return "", err
	}
	return txID, nil
}

func (client *Client) ethCall(ctx context.Context, data string) (string, error) {
	var result string
	err := client.Request(ctx, "eth_call", []interface{}{callParams{
		To:   client.config.TokenContract,
		Data: data,
	}, "latest"}, &result)
	return result, err
}

func (client *Client) Request(ctx context.Context, method string, params []interface{}, result interface{}) error {
	payload, err := json.Marshal(rpcRequest{
		JsonRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      atomic.AddInt64(&client.requestID, 1),
	})
	if err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, client.config.RPCUrl, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := client.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Got a bad http response status code from the node %d for method %s", resp.StatusCode, method)
	}
	rpcResp := rpcResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return err
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("node error response for %s: %s (code %d)", method, rpcResp.Error.Message, rpcResp.Error.Code)
	}
	return json.Unmarshal(rpcResp.Result, result)
}

// IsValidAddress reports whether s looks like a 0x-prefixed 20 byte hex
// address. Checksum casing is not enforced: the feed reports addresses in
// mixed casings and all comparisons are case-insensitive anyway.
func IsValidAddress(s string) bool {
	if len(s) != 42 || !strings.HasPrefix(s, "0x") {
		return false
	}
	for _, r := range s[2:] {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') && (r < 'A' || r > 'F') {
			return false
		}
	}
	return true
}

func encodeAddress(address string) (string, error) {
	if !IsValidAddress(address) {
		return "", fmt.Errorf("invalid address %q", address)
	}
	return fmt.Sprintf("%064s", strings.ToLower(strings.TrimPrefix(address, "0x"))), nil
}

func encodeUint256(value *big.Int) string {
	return fmt.Sprintf("%064s", value.Text(16))
}
