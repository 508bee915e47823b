package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tokenContract  = "0xdAC17F958D2ee523a2206206994597C13D831ec7"
	gatewayAddress = "0x1f9C1Efa5dDe1CB8a1f81BbD9a6ecd1a9B515E5a"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(&ChainConfig{
		RPCUrl:         server.URL,
		TokenContract:  tokenContract,
		GatewayAddress: gatewayAddress,
		RequestTimeout: 5,
	})
	return client, server
}

func decodeRPCRequest(t *testing.T, r *http.Request) rpcRequest {
	t.Helper()
	req := rpcRequest{}
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	return req
}

func TestGetDecimals(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		req := decodeRPCRequest(t, r)
		assert.Equal(t, "eth_call", req.Method)
		fmt.Fprint(w, `{"jsonrpc": "2.0", "id": 1, "result": "0x0000000000000000000000000000000000000000000000000000000000000006"}`)
	})
	defer server.Close()

	decimals, err := client.GetDecimals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(6), decimals)
}

func TestGetBalanceEncodesAddress(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		req := decodeRPCRequest(t, r)
		require.Equal(t, "eth_call", req.Method)

		params, err := json.Marshal(req.Params[0])
		require.NoError(t, err)
		call := callParams{}
		require.NoError(t, json.Unmarshal(params, &call))
		assert.Equal(t, tokenContract, call.To)
		assert.Equal(t, selectorBalanceOf+"0000000000000000000000001f9c1efa5dde1cb8a1f81bbd9a6ecd1a9b515e5a", call.Data)

		fmt.Fprint(w, `{"jsonrpc": "2.0", "id": 1, "result": "0x2540be400"}`)
	})
	defer server.Close()

	balance, err := client.GetBalance(context.Background(), gatewayAddress)
	require.NoError(t, err)
	assert.Equal(t, "10000000000", balance.String())
}

func TestTransferEncodesCalldata(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		req := decodeRPCRequest(t, r)
		require.Equal(t, "eth_sendTransaction", req.Method)

		params, err := json.Marshal(req.Params[0])
		require.NoError(t, err)
		call := callParams{}
		require.NoError(t, json.Unmarshal(params, &call))
		assert.Equal(t, gatewayAddress, call.From)
		assert.Equal(t, tokenContract, call.To)
		// transfer(to, 1000000)
		assert.Equal(t,
			selectorTransfer+
				"0000000000000000000000001f9c1efa5dde1cb8a1f81bbd9a6ecd1a9b515e5a"+
				"00000000000000000000000000000000000000000000000000000000000f4240",
			call.Data)

		fmt.Fprint(w, `{"jsonrpc": "2.0", "id": 1, "result": "0xdeadbeef"}`)
	})
	defer server.Close()

	txID, err := client.Transfer(context.Background(), gatewayAddress, big.NewInt(1000000))
	require.NoError(t, err)
	assert.Equal(t, "0xdeadbeef", txID)
}

func TestTransferRejectsInvalidAddress(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an invalid address")
	})
	defer server.Close()

	_, err := client.Transfer(context.Background(), "not-an-address", big.NewInt(1))
	assert.Error(t, err)
}

func TestRequestSurfacesNodeError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"jsonrpc": "2.0", "id": 1, "error": {"code": -32000, "message": "header not found"}}`)
	})
	defer server.Close()

	_, err := client.GetDecimals(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header not found")
}

func TestResolveDecimalsFallsBack(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	decimals, err := client.ResolveDecimals(ctx, 18)
	assert.Error(t, err)
	assert.Equal(t, int32(18), decimals)
}

func TestIsValidAddress(t *testing.T) {
	assert.True(t, IsValidAddress(gatewayAddress))
	assert.True(t, IsValidAddress("0x"+"00000000000000000000000000000000000000ff"))
	assert.False(t, IsValidAddress(""))
	assert.False(t, IsValidAddress("1f9C1Efa5dDe1CB8a1f81BbD9a6ecd1a9B515E5a"))
	assert.False(t, IsValidAddress("0xzz9C1Efa5dDe1CB8a1f81BbD9a6ecd1a9B515E5a"))
	assert.False(t, IsValidAddress("0x1f9C1E"))
}
