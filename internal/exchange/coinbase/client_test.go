package coinbase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm-crypto-agent/internal/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, "key", "secret")
	require.NoError(t, err)
	return c
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New("", "", "")
	require.ErrorIs(t, err, types.ErrAuthConfig)

	_, err = New("", "key", "")
	require.ErrorIs(t, err, types.ErrAuthConfig)
}

func TestAccounts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/brokerage/accounts", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("CB-ACCESS-KEY"))
		_, _ = w.Write([]byte(`{"accounts":[
			{"currency":"USDC","available_balance":{"value":"512.25","currency":"USDC"}},
			{"currency":"ADA","available_balance":{"value":"100","currency":"ADA"}},
			{"currency":"BAD","available_balance":{"value":"not-a-number","currency":"BAD"}}
		]}`))
	})

	accounts, err := c.Accounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, types.AccountBalance{Asset: "USDC", Available: 512.25}, accounts[0])
	assert.Equal(t, types.AccountBalance{Asset: "ADA", Available: 100}, accounts[1])
}

func TestPrice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/brokerage/products/ADA-USDC", r.URL.Path)
		_, _ = w.Write([]byte(`{"product_id":"ADA-USDC","price":"0.4525"}`))
	})

	p, err := c.Price(context.Background(), "ADA-USDC")
	require.NoError(t, err)
	assert.InDelta(t, 0.4525, p, 1e-9)
}

func TestMarketBuySendsQuoteSize(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "client-token-1", req["client_order_id"])
		assert.Equal(t, "BUY", req["side"])

		ioc := req["order_configuration"].(map[string]any)["market_market_ioc"].(map[string]any)
		assert.Equal(t, "120.50", ioc["quote_size"])

		_, _ = w.Write([]byte(`{"success":true,"order_id":"ord-1","order_status":"FILLED",
			"fills":[{"size":"266.0","price":"0.4529"}]}`))
	})

	res, err := c.MarketBuy(context.Background(), "ADA-USDC", 120.5, "client-token-1")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "ord-1", res.OrderID)
	assert.InDelta(t, 266.0, res.FilledSize, 1e-9)
	assert.InDelta(t, 0.4529, res.AvgPrice, 1e-9)
}

func TestMarketSellSendsBaseSize(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "SELL", req["side"])

		ioc := req["order_configuration"].(map[string]any)["market_market_ioc"].(map[string]any)
		assert.Equal(t, "0.50000000", ioc["base_size"])

		_, _ = w.Write([]byte(`{"success":true,"success_response":{"order_id":"ord-2"}}`))
	})

	res, err := c.MarketSell(context.Background(), "ETH-USDC", 0.5, "client-token-2")
	require.NoError(t, err)
	assert.Equal(t, "ord-2", res.OrderID)
	assert.Equal(t, "FILLED", res.Status)
}

func TestOrderFailureIsTyped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"order_status":"REJECTED",
			"error_response":{"message":"insufficient funds"}}`))
	})

	_, err := c.MarketBuy(context.Background(), "ADA-USDC", 50, "client-token-3")
	require.Error(t, err)

	var orderErr *types.OrderFailedError
	require.True(t, errors.As(err, &orderErr))
	assert.Equal(t, "REJECTED", orderErr.Status)
	assert.Contains(t, orderErr.Message, "insufficient funds")
}

func TestClientErrorIsNotRetried(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
	})

	_, err := c.Price(context.Background(), "ADA-USDC")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "coinbase http 400")
	assert.Equal(t, 1, calls)
}

func TestServerErrorIsRetried(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "upstream", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"product_id":"ADA-USDC","price":"1.00"}`))
	})

	p, err := c.Price(context.Background(), "ADA-USDC")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, p, 1e-9)
	assert.Equal(t, 3, calls)
}
