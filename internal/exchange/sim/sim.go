// Package sim is a deterministic in-memory Exchange used for DRY_RUN
// sessions and as the test double for the session controller. Orders settle
// instantly at the configured price and move the simulated balances.
package sim

import (
	"context"
	"fmt"
	"sync"

	"llm-crypto-agent/internal/types"
)

type Exchange struct {
	mu       sync.Mutex
	balances map[string]float64
	prices   map[string]float64
	orderSeq int

	// Fault injection hooks for tests; nil means no fault.
	AccountsErr error
	PriceErr    error
	OrderErr    error
	// RejectOrders makes every order come back with a non-success status.
	RejectOrders bool
}

// New seeds the simulated account balances and product prices. Maps are
// copied; the caller's values are not shared.
func New(balances map[string]float64, prices map[string]float64) *Exchange {
	e := &Exchange{
		balances: make(map[string]float64, len(balances)),
		prices:   make(map[string]float64, len(prices)),
	}
	for k, v := range balances {
		e.balances[k] = v
	}
	for k, v := range prices {
		e.prices[k] = v
	}
	return e
}

func (e *Exchange) Accounts(context.Context) ([]types.AccountBalance, error) {
	if e.AccountsErr != nil {
		return nil, e.AccountsErr
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]types.AccountBalance, 0, len(e.balances))
	for asset, avail := range e.balances {
		out = append(out, types.AccountBalance{Asset: asset, Available: avail})
	}
	return out, nil
}

func (e *Exchange) Price(_ context.Context, productID string) (float64, error) {
	if e.PriceErr != nil {
		return 0, e.PriceErr
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.prices[productID]
	if !ok {
		return 0, fmt.Errorf("sim: no price for %s", productID)
	}
	return p, nil
}

// SetPrice changes a product price mid-session.
func (e *Exchange) SetPrice(productID string, price float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prices[productID] = price
}

// Balance returns the current simulated balance for an asset.
func (e *Exchange) Balance(asset string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.balances[asset]
}

func (e *Exchange) MarketBuy(ctx context.Context, productID string, quoteUSDC float64, clientOrderID string) (types.OrderResult, error) {
	price, err := e.orderPrice(productID)
	if err != nil {
		return types.OrderResult{}, err
	}
	if e.RejectOrders {
		return types.OrderResult{}, &types.OrderFailedError{ProductID: productID, Status: "REJECTED", Message: "sim: orders rejected"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	base := types.BaseAsset(productID)
	size := quoteUSDC / price
	e.balances[types.QuoteAsset] -= quoteUSDC
	e.balances[base] += size

	return types.OrderResult{
		OrderID:    e.nextOrderID(clientOrderID),
		Status:     "FILLED",
		Success:    true,
		FilledSize: size,
		AvgPrice:   price,
	}, nil
}

func (e *Exchange) MarketSell(ctx context.Context, productID string, baseSize float64, clientOrderID string) (types.OrderResult, error) {
	price, err := e.orderPrice(productID)
	if err != nil {
		return types.OrderResult{}, err
	}
	if e.RejectOrders {
		return types.OrderResult{}, &types.OrderFailedError{ProductID: productID, Status: "REJECTED", Message: "sim: orders rejected"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	base := types.BaseAsset(productID)
	e.balances[base] -= baseSize
	e.balances[types.QuoteAsset] += baseSize * price

	return types.OrderResult{
		OrderID:    e.nextOrderID(clientOrderID),
		Status:     "FILLED",
		Success:    true,
		FilledSize: baseSize,
		AvgPrice:   price,
	}, nil
}

func (e *Exchange) orderPrice(productID string) (float64, error) {
	if e.OrderErr != nil {
		return 0, e.OrderErr
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.prices[productID]
	if !ok {
		return 0, fmt.Errorf("sim: no price for %s", productID)
	}
	return p, nil
}

// nextOrderID must be called with e.mu held.
func (e *Exchange) nextOrderID(clientOrderID string) string {
	e.orderSeq++
	return fmt.Sprintf("sim-%d-%s", e.orderSeq, clientOrderID)
}
