package interfaces

import (
	"context"

	"llm-crypto-agent/internal/types"
)

type Exchange interface {
	Accounts(ctx context.Context) ([]types.AccountBalance, error)
	Price(ctx context.Context, productID string) (float64, error)
	MarketBuy(ctx context.Context, productID string, quoteUSDC float64, clientOrderID string) (types.OrderResult, error)
	MarketSell(ctx context.Context, productID string, baseSize float64, clientOrderID string) (types.OrderResult, error)
}
