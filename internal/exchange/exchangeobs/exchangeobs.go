package exchangeobs

import (
	"context"

	"llm-crypto-agent/internal/interfaces"
	"llm-crypto-agent/internal/logger"
	"llm-crypto-agent/internal/trace"
	"llm-crypto-agent/internal/types"
)

// observableExchange wraps an Exchange with logging and tracing.
type observableExchange struct {
	exchange interfaces.Exchange
}

// Compile-time interface check
var _ interfaces.Exchange = (*observableExchange)(nil)

// Wrap wraps an exchange with observability middleware.
func Wrap(exchange interfaces.Exchange) interfaces.Exchange {
	return &observableExchange{exchange: exchange}
}

func (o *observableExchange) Accounts(ctx context.Context) ([]types.AccountBalance, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.Accounts")
	defer span.End()

	accounts, err := o.exchange.Accounts(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch accounts", err)
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "Accounts fetched", "count", len(accounts))
	return accounts, nil
}

func (o *observableExchange) Price(ctx context.Context, productID string) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.Price")
	defer span.End()

	price, err := o.exchange.Price(ctx, productID)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch price", err, "product_id", productID)
		return 0, err
	}
	logger.DebugSkip(ctx, 1, "Price fetched", "product_id", productID, "price", price)
	return price, nil
}

func (o *observableExchange) MarketBuy(ctx context.Context, productID string, quoteUSDC float64, clientOrderID string) (types.OrderResult, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.MarketBuy")
	defer span.End()

	res, err := o.exchange.MarketBuy(ctx, productID, quoteUSDC, clientOrderID)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Buy order failed", err,
			"product_id", productID, "quote_usdc", quoteUSDC, "client_order_id", clientOrderID)
		return types.OrderResult{}, err
	}
	logger.InfoSkip(ctx, 1, "Buy order placed",
		"product_id", productID, "quote_usdc", quoteUSDC,
		"order_id", res.OrderID, "status", res.Status)
	return res, nil
}

func (o *observableExchange) MarketSell(ctx context.Context, productID string, baseSize float64, clientOrderID string) (types.OrderResult, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.MarketSell")
	defer span.End()

	res, err := o.exchange.MarketSell(ctx, productID, baseSize, clientOrderID)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Sell order failed", err,
			"product_id", productID, "base_size", baseSize, "client_order_id", clientOrderID)
		return types.OrderResult{}, err
	}
	logger.InfoSkip(ctx, 1, "Sell order placed",
		"product_id", productID, "base_size", baseSize,
		"order_id", res.OrderID, "status", res.Status)
	return res, nil
}
