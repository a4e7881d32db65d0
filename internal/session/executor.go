package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"llm-crypto-agent/internal/interfaces"
	"llm-crypto-agent/internal/types"
)

// executor turns an approved decision into exchange orders and a normalized
// trade record. Called only after validation accepts.
type executor struct {
	exchange interfaces.Exchange
	now      func() time.Time
	newToken func() string
}

func newExecutor(exchange interfaces.Exchange) executor {
	return executor{exchange: exchange, now: time.Now, newToken: uuid.NewString}
}

// Execute places the order with a fresh idempotency token so a retry by the
// exchange cannot double-execute. Net delta books the committed capital:
// -amount on buy, +amount on sell, regardless of how much of the IOC order
// actually filled.
func (e executor) Execute(ctx context.Context, d types.Decision, productID string) (types.TradeRecord, error) {
	amount := d.Amount()
	token := e.newToken()

	var (
		result   types.OrderResult
		netDelta float64
		err      error
	)
	switch d.Action {
	case types.ActionBuy:
		result, err = e.exchange.MarketBuy(ctx, productID, amount, token)
		netDelta = -amount
	case types.ActionSell:
		var price float64
		price, err = e.exchange.Price(ctx, productID)
		if err != nil {
			return types.TradeRecord{}, err
		}
		if price <= 0 {
			return types.TradeRecord{}, fmt.Errorf("non-positive price %v for %s", price, productID)
		}
		result, err = e.exchange.MarketSell(ctx, productID, amount/price, token)
		netDelta = amount
	default:
		return types.TradeRecord{}, fmt.Errorf("executor called with action %q", d.Action)
	}
	if err != nil {
		return types.TradeRecord{}, err
	}
	if !result.Success {
		return types.TradeRecord{}, &types.OrderFailedError{ProductID: productID, Status: result.Status, Message: "exchange reported unsuccessful order"}
	}

	return types.TradeRecord{
		OrderID:      result.OrderID,
		Status:       result.Status,
		ProductID:    productID,
		Action:       d.Action,
		AmountUSDC:   amount,
		FilledSize:   result.FilledSize,
		AvgPrice:     result.AvgPrice,
		NetDeltaUSDC: netDelta,
		Timestamp:    e.now().UTC(),
	}, nil
}
