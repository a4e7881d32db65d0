package session

import (
	"context"
	"fmt"
	"strings"

	"llm-crypto-agent/internal/interfaces"
	"llm-crypto-agent/internal/types"
)

// Rejection is the validator saying no. It is a normal control-flow outcome,
// not an error: the reason is the audit signal separating "oracle proposed
// something unsafe" from "system malfunction".
type Rejection struct {
	Reason string
}

// validator applies the risk rules to a proposed buy or sell. Rules run in a
// fixed order and the first failure wins; live balances and prices are
// fetched fresh from the exchange, never taken from the cycle's snapshot.
type validator struct {
	constraints types.ConstraintSet
	exchange    interfaces.Exchange
}

// Validate returns a Rejection when a rule fails, or an error when the
// exchange could not be consulted (cycle-fatal, per the no-silent-retry
// rule). Both nil means the decision is approved.
func (v validator) Validate(ctx context.Context, d types.Decision, productID string, txCount int) (*Rejection, error) {
	base := types.BaseAsset(productID)

	if v.constraints.Forbidden(base) {
		return &Rejection{Reason: fmt.Sprintf("Product %s is forbidden.", productID)}, nil
	}

	if txCount >= v.constraints.MaxTransactions {
		return &Rejection{Reason: stopMaxTransactions}, nil
	}

	if d.Action != types.ActionBuy && d.Action != types.ActionSell {
		return &Rejection{Reason: fmt.Sprintf("Unsupported action: %s", d.Action)}, nil
	}

	if d.AmountUSDC == nil || *d.AmountUSDC <= 0 {
		return &Rejection{Reason: "Invalid trade size specified."}, nil
	}
	amount := *d.AmountUSDC

	if d.Action == types.ActionBuy {
		if amount > v.constraints.MaxPurchaseUSDC {
			return &Rejection{Reason: fmt.Sprintf(
				"Buy size %.2f USDC exceeds max purchase limit %.2f USDC.", amount, v.constraints.MaxPurchaseUSDC)}, nil
		}

		balance, err := v.availableBalance(ctx, types.QuoteAsset)
		if err != nil {
			return nil, err
		}
		if amount > balance {
			return &Rejection{Reason: fmt.Sprintf(
				"Insufficient USDC balance for purchase. Need %.2f, have %.2f.", amount, balance)}, nil
		}
		return nil, nil
	}

	// Sell: the base holding must cover the requested USDC value at the
	// current price.
	price, err := v.exchange.Price(ctx, productID)
	if err != nil {
		return nil, err
	}
	if price <= 0 {
		return nil, fmt.Errorf("non-positive price %v for %s", price, productID)
	}

	held, err := v.availableBalance(ctx, base)
	if err != nil {
		return nil, err
	}

	requiredBase := amount / price
	if requiredBase > held {
		return &Rejection{Reason: fmt.Sprintf(
			"Insufficient %s balance for sale. Need %.8f, have %.8f.", base, requiredBase, held)}, nil
	}
	return nil, nil
}

// availableBalance fetches the live balance of one asset.
func (v validator) availableBalance(ctx context.Context, asset string) (float64, error) {
	accounts, err := v.exchange.Accounts(ctx)
	if err != nil {
		return 0, err
	}
	for _, a := range accounts {
		if strings.EqualFold(a.Asset, asset) {
			return a.Available, nil
		}
	}
	return 0, nil
}
