package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm-crypto-agent/internal/exchange/sim"
	"llm-crypto-agent/internal/types"
)

func ptr(f float64) *float64 { return &f }

func testValidator(ex *sim.Exchange) validator {
	return validator{
		constraints: types.NewConstraintSet(5*time.Hour, 50, 15, 200, []string{"SOL", "BTC"}),
		exchange:    ex,
	}
}

func TestValidateApprovesBuy(t *testing.T) {
	ex := sim.New(map[string]float64{"USDC": 500}, map[string]float64{"DOGE-USDC": 1})
	v := testValidator(ex)

	rej, err := v.Validate(context.Background(),
		types.Decision{Action: types.ActionBuy, AmountUSDC: ptr(150)}, "DOGE-USDC", 0)
	require.NoError(t, err)
	assert.Nil(t, rej)
}

func TestValidateRuleOrder(t *testing.T) {
	ex := sim.New(
		map[string]float64{"USDC": 100, "DOGE": 0.3},
		map[string]float64{"DOGE-USDC": 100, "SOL-USDC": 100},
	)
	v := testValidator(ex)

	tests := []struct {
		name      string
		decision  types.Decision
		productID string
		txCount   int
		reason    string
	}{
		{
			name:      "forbidden beats bad action",
			decision:  types.Decision{Action: "yolo", AmountUSDC: ptr(-5)},
			productID: "SOL-USDC",
			reason:    "Product SOL-USDC is forbidden.",
		},
		{
			name:      "tx cap beats bad action",
			decision:  types.Decision{Action: "yolo"},
			productID: "DOGE-USDC",
			txCount:   15,
			reason:    "Max transaction count reached.",
		},
		{
			name:      "bad action beats missing amount",
			decision:  types.Decision{Action: "short"},
			productID: "DOGE-USDC",
			reason:    "Unsupported action: short",
		},
		{
			name:      "missing amount",
			decision:  types.Decision{Action: types.ActionBuy},
			productID: "DOGE-USDC",
			reason:    "Invalid trade size specified.",
		},
		{
			name:      "zero amount",
			decision:  types.Decision{Action: types.ActionSell, AmountUSDC: ptr(0)},
			productID: "DOGE-USDC",
			reason:    "Invalid trade size specified.",
		},
		{
			name:      "buy over max purchase",
			decision:  types.Decision{Action: types.ActionBuy, AmountUSDC: ptr(250)},
			productID: "DOGE-USDC",
			reason:    "Buy size 250.00 USDC exceeds max purchase limit 200.00 USDC.",
		},
		{
			name:      "buy over balance",
			decision:  types.Decision{Action: types.ActionBuy, AmountUSDC: ptr(150)},
			productID: "DOGE-USDC",
			reason:    "Insufficient USDC balance for purchase. Need 150.00, have 100.00.",
		},
		{
			name:      "sell over holding",
			decision:  types.Decision{Action: types.ActionSell, AmountUSDC: ptr(50)},
			productID: "DOGE-USDC",
			reason:    "Insufficient DOGE balance for sale. Need 0.50000000, have 0.30000000.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rej, err := v.Validate(context.Background(), tt.decision, tt.productID, tt.txCount)
			require.NoError(t, err)
			require.NotNil(t, rej)
			assert.Equal(t, tt.reason, rej.Reason)
		})
	}
}

func TestValidateExchangeErrorIsFatal(t *testing.T) {
	ex := sim.New(map[string]float64{"USDC": 500}, map[string]float64{"DOGE-USDC": 1})
	ex.AccountsErr = errors.New("503 unavailable")
	v := testValidator(ex)

	rej, err := v.Validate(context.Background(),
		types.Decision{Action: types.ActionBuy, AmountUSDC: ptr(50)}, "DOGE-USDC", 0)
	require.Error(t, err)
	assert.Nil(t, rej)
}

func TestValidateSellPriceErrorIsFatal(t *testing.T) {
	ex := sim.New(map[string]float64{"USDC": 500, "DOGE": 10}, map[string]float64{})
	v := testValidator(ex)

	rej, err := v.Validate(context.Background(),
		types.Decision{Action: types.ActionSell, AmountUSDC: ptr(50)}, "DOGE-USDC", 0)
	require.Error(t, err)
	assert.Nil(t, rej)
}

func TestValidateSellExactHolding(t *testing.T) {
	ex := sim.New(
		map[string]float64{"USDC": 0, "DOGE": 0.5},
		map[string]float64{"DOGE-USDC": 100},
	)
	v := testValidator(ex)

	rej, err := v.Validate(context.Background(),
		types.Decision{Action: types.ActionSell, AmountUSDC: ptr(50)}, "DOGE-USDC", 0)
	require.NoError(t, err)
	assert.Nil(t, rej)
}
