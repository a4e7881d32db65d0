package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"llm-crypto-agent/internal/types"
)

func TestRegisterTradeKeepsInvariants(t *testing.T) {
	l := New()

	deltas := []float64{-200, 210, -50, 75.5, -10.25}
	var want float64
	for i, d := range deltas {
		l.RegisterTrade(types.TradeRecord{OrderID: "o", NetDeltaUSDC: d})
		want += d

		assert.Equal(t, i+1, l.TransactionCount())
		assert.Len(t, l.History(), i+1)
		assert.InDelta(t, want, l.NetProfit(), 1e-9)
	}
}

func TestEmptyLedger(t *testing.T) {
	l := New()
	assert.Zero(t, l.TransactionCount())
	assert.Zero(t, l.NetProfit())
	assert.Empty(t, l.History())
}

func TestHistoryIsACopy(t *testing.T) {
	l := New()
	l.RegisterTrade(types.TradeRecord{OrderID: "a", NetDeltaUSDC: 1})

	h := l.History()
	h[0].OrderID = "mutated"
	h[0].NetDeltaUSDC = 999

	assert.Equal(t, "a", l.History()[0].OrderID)
	assert.InDelta(t, 1.0, l.NetProfit(), 1e-9)
}

func TestHistoryPreservesOrder(t *testing.T) {
	l := New()
	for _, id := range []string{"first", "second", "third"} {
		l.RegisterTrade(types.TradeRecord{OrderID: id})
	}

	h := l.History()
	assert.Equal(t, "first", h[0].OrderID)
	assert.Equal(t, "second", h[1].OrderID)
	assert.Equal(t, "third", h[2].OrderID)
}
