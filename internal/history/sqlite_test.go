package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm-crypto-agent/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndReadTrades(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recs := []types.TradeRecord{
		{OrderID: "o1", ProductID: "DOGE-USDC", Action: "buy", Status: "FILLED", AmountUSDC: 100, NetDeltaUSDC: -100, Timestamp: base},
		{OrderID: "o2", ProductID: "DOGE-USDC", Action: "sell", Status: "FILLED", AmountUSDC: 130, NetDeltaUSDC: 130, Timestamp: base.Add(time.Minute)},
	}
	for _, rec := range recs {
		require.NoError(t, s.RecordTrade(ctx, "s1", rec))
	}

	got, err := s.SessionTrades(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "o1", got[0].OrderID)
	assert.Equal(t, "o2", got[1].OrderID)
	assert.InDelta(t, -100, got[0].NetDeltaUSDC, 1e-9)

	profit, err := s.SessionProfit(ctx, "s1")
	require.NoError(t, err)
	assert.InDelta(t, 30, profit, 1e-9)
}

func TestRecordTradeIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := types.TradeRecord{OrderID: "dup", ProductID: "XRP-USDC", Action: "buy", Status: "FILLED", AmountUSDC: 10, NetDeltaUSDC: -10, Timestamp: time.Now().UTC()}
	require.NoError(t, s.RecordTrade(ctx, "s1", rec))
	require.NoError(t, s.RecordTrade(ctx, "s1", rec))

	got, err := s.SessionTrades(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSessionsAreIsolated(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, s.RecordTrade(ctx, "a", types.TradeRecord{OrderID: "a1", NetDeltaUSDC: 5, Timestamp: now}))
	require.NoError(t, s.RecordTrade(ctx, "b", types.TradeRecord{OrderID: "b1", NetDeltaUSDC: 7, Timestamp: now}))

	profit, err := s.SessionProfit(ctx, "a")
	require.NoError(t, err)
	assert.InDelta(t, 5, profit, 1e-9)

	empty, err := s.SessionProfit(ctx, "missing")
	require.NoError(t, err)
	assert.Zero(t, empty)
}

func TestRecordCycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordCycle(ctx, "s1", "held", "nothing attractive"))
	require.NoError(t, s.RecordCycle(ctx, "s1", "terminated", "Profit target achieved."))

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cycles WHERE session_id = ?`, "s1").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
