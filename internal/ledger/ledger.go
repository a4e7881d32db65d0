// Package ledger keeps the running tally of executed trades for one session.
// It is append-only: records are never removed or rewritten, and net profit
// is maintained incrementally from registered deltas, never recomputed from
// exchange state.
package ledger

import (
	"sync"

	"llm-crypto-agent/internal/types"
)

type Ledger struct {
	mu        sync.Mutex
	netProfit float64
	history   []types.TradeRecord
}

func New() *Ledger {
	return &Ledger{}
}

// RegisterTrade appends the record and folds its delta into net profit. It
// performs no validation: callers must have already validated the trade.
// Journaling is also the caller's responsibility.
func (l *Ledger) RegisterTrade(rec types.TradeRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.history = append(l.history, rec)
	l.netProfit += rec.NetDeltaUSDC
}

func (l *Ledger) NetProfit() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.netProfit
}

func (l *Ledger) TransactionCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.history)
}

// History returns a copy of the registered trades in registration order.
func (l *Ledger) History() []types.TradeRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]types.TradeRecord, len(l.history))
	copy(out, l.history)
	return out
}
