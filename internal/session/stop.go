package session

import (
	"time"

	"llm-crypto-agent/internal/types"
)

// Stop reasons as they appear in the journal.
const (
	stopMaxRuntime      = "Max runtime reached."
	stopMaxTransactions = "Max transaction count reached."
	stopProfitTarget    = "Profit target achieved."
)

// stopReason returns the first stop condition that holds, in the fixed
// priority order: runtime, then transaction cap, then profit target. Pure
// function of its inputs.
func stopReason(c types.ConstraintSet, elapsed time.Duration, txCount int, netProfit float64) (string, bool) {
	if elapsed >= c.MaxRuntime {
		return stopMaxRuntime, true
	}
	if txCount >= c.MaxTransactions {
		return stopMaxTransactions, true
	}
	if netProfit >= c.ProfitTargetUSDC {
		return stopProfitTarget, true
	}
	return "", false
}
