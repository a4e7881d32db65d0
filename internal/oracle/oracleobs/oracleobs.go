package oracleobs

import (
	"context"

	"llm-crypto-agent/internal/interfaces"
	"llm-crypto-agent/internal/logger"
	"llm-crypto-agent/internal/trace"
	"llm-crypto-agent/internal/types"
)

// observableOracle wraps an Oracle with logging and tracing.
type observableOracle struct {
	oracle interfaces.Oracle
}

// Compile-time interface check
var _ interfaces.Oracle = (*observableOracle)(nil)

// Wrap wraps an oracle with observability middleware.
func Wrap(oracle interfaces.Oracle) interfaces.Oracle {
	return &observableOracle{oracle: oracle}
}

func (o *observableOracle) Decide(ctx context.Context, p interfaces.Prompt) (types.Decision, error) {
	ctx, span := trace.StartSpan(ctx, "oracle.Decide")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Requesting trading decision",
		"usdc_balance", p.Snapshot.USDCBalance,
		"candidates", len(p.Snapshot.CandidateProducts),
		"remaining_transactions", p.Constraints.RemainingTransactions,
	)

	decision, err := o.oracle.Decide(ctx, p)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to get trading decision", err)
		return types.Decision{}, err
	}

	logger.InfoSkip(ctx, 1, "Trading decision received",
		"action", decision.Action,
		"product_id", decision.ProductID,
		"amount_usdc", decision.Amount(),
	)
	return decision, nil
}
