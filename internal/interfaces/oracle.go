package interfaces

import (
	"context"

	"llm-crypto-agent/internal/types"
)

// Prompt is everything the oracle sees for one cycle: the journal so far, the
// fresh market snapshot, and the remaining session budget.
type Prompt struct {
	JournalText string
	Snapshot    types.MarketSnapshot
	Constraints types.ConstraintsPayload
}

type Oracle interface {
	Decide(ctx context.Context, p Prompt) (types.Decision, error)
}
