package noop

import (
	"context"

	"llm-crypto-agent/internal/interfaces"
	"llm-crypto-agent/internal/logger"
	"llm-crypto-agent/internal/types"
)

// Decider is the fallback oracle used when no provider is configured.
type Decider struct{}

// New returns an oracle that always decides hold.
func New() *Decider {
	return &Decider{}
}

func (d *Decider) Decide(ctx context.Context, _ interfaces.Prompt) (types.Decision, error) {
	logger.Debug(ctx, "Noop oracle called - always returns hold")
	return types.Decision{
		Action:    types.ActionHold,
		Rationale: "noop oracle fallback",
	}, nil
}
