package interfaces

import "llm-crypto-agent/internal/types"

// Journal is the append-only audit log of a session. Append order is the
// canonical order of events.
type Journal interface {
	LogHeader(metadata map[string]any) error
	AppendEntry(heading, content string) error
	AppendDecision(d types.Decision) error
	AppendTransaction(rec types.TradeRecord) error
	Contents() (string, error)
}
