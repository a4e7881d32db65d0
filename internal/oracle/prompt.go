// Package oracle holds what every decision provider shares: the prompt the
// model sees and the strict parsing of its reply.
package oracle

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"llm-crypto-agent/internal/interfaces"
	"llm-crypto-agent/internal/types"
)

const promptTemplate = `You are an autonomous crypto trading strategist.

Session constraints:
%s

Recent market snapshot:
%s

Trading journal:
%s

Respond with strict JSON using the schema:
{
  "action": "buy" | "sell" | "hold",
  "product_id": string | null,
  "amount_usdc": number | null,
  "rationale": string
}

Explain your reasoning in the rationale field. Respect every constraint. Return ` + "`hold`" + ` when unsure.`

// BuildPrompt renders the full prompt for one cycle.
func BuildPrompt(p interfaces.Prompt) string {
	constraints, _ := json.MarshalIndent(p.Constraints, "", "  ")
	snapshot, _ := json.MarshalIndent(p.Snapshot, "", "  ")
	return fmt.Sprintf(promptTemplate, constraints, snapshot, p.JournalText)
}

// ParseDecision parses a model reply into a Decision. Anything that is not
// valid JSON matching the schema is a MalformedResponseError: an ambiguous
// reply must never silently turn into a hold or an under-specified trade.
func ParseDecision(raw string) (types.Decision, error) {
	text := stripCodeFence(strings.TrimSpace(raw))

	var d types.Decision
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		return types.Decision{}, &types.MalformedResponseError{Raw: raw, Err: err}
	}

	d.Action = strings.ToLower(strings.TrimSpace(d.Action))
	if d.Action == "" {
		return types.Decision{}, &types.MalformedResponseError{Raw: raw, Err: errors.New("missing action field")}
	}
	if d.Rationale == "" {
		d.Rationale = "No rationale provided."
	}
	return d, nil
}

// stripCodeFence removes a surrounding markdown code fence, which chat models
// add around JSON even when told not to.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
