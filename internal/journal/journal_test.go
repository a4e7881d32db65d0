package journal

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm-crypto-agent/internal/types"
)

func TestLogHeaderIsIdempotent(t *testing.T) {
	j := Open(filepath.Join(t.TempDir(), "session.md"))

	meta := map[string]any{
		"session_id":       "abc-123",
		"max_transactions": 15,
	}
	require.NoError(t, j.LogHeader(meta))

	first, err := j.Contents()
	require.NoError(t, err)
	assert.Contains(t, first, "# Trading Journal - abc-123")
	assert.Contains(t, first, "Max Transactions: 15")

	// Second header write must not touch the file.
	meta["session_id"] = "other"
	require.NoError(t, j.LogHeader(meta))

	second, err := j.Contents()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAppendOrderIsPreserved(t *testing.T) {
	j := Open(filepath.Join(t.TempDir(), "session.md"))

	require.NoError(t, j.AppendEntry("Session Started", "hello"))
	require.NoError(t, j.AppendDecision(types.Decision{Action: "hold", Rationale: "nothing looks good"}))
	require.NoError(t, j.AppendEntry("Session Complete", "Max runtime reached."))

	text, err := j.Contents()
	require.NoError(t, err)

	started := indexOf(t, text, "## Session Started")
	decision := indexOf(t, text, "## Decision")
	complete := indexOf(t, text, "## Session Complete")
	assert.Less(t, started, decision)
	assert.Less(t, decision, complete)
	assert.Contains(t, text, "- **Rationale**: nothing looks good")
}

func TestAppendTransaction(t *testing.T) {
	j := Open(filepath.Join(t.TempDir(), "session.md"))

	rec := types.TradeRecord{
		OrderID:      "order-1",
		Status:       "FILLED",
		ProductID:    "ADA-USDC",
		Action:       "buy",
		AmountUSDC:   120.5,
		NetDeltaUSDC: -120.5,
		Timestamp:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, j.AppendTransaction(rec))

	text, err := j.Contents()
	require.NoError(t, err)
	assert.Contains(t, text, "## Transaction")
	assert.Contains(t, text, "- **product_id**: ADA-USDC")
	assert.Contains(t, text, "- **net_delta_usdc**: -120.50")
}

func TestContentsOnMissingFile(t *testing.T) {
	j := Open(filepath.Join(t.TempDir(), "never-written.md"))
	text, err := j.Contents()
	require.NoError(t, err)
	assert.Empty(t, text)
}

func indexOf(t *testing.T, s, sub string) int {
	t.Helper()
	i := strings.Index(s, sub)
	require.GreaterOrEqual(t, i, 0, "expected %q in journal", sub)
	return i
}
