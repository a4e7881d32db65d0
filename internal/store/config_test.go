package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "DRY_RUN", cfg.Mode)
	assert.Equal(t, 60, cfg.PollSeconds)
	assert.Equal(t, "journals", cfg.Journal.Directory)
	assert.Equal(t, 15, cfg.Constraints.MaxTransactions)
	assert.Equal(t, 200.0, cfg.Constraints.MaxPurchaseUSDC)
	assert.Equal(t, "OLLAMA", cfg.Oracle.Provider)
	assert.Equal(t, "llama3", cfg.Oracle.Model)
	assert.Equal(t, time.Minute, cfg.PollInterval())
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
mode: LIVE
poll_seconds: 5
constraints:
  max_runtime_hours: 1
  profit_target_usdc: 25
  max_transactions: 3
  max_purchase_usdc: 50
  forbidden_assets: [doge, shib]
oracle:
  provider: OPENAI
  model: gpt-4o-mini
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "LIVE", cfg.Mode)
	assert.Equal(t, 5, cfg.PollSeconds)
	assert.Equal(t, "OPENAI", cfg.Oracle.Provider)

	cs := cfg.ConstraintSet()
	assert.Equal(t, time.Hour, cs.MaxRuntime)
	assert.Equal(t, 3, cs.MaxTransactions)
	assert.True(t, cs.Forbidden("DOGE"))
	assert.True(t, cs.Forbidden("shib"))
	assert.False(t, cs.Forbidden("ADA"))
}

func TestLoadConfigRejectsBadMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: PAPER\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid mode")
}
