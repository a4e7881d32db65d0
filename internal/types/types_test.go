package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeProductID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"eth", "ETH-USDC"},
		{"ETH", "ETH-USDC"},
		{"ETH-USDC", "ETH-USDC"},
		{"eth-usdc", "ETH-USDC"},
		{" doge ", "DOGE-USDC"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeProductID(tt.in), "input %q", tt.in)
	}
}

func TestBaseAsset(t *testing.T) {
	assert.Equal(t, "ETH", BaseAsset("ETH-USDC"))
	assert.Equal(t, "DOGE", BaseAsset("DOGE"))
}

func TestConstraintSetForbiddenIsCaseInsensitive(t *testing.T) {
	c := NewConstraintSet(time.Hour, 50, 15, 200, []string{"sol", " BTC "})

	assert.True(t, c.Forbidden("SOL"))
	assert.True(t, c.Forbidden("sol"))
	assert.True(t, c.Forbidden("btc"))
	assert.False(t, c.Forbidden("DOGE"))
	assert.Equal(t, []string{"BTC", "SOL"}, c.ForbiddenAssets())
}

func TestDecisionAmount(t *testing.T) {
	assert.Zero(t, Decision{}.Amount())

	v := 42.5
	assert.InDelta(t, 42.5, Decision{AmountUSDC: &v}.Amount(), 1e-9)
}
