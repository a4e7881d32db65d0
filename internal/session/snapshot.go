package session

import (
	"sort"
	"strings"

	"llm-crypto-agent/internal/types"
)

// snapshotBuilder derives the tradeable market picture from raw account
// balances. Pure: for a fixed account list and constraint set the output is
// fully deterministic, candidates sorted by name.
type snapshotBuilder struct {
	constraints types.ConstraintSet
}

func (b snapshotBuilder) Build(accounts []types.AccountBalance) types.MarketSnapshot {
	var usdc float64
	holdings := map[string]float64{}
	candidates := map[string]struct{}{}

	for _, a := range accounts {
		asset := strings.ToUpper(a.Asset)
		if asset == types.QuoteAsset {
			usdc = a.Available
			continue
		}
		if b.constraints.Forbidden(asset) {
			continue
		}
		holdings[asset] = a.Available
		candidates[asset+"-"+types.QuoteAsset] = struct{}{}
	}

	products := make([]string, 0, len(candidates))
	for p := range candidates {
		products = append(products, p)
	}
	sort.Strings(products)

	positions := make(map[string]float64, len(products))
	for _, p := range products {
		positions[p] = holdings[types.BaseAsset(p)]
	}

	return types.MarketSnapshot{
		USDCBalance:       usdc,
		CandidateProducts: products,
		OpenPositions:     positions,
	}
}
