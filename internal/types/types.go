package types

import (
	"sort"
	"strings"
	"time"
)

// Trade actions as the oracle is asked to produce them.
const (
	ActionBuy  = "buy"
	ActionSell = "sell"
	ActionHold = "hold"
)

// QuoteAsset is the quote currency every session trades against.
const QuoteAsset = "USDC"

// AccountBalance is one exchange account entry: an asset and what is
// available to trade right now.
type AccountBalance struct {
	Asset     string  `json:"asset"`
	Available float64 `json:"available_balance"`
}

// OrderResult is the exchange's answer to a placed order. FilledSize and
// AvgPrice may be zero when the IOC order reports no fills.
type OrderResult struct {
	OrderID    string
	Status     string
	Success    bool
	FilledSize float64
	AvgPrice   float64
}

// Decision is one oracle reply for one cycle. ProductID and AmountUSDC are
// optional: hold carries neither, and the controller treats their absence on
// buy/sell as a skip.
type Decision struct {
	Action     string   `json:"action"`
	ProductID  string   `json:"product_id"`
	AmountUSDC *float64 `json:"amount_usdc"`
	Rationale  string   `json:"rationale"`
}

// Amount returns the decision's trade size, or 0 when unspecified.
func (d Decision) Amount() float64 {
	if d.AmountUSDC == nil {
		return 0
	}
	return *d.AmountUSDC
}

// MarketSnapshot is the market context forwarded to the oracle. Rebuilt fresh
// every cycle, never mutated.
type MarketSnapshot struct {
	USDCBalance       float64            `json:"usdc_balance"`
	CandidateProducts []string           `json:"candidate_products"`
	OpenPositions     map[string]float64 `json:"open_positions"`
}

// TradeRecord is the normalized outcome of one executed trade. Immutable once
// created; owned by the ledger's history.
type TradeRecord struct {
	OrderID      string    `json:"order_id"`
	Status       string    `json:"status"`
	ProductID    string    `json:"product_id"`
	Action       string    `json:"action"`
	AmountUSDC   float64   `json:"amount_usdc"`
	FilledSize   float64   `json:"filled_size"`
	AvgPrice     float64   `json:"avg_price"`
	NetDeltaUSDC float64   `json:"net_delta_usdc"`
	Timestamp    time.Time `json:"timestamp"`
}

// ConstraintSet holds the immutable bounds of one session. Built once from
// config; forbidden assets are stored uppercased.
type ConstraintSet struct {
	MaxRuntime       time.Duration
	ProfitTargetUSDC float64
	MaxTransactions  int
	MaxPurchaseUSDC  float64
	forbidden        map[string]struct{}
}

// NewConstraintSet normalizes the forbidden asset symbols to uppercase.
func NewConstraintSet(maxRuntime time.Duration, profitTarget float64, maxTransactions int, maxPurchase float64, forbiddenAssets []string) ConstraintSet {
	f := make(map[string]struct{}, len(forbiddenAssets))
	for _, a := range forbiddenAssets {
		a = strings.ToUpper(strings.TrimSpace(a))
		if a != "" {
			f[a] = struct{}{}
		}
	}
	return ConstraintSet{
		MaxRuntime:       maxRuntime,
		ProfitTargetUSDC: profitTarget,
		MaxTransactions:  maxTransactions,
		MaxPurchaseUSDC:  maxPurchase,
		forbidden:        f,
	}
}

// Forbidden reports whether the asset symbol is excluded from trading.
// Comparison is case-insensitive.
func (c ConstraintSet) Forbidden(asset string) bool {
	_, ok := c.forbidden[strings.ToUpper(asset)]
	return ok
}

// ForbiddenAssets returns the sorted uppercase forbidden symbols.
func (c ConstraintSet) ForbiddenAssets() []string {
	out := make([]string, 0, len(c.forbidden))
	for a := range c.forbidden {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// ConstraintsPayload is the budget picture handed to the oracle each cycle:
// the static bounds plus what remains of them.
type ConstraintsPayload struct {
	MaxRuntimeHours       float64  `json:"max_runtime_hours"`
	ProfitTargetUSDC      float64  `json:"profit_target_usdc"`
	MaxTransactions       int      `json:"max_transactions"`
	MaxPurchaseUSDC       float64  `json:"max_purchase_usdc"`
	ForbiddenAssets       []string `json:"forbidden_assets"`
	RemainingTransactions int      `json:"remaining_transactions"`
	CurrentProfitUSDC     float64  `json:"current_profit_usdc"`
	NewsDigest            string   `json:"news_digest,omitempty"`
}

// BaseAsset extracts the base symbol from a product id like "ETH-USDC".
func BaseAsset(productID string) string {
	if i := strings.Index(productID, "-"); i >= 0 {
		return productID[:i]
	}
	return productID
}

// NormalizeProductID uppercases an oracle-supplied symbol and appends the
// quote suffix when missing: "eth" becomes "ETH-USDC", "ETH-USDC" is kept.
func NormalizeProductID(s string) string {
	p := strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasSuffix(p, "-"+QuoteAsset) {
		p += "-" + QuoteAsset
	}
	return p
}
