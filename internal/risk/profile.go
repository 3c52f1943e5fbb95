// Package risk maps account equity to a risk tier and computes bounded,
// exchange-compliant position sizes.
package risk

import "github.com/chigozzdevv/hyperliquid-trading-agent/internal/models"

// Equity thresholds and the tier table. Usage bounds how much available
// margin may be deployed; risk bounds how much equity may be lost on a
// single trade. The two diverge only in the top tier.
const (
	// MicroEquityThreshold is the equity floor below which the per-trade
	// risk cap is skipped and sizing optimizes for reaching the exchange
	// minimum order size instead.
	MicroEquityThreshold = 10.0

	smallEquityThreshold = 50.0
	midEquityThreshold   = 500.0
)

var tiers = []struct {
	limit float64
	name  string
	usage float64
	risk  float64
}{
	{limit: MicroEquityThreshold, name: "micro", usage: 85, risk: 85},
	{limit: smallEquityThreshold, name: "small", usage: 50, risk: 50},
	{limit: midEquityThreshold, name: "standard", usage: 20, risk: 20},
}

// conservativeTier applies to all equity at or above the mid threshold.
var conservativeTier = struct {
	name  string
	usage float64
	risk  float64
}{name: "conservative", usage: 5, risk: 2}

// ProfileFor returns the risk profile for the given account equity.
// Thresholds are exclusive upper bounds, so equity of exactly 10 lands
// in the small tier.
func ProfileFor(equity float64) models.RiskProfile {
	for _, t := range tiers {
		if equity < t.limit {
			return models.RiskProfile{Tier: t.name, UsagePct: t.usage, RiskPct: t.risk}
		}
	}
	return models.RiskProfile{
		Tier:     conservativeTier.name,
		UsagePct: conservativeTier.usage,
		RiskPct:  conservativeTier.risk,
	}
}
