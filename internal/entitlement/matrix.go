package entitlement

import "github.com/tradercopilot/swingdash/internal/core"

// PlanFeature is a static description of what a tier includes.
type PlanFeature struct {
	Tokens      []core.Token
	Timeframes  []core.Timeframe
	Advisor     bool
	Telegram    bool
	HistoryDays int
}

// PlanFeatures is the advertised plan matrix. It is not consulted for
// gating; live entitlements decide access.
var PlanFeatures = map[core.Tier]PlanFeature{
	core.TierFree: {
		Tokens:      []core.Token{core.TokenBTC, core.TokenETH},
		Timeframes:  []core.Timeframe{core.Timeframe4H, core.Timeframe1D},
		HistoryDays: 7,
	},
	core.TierTrader: {
		Tokens:      core.Tokens,
		Timeframes:  []core.Timeframe{core.Timeframe4H, core.Timeframe1D},
		Telegram:    true,
		HistoryDays: 30,
	},
	core.TierPro: {
		Tokens:      core.Tokens,
		Timeframes:  core.Timeframes,
		Advisor:     true,
		Telegram:    true,
		HistoryDays: 90,
	},
}

// FeaturesFor returns the matrix row for a tier, FREE for unknown tiers.
func FeaturesFor(t core.Tier) PlanFeature {
	if f, ok := PlanFeatures[t]; ok {
		return f
	}
	return PlanFeatures[core.TierFree]
}

// HistoryDays returns the signal-history window for the resolved tier.
func (r Resolver) HistoryDays() int {
	return FeaturesFor(r.Tier()).HistoryDays
}
