package entitlement

import (
	"strings"

	"github.com/tradercopilot/swingdash/internal/core"
)

// tierRule maps a plan substring to a tier. Rules are checked in order.
type tierRule struct {
	contains string
	tier     core.Tier
}

var tierRules = []tierRule{
	{"PRO", core.TierPro},
	{"OWNER", core.TierPro},
	{"TRADER", core.TierTrader},
	{"BASIC", core.TierTrader},
}

// NormalizeTier maps a raw plan string onto a UI tier. Matching is
// case-insensitive and by substring; anything unmatched is FREE.
func NormalizeTier(plan string) core.Tier {
	p := strings.ToUpper(plan)
	for _, r := range tierRules {
		if strings.Contains(p, r.contains) {
			return r.tier
		}
	}
	return core.TierFree
}

// IsOwnerPlan reports whether the raw plan string carries the owner override.
func IsOwnerPlan(plan string) bool {
	return strings.Contains(strings.ToUpper(plan), "OWNER")
}
