package entitlement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tradercopilot/swingdash/internal/core"
)

func TestNormalizeTier(t *testing.T) {
	tests := []struct {
		plan string
		want core.Tier
	}{
		{"pro", core.TierPro},
		{"Pro", core.TierPro},
		{"PRO", core.TierPro},
		{"OWNER", core.TierPro},
		{"owner", core.TierPro},
		{"PRO_MONTHLY", core.TierPro},
		{"trader", core.TierTrader},
		{"TRADER", core.TierTrader},
		{"BASIC", core.TierTrader},
		{"basic_annual", core.TierTrader},
		{"FREE", core.TierFree},
		{"trial", core.TierFree},
		{"", core.TierFree},
		{"   ", core.TierFree},
		{"enterprise", core.TierFree},
	}

	for _, tt := range tests {
		t.Run(tt.plan, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTier(tt.plan))
		})
	}
}

func TestNormalizeTier_Idempotent(t *testing.T) {
	for _, plan := range []string{"pro", "owner", "basic", "trader", "free", "", "xyz", "professional"} {
		once := NormalizeTier(plan)
		assert.Equal(t, once, NormalizeTier(string(once)), plan)
		assert.Contains(t, core.Tiers, once, plan)
	}
}

func TestIsOwnerPlan(t *testing.T) {
	assert.True(t, IsOwnerPlan("owner"))
	assert.False(t, IsOwnerPlan("PRO"))
}
