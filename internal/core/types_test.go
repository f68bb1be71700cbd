package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestFeatureFlag_UnmarshalBool(t *testing.T) {
	var f FeatureFlag
	require.NoError(t, json.Unmarshal([]byte(`true`), &f))
	assert.Equal(t, FeatureBool, f.Kind)
	assert.True(t, f.Granted())
}

func TestFeatureFlag_UnmarshalUsage(t *testing.T) {
	var f FeatureFlag
	require.NoError(t, json.Unmarshal([]byte(`{"limit": 10, "used": 3, "remaining": 7}`), &f))
	assert.Equal(t, FeatureUsage, f.Kind)
	require.NotNil(t, f.Usage.Remaining)
	assert.Equal(t, 7, *f.Usage.Remaining)
	assert.True(t, f.Granted())
}

func TestFeatureFlag_UnmarshalOtherShapes(t *testing.T) {
	for _, raw := range []string{`null`, `"yes"`, `42`, `[1,2]`} {
		var f FeatureFlag
		require.NoError(t, json.Unmarshal([]byte(raw), &f), raw)
		assert.Equal(t, FeatureUnknown, f.Kind, raw)
		assert.False(t, f.Granted(), raw)
	}
}

func TestFeatureFlag_Granted(t *testing.T) {
	tests := []struct {
		name string
		flag FeatureFlag
		want bool
	}{
		{"bool true", BoolFeature(true), true},
		{"bool false", BoolFeature(false), false},
		{"exhausted", UsageFeature(intPtr(10), intPtr(10), intPtr(0)), false},
		{"remaining", UsageFeature(intPtr(10), intPtr(3), intPtr(7)), true},
		{"limit only", UsageFeature(intPtr(5), nil, nil), true},
		{"zero limit", UsageFeature(intPtr(0), nil, nil), false},
		{"empty record", UsageFeature(nil, nil, nil), false},
		{"zero value", FeatureFlag{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.flag.Granted())
		})
	}
}

func TestFeatureFlag_MarshalRoundTrip(t *testing.T) {
	ent := Entitlements{Features: map[string]FeatureFlag{
		"advisor_access":  UsageFeature(intPtr(10), intPtr(1), intPtr(9)),
		"telegram_access": BoolFeature(true),
	}}
	data, err := json.Marshal(ent)
	require.NoError(t, err)

	var back Entitlements
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, ent.Features, back.Features)
}

func TestEntitlements_DecodeBackendPayload(t *testing.T) {
	payload := `{
		"tier": "tier_trader",
		"plan_label": "TRADER",
		"expires_at": null,
		"allowed_tokens": ["BTC", "ETH"],
		"allowed_timeframes": ["4H", "1D"],
		"is_trial_expired": false,
		"telegram_access": true,
		"advisor_access": false,
		"features": {"ai_analysis": {"limit": 0, "used": 0, "remaining": 0}, "advisor_access": false}
	}`
	var ent Entitlements
	require.NoError(t, json.Unmarshal([]byte(payload), &ent))
	assert.Equal(t, []string{"BTC", "ETH"}, ent.AllowedTokens)
	assert.True(t, ent.TopLevel(CapabilityTelegram))
	assert.False(t, ent.TopLevel(CapabilityAdvisor))
	assert.False(t, ent.TopLevel("unknown"))
	assert.Equal(t, FeatureBool, ent.Features["advisor_access"].Kind)
}

func TestParseDirection(t *testing.T) {
	assert.Equal(t, DirectionLong, ParseDirection("long"))
	assert.Equal(t, DirectionShort, ParseDirection(" SHORT "))
	assert.Equal(t, DirectionNeutral, ParseDirection("flat"))
	assert.Equal(t, DirectionNeutral, ParseDirection(""))
}

func TestUser_Helpers(t *testing.T) {
	u := User{Name: "Ada Lovelace", TelegramChatID: "42"}
	assert.Equal(t, "Ada", u.FirstName())
	assert.True(t, u.TelegramConnected())
	assert.Equal(t, "Trader", User{}.FirstName())
	assert.False(t, User{}.TelegramConnected())
}

func TestParseTimestamp(t *testing.T) {
	for _, s := range []string{"2026-01-23T12:29:11Z", "2026-01-23T12:29:11.123456", "2026-01-23T12:29:11", "2026-01-23"} {
		ts, ok := ParseTimestamp(s)
		assert.True(t, ok, s)
		assert.Equal(t, 2026, ts.Year(), s)
	}
	_, ok := ParseTimestamp("not a date")
	assert.False(t, ok)
	_, ok = ParseTimestamp("")
	assert.False(t, ok)
}
