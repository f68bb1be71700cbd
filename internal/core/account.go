package core

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// User is the signed-in account as returned by the backend.
type User struct {
	ID               int64    `json:"id"`
	Email            string   `json:"email"`
	Name             string   `json:"name"`
	Role             string   `json:"role"`
	Plan             string   `json:"plan"`
	AllowedTokens    []string `json:"allowed_tokens,omitempty"`
	PlanExpiresAt    string   `json:"plan_expires_at,omitempty"`
	Timezone         string   `json:"timezone,omitempty"`
	TelegramChatID   string   `json:"telegram_chat_id,omitempty"`
	TelegramUsername string   `json:"telegram_username,omitempty"`
	CreatedAt        string   `json:"created_at"`
}

// TelegramConnected reports whether a chat is linked to the account.
func (u User) TelegramConnected() bool {
	return u.TelegramChatID != ""
}

// FirstName returns the first word of the display name, or "Trader".
func (u User) FirstName() string {
	if f := strings.Fields(u.Name); len(f) > 0 {
		return f[0]
	}
	return "Trader"
}

// FeatureKind tags the shape held by a FeatureFlag.
type FeatureKind int

const (
	FeatureUnknown FeatureKind = iota
	FeatureBool
	FeatureUsage
)

// Usage is a metered feature allowance.
type Usage struct {
	Limit     *int `json:"limit,omitempty"`
	Used      *int `json:"used,omitempty"`
	Remaining *int `json:"remaining,omitempty"`
}

// FeatureFlag is either a plain boolean or a usage record.
type FeatureFlag struct {
	Kind    FeatureKind
	Enabled bool
	Usage   Usage
}

// BoolFeature returns a boolean flag.
func BoolFeature(enabled bool) FeatureFlag {
	return FeatureFlag{Kind: FeatureBool, Enabled: enabled}
}

// UsageFeature returns a usage-record flag.
func UsageFeature(limit, used, remaining *int) FeatureFlag {
	return FeatureFlag{Kind: FeatureUsage, Usage: Usage{Limit: limit, Used: used, Remaining: remaining}}
}

// Granted resolves the flag: a bool is itself; a usage record grants when
// remaining is positive, or when remaining is absent and limit is positive.
func (f FeatureFlag) Granted() bool {
	switch f.Kind {
	case FeatureBool:
		return f.Enabled
	case FeatureUsage:
		if f.Usage.Remaining != nil {
			return *f.Usage.Remaining > 0
		}
		return f.Usage.Limit != nil && *f.Usage.Limit > 0
	default:
		return false
	}
}

// UnmarshalJSON accepts a boolean or an object; any other shape decodes to
// FeatureUnknown without error.
func (f *FeatureFlag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*f = FeatureFlag{}
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return nil
		}
		*f = BoolFeature(b)
	case '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		*f = FeatureFlag{Kind: FeatureUsage, Usage: Usage{
			Limit:     intField(raw, "limit"),
			Used:      intField(raw, "used"),
			Remaining: intField(raw, "remaining"),
		}}
	}
	return nil
}

// MarshalJSON writes the flag back in its wire shape.
func (f FeatureFlag) MarshalJSON() ([]byte, error) {
	switch f.Kind {
	case FeatureBool:
		return json.Marshal(f.Enabled)
	case FeatureUsage:
		return json.Marshal(f.Usage)
	default:
		return []byte("null"), nil
	}
}

func intField(raw map[string]json.RawMessage, key string) *int {
	v, ok := raw[key]
	if !ok || string(bytes.TrimSpace(v)) == "null" {
		return nil
	}
	var n float64
	if err := json.Unmarshal(v, &n); err != nil {
		return nil
	}
	i := int(n)
	return &i
}

// Entitlements is the server-computed access summary for the signed-in user.
type Entitlements struct {
	Tier              string                 `json:"tier,omitempty"`
	PlanLabel         string                 `json:"plan_label,omitempty"`
	ExpiresAt         string                 `json:"expires_at,omitempty"`
	AllowedTokens     []string               `json:"allowed_tokens,omitempty"`
	AllowedTimeframes []string               `json:"allowed_timeframes,omitempty"`
	IsTrialExpired    bool                   `json:"is_trial_expired"`
	TelegramAccess    bool                   `json:"telegram_access"`
	AdvisorAccess     bool                   `json:"advisor_access"`
	Features          map[string]FeatureFlag `json:"features,omitempty"`
}

// Capability keys shared by top-level fields and the features map.
const (
	CapabilityAdvisor  = "advisor_access"
	CapabilityTelegram = "telegram_access"
)

// TopLevel returns the top-level boolean for a capability key.
func (e Entitlements) TopLevel(key string) bool {
	switch key {
	case CapabilityAdvisor:
		return e.AdvisorAccess
	case CapabilityTelegram:
		return e.TelegramAccess
	default:
		return false
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp shapes the backend emits. Values
// without a zone are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
