package entitlement

import (
	"strings"

	"github.com/tradercopilot/swingdash/internal/core"
)

// PickBoolean resolves a capability: the top-level field, then a boolean
// features entry, then a usage record. A nil entitlements object is false.
func PickBoolean(ent *core.Entitlements, key string) bool {
	if ent == nil {
		return false
	}
	if ent.TopLevel(key) {
		return true
	}
	flag, ok := ent.Features[key]
	if !ok {
		return false
	}
	return flag.Granted()
}

// Resolver derives access predicates from a user and their entitlements.
// Either may be nil. It holds no state beyond its inputs.
type Resolver struct {
	User         *core.User
	Entitlements *core.Entitlements
}

// New returns a resolver over the given profile.
func New(user *core.User, ent *core.Entitlements) Resolver {
	return Resolver{User: user, Entitlements: ent}
}

// Tier returns the normalized tier of the user; FREE when absent.
func (r Resolver) Tier() core.Tier {
	if r.User == nil {
		return core.TierFree
	}
	return NormalizeTier(r.User.Plan)
}

// AllowedTokens prefers the entitlements list and falls back to the user's.
func (r Resolver) AllowedTokens() []string {
	if r.Entitlements != nil && len(r.Entitlements.AllowedTokens) > 0 {
		return r.Entitlements.AllowedTokens
	}
	if r.User != nil && len(r.User.AllowedTokens) > 0 {
		return r.User.AllowedTokens
	}
	return []string{}
}

// AllowedTimeframes comes from entitlements only. Absence means none known.
func (r Resolver) AllowedTimeframes() []string {
	if r.Entitlements != nil && r.Entitlements.AllowedTimeframes != nil {
		return r.Entitlements.AllowedTimeframes
	}
	return []string{}
}

// CanAccessToken is always true for PRO; otherwise the token must be allowed.
func (r Resolver) CanAccessToken(token string) bool {
	if r.Tier() == core.TierPro {
		return true
	}
	want := core.BaseToken(token)
	for _, t := range r.AllowedTokens() {
		if core.BaseToken(t) == want {
			return true
		}
	}
	return false
}

// CanAccessTimeframe is always true for PRO; otherwise the timeframe must be allowed.
func (r Resolver) CanAccessTimeframe(tf string) bool {
	if r.Tier() == core.TierPro {
		return true
	}
	want := core.ParseTimeframe(tf)
	for _, t := range r.AllowedTimeframes() {
		if core.ParseTimeframe(t) == want {
			return true
		}
	}
	return false
}

// CanAccessSignal reports whether a signal renders unlocked.
func (r Resolver) CanAccessSignal(s core.Signal) bool {
	return r.CanAccessToken(string(s.Token)) && r.CanAccessTimeframe(string(s.Timeframe))
}

func (r Resolver) CanAccessAdvisor() bool {
	return PickBoolean(r.Entitlements, core.CapabilityAdvisor)
}

func (r Resolver) CanAccessTelegram() bool {
	return PickBoolean(r.Entitlements, core.CapabilityTelegram)
}

// IsTrialExpired passes through the server flag; false before entitlements load.
func (r Resolver) IsTrialExpired() bool {
	return r.Entitlements != nil && r.Entitlements.IsTrialExpired
}

// ExpiresAt returns the plan expiry, preferring the entitlements value.
func (r Resolver) ExpiresAt() string {
	if r.Entitlements != nil && r.Entitlements.ExpiresAt != "" {
		return r.Entitlements.ExpiresAt
	}
	if r.User != nil {
		return r.User.PlanExpiresAt
	}
	return ""
}

// IsOwner reports whether the user may see admin views: a listed owner email,
// or a PRO-tier plan carrying the owner override. UX only; the backend
// enforces the real check.
func (r Resolver) IsOwner(ownerEmails []string) bool {
	if r.User == nil {
		return false
	}
	email := strings.ToLower(strings.TrimSpace(r.User.Email))
	for _, o := range ownerEmails {
		if email != "" && email == strings.ToLower(strings.TrimSpace(o)) {
			return true
		}
	}
	if r.Tier() != core.TierPro {
		return false
	}
	return IsOwnerPlan(r.User.Plan) || strings.EqualFold(r.User.Role, "owner")
}

// Access is a serializable snapshot of every resolved predicate.
type Access struct {
	Tier              core.Tier       `json:"tier"`
	AllowedTokens     []string        `json:"allowed_tokens"`
	AllowedTimeframes []string        `json:"allowed_timeframes"`
	Advisor           bool            `json:"advisor_access"`
	Telegram          bool            `json:"telegram_access"`
	TrialExpired      bool            `json:"is_trial_expired"`
	ExpiresAt         string          `json:"expires_at,omitempty"`
	Tokens            map[string]bool `json:"tokens"`
	Timeframes        map[string]bool `json:"timeframes"`
}

// Snapshot evaluates the resolver over the token and timeframe catalogs.
func (r Resolver) Snapshot() Access {
	a := Access{
		Tier:              r.Tier(),
		AllowedTokens:     r.AllowedTokens(),
		AllowedTimeframes: r.AllowedTimeframes(),
		Advisor:           r.CanAccessAdvisor(),
		Telegram:          r.CanAccessTelegram(),
		TrialExpired:      r.IsTrialExpired(),
		ExpiresAt:         r.ExpiresAt(),
		Tokens:            make(map[string]bool, len(core.Tokens)),
		Timeframes:        make(map[string]bool, len(core.Timeframes)),
	}
	for _, t := range core.Tokens {
		a.Tokens[string(t)] = r.CanAccessToken(string(t))
	}
	for _, tf := range core.Timeframes {
		a.Timeframes[string(tf)] = r.CanAccessTimeframe(string(tf))
	}
	return a
}
