package entitlement

import (
	"errors"
	"fmt"

	"github.com/tradercopilot/swingdash/internal/core"
)

// Mode is how a consumer renders a gated resource.
type Mode int

const (
	ModeFull Mode = iota
	ModeLocked
	ModeRedirect
)

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeLocked:
		return "locked"
	case ModeRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// SignalMode is Full for accessible signals and Locked otherwise.
func (r Resolver) SignalMode(s core.Signal) Mode {
	if r.CanAccessSignal(s) {
		return ModeFull
	}
	return ModeLocked
}

// TokenMode gates a token selector entry.
func (r Resolver) TokenMode(token string) Mode {
	if r.CanAccessToken(token) {
		return ModeFull
	}
	return ModeLocked
}

// TimeframeMode gates a timeframe selector entry.
func (r Resolver) TimeframeMode(tf string) Mode {
	if r.CanAccessTimeframe(tf) {
		return ModeFull
	}
	return ModeLocked
}

// AdvisorMode redirects away from the advisor page when it is inaccessible.
func (r Resolver) AdvisorMode() Mode {
	if r.CanAccessAdvisor() {
		return ModeFull
	}
	return ModeRedirect
}

// TelegramMode locks the alert controls without Telegram access.
func (r Resolver) TelegramMode() Mode {
	if r.CanAccessTelegram() {
		return ModeFull
	}
	return ModeLocked
}

// AdminMode redirects non-owners away from admin views.
func (r Resolver) AdminMode(ownerEmails []string) Mode {
	if r.IsOwner(ownerEmails) {
		return ModeFull
	}
	return ModeRedirect
}

// RequireToken returns core.ErrLocked when the token is not accessible.
// Action handlers call it before reaching the network.
func (r Resolver) RequireToken(token string) error {
	if !r.CanAccessToken(token) {
		return core.WrapError(core.ErrLocked, fmt.Errorf("token %s", core.BaseToken(token)))
	}
	return nil
}

// RequireTimeframe returns core.ErrLocked when the timeframe is not accessible.
func (r Resolver) RequireTimeframe(tf string) error {
	if !r.CanAccessTimeframe(tf) {
		return core.WrapError(core.ErrLocked, fmt.Errorf("timeframe %s", core.ParseTimeframe(tf)))
	}
	return nil
}

// RequireAdvisor returns core.ErrLocked without advisor access.
func (r Resolver) RequireAdvisor() error {
	if !r.CanAccessAdvisor() {
		return core.WrapError(core.ErrLocked, errors.New("advisor"))
	}
	return nil
}

// RequireTelegram returns core.ErrLocked without Telegram access.
func (r Resolver) RequireTelegram() error {
	if !r.CanAccessTelegram() {
		return core.WrapError(core.ErrLocked, errors.New("telegram alerts"))
	}
	return nil
}

// RequireOwner returns core.ErrNotOwner for non-owners.
func (r Resolver) RequireOwner(ownerEmails []string) error {
	if !r.IsOwner(ownerEmails) {
		return core.ErrNotOwner
	}
	return nil
}

// RequirePro returns core.ErrLocked unless the tier is PRO.
func (r Resolver) RequirePro() error {
	if r.Tier() != core.TierPro {
		return core.WrapError(core.ErrLocked, errors.New("pro analysis"))
	}
	return nil
}
