package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tradercopilot/swingdash/internal/core"
)

// Marketplace fetches strategy offerings, split into unlocked and locked.
func (c *Client) Marketplace(ctx context.Context) (*core.Marketplace, error) {
	var out core.Marketplace
	if err := c.Do(ctx, http.MethodGet, "/strategies/marketplace", &out); err != nil {
		return nil, err
	}
	for i := range out.LockedOfferings {
		out.LockedOfferings[i].Locked = true
	}
	return &out, nil
}

// ToggleStrategy enables or disables a strategy for the user and returns
// the new state.
func (c *Client) ToggleStrategy(ctx context.Context, id string) (bool, error) {
	var out struct {
		Status  string `json:"status"`
		Enabled *bool  `json:"enabled"`
	}
	err := c.Do(ctx, http.MethodPatch, "/strategies/marketplace/"+url.PathEscape(id)+"/toggle", &out,
		Endpoint("/strategies/marketplace/{id}/toggle"))
	if err != nil {
		return false, err
	}
	if out.Enabled != nil {
		return *out.Enabled, nil
	}
	return out.Status == "enabled" || out.Status == "active", nil
}

// StrategyUpdate changes a strategy's parameters.
type StrategyUpdate struct {
	Timeframe   string `json:"timeframe,omitempty"`
	RiskProfile string `json:"risk_profile,omitempty"`
}

// UpdateStrategy applies a parameter change.
func (c *Client) UpdateStrategy(ctx context.Context, id string, upd StrategyUpdate) error {
	return c.Do(ctx, http.MethodPatch, "/strategies/marketplace/"+url.PathEscape(id)+"/update", nil,
		JSON(upd), Endpoint("/strategies/marketplace/{id}/update"))
}

// DeleteStrategy removes a user strategy.
func (c *Client) DeleteStrategy(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, "/strategies/marketplace/"+url.PathEscape(id), nil,
		Endpoint("/strategies/marketplace/{id}"))
}

// StrategyHistory returns the signals a strategy produced.
func (c *Client) StrategyHistory(ctx context.Context, id string) ([]core.Signal, error) {
	var out logList
	err := c.Do(ctx, http.MethodGet, "/strategies/marketplace/"+url.PathEscape(id)+"/history", &out,
		Endpoint("/strategies/marketplace/{id}/history"))
	if err != nil {
		return nil, err
	}
	return out.signals(), nil
}
