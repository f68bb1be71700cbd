package backend

import (
	"context"
	"net/http"

	"github.com/tradercopilot/swingdash/internal/core"
)

// DashboardStats fetches the headline KPIs and the daily chart.
func (c *Client) DashboardStats(ctx context.Context) (*core.DashboardStats, error) {
	var out core.DashboardStats
	if err := c.Do(ctx, http.MethodGet, "/stats/dashboard", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StatsSummary fetches the free-form statistics summary.
func (c *Client) StatsSummary(ctx context.Context) (map[string]any, error) {
	out := map[string]any{}
	if err := c.Do(ctx, http.MethodGet, "/stats/summary", &out); err != nil {
		return nil, err
	}
	return out, nil
}
