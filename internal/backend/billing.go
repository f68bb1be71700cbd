package backend

import (
	"context"
	"net/http"

	"github.com/tradercopilot/swingdash/internal/core"
)

// BillingSyncResult reports the plan after reconciling with the payment provider.
type BillingSyncResult struct {
	Status     string `json:"status"`
	Plan       string `json:"plan"`
	PlanStatus string `json:"plan_status"`
}

// SessionURL is a hosted checkout or portal page.
type SessionURL struct {
	URL string `json:"url"`
}

// SyncBilling asks the backend to reconcile the plan after checkout.
func (c *Client) SyncBilling(ctx context.Context) (*BillingSyncResult, error) {
	var out BillingSyncResult
	if err := c.Do(ctx, http.MethodPost, "/billing/sync", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCheckoutSession returns a hosted checkout URL for a paid tier.
func (c *Client) CreateCheckoutSession(ctx context.Context, plan core.Tier) (string, error) {
	var out SessionURL
	if err := c.Do(ctx, http.MethodPost, "/billing/checkout-session", &out, JSON(map[string]string{"plan": string(plan)})); err != nil {
		return "", err
	}
	return out.URL, nil
}

// CreatePortalSession returns the hosted billing portal URL.
func (c *Client) CreatePortalSession(ctx context.Context) (string, error) {
	var out SessionURL
	if err := c.Do(ctx, http.MethodPost, "/billing/portal-session", &out); err != nil {
		return "", err
	}
	return out.URL, nil
}
