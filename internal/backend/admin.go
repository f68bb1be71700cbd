package backend

import (
	"context"
	"net/http"
	"strconv"
)

// AdminStats is the operator overview.
type AdminStats struct {
	TotalUsers    int     `json:"total_users"`
	Users24h      int     `json:"users_24h"`
	ActivePlans   int     `json:"active_plans"`
	HiddenSignals int     `json:"hidden_signals"`
	TotalSignals  int     `json:"total_signals"`
	Signals24h    int     `json:"signals_24h"`
	SystemStatus  string  `json:"system_status"`
	MRR           float64 `json:"mrr"`
	LastUpdated   string  `json:"last_updated"`
}

// AdminUser is one row of the user directory.
type AdminUser struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Plan      string `json:"plan"`
	CreatedAt string `json:"created_at"`
}

// AdminUserPage is a page of the user directory.
type AdminUserPage struct {
	Items []AdminUser `json:"items"`
	Total int         `json:"total"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
}

// AdminStats fetches the operator overview.
func (c *Client) AdminStats(ctx context.Context) (*AdminStats, error) {
	var out AdminStats
	if err := c.Do(ctx, http.MethodGet, "/admin/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminUsers searches the user directory.
func (c *Client) AdminUsers(ctx context.Context, query string) (*AdminUserPage, error) {
	var out AdminUserPage
	if err := c.Do(ctx, http.MethodGet, "/admin/users", &out, Query("q", query)); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUserPlan sets another user's plan.
func (c *Client) UpdateUserPlan(ctx context.Context, userID int64, plan string) error {
	return c.Do(ctx, http.MethodPatch, "/admin/users/"+strconv.FormatInt(userID, 10)+"/plan", nil,
		JSON(map[string]string{"plan": plan}), Endpoint("/admin/users/{id}/plan"))
}
