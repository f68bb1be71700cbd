package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tradercopilot/swingdash/internal/core"
)

// LogsQuery filters the recent-logs listing.
type LogsQuery struct {
	Mode          string
	Token         string
	SavedOnly     bool
	IncludeSystem bool
	Page          int
	Limit         int
}

// RecentLogs returns recent signal records.
func (c *Client) RecentLogs(ctx context.Context, q LogsQuery) ([]core.Signal, error) {
	var out logList
	err := c.Do(ctx, http.MethodGet, "/logs/recent", &out,
		Query("mode", q.Mode),
		Query("token", q.Token),
		Query("saved_only", boolParam(q.SavedOnly)),
		Query("include_system", strconv.FormatBool(q.IncludeSystem)),
		Query("page", itoa(q.Page)),
		Query("limit", itoa(q.Limit)),
	)
	if err != nil {
		return nil, err
	}
	return out.signals(), nil
}

// LogsByToken returns the records of one token for an evaluation mode.
func (c *Client) LogsByToken(ctx context.Context, mode, token string, limit int) ([]core.Signal, error) {
	if mode == "" {
		mode = "ALL"
	}
	var out logList
	err := c.Do(ctx, http.MethodGet, "/logs/"+url.PathEscape(mode)+"/"+url.PathEscape(token), &out,
		Query("limit", itoa(limit)),
		Endpoint("/logs/{mode}/{token}"),
	)
	if err != nil {
		return nil, err
	}
	return out.signals(), nil
}

// TrackSignal adds a signal to the user's tracked list.
func (c *Client) TrackSignal(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodPost, "/logs/track", nil, JSON(map[string]string{"signal_id": id}))
}

// ToggleSave flips the saved flag of a record and returns the new value.
func (c *Client) ToggleSave(ctx context.Context, id string) (bool, error) {
	var out struct {
		IsSaved bool `json:"is_saved"`
	}
	if err := c.Do(ctx, http.MethodPost, "/logs/"+url.PathEscape(id)+"/toggle_save", &out, Endpoint("/logs/{id}/toggle_save")); err != nil {
		return false, err
	}
	return out.IsSaved, nil
}

func boolParam(b bool) string {
	if !b {
		return ""
	}
	return "true"
}
