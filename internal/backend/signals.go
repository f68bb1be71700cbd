package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tradercopilot/swingdash/internal/core"
)

// ListSignals returns recent signals, newest first.
func (c *Client) ListSignals(ctx context.Context, limit, offset int) ([]core.Signal, error) {
	var out logList
	err := c.Do(ctx, http.MethodGet, "/signals/", &out,
		Query("limit", strconv.Itoa(limit)),
		Query("offset", strconv.Itoa(offset)),
	)
	if err != nil {
		return nil, err
	}
	return out.signals(), nil
}

// GetSignal fetches one signal.
func (c *Client) GetSignal(ctx context.Context, id string) (*core.Signal, error) {
	var out LogEntry
	if err := c.Do(ctx, http.MethodGet, "/signals/"+url.PathEscape(id), &out, Endpoint("/signals/{id}")); err != nil {
		return nil, err
	}
	s := out.ToSignal()
	return &s, nil
}

// ManualSignal is a user-entered signal.
type ManualSignal struct {
	Token      string  `json:"token" validate:"required"`
	Timeframe  string  `json:"timeframe" validate:"required"`
	Direction  string  `json:"direction" validate:"required,oneof=LONG SHORT"`
	Entry      float64 `json:"entry" validate:"gt=0"`
	TP         float64 `json:"tp" validate:"gt=0"`
	SL         float64 `json:"sl" validate:"gt=0"`
	Confidence float64 `json:"confidence,omitempty" validate:"gte=0,lte=100"`
	Rationale  string  `json:"rationale,omitempty"`
}

// CreateSignal records a manual signal.
func (c *Client) CreateSignal(ctx context.Context, s ManualSignal) (*core.Signal, error) {
	var out LogEntry
	if err := c.Do(ctx, http.MethodPost, "/signals/", &out, JSON(s)); err != nil {
		return nil, err
	}
	sig := out.ToSignal()
	return &sig, nil
}

// AcceptSignal marks a signal as taken.
func (c *Client) AcceptSignal(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodPost, "/signals/"+url.PathEscape(id)+"/accept", nil, Endpoint("/signals/{id}/accept"))
}

// DeleteSignal removes a signal.
func (c *Client) DeleteSignal(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, "/signals/"+url.PathEscape(id), nil, Endpoint("/signals/{id}"))
}
