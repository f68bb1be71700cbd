package backend

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/tradercopilot/swingdash/internal/core"
)

// LiteRequest asks for a quick rule-based scan.
type LiteRequest struct {
	Token     string `json:"token"`
	Timeframe string `json:"timeframe"`
	Mode      string `json:"mode"`
	Message   string `json:"message,omitempty"`
}

// LiteAnalysis is the result of a LITE scan.
type LiteAnalysis struct {
	ID         FlexString       `json:"id"`
	Token      string           `json:"token"`
	Timeframe  string           `json:"timeframe"`
	Timestamp  string           `json:"timestamp"`
	Direction  string           `json:"direction"`
	Entry      float64          `json:"entry"`
	TP         float64          `json:"tp"`
	SL         float64          `json:"sl"`
	Confidence float64          `json:"confidence"`
	Rationale  string           `json:"rationale"`
	Indicators map[string]any   `json:"indicators"`
	Watchlist  []core.WatchItem `json:"watchlist"`
}

// ToSignal maps a scan result onto a pending, active signal.
func (a LiteAnalysis) ToSignal(now time.Time) core.Signal {
	s := core.Signal{
		ID:          string(a.ID),
		Token:       core.BaseToken(a.Token),
		Timeframe:   core.ParseTimeframe(a.Timeframe),
		Direction:   core.ParseDirection(a.Direction),
		EntryPrice:  a.Entry,
		TargetPrice: a.TP,
		StopLoss:    a.SL,
		Confidence:  ConfidencePercent(a.Confidence),
		Timestamp:   now.UTC(),
		Status:      core.StatusActive,
		Evaluation:  core.EvaluationPending,
		Rationale:   a.Rationale,
		Indicators:  a.Indicators,
		Watchlist:   a.Watchlist,
	}
	if s.ID == "" {
		s.ID = "temp-id"
	}
	if ts, ok := core.ParseTimestamp(a.Timestamp); ok {
		s.Timestamp = ts
	}
	return s
}

// AnalyzeLite runs a LITE scan for a token and timeframe.
func (c *Client) AnalyzeLite(ctx context.Context, token, timeframe, message string) (*LiteAnalysis, error) {
	req := LiteRequest{Token: token, Timeframe: timeframe, Mode: "LITE", Message: message}
	var out LiteAnalysis
	if err := c.Do(ctx, http.MethodPost, "/analysis/lite", &out, JSON(req)); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProRequest asks for a long-form institutional report.
type ProRequest struct {
	Token       string `json:"token"`
	Timeframe   string `json:"timeframe"`
	UserMessage string `json:"user_message"`
	Language    string `json:"language"`
}

// ProAnalysis is a PRO report. Raw holds the markdown body.
type ProAnalysis struct {
	ID         FlexString     `json:"id"`
	Analysis   string         `json:"analysis"`
	Raw        string         `json:"raw"`
	Indicators map[string]any `json:"indicators"`
	Meta       map[string]any `json:"meta"`
}

// Markdown returns the report body, preferring the raw form.
func (p ProAnalysis) Markdown() string {
	if strings.TrimSpace(p.Raw) != "" {
		return p.Raw
	}
	return p.Analysis
}

// AnalyzePro generates a PRO report. It uses the long timeout.
func (c *Client) AnalyzePro(ctx context.Context, req ProRequest) (*ProAnalysis, error) {
	var out ProAnalysis
	if err := c.Do(ctx, http.MethodPost, "/analysis/pro", &out, JSON(req), Timeout(c.long)); err != nil {
		return nil, err
	}
	return &out, nil
}
