package core

import (
	"strings"
	"time"
)

// Tier is the normalized UI plan tier.
type Tier string

const (
	TierFree   Tier = "FREE"
	TierTrader Tier = "TRADER"
	TierPro    Tier = "PRO"
)

// Tiers lists every tier from lowest to highest.
var Tiers = []Tier{TierFree, TierTrader, TierPro}

// Token is a base asset symbol such as BTC.
type Token string

const (
	TokenBTC Token = "BTC"
	TokenETH Token = "ETH"
	TokenSOL Token = "SOL"
	TokenBNB Token = "BNB"
	TokenXRP Token = "XRP"
)

// Tokens is the catalog of tokens the product covers.
var Tokens = []Token{TokenBTC, TokenETH, TokenSOL, TokenBNB, TokenXRP}

// TokenInfo holds display metadata for a token.
type TokenInfo struct {
	Name  string
	Color string
}

// TokenCatalog maps tokens to display metadata.
var TokenCatalog = map[Token]TokenInfo{
	TokenBTC: {Name: "Bitcoin", Color: "#F7931A"},
	TokenETH: {Name: "Ethereum", Color: "#627EEA"},
	TokenSOL: {Name: "Solana", Color: "#9945FF"},
	TokenBNB: {Name: "BNB", Color: "#F3BA2F"},
	TokenXRP: {Name: "XRP", Color: "#23292F"},
}

// Timeframe is a candle interval such as 4H.
type Timeframe string

const (
	Timeframe1H Timeframe = "1H"
	Timeframe4H Timeframe = "4H"
	Timeframe1D Timeframe = "1D"
)

// Timeframes is the catalog of timeframes the product covers.
var Timeframes = []Timeframe{Timeframe1H, Timeframe4H, Timeframe1D}

// Direction is the side of a signal.
type Direction string

const (
	DirectionLong    Direction = "LONG"
	DirectionShort   Direction = "SHORT"
	DirectionNeutral Direction = "NEUTRAL"
)

// ParseDirection upper-cases a wire direction; unknown values map to NEUTRAL.
func ParseDirection(s string) Direction {
	switch d := Direction(strings.ToUpper(strings.TrimSpace(s))); d {
	case DirectionLong, DirectionShort:
		return d
	default:
		return DirectionNeutral
	}
}

// SignalStatus is the lifecycle state of a signal.
type SignalStatus string

const (
	StatusActive    SignalStatus = "ACTIVE"
	StatusClosed    SignalStatus = "CLOSED"
	StatusCancelled SignalStatus = "CANCELLED"
	StatusWatch     SignalStatus = "WATCH"
	StatusCreated   SignalStatus = "CREATED"
	StatusArchived  SignalStatus = "ARCHIVED"
)

// Evaluation is the outcome-evaluation state of a signal.
type Evaluation string

const (
	EvaluationEvaluated Evaluation = "evaluated"
	EvaluationPending   Evaluation = "pending"
	EvaluationFailed    Evaluation = "failed"
)

// WatchItem is a near-miss setup reported alongside a NEUTRAL scan.
type WatchItem struct {
	StrategyID   string   `json:"strategy_id"`
	Token        string   `json:"token"`
	Timeframe    string   `json:"timeframe"`
	Side         string   `json:"side"`
	DistanceATR  float64  `json:"distance_atr"`
	TriggerPrice float64  `json:"trigger_price"`
	Close        float64  `json:"close"`
	Reason       string   `json:"reason"`
	Missing      []string `json:"missing,omitempty"`
}

// Signal is a trading signal as displayed by the dashboard.
type Signal struct {
	ID             string         `json:"id"`
	Token          Token          `json:"token"`
	Timeframe      Timeframe      `json:"timeframe"`
	Direction      Direction      `json:"type"`
	EntryPrice     float64        `json:"entry_price"`
	EntryRangeHigh *float64       `json:"entry_range_high,omitempty"`
	EntryRangeLow  *float64       `json:"entry_range_low,omitempty"`
	TargetPrice    float64        `json:"target_price"`
	StopLoss       float64        `json:"stop_loss"`
	Invalidation   *float64       `json:"invalidation,omitempty"`
	Confidence     float64        `json:"confidence"`
	Timestamp      time.Time      `json:"timestamp"`
	Status         SignalStatus   `json:"status"`
	Evaluation     Evaluation     `json:"evaluation"`
	PnL            *float64       `json:"pnl,omitempty"`
	Rationale      string         `json:"rationale,omitempty"`
	Indicators     map[string]any `json:"indicators,omitempty"`
	Watchlist      []WatchItem    `json:"watchlist,omitempty"`
	StrategyID     string         `json:"strategy_id,omitempty"`
	Saved          bool           `json:"is_saved,omitempty"`
}

// IsClosed reports whether the signal has a final outcome.
func (s Signal) IsClosed() bool {
	return s.Status == StatusClosed
}

// IsWin reports whether a realized P&L is strictly positive.
func (s Signal) IsWin() bool {
	return s.PnL != nil && *s.PnL > 0
}

// DashboardSummary holds the headline KPIs of the dashboard.
type DashboardSummary struct {
	WinRate24h            float64 `json:"win_rate_24h"`
	SignalsEvaluated24h   int     `json:"signals_evaluated_24h"`
	SignalsTotalEvaluated int     `json:"signals_total_evaluated"`
	OpenSignals           int     `json:"open_signals"`
	PnL7d                 float64 `json:"pnl_7d"`
}

// ChartPoint is one day of the performance chart.
type ChartPoint struct {
	Date   string `json:"date"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

// DashboardStats is the payload of the dashboard KPI endpoint.
type DashboardStats struct {
	Summary DashboardSummary `json:"summary"`
	Chart   []ChartPoint     `json:"chart"`
}

// StrategyOffering is one card of the strategy marketplace.
type StrategyOffering struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	WinRate     float64  `json:"win_rate"`
	AvgReturn   float64  `json:"avg_return"`
	Signals     int      `json:"total_signals"`
	ExpectedROI string   `json:"expected_roi,omitempty"`
	RiskLevel   string   `json:"risk_level,omitempty"`
	Symbol      string   `json:"symbol,omitempty"`
	Timeframe   string   `json:"timeframe,omitempty"`
	Timeframes  []string `json:"timeframes,omitempty"`
	Tokens      []string `json:"tokens,omitempty"`
	IsActive    bool     `json:"is_active"`
	Locked      bool     `json:"locked,omitempty"`
}

// Marketplace is the strategy marketplace listing.
type Marketplace struct {
	Offerings       []StrategyOffering `json:"offerings"`
	LockedOfferings []StrategyOffering `json:"locked_offerings"`
}
