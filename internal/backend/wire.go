package backend

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/tradercopilot/swingdash/internal/core"
)

// FlexString decodes a JSON string or number into a string.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		*f = ""
		return nil
	}
	*f = FlexString(n.String())
	return nil
}

// LogEvaluation is the outcome attached to an evaluated log entry.
type LogEvaluation struct {
	Result    string   `json:"result"`
	PnLR      *float64 `json:"pnl_r"`
	ExitPrice *float64 `json:"exit_price"`
}

// LogEntry is one signal record as stored by the backend.
type LogEntry struct {
	ID         FlexString       `json:"id"`
	Timestamp  string           `json:"timestamp"`
	Token      string           `json:"token"`
	Timeframe  string           `json:"timeframe"`
	Direction  string           `json:"direction"`
	Type       string           `json:"type"`
	Entry      float64          `json:"entry"`
	TP         float64          `json:"tp"`
	SL         float64          `json:"sl"`
	Confidence float64          `json:"confidence"`
	Rationale  string           `json:"rationale"`
	Source     string           `json:"source"`
	Mode       string           `json:"mode"`
	StrategyID FlexString       `json:"strategy_id"`
	Status     string           `json:"status"`
	PnL        *float64         `json:"pnl"`
	Saved      bool             `json:"is_saved"`
	Evaluation *LogEvaluation   `json:"evaluation"`
	Indicators map[string]any   `json:"indicators"`
	Watchlist  []core.WatchItem `json:"watchlist"`
}

// ToSignal maps a log entry onto the display model.
func (l LogEntry) ToSignal() core.Signal {
	direction := l.Direction
	if direction == "" {
		direction = l.Type
	}
	token := strings.ToUpper(l.Token)
	if token == "" {
		token = string(core.TokenBTC)
	}
	tf := l.Timeframe
	if tf == "" {
		tf = "4h"
	}

	s := core.Signal{
		ID:          string(l.ID),
		Token:       core.BaseToken(token),
		Timeframe:   core.ParseTimeframe(tf),
		Direction:   core.ParseDirection(direction),
		EntryPrice:  l.Entry,
		TargetPrice: l.TP,
		StopLoss:    l.SL,
		Confidence:  ConfidencePercent(l.Confidence),
		Rationale:   l.Rationale,
		Indicators:  l.Indicators,
		Watchlist:   l.Watchlist,
		StrategyID:  string(l.StrategyID),
		Saved:       l.Saved,
		PnL:         l.PnL,
	}
	if ts, ok := core.ParseTimestamp(l.Timestamp); ok {
		s.Timestamp = ts
	}

	switch {
	case l.Evaluation != nil:
		s.Status = core.StatusClosed
		s.Evaluation = core.EvaluationEvaluated
		if s.PnL == nil {
			s.PnL = l.Evaluation.PnLR
		}
	case l.Status == "" || strings.EqualFold(l.Status, "OPEN") || strings.EqualFold(l.Status, string(core.StatusActive)):
		s.Status = core.StatusActive
		s.Evaluation = core.EvaluationPending
	default:
		s.Status = parseStatus(l.Status)
		s.Evaluation = core.EvaluationEvaluated
	}
	return s
}

func parseStatus(s string) core.SignalStatus {
	switch st := core.SignalStatus(strings.ToUpper(s)); st {
	case core.StatusActive, core.StatusClosed, core.StatusCancelled,
		core.StatusWatch, core.StatusCreated, core.StatusArchived:
		return st
	default:
		return core.StatusClosed
	}
}

// ConfidencePercent scales a 0..1 confidence to a percentage; values
// already above 1 are taken as percentages.
func ConfidencePercent(c float64) float64 {
	if c <= 1 {
		return c * 100
	}
	return c
}

// logList accepts the list shapes the log endpoints return.
type logList []LogEntry

func (l *logList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []LogEntry
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var wrapped struct {
		Items   []LogEntry `json:"items"`
		Logs    []LogEntry `json:"logs"`
		Results []LogEntry `json:"results"`
		Signals []LogEntry `json:"signals"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	switch {
	case wrapped.Items != nil:
		*l = wrapped.Items
	case wrapped.Logs != nil:
		*l = wrapped.Logs
	case wrapped.Results != nil:
		*l = wrapped.Results
	default:
		*l = wrapped.Signals
	}
	return nil
}

func (l logList) signals() []core.Signal {
	out := make([]core.Signal, 0, len(l))
	for _, entry := range l {
		out = append(out, entry.ToSignal())
	}
	return out
}

func itoa(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
