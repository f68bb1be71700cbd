// Package telegram delivers signal alerts to a user's linked Telegram chat.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tradercopilot/swingdash/internal/core"
	"github.com/tradercopilot/swingdash/internal/entitlement"
)

// DefaultBaseURL is the Telegram Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// ErrNotConnected is returned when the user has not linked a chat.
var ErrNotConnected = core.WrapError(core.ErrValidation, errors.New("telegram is not connected"))

// Telegram sends messages through the Bot API. A zero bot token disables it.
type Telegram struct {
	botToken string
	baseURL  string
	client   *http.Client
	logger   *zap.Logger
}

// Option configures a Telegram notifier.
type Option func(*Telegram)

// WithBaseURL points the notifier at another Bot API host.
func WithBaseURL(u string) Option {
	return func(t *Telegram) { t.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Telegram) { t.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Telegram) { t.logger = l }
}

// New creates a new Telegram notifier
func New(botToken string, opts ...Option) *Telegram {
	t := &Telegram{
		botToken: strings.TrimSpace(botToken),
		baseURL:  DefaultBaseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Enabled reports whether a bot token is configured.
func (t *Telegram) Enabled() bool {
	return t != nil && t.botToken != ""
}

// SendTest sends a test alert to chatID.
func (t *Telegram) SendTest(ctx context.Context, chatID string) error {
	text := "✅ *Trader Copilot*\nTest alert received. Signals for your plan will be delivered to this chat."
	return t.sendMessage(ctx, chatID, text)
}

// SendSignals sends one message summarizing signals.
func (t *Telegram) SendSignals(ctx context.Context, chatID string, signals []core.Signal) error {
	if len(signals) == 0 {
		return nil
	}
	if len(signals) == 1 {
		return t.sendMessage(ctx, chatID, FormatSignal(signals[0]))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 *%d Trading Signals*\n\n", len(signals)))
	for i, signal := range signals {
		sb.WriteString(FormatSignal(signal))
		if i < len(signals)-1 {
			sb.WriteString("\n---\n\n")
		}
	}
	return t.sendMessage(ctx, chatID, sb.String())
}

// SendTestFor checks the user's Telegram access and linked chat before
// sending a test alert.
func (t *Telegram) SendTestFor(ctx context.Context, r entitlement.Resolver) error {
	chatID, err := chatFor(r)
	if err != nil {
		return err
	}
	return t.SendTest(ctx, chatID)
}

// SendSignalsFor delivers the user's accessible signals to their chat.
// Locked signals are dropped.
func (t *Telegram) SendSignalsFor(ctx context.Context, r entitlement.Resolver, signals []core.Signal) (int, error) {
	chatID, err := chatFor(r)
	if err != nil {
		return 0, err
	}
	open := make([]core.Signal, 0, len(signals))
	for _, s := range signals {
		if r.CanAccessSignal(s) {
			open = append(open, s)
		}
	}
	return len(open), t.SendSignals(ctx, chatID, open)
}

func chatFor(r entitlement.Resolver) (string, error) {
	if err := r.RequireTelegram(); err != nil {
		return "", err
	}
	if r.User == nil || !r.User.TelegramConnected() {
		return "", ErrNotConnected
	}
	return r.User.TelegramChatID, nil
}

// FormatSignal renders a signal as a Markdown message.
func FormatSignal(signal core.Signal) string {
	var sb strings.Builder

	emoji := "📈"
	switch signal.Direction {
	case core.DirectionShort:
		emoji = "📉"
	case core.DirectionNeutral:
		emoji = "⏸️"
	}

	sb.WriteString(fmt.Sprintf("%s *%s* %s - %s\n", emoji, core.PairDisplay(signal.Token), signal.Timeframe, signal.Direction))
	sb.WriteString(fmt.Sprintf("📊 Confidence: %.0f%%\n", signal.Confidence))

	if signal.EntryPrice > 0 {
		sb.WriteString(fmt.Sprintf("💰 Entry: $%s\n", price(signal.EntryPrice)))
	}
	if signal.TargetPrice > 0 {
		sb.WriteString(fmt.Sprintf("🎯 Target: $%s\n", price(signal.TargetPrice)))
	}
	if signal.StopLoss > 0 {
		sb.WriteString(fmt.Sprintf("🛑 Stop: $%s\n", price(signal.StopLoss)))
	}
	if signal.Rationale != "" {
		sb.WriteString(fmt.Sprintf("💡 %s\n", signal.Rationale))
	}

	sb.WriteString(fmt.Sprintf("⏰ %s UTC", signal.Timestamp.UTC().Format("2006-01-02 15:04")))

	return sb.String()
}

func price(v float64) string {
	if v < 1 {
		return fmt.Sprintf("%.4f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func (t *Telegram) sendMessage(ctx context.Context, chatID, text string) error {
	if !t.Enabled() {
		return core.ErrNotifierDisabled
	}
	if strings.TrimSpace(chatID) == "" {
		return ErrNotConnected
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)

	payload := map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return core.WrapError(core.ErrNotifierFailed, fmt.Errorf("marshal payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return core.WrapError(core.ErrNotifierFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		// The URL embeds the bot token; keep it out of the error.
		var uerr *neturl.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return core.WrapError(core.ErrNotifierFailed, fmt.Errorf("send message: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var result struct {
			Description string `json:"description"`
		}
		json.NewDecoder(resp.Body).Decode(&result)
		t.logger.Warn("telegram rejected message",
			zap.Int("status", resp.StatusCode),
			zap.String("description", result.Description))
		return core.WrapError(core.ErrNotifierFailed, fmt.Errorf("API error (status %d): %s", resp.StatusCode, result.Description))
	}

	return nil
}
