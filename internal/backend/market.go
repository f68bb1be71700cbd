package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Ticker is one row of the market overview.
type Ticker struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change_24h"`
}

// MarketSummary returns prices for the given symbols.
func (c *Client) MarketSummary(ctx context.Context, symbols []string) ([]Ticker, error) {
	var out []Ticker
	if err := c.Do(ctx, http.MethodGet, "/market/summary", &out, Query("symbols", strings.Join(symbols, ","))); err != nil {
		return nil, err
	}
	return out, nil
}

// Candle is one OHLCV bar.
type Candle struct {
	Time   FlexString `json:"time"`
	Open   float64    `json:"open"`
	High   float64    `json:"high"`
	Low    float64    `json:"low"`
	Close  float64    `json:"close"`
	Volume float64    `json:"volume"`
}

// OHLCV returns candles for a token.
func (c *Client) OHLCV(ctx context.Context, token, timeframe string, limit int) ([]Candle, error) {
	if timeframe == "" {
		timeframe = "4h"
	}
	var out []Candle
	err := c.Do(ctx, http.MethodGet, "/market/ohlcv/"+url.PathEscape(token), &out,
		Query("timeframe", timeframe),
		Query("limit", itoa(limit)),
		Endpoint("/market/ohlcv/{token}"),
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// NewsItem is one headline.
type NewsItem struct {
	ID          FlexString `json:"id"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	PublishedAt string     `json:"published_at"`
	Source      struct {
		Title string `json:"title"`
	} `json:"source"`
	Currencies []struct {
		Code string `json:"code"`
		Slug string `json:"slug"`
	} `json:"currencies"`
}

// News returns the latest headlines.
func (c *Client) News(ctx context.Context, limit int) ([]NewsItem, error) {
	var out struct {
		Results []NewsItem `json:"results"`
	}
	if err := c.Do(ctx, http.MethodGet, "/news/", &out, Query("limit", itoa(limit))); err != nil {
		return nil, err
	}
	return out.Results, nil
}
