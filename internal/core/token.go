package core

import (
	"fmt"
	"regexp"
	"strings"
)

// Quote currencies stripped from pair symbols, in detection order.
var quoteCurrencies = []string{"USDT", "BUSD", "USDC", "USD"}

var validToken = regexp.MustCompile(`^[A-Z0-9]{2,20}$`)

// BaseToken reduces a pair or token symbol to its base asset.
// "btc", "BTC/USDT", "btc-usdt", "BTCUSDT" all yield "BTC".
func BaseToken(symbol string) Token {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if i := strings.IndexAny(s, "/-_"); i > 0 {
		return Token(s[:i])
	}
	for _, quote := range quoteCurrencies {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return Token(strings.TrimSuffix(s, quote))
		}
	}
	return Token(s)
}

// PairDisplay formats a token as its USDT pair, e.g. "BTC/USDT".
func PairDisplay(t Token) string {
	return string(BaseToken(string(t))) + "/USDT"
}

// ParseTimeframe upper-cases a timeframe, accepting "4h" and "4H" alike.
func ParseTimeframe(s string) Timeframe {
	return Timeframe(strings.ToUpper(strings.TrimSpace(s)))
}

// ValidateToken checks that a symbol reduces to a well-formed token.
func ValidateToken(symbol string) error {
	if strings.TrimSpace(symbol) == "" {
		return fmt.Errorf("token cannot be empty")
	}
	if len(symbol) > 30 {
		return fmt.Errorf("token too long: %s", symbol)
	}
	if !validToken.MatchString(string(BaseToken(symbol))) {
		return fmt.Errorf("invalid token format: %s", symbol)
	}
	return nil
}
