package core

import "testing"

func TestBaseToken(t *testing.T) {
	tests := []struct {
		input string
		want  Token
	}{
		{"BTC", "BTC"},
		{"btc", "BTC"},
		{"BTC/USDT", "BTC"},
		{"eth-usdt", "ETH"},
		{"SOL_USDT", "SOL"},
		{"BNBUSDT", "BNB"},
		{"XRPUSDC", "XRP"},
		{"USDT", "USDT"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := BaseToken(tt.input); got != tt.want {
				t.Errorf("BaseToken(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPairDisplay(t *testing.T) {
	if got := PairDisplay("sol"); got != "SOL/USDT" {
		t.Errorf("PairDisplay(sol) = %q", got)
	}
}

func TestParseTimeframe(t *testing.T) {
	if got := ParseTimeframe(" 4h "); got != Timeframe4H {
		t.Errorf("ParseTimeframe = %q", got)
	}
}

func TestValidateToken(t *testing.T) {
	valid := []string{"BTC", "btc/usdt", "XRPUSDT"}
	for _, s := range valid {
		if err := ValidateToken(s); err != nil {
			t.Errorf("ValidateToken(%q) unexpected error: %v", s, err)
		}
	}

	invalid := []string{"", "   ", "B", "BTC$", "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"}
	for _, s := range invalid {
		if err := ValidateToken(s); err == nil {
			t.Errorf("ValidateToken(%q) expected error", s)
		}
	}
}
