// Package symbol normalizes trading pair notation. Config accepts both the
// slash form ("BTC/USDT") and the venue's concatenated form ("BTCUSDT").
package symbol

import "strings"

type Symbol struct {
	Base  string
	Quote string
}

// Binance returns the concatenated spot symbol, or "" when incomplete.
func (s Symbol) Binance() string {
	if s.Base == "" || s.Quote == "" {
		return ""
	}
	return s.Base + s.Quote
}

// quote assets recognized when splitting a concatenated symbol
var knownQuotes = []string{"USDT", "BUSD", "USDC", "TUSD", "BTC", "ETH", "BNB"}

func Parse(s string) Symbol {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Symbol{}
	}
	if parts := strings.SplitN(s, "/", 2); len(parts) == 2 {
		return Symbol{
			Base:  strings.TrimSpace(parts[0]),
			Quote: strings.TrimSpace(parts[1]),
		}
	}
	for _, quote := range knownQuotes {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return Symbol{Base: s[:len(s)-len(quote)], Quote: quote}
		}
	}
	return Symbol{}
}

func IsValid(s string) bool {
	sym := Parse(s)
	return sym.Base != "" && sym.Quote != ""
}
