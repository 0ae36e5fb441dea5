package binance

import (
	"strings"
	"time"
)

type Config struct {
	RESTBaseURL string
	APIKey      string
	APISecret   string
	HTTPTimeout time.Duration

	Symbol     string
	BaseAsset  string
	QuoteAsset string
}

func (c *Config) withDefaults() Config {
	out := *c
	out.RESTBaseURL = strings.TrimSpace(out.RESTBaseURL)
	if out.RESTBaseURL == "" {
		out.RESTBaseURL = "https://api.binance.com"
	}
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = 5 * time.Second
	}
	out.Symbol = strings.ToUpper(strings.TrimSpace(out.Symbol))
	out.BaseAsset = strings.ToUpper(strings.TrimSpace(out.BaseAsset))
	out.QuoteAsset = strings.ToUpper(strings.TrimSpace(out.QuoteAsset))
	return out
}
