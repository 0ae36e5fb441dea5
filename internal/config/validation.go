package config

import (
	"fmt"
	"strings"
)

func validate(c *Config) error {
	if c == nil {
		return fmt.Errorf("nil config")
	}
	if strings.ToLower(c.Exchange.Name) != "binance" {
		return fmt.Errorf("unsupported exchange %q", c.Exchange.Name)
	}
	if c.Strategy.MaxInventoryRatio > 1 {
		return fmt.Errorf("mm_max_inventory_ratio must be <= 1, got %v", c.Strategy.MaxInventoryRatio)
	}
	if c.Strategy.SpreadWidenFactor < 1 {
		return fmt.Errorf("mm_spread_widen_factor must be >= 1, got %v", c.Strategy.SpreadWidenFactor)
	}
	if c.Strategy.TradeRateSpike < 1 {
		return fmt.Errorf("mm_trade_rate_spike must be >= 1, got %v", c.Strategy.TradeRateSpike)
	}
	if c.Trading.BookDepth > 5 {
		// The signal model only reads the top five levels.
		c.Trading.BookDepth = 5
	}
	return nil
}
