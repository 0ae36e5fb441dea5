package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
exchange:
  name: binance
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", cfg.Exchange.Symbol)
	assert.Equal(t, "BTC", cfg.Exchange.BaseAsset)
	assert.Equal(t, "USDT", cfg.Exchange.QuoteAsset)
	assert.Equal(t, 0.1, cfg.Strategy.Gamma)
	assert.Equal(t, 140.0, cfg.Strategy.ArrivalRate)
	assert.Equal(t, 1.05, cfg.Strategy.BookLiquidity)
	assert.Equal(t, 60.0, cfg.Strategy.TimeHorizonSec)
	assert.Equal(t, 0.8, cfg.Strategy.MaxInventoryRatio)
	assert.Equal(t, 0.25, cfg.Strategy.OFIWeight)
	assert.Equal(t, 3.0, cfg.Strategy.TradeRateSpike)
	assert.Equal(t, 2.0, cfg.Strategy.SpreadWidenFactor)
	assert.Equal(t, 0.5, cfg.Trading.TradeIntervalSeconds)
	assert.Equal(t, 60.0, cfg.Trading.StatusReportIntervalSeconds)
	assert.Equal(t, "1m", cfg.Trading.CandleInterval)
	assert.Equal(t, 5, cfg.Trading.BookDepth)
	assert.Equal(t, "data/trades.db", cfg.Store.TradeLogPath)
	assert.Equal(t, ":9985", cfg.App.HTTPAddr)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
exchange:
  name: binance
  symbol: ETHUSDT
strategy:
  mm_gamma: 0.2
  mm_a: 90
  mm_time_horizon: 30
trading:
  trade_interval_seconds: 1.5
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ETHUSDT", cfg.Exchange.Symbol)
	assert.Equal(t, "ETH", cfg.Exchange.BaseAsset)
	assert.Equal(t, "USDT", cfg.Exchange.QuoteAsset)
	assert.Equal(t, 0.2, cfg.Strategy.Gamma)
	assert.Equal(t, 90.0, cfg.Strategy.ArrivalRate)
	assert.Equal(t, 30.0, cfg.Strategy.TimeHorizonSec)
	assert.Equal(t, 1.5, cfg.Trading.TradeIntervalSeconds)
}

func TestLoadNormalizesSlashSymbol(t *testing.T) {
	path := writeConfig(t, `
exchange:
  name: binance
  symbol: sol/usdt
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "SOLUSDT", cfg.Exchange.Symbol)
	assert.Equal(t, "SOL", cfg.Exchange.BaseAsset)
	assert.Equal(t, "USDT", cfg.Exchange.QuoteAsset)
}

func TestLoadRejectsUnsupportedExchange(t *testing.T) {
	path := writeConfig(t, `
exchange:
  name: kraken
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsBadStrategyBounds(t *testing.T) {
	for name, body := range map[string]string{
		"inventory ratio above one": `
strategy:
  mm_max_inventory_ratio: 1.2
`,
		"widen factor below one": `
strategy:
  mm_spread_widen_factor: 0.5
`,
		"spike multiple below one": `
strategy:
  mm_trade_rate_spike: 0.9
`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadClampsBookDepth(t *testing.T) {
	path := writeConfig(t, `
trading:
  book_depth: 20
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Trading.BookDepth)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
	_, err = Load("")
	assert.Error(t, err)
}

func TestWatcherCurrentAndReload(t *testing.T) {
	path := writeConfig(t, `
strategy:
  mm_gamma: 0.3
`)
	w, err := NewWatcher(path)
	require.NoError(t, err)

	assert.Equal(t, 0.3, w.Current().Strategy.Gamma)

	var got *Config
	w.OnChange(func(c *Config) { got = c })

	require.NoError(t, os.WriteFile(path, []byte(`
strategy:
  mm_gamma: 0.4
`), 0o644))
	require.NoError(t, w.reload())

	assert.Equal(t, 0.4, w.Current().Strategy.Gamma)
	require.NotNil(t, got)
	assert.Equal(t, 0.4, got.Strategy.Gamma)
}
