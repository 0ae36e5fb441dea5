package config

import (
	"strings"

	"quotebot/internal/pkg/symbol"
)

const (
	defaultLogLevel = "info"
	defaultHTTPAddr = ":9985"

	defaultExchangeName = "binance"
	defaultRESTBaseURL  = "https://api.binance.com"
	defaultHTTPTimeout  = 5
	defaultSymbol       = "BTCUSDT"
	defaultBaseAsset    = "BTC"
	defaultQuoteAsset   = "USDT"

	defaultGamma             = 0.1
	defaultArrivalRate       = 140.0
	defaultBookLiquidity     = 1.05
	defaultTimeHorizonSec    = 60.0
	defaultMinSpreadBps      = 1.0
	defaultMaxInventoryRatio = 0.8
	defaultOFIWeight         = 0.25
	defaultTradeRateSpike    = 3.0
	defaultSpreadWidenFactor = 2.0

	defaultRSIPeriod     = 14
	defaultRSIOversold   = 30.0
	defaultRSIOverbought = 70.0

	defaultTakeProfitPercent = 0.1
	defaultStopLossPercent   = 0.2

	defaultTradeInterval  = 0.5
	defaultReportInterval = 60.0
	defaultCandleInterval = "1m"
	defaultCandleLimit    = 60
	defaultBookDepth      = 5
	defaultTapeLimit      = 60

	defaultTradeLogPath = "data/trades.db"
)

func (c *Config) applyDefaults() {
	c.App.applyDefaults()
	c.Exchange.applyDefaults()
	c.Strategy.applyDefaults()
	c.Trading.applyDefaults()
	c.Store.applyDefaults()
}

func (a *AppConfig) applyDefaults() {
	if strings.TrimSpace(a.LogLevel) == "" {
		a.LogLevel = defaultLogLevel
	}
	if strings.TrimSpace(a.HTTPAddr) == "" {
		a.HTTPAddr = defaultHTTPAddr
	}
}

func (e *ExchangeConfig) applyDefaults() {
	if strings.TrimSpace(e.Name) == "" {
		e.Name = defaultExchangeName
	}
	if strings.TrimSpace(e.RESTBaseURL) == "" {
		e.RESTBaseURL = defaultRESTBaseURL
	}
	if e.HTTPTimeoutSeconds <= 0 {
		e.HTTPTimeoutSeconds = defaultHTTPTimeout
	}
	if strings.TrimSpace(e.Symbol) == "" {
		e.Symbol = defaultSymbol
	}
	// Accept "BTC/USDT" in config, trade "BTCUSDT" on the wire. Base and
	// quote assets are derived from the pair when not set explicitly.
	sym := symbol.Parse(e.Symbol)
	if venue := sym.Binance(); venue != "" {
		e.Symbol = venue
	}
	if strings.TrimSpace(e.BaseAsset) == "" {
		e.BaseAsset = sym.Base
	}
	if strings.TrimSpace(e.BaseAsset) == "" {
		e.BaseAsset = defaultBaseAsset
	}
	if strings.TrimSpace(e.QuoteAsset) == "" {
		e.QuoteAsset = sym.Quote
	}
	if strings.TrimSpace(e.QuoteAsset) == "" {
		e.QuoteAsset = defaultQuoteAsset
	}
}

func (s *StrategyConfig) applyDefaults() {
	if s.Gamma <= 0 {
		s.Gamma = defaultGamma
	}
	if s.ArrivalRate <= 0 {
		s.ArrivalRate = defaultArrivalRate
	}
	if s.BookLiquidity <= 0 {
		s.BookLiquidity = defaultBookLiquidity
	}
	if s.TimeHorizonSec <= 0 {
		s.TimeHorizonSec = defaultTimeHorizonSec
	}
	if s.MinSpreadBps <= 0 {
		s.MinSpreadBps = defaultMinSpreadBps
	}
	if s.MaxInventoryRatio <= 0 {
		s.MaxInventoryRatio = defaultMaxInventoryRatio
	}
	if s.OFIWeight <= 0 {
		s.OFIWeight = defaultOFIWeight
	}
	if s.TradeRateSpike <= 0 {
		s.TradeRateSpike = defaultTradeRateSpike
	}
	if s.SpreadWidenFactor <= 0 {
		s.SpreadWidenFactor = defaultSpreadWidenFactor
	}
	if s.RSIPeriod <= 0 {
		s.RSIPeriod = defaultRSIPeriod
	}
	if s.RSIOversold <= 0 {
		s.RSIOversold = defaultRSIOversold
	}
	if s.RSIOverbought <= 0 {
		s.RSIOverbought = defaultRSIOverbought
	}
	if s.TakeProfitPercent <= 0 {
		s.TakeProfitPercent = defaultTakeProfitPercent
	}
	if s.StopLossPercent <= 0 {
		s.StopLossPercent = defaultStopLossPercent
	}
}

func (t *TradingConfig) applyDefaults() {
	if t.TradeIntervalSeconds <= 0 {
		t.TradeIntervalSeconds = defaultTradeInterval
	}
	if t.StatusReportIntervalSeconds <= 0 {
		t.StatusReportIntervalSeconds = defaultReportInterval
	}
	if strings.TrimSpace(t.CandleInterval) == "" {
		t.CandleInterval = defaultCandleInterval
	}
	if t.CandleLimit <= 0 {
		t.CandleLimit = defaultCandleLimit
	}
	if t.BookDepth <= 0 {
		t.BookDepth = defaultBookDepth
	}
	if t.TapeLimit <= 0 {
		t.TapeLimit = defaultTapeLimit
	}
}

func (s *StoreConfig) applyDefaults() {
	if strings.TrimSpace(s.TradeLogPath) == "" {
		s.TradeLogPath = defaultTradeLogPath
	}
}
