package app

import (
	"context"
	"fmt"
	"time"

	"quotebot/internal/config"
	"quotebot/internal/gateway/binance"
	"quotebot/internal/gateway/notifier"
	"quotebot/internal/logger"
	"quotebot/internal/metrics"
	"quotebot/internal/pkg/clock"
	"quotebot/internal/store/tradelog"
	"quotebot/internal/strategy"
	"quotebot/internal/trader"
	httpapi "quotebot/internal/transport/http"
)

func build(ctx context.Context, cfg *config.Config, watcher *config.Watcher) (*App, error) {
	source, err := binance.New(ctx, binance.Config{
		RESTBaseURL: cfg.Exchange.RESTBaseURL,
		APIKey:      cfg.Exchange.APIKey,
		APISecret:   cfg.Exchange.APISecret,
		HTTPTimeout: time.Duration(cfg.Exchange.HTTPTimeoutSeconds) * time.Second,
		Symbol:      cfg.Exchange.Symbol,
		BaseAsset:   cfg.Exchange.BaseAsset,
		QuoteAsset:  cfg.Exchange.QuoteAsset,
	})
	if err != nil {
		return nil, fmt.Errorf("build exchange gateway: %w", err)
	}

	gen := strategy.NewGenerator(strategyParams(cfg.Strategy), clock.Real())
	gen.SetFallbackExits(cfg.Strategy.TakeProfitPercent, cfg.Strategy.StopLossPercent)
	watcher.OnChange(func(next *config.Config) {
		gen.SetParams(strategyParams(next.Strategy))
		gen.SetFallbackExits(next.Strategy.TakeProfitPercent, next.Strategy.StopLossPercent)
		logger.Infof("strategy parameters reloaded")
	})

	trades, err := tradelog.Open(cfg.Store.TradeLogPath)
	if err != nil {
		return nil, fmt.Errorf("open trade log: %w", err)
	}

	met := metrics.New()
	state := trader.NewEngineState(time.Now())

	loop := trader.NewLoop(trader.LoopParams{
		Config: trader.Config{
			Symbol:         cfg.Exchange.Symbol,
			BaseAsset:      cfg.Exchange.BaseAsset,
			QuoteAsset:     cfg.Exchange.QuoteAsset,
			CandleInterval: cfg.Trading.CandleInterval,
			CandleLimit:    cfg.Trading.CandleLimit,
			BookDepth:      cfg.Trading.BookDepth,
			TapeLimit:      cfg.Trading.TapeLimit,
			RSIPeriod:      cfg.Strategy.RSIPeriod,
		},
		Exchange: source,
		Signals:  gen,
		State:    state,
		Notifier: buildNotifier(cfg),
		Trades:   trades,
		Metrics:  met,
	})

	httpSrv, err := httpapi.NewServer(httpapi.ServerConfig{
		Addr:         cfg.App.HTTPAddr,
		Symbol:       cfg.Exchange.Symbol,
		State:        state,
		BreakerState: loop.BreakerState,
		Stats: func() httpapi.GatewayStats {
			gs := source.Stats()
			return httpapi.GatewayStats{Requests: gs.Requests, Errors: gs.Errors, LastError: gs.LastError}
		},
		Trades:  trades,
		Metrics: met,
	})
	if err != nil {
		trades.Close()
		return nil, fmt.Errorf("build http server: %w", err)
	}

	return &App{
		cfg:     cfg,
		watcher: watcher,
		loop:    loop,
		httpSrv: httpSrv,
		trades:  trades,
	}, nil
}

func buildNotifier(cfg *config.Config) trader.Notifier {
	tg := cfg.Notify.Telegram
	if tg.Enabled && tg.BotToken != "" && tg.ChatID != "" {
		logger.Infof("telegram notifications enabled chat_id=%s", tg.ChatID)
		return notifier.NewTradeNotifier(notifier.NewTelegram(tg.BotToken, tg.ChatID), cfg.Exchange.Symbol)
	}
	return notifier.NewTradeNotifier(notifier.Noop{}, cfg.Exchange.Symbol)
}

func strategyParams(sc config.StrategyConfig) strategy.Params {
	return strategy.Params{
		Gamma:             sc.Gamma,
		ArrivalRate:       sc.ArrivalRate,
		BookLiquidity:     sc.BookLiquidity,
		TimeHorizonSec:    sc.TimeHorizonSec,
		MinSpreadBps:      sc.MinSpreadBps,
		MaxInventoryRatio: sc.MaxInventoryRatio,
		OFIWeight:         sc.OFIWeight,
		TradeRateSpike:    sc.TradeRateSpike,
		SpreadWidenFactor: sc.SpreadWidenFactor,
	}
}
