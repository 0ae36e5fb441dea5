// Package app wires the configuration, exchange gateway, strategy, trading
// loop and HTTP surface into one runnable unit.
package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"quotebot/internal/config"
	"quotebot/internal/logger"
	"quotebot/internal/scheduler"
	"quotebot/internal/store/tradelog"
	"quotebot/internal/trader"
	httpapi "quotebot/internal/transport/http"
)

// App holds the built collaborators. Construct with NewApp, start with Run.
type App struct {
	cfg     *config.Config
	watcher *config.Watcher
	loop    *trader.Loop
	httpSrv *httpapi.Server
	trades  *tradelog.Store
}

// NewApp builds the application from a config watcher. The watcher stays
// registered so parameter edits apply without a restart.
func NewApp(ctx context.Context, watcher *config.Watcher) (*App, error) {
	if watcher == nil {
		return nil, fmt.Errorf("nil config watcher")
	}
	cfg := watcher.Current()
	if cfg == nil {
		return nil, fmt.Errorf("config watcher holds no config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return build(ctx, cfg, watcher)
}

// Run starts the trade scheduler, the report scheduler and the HTTP server,
// and blocks until ctx is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	group, ctx := errgroup.WithContext(ctx)

	tradeInterval := secondsToDuration(a.cfg.Trading.TradeIntervalSeconds)
	reportInterval := secondsToDuration(a.cfg.Trading.StatusReportIntervalSeconds)

	group.Go(func() error {
		s := scheduler.NewIntervalScheduler(ctx, "trade", tradeInterval)
		s.RunImmediately = true
		s.Start(func() {
			if err := a.loop.RunCycle(ctx); err != nil {
				logger.Errorf("trade cycle failed: %v", err)
			}
		})
		return nil
	})

	group.Go(func() error {
		s := scheduler.NewIntervalScheduler(ctx, "report", reportInterval)
		s.Start(a.loop.RunReport)
		return nil
	})

	if a.httpSrv != nil {
		group.Go(func() error {
			logger.Infof("http server listening on %s", a.httpSrv.Addr())
			if err := a.httpSrv.Start(ctx); err != nil {
				return fmt.Errorf("http server error: %w", err)
			}
			return nil
		})
	}

	err := group.Wait()
	a.Close()
	return err
}

// Close releases the trade log. Safe to call more than once.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.trades != nil {
		if err := a.trades.Close(); err != nil {
			logger.Warnf("trade log close: %v", err)
		}
		a.trades = nil
	}
}

// Loop exposes the trading loop for test and replay harnesses.
func (a *App) Loop() *trader.Loop {
	if a == nil {
		return nil
	}
	return a.loop
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}
