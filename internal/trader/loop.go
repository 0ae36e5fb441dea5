package trader

import (
	"context"
	"fmt"
	"math"
	"time"

	"quotebot/internal/gateway/exchange"
	"quotebot/internal/gateway/notifier"
	"quotebot/internal/logger"
	"quotebot/internal/market"
	"quotebot/internal/metrics"
	"quotebot/internal/pkg/circuit"
	"quotebot/internal/pkg/clock"
	"quotebot/internal/pkg/jsonutil"
	"quotebot/internal/store/tradelog"
	"quotebot/internal/strategy"
)

// Buy sizing: spend at most this share of the free quote balance, always
// leaving a small reserve behind.
const (
	buyBalanceFraction = 0.05
	buyBalanceReserve  = 5.0
)

// Notifier is the outbound notification collaborator. Implementations must
// be fire-and-forget; the loop ignores their failures.
type Notifier interface {
	OnBuy(fillPrice, qty float64, reason string)
	OnSell(fillPrice, qty, pnl float64, reason string)
	OnReport(r notifier.ReportSnapshot)
}

// Config are the loop's fetch parameters.
type Config struct {
	Symbol         string
	BaseAsset      string
	QuoteAsset     string
	CandleInterval string
	CandleLimit    int
	BookDepth      int
	TapeLimit      int
	CallTimeout    time.Duration
	RSIPeriod      int
}

// Loop runs one full polling cycle at a time: fetch, decide, execute,
// commit, notify. Cycles never overlap; the scheduler calls RunCycle
// synchronously.
type Loop struct {
	cfg      Config
	ex       exchange.Exchange
	gen      *strategy.Generator
	state    *EngineState
	vol      *market.VolatilityEstimator
	rateEMA  market.RateEMA
	notify   Notifier
	trades   *tradelog.Store
	met      *metrics.Set
	breaker  *circuit.Breaker
	clock    clock.Clock
}

// LoopParams collects the collaborators; Trades and Metrics are optional.
type LoopParams struct {
	Config   Config
	Exchange exchange.Exchange
	Signals  *strategy.Generator
	State    *EngineState
	Notifier Notifier
	Trades   *tradelog.Store
	Metrics  *metrics.Set
	Clock    clock.Clock
}

func NewLoop(p LoopParams) *Loop {
	if p.Clock == nil {
		p.Clock = clock.Real()
	}
	if p.Config.CallTimeout <= 0 {
		p.Config.CallTimeout = 5 * time.Second
	}
	if p.State == nil {
		p.State = NewEngineState(p.Clock.Now())
	}
	return &Loop{
		cfg:     p.Config,
		ex:      p.Exchange,
		gen:     p.Signals,
		state:   p.State,
		vol:     market.NewVolatilityEstimator(),
		notify:  p.Notifier,
		trades:  p.Trades,
		met:     p.Metrics,
		breaker: circuit.NewBreaker("exchange", 5, 30*time.Second),
		clock:   p.Clock,
	}
}

// State exposes the engine state for read-only observers.
func (l *Loop) State() *EngineState { return l.state }

// BreakerState reports the exchange circuit breaker state.
func (l *Loop) BreakerState() circuit.State { return l.breaker.State() }

// RunCycle performs one poll. Every error is contained here: the caller just
// logs and waits for the next tick, state is only mutated after a confirmed
// fill.
func (l *Loop) RunCycle(ctx context.Context) error {
	if !l.breaker.Allow() {
		logger.Warnf("cycle skipped: exchange breaker open")
		return nil
	}

	md, err := l.fetchMarketData(ctx)
	if err != nil {
		l.breaker.RecordFailure()
		if l.met != nil {
			l.met.CycleErrors.Inc()
		}
		return fmt.Errorf("market data fetch failed: %w", err)
	}
	l.breaker.RecordSuccess()

	// Signal extraction.
	l.vol.Observe(md.price)
	sigma := l.vol.Estimate()
	ofi := market.OrderFlowImbalance(md.book)
	rate := market.TradeRate(md.tape)
	baseline := rate
	if l.rateEMA.Seeded() {
		baseline = l.rateEMA.Value()
	}
	l.rateEMA.Update(rate)

	// Reconcile local position with the externally observed balance before
	// any rule runs.
	baseHeld := md.balances.Asset(l.cfg.BaseAsset).Total()
	pos := l.gen.Reconcile(l.state.Position(), baseHeld, md.price)
	l.state.applyReconciled(pos)

	quoteBal := md.balances.Asset(l.cfg.QuoteAsset)
	equity := quoteBal.Total() + baseHeld*md.price
	invRatio := 0.0
	if equity > 0 {
		invRatio = baseHeld * md.price / equity
	}

	quote := strategy.Compute(l.gen.Params(), strategy.QuoteInput{
		Mid:          md.price,
		Volatility:   sigma,
		Inventory:    baseHeld,
		OFI:          ofi,
		TradeRate:    rate,
		TradeRateAvg: baseline,
		BestBid:      md.book.BestBid(),
		BestAsk:      md.book.BestAsk(),
	})

	closes := market.Closes(md.candles)
	dec := l.gen.Evaluate(strategy.SignalInput{
		Price:          md.price,
		BaseHeld:       baseHeld,
		QuoteFree:      quoteBal.Free,
		InventoryRatio: invRatio,
		Closes:         closes,
		OFI:            ofi,
		BookSpreadBps:  quote.BookSpreadBps,
	}, pos)

	if l.met != nil {
		l.met.Cycles.Inc()
		l.met.Decisions.WithLabelValues(dec.Action.String()).Inc()
		l.met.InventoryRatio.Set(invRatio)
		l.met.Volatility.Set(sigma)
		l.met.TradeRate.Set(rate)
		l.met.ModelSpreadPct.Set(quote.ModelSpreadPct)
	}

	switch dec.Action {
	case strategy.ActionBuy:
		l.executeBuy(ctx, dec, quoteBal.Free)
	case strategy.ActionSell, strategy.ActionDump:
		l.executeSell(ctx, dec, md.balances.Asset(l.cfg.BaseAsset).Free, pos)
	}

	l.state.setLastCycle(CycleInfo{
		Time:           l.clock.Now(),
		Price:          md.price,
		Decision:       dec,
		Quote:          quote,
		Volatility:     sigma,
		OFI:            ofi,
		TradeRate:      rate,
		TradeRateAvg:   l.rateEMA.Value(),
		InventoryRatio: invRatio,
		RSI:            market.RSI(closes, l.cfg.RSIPeriod),
	})
	return nil
}

type marketData struct {
	price    float64
	candles  []market.Candle
	book     market.OrderBook
	tape     []market.Trade
	balances exchange.Balances
}

func (l *Loop) fetchMarketData(ctx context.Context) (marketData, error) {
	var md marketData
	var err error

	if md.candles, err = fetch(ctx, l.cfg.CallTimeout, func(c context.Context) ([]market.Candle, error) {
		return l.ex.Candles(c, l.cfg.CandleInterval, l.cfg.CandleLimit)
	}); err != nil {
		return md, err
	}
	if md.book, err = fetch(ctx, l.cfg.CallTimeout, func(c context.Context) (market.OrderBook, error) {
		return l.ex.OrderBook(c, l.cfg.BookDepth)
	}); err != nil {
		return md, err
	}
	if md.tape, err = fetch(ctx, l.cfg.CallTimeout, func(c context.Context) ([]market.Trade, error) {
		return l.ex.RecentTrades(c, l.cfg.TapeLimit)
	}); err != nil {
		return md, err
	}
	if md.balances, err = fetch(ctx, l.cfg.CallTimeout, func(c context.Context) (exchange.Balances, error) {
		return l.ex.Balances(c)
	}); err != nil {
		return md, err
	}

	md.price = md.book.Mid()
	if md.price <= 0 {
		if md.price, err = fetch(ctx, l.cfg.CallTimeout, func(c context.Context) (float64, error) {
			return l.ex.CurrentPrice(c)
		}); err != nil {
			return md, err
		}
	}
	if md.price <= 0 {
		return md, fmt.Errorf("no usable price for %s", l.cfg.Symbol)
	}
	return md, nil
}

// fetch wraps one exchange read with the per-call timeout.
func fetch[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(callCtx)
}

func (l *Loop) executeBuy(ctx context.Context, dec strategy.Decision, quoteFree float64) {
	spend := math.Min(buyBalanceFraction*quoteFree, quoteFree-buyBalanceReserve)
	if spend <= 0 {
		logger.Debugf("buy skipped: spendable quote balance %.4f", spend)
		return
	}
	fill, err := l.orderCall(ctx, func(c context.Context) (*exchange.Fill, error) {
		return l.ex.MarketBuy(c, spend)
	})
	if err != nil {
		logger.Warnf("buy order failed (no state change): %v", err)
		l.countOrder("BUY", "error")
		return
	}
	if fill == nil {
		logger.Infof("buy not filled (rejected or below minimum), no state change")
		l.countOrder("BUY", "rejected")
		return
	}
	now := l.clock.Now()
	l.state.commitBuy(fill, now)
	l.countOrder("BUY", "filled")
	logger.Infof("BUY filled %s qty=%.8g price=%.8g reason=%s", l.cfg.Symbol, fill.Quantity, fill.Price, dec.Reason)
	if len(fill.Raw) > 0 {
		logger.Debugf("order response:\n%s", jsonutil.Pretty(string(fill.Raw)))
	}
	if l.trades != nil {
		if err := l.trades.RecordBuy(l.cfg.Symbol, dec.Reason, fill); err != nil {
			logger.Warnf("trade log write failed: %v", err)
		}
	}
	if l.notify != nil {
		l.notify.OnBuy(fill.Price, fill.Quantity, dec.Reason)
	}
}

func (l *Loop) executeSell(ctx context.Context, dec strategy.Decision, baseFree float64, pos strategy.Position) {
	if baseFree < strategy.BaseDustThreshold {
		logger.Debugf("sell skipped: base balance %.8f below dust threshold", baseFree)
		return
	}
	fill, err := l.orderCall(ctx, func(c context.Context) (*exchange.Fill, error) {
		return l.ex.MarketSell(c, baseFree)
	})
	if err != nil {
		logger.Warnf("sell order failed (no state change): %v", err)
		l.countOrder("SELL", "error")
		return
	}
	if fill == nil {
		logger.Infof("sell not filled (rejected or below minimum), no state change")
		l.countOrder("SELL", "rejected")
		return
	}
	pnl := 0.0
	if pos.EntryPrice > 0 {
		pnl = (fill.Price - pos.EntryPrice) * fill.Quantity
	}
	l.state.commitSell(pnl)
	l.countOrder("SELL", "filled")
	if l.met != nil {
		l.met.CumulativePnL.Set(l.state.Snapshot().Stats.CumulativePnL)
	}
	logger.Infof("SELL filled %s qty=%.8g price=%.8g pnl=%+.4f reason=%s",
		l.cfg.Symbol, fill.Quantity, fill.Price, pnl, dec.Reason)
	if len(fill.Raw) > 0 {
		logger.Debugf("order response:\n%s", jsonutil.Pretty(string(fill.Raw)))
	}
	if l.trades != nil {
		if err := l.trades.RecordSell(l.cfg.Symbol, dec.Reason, fill, pnl); err != nil {
			logger.Warnf("trade log write failed: %v", err)
		}
	}
	if l.notify != nil {
		l.notify.OnSell(fill.Price, fill.Quantity, pnl, dec.Reason)
	}
}

func (l *Loop) orderCall(ctx context.Context, fn func(context.Context) (*exchange.Fill, error)) (*exchange.Fill, error) {
	callCtx, cancel := context.WithTimeout(ctx, l.cfg.CallTimeout)
	defer cancel()
	fill, err := fn(callCtx)
	if callCtx.Err() != nil {
		// A timed-out order is treated as "no fill", not as an error that
		// needs unwinding.
		return nil, nil
	}
	return fill, err
}

func (l *Loop) countOrder(side, result string) {
	if l.met != nil {
		l.met.Orders.WithLabelValues(side, result).Inc()
	}
}
