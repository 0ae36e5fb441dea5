package trader

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"quotebot/internal/gateway/exchange"
	"quotebot/internal/gateway/notifier"
	"quotebot/internal/market"
	"quotebot/internal/pkg/clock"
	"quotebot/internal/strategy"
)

type MockExchange struct {
	mock.Mock
}

func (m *MockExchange) Name() string   { return "mock" }
func (m *MockExchange) Symbol() string { return "BTCUSDT" }

func (m *MockExchange) CurrentPrice(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockExchange) Candles(ctx context.Context, interval string, limit int) ([]market.Candle, error) {
	args := m.Called(ctx, interval, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]market.Candle), args.Error(1)
}

func (m *MockExchange) OrderBook(ctx context.Context, depth int) (market.OrderBook, error) {
	args := m.Called(ctx, depth)
	return args.Get(0).(market.OrderBook), args.Error(1)
}

func (m *MockExchange) RecentTrades(ctx context.Context, limit int) ([]market.Trade, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]market.Trade), args.Error(1)
}

func (m *MockExchange) Balances(ctx context.Context) (exchange.Balances, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(exchange.Balances), args.Error(1)
}

func (m *MockExchange) MarketBuy(ctx context.Context, quoteAmount float64) (*exchange.Fill, error) {
	args := m.Called(ctx, quoteAmount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*exchange.Fill), args.Error(1)
}

func (m *MockExchange) MarketSell(ctx context.Context, baseQty float64) (*exchange.Fill, error) {
	args := m.Called(ctx, baseQty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*exchange.Fill), args.Error(1)
}

type recordingNotifier struct {
	buys, sells, reports int
}

func (n *recordingNotifier) OnBuy(float64, float64, string)          { n.buys++ }
func (n *recordingNotifier) OnSell(float64, float64, float64, string) { n.sells++ }
func (n *recordingNotifier) OnReport(notifier.ReportSnapshot)        { n.reports++ }

func testLoopConfig() Config {
	return Config{
		Symbol:         "BTCUSDT",
		BaseAsset:      "BTC",
		QuoteAsset:     "USDT",
		CandleInterval: "1m",
		CandleLimit:    60,
		BookDepth:      5,
		TapeLimit:      60,
		CallTimeout:    time.Second,
		RSIPeriod:      14,
	}
}

func tightBook(mid float64) market.OrderBook {
	return market.OrderBook{
		Bids: []market.BookLevel{{Price: mid - 0.5, Qty: 2}},
		Asks: []market.BookLevel{{Price: mid + 0.5, Qty: 2}},
	}
}

func flatCandles(price float64, n int) []market.Candle {
	out := make([]market.Candle, n)
	for i := range out {
		out[i] = market.Candle{Close: price}
	}
	return out
}

func expectMarketData(ex *MockExchange, price float64, balances exchange.Balances) {
	ex.On("Candles", mock.Anything, "1m", 60).Return(flatCandles(price, 30), nil)
	ex.On("OrderBook", mock.Anything, 5).Return(tightBook(price), nil)
	ex.On("RecentTrades", mock.Anything, 60).Return([]market.Trade{
		{ID: 1, Price: price, Qty: 1, Time: 1000},
		{ID: 2, Price: price, Qty: 1, Time: 2000},
	}, nil)
	ex.On("Balances", mock.Anything).Return(balances, nil)
}

func newTestLoop(ex exchange.Exchange, n Notifier) (*Loop, *clock.Fake) {
	fc := clock.NewFake(time.Unix(10000, 0))
	gen := strategy.NewGenerator(strategy.Params{
		Gamma:             0.1,
		ArrivalRate:       140,
		BookLiquidity:     1.05,
		TimeHorizonSec:    60,
		MaxInventoryRatio: 0.8,
		OFIWeight:         0.25,
		TradeRateSpike:    3.0,
		SpreadWidenFactor: 2.0,
	}, fc)
	loop := NewLoop(LoopParams{
		Config:   testLoopConfig(),
		Exchange: ex,
		Signals:  gen,
		Notifier: n,
		Clock:    fc,
	})
	return loop, fc
}

func TestRunCycleBuyCommitsLong(t *testing.T) {
	ex := &MockExchange{}
	expectMarketData(ex, 50000, exchange.Balances{
		"USDT": {Free: 1000},
	})
	ex.On("MarketBuy", mock.Anything, 50.0).Return(&exchange.Fill{
		OrderID:  77,
		Quantity: 0.001,
		Price:    50000.5,
	}, nil)

	note := &recordingNotifier{}
	loop, fc := newTestLoop(ex, note)

	err := loop.RunCycle(context.Background())
	assert.NoError(t, err)

	snap := loop.State().Snapshot()
	assert.Equal(t, strategy.Long, snap.Position.State)
	assert.Equal(t, 50000.5, snap.Position.EntryPrice)
	assert.Equal(t, 0.001, snap.Position.Quantity)
	assert.Equal(t, fc.Now(), snap.Position.EntryTime)
	assert.Equal(t, 1, snap.Stats.Trades)
	assert.Equal(t, 1, note.buys)
	assert.Equal(t, strategy.ActionBuy, snap.Last.Decision.Action)
	ex.AssertExpectations(t)
}

func TestRunCycleBuySizing(t *testing.T) {
	// 5% of free quote, capped at free minus the reserve. With 40 USDT
	// free the entry gate passes but the cap binds: min(2, 35) = 2.
	ex := &MockExchange{}
	expectMarketData(ex, 50000, exchange.Balances{
		"USDT": {Free: 40},
	})
	ex.On("MarketBuy", mock.Anything, 2.0).Return(nil, nil)

	loop, _ := newTestLoop(ex, nil)
	assert.NoError(t, loop.RunCycle(context.Background()))
	ex.AssertExpectations(t)
}

func TestRunCycleBuyRejectedNoStateChange(t *testing.T) {
	ex := &MockExchange{}
	expectMarketData(ex, 50000, exchange.Balances{
		"USDT": {Free: 1000},
	})
	ex.On("MarketBuy", mock.Anything, 50.0).Return(nil, nil)

	note := &recordingNotifier{}
	loop, _ := newTestLoop(ex, note)
	assert.NoError(t, loop.RunCycle(context.Background()))

	snap := loop.State().Snapshot()
	assert.Equal(t, strategy.Flat, snap.Position.State)
	assert.Equal(t, 0, snap.Stats.Trades)
	assert.Equal(t, 0, note.buys)
}

func TestRunCycleBuyErrorNoStateChange(t *testing.T) {
	ex := &MockExchange{}
	expectMarketData(ex, 50000, exchange.Balances{
		"USDT": {Free: 1000},
	})
	ex.On("MarketBuy", mock.Anything, 50.0).Return(nil, errors.New("venue down"))

	loop, _ := newTestLoop(ex, nil)
	assert.NoError(t, loop.RunCycle(context.Background()))

	snap := loop.State().Snapshot()
	assert.Equal(t, strategy.Flat, snap.Position.State)
	assert.Equal(t, 0, snap.Stats.Trades)
}

func TestRunCycleFetchErrorContained(t *testing.T) {
	ex := &MockExchange{}
	ex.On("Candles", mock.Anything, "1m", 60).Return(nil, errors.New("network"))

	loop, _ := newTestLoop(ex, nil)
	err := loop.RunCycle(context.Background())
	assert.Error(t, err)
	assert.Equal(t, strategy.Flat, loop.State().Snapshot().Position.State)
}

func TestRunCycleReconcileAdoptsHeldBalance(t *testing.T) {
	// Locally flat but the venue reports held base: the cycle adopts a
	// long at the current price instead of buying again.
	ex := &MockExchange{}
	expectMarketData(ex, 50000, exchange.Balances{
		"BTC":  {Free: 0.002},
		"USDT": {Free: 1000},
	})

	loop, fc := newTestLoop(ex, nil)
	assert.NoError(t, loop.RunCycle(context.Background()))

	snap := loop.State().Snapshot()
	assert.Equal(t, strategy.Long, snap.Position.State)
	assert.Equal(t, 50000.0, snap.Position.EntryPrice)
	assert.Equal(t, 0.002, snap.Position.Quantity)
	assert.Equal(t, fc.Now(), snap.Position.EntryTime)
	// No order was placed this cycle.
	ex.AssertNotCalled(t, "MarketBuy", mock.Anything, mock.Anything)
	ex.AssertNotCalled(t, "MarketSell", mock.Anything, mock.Anything)
}

func TestRunCycleSellOnCycleExit(t *testing.T) {
	ex := &MockExchange{}
	expectMarketData(ex, 50000, exchange.Balances{
		"BTC":  {Free: 0.002},
		"USDT": {Free: 1000},
	})
	ex.On("MarketSell", mock.Anything, 0.002).Return(&exchange.Fill{
		OrderID:  78,
		Quantity: 0.002,
		Price:    50010,
	}, nil)

	note := &recordingNotifier{}
	loop, fc := newTestLoop(ex, note)

	// Install the long via reconciliation, then age past the hold limit.
	assert.NoError(t, loop.RunCycle(context.Background()))
	fc.Advance(7 * time.Second)
	assert.NoError(t, loop.RunCycle(context.Background()))

	snap := loop.State().Snapshot()
	assert.Equal(t, strategy.Flat, snap.Position.State)
	assert.Equal(t, 1, snap.Stats.Wins)
	// (50010-50000)*0.002
	assert.InDelta(t, 0.02, snap.Stats.CumulativePnL, 1e-9)
	assert.Equal(t, 1, note.sells)
}

func TestRunCycleForcedDump(t *testing.T) {
	// Nearly all equity in base: inventory ratio above the cap forces a
	// full liquidation regardless of PnL.
	ex := &MockExchange{}
	expectMarketData(ex, 50000, exchange.Balances{
		"BTC":  {Free: 0.02},
		"USDT": {Free: 10},
	})
	ex.On("MarketSell", mock.Anything, 0.02).Return(&exchange.Fill{
		Quantity: 0.02,
		Price:    50000,
	}, nil)

	loop, _ := newTestLoop(ex, nil)
	assert.NoError(t, loop.RunCycle(context.Background()))

	snap := loop.State().Snapshot()
	assert.Equal(t, strategy.ActionDump, snap.Last.Decision.Action)
	assert.Equal(t, strategy.Flat, snap.Position.State)
}

func TestReportSnapshotFromState(t *testing.T) {
	ex := &MockExchange{}
	expectMarketData(ex, 50000, exchange.Balances{
		"USDT": {Free: 5}, // below the entry floor, cycle decides NONE
	})

	note := &recordingNotifier{}
	loop, fc := newTestLoop(ex, note)
	assert.NoError(t, loop.RunCycle(context.Background()))
	fc.Advance(90 * time.Second)

	r := loop.Report()
	assert.Equal(t, "BTCUSDT", r.Symbol)
	assert.Equal(t, "FLAT", r.Position)
	assert.Equal(t, 50000.0, r.CurrentPrice)
	assert.Equal(t, 90*time.Second, r.Uptime)

	loop.RunReport()
	assert.Equal(t, 1, note.reports)
}
