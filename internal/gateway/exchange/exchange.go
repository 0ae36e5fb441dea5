// Package exchange defines the boundary to the trading venue. The execution
// loop depends only on this interface so a different backend (or a test
// double) can be swapped in without touching the strategy code.
package exchange

import (
	"context"

	"quotebot/internal/market"
)

// Exchange is bound to a single trading pair at construction time.
type Exchange interface {
	Name() string
	Symbol() string

	CurrentPrice(ctx context.Context) (float64, error)
	Candles(ctx context.Context, interval string, limit int) ([]market.Candle, error)
	OrderBook(ctx context.Context, depth int) (market.OrderBook, error)
	RecentTrades(ctx context.Context, limit int) ([]market.Trade, error)
	Balances(ctx context.Context) (Balances, error)

	// MarketBuy spends quoteAmount of the quote currency. A nil fill with a
	// nil error means the order was rejected or did not execute; callers
	// must not mutate state in that case.
	MarketBuy(ctx context.Context, quoteAmount float64) (*Fill, error)
	// MarketSell liquidates baseQty of the base asset. Nil-fill semantics
	// as for MarketBuy.
	MarketSell(ctx context.Context, baseQty float64) (*Fill, error)
}
