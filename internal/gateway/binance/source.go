// Package binance implements the exchange boundary against Binance spot via
// the go-binance SDK.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"quotebot/internal/gateway/exchange"
	"quotebot/internal/logger"
	"quotebot/internal/market"
	"quotebot/internal/pkg/convert"
	"quotebot/internal/pkg/maputil"

	"github.com/adshao/go-binance/v2"
	"github.com/google/uuid"
)

const maxCandleLimit = 1000

// Stats are cumulative gateway counters, reported on the status endpoint.
type Stats struct {
	Requests  int64  `json:"requests"`
	Errors    int64  `json:"errors"`
	LastError string `json:"last_error,omitempty"`
}

// Source is a single-pair spot gateway. Order quantities are snapped to the
// symbol's lot-size filter fetched at startup.
type Source struct {
	cfg    Config
	client *binance.Client

	lotStep     string
	minNotional float64

	statsMu sync.Mutex
	stats   Stats
}

// New builds the client and fetches the symbol filters. A failure here is
// fatal for startup: trading without lot-size metadata would reject every
// order.
func New(ctx context.Context, cfg Config) (*Source, error) {
	final := cfg.withDefaults()
	if final.Symbol == "" {
		return nil, fmt.Errorf("binance: symbol is required")
	}
	client := binance.NewClient(final.APIKey, final.APISecret)
	client.BaseURL = final.RESTBaseURL
	client.HTTPClient = &http.Client{Timeout: final.HTTPTimeout}

	s := &Source{cfg: final, client: client}
	if err := s.loadSymbolFilters(ctx); err != nil {
		return nil, fmt.Errorf("binance: loading symbol filters for %s failed: %w", final.Symbol, err)
	}
	return s, nil
}

func (s *Source) loadSymbolFilters(ctx context.Context) error {
	info, err := s.client.NewExchangeInfoService().Symbol(s.cfg.Symbol).Do(ctx)
	if err != nil {
		return err
	}
	for _, sym := range info.Symbols {
		if sym.Symbol != s.cfg.Symbol {
			continue
		}
		// Filters arrive untyped; MIN_NOTIONAL was renamed NOTIONAL on
		// spot, so accept both.
		for _, f := range sym.Filters {
			switch maputil.String(f, "filterType") {
			case "LOT_SIZE":
				s.lotStep = maputil.String(f, "stepSize")
			case "NOTIONAL", "MIN_NOTIONAL":
				s.minNotional = maputil.Float(f, "minNotional")
			}
		}
		return nil
	}
	return fmt.Errorf("symbol %s not found in exchange info", s.cfg.Symbol)
}

func (s *Source) Name() string   { return "binance" }
func (s *Source) Symbol() string { return s.cfg.Symbol }

// Stats returns a copy of the request counters.
func (s *Source) Stats() Stats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.stats
}

func (s *Source) note(err error) {
	s.statsMu.Lock()
	s.stats.Requests++
	if err != nil {
		s.stats.Errors++
		s.stats.LastError = err.Error()
	}
	s.statsMu.Unlock()
}

func (s *Source) CurrentPrice(ctx context.Context) (float64, error) {
	prices, err := s.client.NewListPricesService().Symbol(s.cfg.Symbol).Do(ctx)
	s.note(err)
	if err != nil {
		return 0, err
	}
	if len(prices) == 0 {
		return 0, fmt.Errorf("binance: empty price response for %s", s.cfg.Symbol)
	}
	return parseFloat(prices[0].Price), nil
}

func (s *Source) Candles(ctx context.Context, interval string, limit int) ([]market.Candle, error) {
	if limit <= 0 {
		limit = 60
	}
	if limit > maxCandleLimit {
		limit = maxCandleLimit
	}
	kls, err := s.client.NewKlinesService().
		Symbol(s.cfg.Symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	s.note(err)
	if err != nil {
		return nil, err
	}
	out := make([]market.Candle, 0, len(kls))
	for _, kl := range kls {
		if kl == nil {
			continue
		}
		out = append(out, market.Candle{
			OpenTime:  kl.OpenTime,
			CloseTime: kl.CloseTime,
			Open:      parseFloat(kl.Open),
			High:      parseFloat(kl.High),
			Low:       parseFloat(kl.Low),
			Close:     parseFloat(kl.Close),
			Volume:    parseFloat(kl.Volume),
		})
	}
	return out, nil
}

func (s *Source) OrderBook(ctx context.Context, depth int) (market.OrderBook, error) {
	if depth <= 0 {
		depth = 5
	}
	res, err := s.client.NewDepthService().Symbol(s.cfg.Symbol).Limit(depth).Do(ctx)
	s.note(err)
	if err != nil {
		return market.OrderBook{}, err
	}
	book := market.OrderBook{
		Bids: make([]market.BookLevel, 0, len(res.Bids)),
		Asks: make([]market.BookLevel, 0, len(res.Asks)),
	}
	for _, lvl := range res.Bids {
		book.Bids = append(book.Bids, market.BookLevel{Price: parseFloat(lvl.Price), Qty: parseFloat(lvl.Quantity)})
	}
	for _, lvl := range res.Asks {
		book.Asks = append(book.Asks, market.BookLevel{Price: parseFloat(lvl.Price), Qty: parseFloat(lvl.Quantity)})
	}
	return book, nil
}

func (s *Source) RecentTrades(ctx context.Context, limit int) ([]market.Trade, error) {
	if limit <= 0 {
		limit = 60
	}
	trades, err := s.client.NewRecentTradesService().Symbol(s.cfg.Symbol).Limit(limit).Do(ctx)
	s.note(err)
	if err != nil {
		return nil, err
	}
	out := make([]market.Trade, 0, len(trades))
	for _, t := range trades {
		if t == nil {
			continue
		}
		out = append(out, market.Trade{
			ID:           t.ID,
			Price:        parseFloat(t.Price),
			Qty:          parseFloat(t.Quantity),
			Time:         t.Time,
			IsBuyerMaker: t.IsBuyerMaker,
		})
	}
	return out, nil
}

func (s *Source) Balances(ctx context.Context) (exchange.Balances, error) {
	acct, err := s.client.NewGetAccountService().Do(ctx)
	s.note(err)
	if err != nil {
		return nil, err
	}
	out := make(exchange.Balances, len(acct.Balances))
	for _, b := range acct.Balances {
		out[b.Asset] = exchange.Balance{
			Free:   parseFloat(b.Free),
			Locked: parseFloat(b.Locked),
		}
	}
	return out, nil
}

func (s *Source) MarketBuy(ctx context.Context, quoteAmount float64) (*exchange.Fill, error) {
	if s.minNotional > 0 && quoteAmount < s.minNotional {
		logger.Warnf("binance: buy notional %.4f below minimum %.4f, skipping", quoteAmount, s.minNotional)
		return nil, nil
	}
	res, err := s.client.NewCreateOrderService().
		Symbol(s.cfg.Symbol).
		Side(binance.SideTypeBuy).
		Type(binance.OrderTypeMarket).
		QuoteOrderQty(formatAmount(quoteAmount)).
		NewClientOrderID(newOrderID()).
		Do(ctx)
	s.note(err)
	if err != nil {
		return nil, err
	}
	return fillFromOrder(res), nil
}

func (s *Source) MarketSell(ctx context.Context, baseQty float64) (*exchange.Fill, error) {
	qty := snapToStep(baseQty, s.lotStep)
	if qty <= 0 {
		logger.Warnf("binance: sell quantity %.8f rounds to zero at step %s, skipping", baseQty, s.lotStep)
		return nil, nil
	}
	res, err := s.client.NewCreateOrderService().
		Symbol(s.cfg.Symbol).
		Side(binance.SideTypeSell).
		Type(binance.OrderTypeMarket).
		Quantity(formatAmount(qty)).
		NewClientOrderID(newOrderID()).
		Do(ctx)
	s.note(err)
	if err != nil {
		return nil, err
	}
	return fillFromOrder(res), nil
}

// fillFromOrder maps the venue response to a Fill, or nil when nothing
// executed.
func fillFromOrder(res *binance.CreateOrderResponse) *exchange.Fill {
	if res == nil {
		return nil
	}
	executed := parseFloat(res.ExecutedQuantity)
	if executed <= 0 {
		return nil
	}
	quote := parseFloat(res.CummulativeQuoteQuantity)
	price := 0.0
	if quote > 0 {
		price = quote / executed
	} else if len(res.Fills) > 0 {
		price = parseFloat(res.Fills[0].Price)
	}
	raw, _ := json.Marshal(res)
	return &exchange.Fill{
		OrderID:       res.OrderID,
		ClientOrderID: res.ClientOrderID,
		Quantity:      executed,
		Price:         price,
		QuoteSpent:    quote,
		Time:          millisToTime(res.TransactTime),
		Raw:           raw,
	}
}

func newOrderID() string {
	return "qb-" + uuid.NewString()[:18]
}

func parseFloat(s string) float64 {
	return convert.ToFloat64(s)
}
