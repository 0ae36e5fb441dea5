package trader

import (
	"fmt"
	"strings"
	"time"

	"quotebot/internal/gateway/notifier"
	"quotebot/internal/logger"
)

// Report builds the read-only snapshot pushed on the reporting interval.
func (l *Loop) Report() notifier.ReportSnapshot {
	snap := l.state.Snapshot()
	return notifier.ReportSnapshot{
		Symbol:         l.cfg.Symbol,
		Position:       snap.Position.State.String(),
		EntryPrice:     snap.Position.EntryPrice,
		Quantity:       snap.Position.Quantity,
		CurrentPrice:   snap.Last.Price,
		Trades:         snap.Stats.Trades,
		Wins:           snap.Stats.Wins,
		Losses:         snap.Stats.Losses,
		CumulativePnL:  snap.Stats.CumulativePnL,
		Volatility:     snap.Last.Volatility,
		TradeRate:      snap.Last.TradeRate,
		OFI:            snap.Last.OFI,
		RSI:            snap.Last.RSI,
		BookSpreadBps:  snap.Last.Quote.BookSpreadBps,
		ModelSpreadPct: snap.Last.Quote.ModelSpreadPct,
		Uptime:         l.clock.Now().Sub(snap.Started),
	}
}

// RunReport logs the periodic status block and pushes it to the notifier.
// Read-only with respect to engine state.
func (l *Loop) RunReport() {
	r := l.Report()
	var b strings.Builder
	fmt.Fprintf(&b, "status %s position=%s", r.Symbol, r.Position)
	if r.Position != "FLAT" {
		fmt.Fprintf(&b, " entry=%.8g qty=%.8g", r.EntryPrice, r.Quantity)
	}
	fmt.Fprintf(&b, "\ntrades=%d wins=%d losses=%d pnl=%+.4f uptime=%s",
		r.Trades, r.Wins, r.Losses, r.CumulativePnL, r.Uptime.Truncate(time.Second))
	fmt.Fprintf(&b, "\nprice=%.8g vol=%.6f rate=%.2f/s ofi=%+.3f rsi=%.1f spread=%.2fbps model=%.4f%%",
		r.CurrentPrice, r.Volatility, r.TradeRate, r.OFI, r.RSI, r.BookSpreadBps, r.ModelSpreadPct)
	logger.InfoBlock(b.String())
	if l.notify != nil {
		l.notify.OnReport(r)
	}
}
