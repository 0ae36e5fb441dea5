package notifier

import (
	"fmt"
	"time"

	"quotebot/internal/logger"
)

// ReportSnapshot is the read-only view of engine state pushed on the
// periodic report. Copied out of the engine, never shared.
type ReportSnapshot struct {
	Symbol        string
	Position      string
	EntryPrice    float64
	Quantity      float64
	CurrentPrice  float64
	Trades        int
	Wins          int
	Losses        int
	CumulativePnL float64

	Volatility     float64
	TradeRate      float64
	OFI            float64
	RSI            float64
	BookSpreadBps  float64
	ModelSpreadPct float64

	Uptime time.Duration
}

// TradeNotifier formats trade events and reports and pushes them through a
// TextNotifier. Every failure is logged and swallowed: a broken push channel
// must never touch trading state.
type TradeNotifier struct {
	sink   TextNotifier
	symbol string
}

func NewTradeNotifier(sink TextNotifier, symbol string) *TradeNotifier {
	if sink == nil {
		sink = Noop{}
	}
	return &TradeNotifier{sink: sink, symbol: symbol}
}

func (n *TradeNotifier) OnBuy(fillPrice, qty float64, reason string) {
	msg := StructuredMessage{
		Icon:  "🟢",
		Title: fmt.Sprintf("BUY %s", n.symbol),
		Sections: []MessageSection{{
			Lines: []string{
				fmt.Sprintf("price: %.8g", fillPrice),
				fmt.Sprintf("qty: %.8g", qty),
				fmt.Sprintf("reason: %s", reason),
			},
		}},
		Timestamp: time.Now().UTC(),
	}
	n.push(msg)
}

func (n *TradeNotifier) OnSell(fillPrice, qty, pnl float64, reason string) {
	icon := "🔴"
	if pnl >= 0 {
		icon = "🔵"
	}
	msg := StructuredMessage{
		Icon:  icon,
		Title: fmt.Sprintf("SELL %s (%s)", n.symbol, reason),
		Sections: []MessageSection{{
			Lines: []string{
				fmt.Sprintf("price: %.8g", fillPrice),
				fmt.Sprintf("qty: %.8g", qty),
				fmt.Sprintf("pnl: %+.4f", pnl),
			},
		}},
		Timestamp: time.Now().UTC(),
	}
	n.push(msg)
}

func (n *TradeNotifier) OnReport(r ReportSnapshot) {
	winRate := 0.0
	if r.Wins+r.Losses > 0 {
		winRate = float64(r.Wins) / float64(r.Wins+r.Losses) * 100
	}
	msg := StructuredMessage{
		Icon:  "📊",
		Title: fmt.Sprintf("Status %s", n.symbol),
		Sections: []MessageSection{
			{
				Title: "position",
				Lines: []string{
					fmt.Sprintf("state: %s", r.Position),
					fmt.Sprintf("entry: %.8g", r.EntryPrice),
					fmt.Sprintf("qty: %.8g", r.Quantity),
					fmt.Sprintf("price: %.8g", r.CurrentPrice),
				},
			},
			{
				Title: "performance",
				Lines: []string{
					fmt.Sprintf("trades: %d (w%d/l%d, %.1f%%)", r.Trades, r.Wins, r.Losses, winRate),
					fmt.Sprintf("pnl: %+.4f", r.CumulativePnL),
					fmt.Sprintf("uptime: %s", r.Uptime.Truncate(time.Second)),
				},
			},
			{
				Title: "signals",
				Lines: []string{
					fmt.Sprintf("vol: %.6f", r.Volatility),
					fmt.Sprintf("trade rate: %.2f/s", r.TradeRate),
					fmt.Sprintf("ofi: %+.3f", r.OFI),
					fmt.Sprintf("rsi: %.1f", r.RSI),
					fmt.Sprintf("book spread: %.2f bps", r.BookSpreadBps),
					fmt.Sprintf("model spread: %.4f%%", r.ModelSpreadPct),
				},
			},
		},
		Timestamp: time.Now().UTC(),
	}
	n.push(msg)
}

func (n *TradeNotifier) push(msg StructuredMessage) {
	go func() {
		if err := n.sink.SendText(msg.RenderMarkdown()); err != nil {
			logger.Warnf("notifier push failed: %v", err)
		}
	}()
}
