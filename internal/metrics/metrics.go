// Package metrics exposes operational counters for the trading loop.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Set struct {
	registry *prometheus.Registry

	Cycles      prometheus.Counter
	CycleErrors prometheus.Counter
	Decisions   *prometheus.CounterVec
	Orders      *prometheus.CounterVec

	CumulativePnL  prometheus.Gauge
	InventoryRatio prometheus.Gauge
	Volatility     prometheus.Gauge
	TradeRate      prometheus.Gauge
	ModelSpreadPct prometheus.Gauge
}

func New() *Set {
	reg := prometheus.NewRegistry()
	s := &Set{
		registry: reg,
		Cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quotebot_cycles_total",
			Help: "Completed polling cycles.",
		}),
		CycleErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quotebot_cycle_errors_total",
			Help: "Cycles aborted by an error.",
		}),
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quotebot_decisions_total",
			Help: "Decisions emitted, by action.",
		}, []string{"action"}),
		Orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quotebot_orders_total",
			Help: "Order placement outcomes, by side and result.",
		}, []string{"side", "result"}),
		CumulativePnL: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quotebot_cumulative_pnl",
			Help: "Realized PnL in quote currency since start.",
		}),
		InventoryRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quotebot_inventory_ratio",
			Help: "Held base value over total equity.",
		}),
		Volatility: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quotebot_volatility",
			Help: "Rolling return-volatility estimate.",
		}),
		TradeRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quotebot_trade_rate",
			Help: "Instantaneous tape trade rate, trades per second.",
		}),
		ModelSpreadPct: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quotebot_model_spread_pct",
			Help: "Model spread as a percentage of mid.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		s.Cycles, s.CycleErrors, s.Decisions, s.Orders,
		s.CumulativePnL, s.InventoryRatio, s.Volatility, s.TradeRate, s.ModelSpreadPct,
	)
	return s
}

// Handler serves the registry in Prometheus exposition format.
func (s *Set) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
