package market

import "sort"

// topBookLevels is how deep the imbalance calculation looks on each side.
const topBookLevels = 5

// tradeRateAlpha is the smoothing factor of the trade-rate EMA.
const tradeRateAlpha = 0.1

// OrderFlowImbalance sums the visible quantity on the top levels of each side
// and returns (Vb-Va)/(Vb+Va). Range [-1, 1]; positive means buy pressure.
// An empty book yields 0.
func OrderFlowImbalance(book OrderBook) float64 {
	var vb, va float64
	for i, lvl := range book.Bids {
		if i >= topBookLevels {
			break
		}
		vb += lvl.Qty
	}
	for i, lvl := range book.Asks {
		if i >= topBookLevels {
			break
		}
		va += lvl.Qty
	}
	if vb+va == 0 {
		return 0
	}
	return (vb - va) / (vb + va)
}

// TradeRate computes the instantaneous trade arrival rate (trades/second)
// from a tape snapshot. Fewer than two trades yields 0. When all timestamps
// cluster into a zero span the raw count is returned instead of dividing by
// zero.
func TradeRate(tape []Trade) float64 {
	if len(tape) < 2 {
		return 0
	}
	sorted := append([]Trade(nil), tape...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	span := float64(sorted[len(sorted)-1].Time-sorted[0].Time) / 1000.0
	if span <= 0 {
		return float64(len(sorted))
	}
	return float64(len(sorted)) / span
}

// RateEMA is an exponentially smoothed trade-rate baseline. It is seeded with
// the first observed instantaneous rate and never resets afterwards.
type RateEMA struct {
	avg    float64
	seeded bool
}

// Update folds one instantaneous rate into the average and returns the new
// smoothed value.
func (e *RateEMA) Update(instant float64) float64 {
	if !e.seeded {
		e.avg = instant
		e.seeded = true
		return e.avg
	}
	e.avg = (1-tradeRateAlpha)*e.avg + tradeRateAlpha*instant
	return e.avg
}

// Value returns the current smoothed rate.
func (e *RateEMA) Value() float64 { return e.avg }

// Seeded reports whether the EMA has observed at least one rate.
func (e *RateEMA) Seeded() bool { return e.seeded }
