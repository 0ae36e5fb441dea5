package market

import "math"

const (
	// priceWindowSize bounds the rolling price history.
	priceWindowSize = 60
	// minVolSamples is the minimum window length before the estimate is
	// recomputed; below it the prior value is retained.
	minVolSamples = 5
	// defaultVolatility is returned before enough prices have been seen.
	// Zero here would degenerate the quoting formulas downstream.
	defaultVolatility = 0.01
)

// VolatilityEstimator keeps a bounded window of observed prices and a rolling
// return-volatility estimate. Not safe for concurrent use; the trading loop
// is its only caller.
type VolatilityEstimator struct {
	prices   []float64
	estimate float64
}

func NewVolatilityEstimator() *VolatilityEstimator {
	return &VolatilityEstimator{
		prices:   make([]float64, 0, priceWindowSize),
		estimate: defaultVolatility,
	}
}

// Observe appends a price, evicting the oldest beyond the window bound, and
// recomputes the estimate once enough samples exist. Between recomputations
// the previous estimate is retained.
func (e *VolatilityEstimator) Observe(price float64) {
	e.prices = append(e.prices, price)
	if len(e.prices) > priceWindowSize {
		e.prices = e.prices[1:]
	}
	if len(e.prices) >= minVolSamples {
		e.estimate = returnStdDev(e.prices)
	}
}

// Estimate returns the current volatility estimate. With fewer than two
// observations it falls back to the non-zero default.
func (e *VolatilityEstimator) Estimate() float64 {
	if len(e.prices) < 2 {
		return defaultVolatility
	}
	return e.estimate
}

// Samples reports the current window length.
func (e *VolatilityEstimator) Samples() int { return len(e.prices) }

// returnStdDev is the sample standard deviation of simple returns over the
// price series.
func returnStdDev(prices []float64) float64 {
	rets := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		rets = append(rets, (prices[i]-prices[i-1])/prices[i-1])
	}
	if len(rets) < 2 {
		return 0
	}
	mean := 0.0
	for _, r := range rets {
		mean += r
	}
	mean /= float64(len(rets))
	var sum float64
	for _, r := range rets {
		d := r - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(rets)-1))
}
