package market

import talib "github.com/markcheno/go-talib"

// RSI returns the latest Wilder RSI over the close series, or 0 when the
// series is too short. Diagnostic only; the entry rules do not gate on it.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return 0
	}
	series := talib.Rsi(closes, period)
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}

// Momentum is the one-step percentage change of the last two closes.
func Momentum(closes []float64) float64 {
	n := len(closes)
	if n < 2 || closes[n-2] == 0 {
		return 0
	}
	return (closes[n-1] - closes[n-2]) / closes[n-2] * 100
}
