package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRSIShortSeries(t *testing.T) {
	assert.Equal(t, 0.0, RSI([]float64{1, 2, 3}, 14))
	assert.Equal(t, 0.0, RSI(nil, 14))
	assert.Equal(t, 0.0, RSI([]float64{1, 2, 3}, 0))
}

func TestRSIMonotonicRally(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	// Straight rally: no down moves, RSI pegs at 100.
	assert.InDelta(t, 100.0, RSI(closes, 14), 1e-9)
}

func TestMomentum(t *testing.T) {
	assert.Equal(t, 0.0, Momentum(nil))
	assert.Equal(t, 0.0, Momentum([]float64{100}))
	assert.InDelta(t, 1.0, Momentum([]float64{99, 100, 101}), 1e-12)
	assert.InDelta(t, -0.5, Momentum([]float64{200, 199}), 1e-12)
	assert.Equal(t, 0.0, Momentum([]float64{0, 100}))
}

func TestClosesExtraction(t *testing.T) {
	candles := []Candle{{Close: 1.5}, {Close: 2.5}}
	assert.Equal(t, []float64{1.5, 2.5}, Closes(candles))
}
