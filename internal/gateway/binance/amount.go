package binance

import (
	"time"

	"github.com/shopspring/decimal"
)

// snapToStep floors a quantity to the symbol's lot-size step so the venue
// does not reject the order. An unknown step leaves the quantity untouched.
func snapToStep(qty float64, step string) float64 {
	if qty <= 0 {
		return 0
	}
	stepD, err := decimal.NewFromString(step)
	if err != nil || stepD.IsZero() {
		return qty
	}
	q := decimal.NewFromFloat(qty)
	snapped := q.Div(stepD).Floor().Mul(stepD)
	out, _ := snapped.Float64()
	return out
}

// formatAmount renders an order amount without float artifacts.
func formatAmount(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func millisToTime(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
