package strategy

import "math"

// secondsPerYear annualizes the quoting horizon (365.25 days).
const secondsPerYear = 365.25 * 24 * 3600

// volatilityFloor replaces a zero volatility estimate before quoting; a flat
// price window would otherwise collapse the spread to nothing.
const volatilityFloor = 0.02

// Params are the Avellaneda-Stoikov model parameters, taken from the
// strategy section of the config.
type Params struct {
	Gamma             float64 // risk aversion
	ArrivalRate       float64 // order arrival rate constant A
	BookLiquidity     float64 // order book liquidity constant k
	TimeHorizonSec    float64 // quoting horizon T in seconds
	MinSpreadBps      float64
	MaxInventoryRatio float64 // forced-dump threshold
	OFIWeight         float64
	TradeRateSpike    float64 // spike multiple over the smoothed baseline
	SpreadWidenFactor float64
}

// QuoteInput is the per-cycle market state fed into the quote model.
type QuoteInput struct {
	Mid          float64 // current mid price S
	Volatility   float64 // sigma from the estimator (0 allowed, floored here)
	Inventory    float64 // q, positive when net long base asset
	OFI          float64 // order-flow imbalance in [-1, 1]
	TradeRate    float64 // instantaneous trades/second
	TradeRateAvg float64 // smoothed baseline
	BestBid      float64
	BestAsk      float64
}

// Quote is the model output plus the diagnostics consumed downstream.
type Quote struct {
	Reservation float64
	Bid         float64
	Ask         float64
	Spread      float64 // delta, the model spread after any widening
	Widened     bool

	BookSpreadBps  float64
	ModelSpreadPct float64
}

// Compute evaluates the Avellaneda-Stoikov reservation price and quotes,
// skewed by inventory and order-flow imbalance, with defensive spread
// widening on a trade-rate spike.
func Compute(p Params, in QuoteInput) Quote {
	gamma := p.Gamma
	if gamma == 0 {
		gamma = 0.1
	}
	sigma := in.Volatility
	if sigma == 0 {
		sigma = volatilityFloor
	}
	tau := p.TimeHorizonSec / secondsPerYear

	reservation := in.Mid - in.Inventory*gamma*sigma*sigma*tau
	delta := (2 / gamma) * math.Log(1+gamma/p.ArrivalRate)

	invTerm := 0.0
	if p.BookLiquidity != 0 {
		invTerm = in.Inventory * sigma * sigma * tau / (2 * p.BookLiquidity)
	}
	bid := reservation - delta/2 - invTerm
	ask := reservation + delta/2 + invTerm

	// Shift both quotes with observed pressure; the spread width is
	// unchanged.
	ofiTerm := p.OFIWeight * in.OFI * delta
	reservation += ofiTerm
	bid += ofiTerm
	ask += ofiTerm

	widened := false
	if in.TradeRateAvg > 0 && in.TradeRate > in.TradeRateAvg*p.TradeRateSpike && delta > 0 {
		// Widening recomputes both quotes from the reservation price
		// alone; the inventory term does not apply while the burst
		// lasts.
		delta *= p.SpreadWidenFactor
		bid = reservation - delta/2
		ask = reservation + delta/2
		widened = true
	}

	q := Quote{
		Reservation: reservation,
		Bid:         bid,
		Ask:         ask,
		Spread:      delta,
		Widened:     widened,
	}
	if in.BestBid > 0 && in.BestAsk > 0 && in.Mid > 0 {
		q.BookSpreadBps = (in.BestAsk - in.BestBid) / in.Mid * 10000
	}
	if in.Mid > 0 {
		q.ModelSpreadPct = delta / in.Mid * 100
	}
	return q
}
