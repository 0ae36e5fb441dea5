package strategy

import (
	"math"
	"sync"
	"time"

	"quotebot/internal/market"
	"quotebot/internal/pkg/clock"
)

// Action is the discrete outcome of one decision cycle.
type Action int

const (
	ActionNone Action = iota
	ActionBuy
	ActionSell
	ActionDump
)

func (a Action) String() string {
	switch a {
	case ActionBuy:
		return "BUY"
	case ActionSell:
		return "SELL"
	case ActionDump:
		return "DUMP"
	default:
		return "NONE"
	}
}

// Decision is produced fresh each cycle and immutable once returned.
type Decision struct {
	Action      Action  `json:"action"`
	Reason      string  `json:"reason"`
	TargetPrice float64 `json:"target_price,omitempty"`
}

// Decision reasons.
const (
	ReasonEntry = "Entry"
	ReasonTP    = "TP"
	ReasonSL    = "SL"
	ReasonCycle = "Cycle"
	ReasonDump  = "Dump"
)

// PositionState is the flat/long variant tag.
type PositionState int

const (
	Flat PositionState = iota
	Long
)

func (s PositionState) String() string {
	if s == Long {
		return "LONG"
	}
	return "FLAT"
}

// Position holds the entry bookkeeping for a long position. Mutated only by
// the execution loop on confirmed fills.
type Position struct {
	State      PositionState `json:"state"`
	EntryPrice float64       `json:"entry_price,omitempty"`
	EntryTime  time.Time     `json:"entry_time,omitempty"`
	Quantity   float64       `json:"quantity,omitempty"`
}

// Entry and exit gates. Named so the state machine contract stays auditable
// apart from the execution loop.
const (
	// BaseDustThreshold is the held-quantity epsilon below which an
	// external balance is treated as flat.
	BaseDustThreshold = 0.0001
	// MinQuoteBalance is the hard entry floor in quote currency.
	MinQuoteBalance = 10.0
	// MaxEntrySpreadBps blocks entries into a wide book.
	MaxEntrySpreadBps = 6.0
	// MinEntryMomentumPct blocks entries against falling closes.
	MinEntryMomentumPct = -0.05
	// MinEntryOFI blocks entries against one-sided sell pressure.
	MinEntryOFI = -0.3

	// maxHoldSeconds forces a time-based exit.
	maxHoldSeconds = 6.0
	// cycleExitFloorPct keeps the time-based exit from realizing more than
	// a trivial loss.
	cycleExitFloorPct = -0.02

	// minTakeProfitPct / minStopLossPct floor the dynamic thresholds.
	minTakeProfitPct = 0.01
	minStopLossPct   = 0.03
	// spreadCaptureRatio scales the live book spread into the take-profit
	// threshold, keeping exits proportional to realizable edge.
	spreadCaptureRatio = 0.6
)

// SignalInput is the per-cycle evidence the state machine evaluates.
type SignalInput struct {
	Price          float64
	BaseHeld       float64 // free+locked base quantity from the exchange
	QuoteFree      float64
	InventoryRatio float64
	Closes         []float64
	OFI            float64
	BookSpreadBps  float64
}

// Generator evaluates the entry/exit state machine. Parameters may be
// swapped between cycles by the config watcher, hence the lock.
type Generator struct {
	clock clock.Clock

	mu         sync.RWMutex
	params     Params
	fallbackTP float64 // legacy fixed take-profit, % (used without book data)
	fallbackSL float64 // legacy fixed stop-loss, %
}

func NewGenerator(p Params, c clock.Clock) *Generator {
	if c == nil {
		c = clock.Real()
	}
	return &Generator{clock: c, params: p}
}

// SetFallbackExits installs the legacy fixed take-profit/stop-loss
// percentages applied when the book yields no spread.
func (g *Generator) SetFallbackExits(tpPct, slPct float64) {
	g.mu.Lock()
	g.fallbackTP = tpPct
	g.fallbackSL = slPct
	g.mu.Unlock()
}

// SetParams atomically replaces the model parameters.
func (g *Generator) SetParams(p Params) {
	g.mu.Lock()
	g.params = p
	g.mu.Unlock()
}

// Params returns the current model parameters.
func (g *Generator) Params() Params {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.params
}

// Reconcile aligns the local position with the externally observed balance.
// A held balance while locally flat adopts a long at the current price (the
// in-memory state may have been lost across a restart); a drained balance
// while locally long resets to flat.
func (g *Generator) Reconcile(pos Position, baseHeld, price float64) Position {
	switch {
	case pos.State == Flat && baseHeld >= BaseDustThreshold:
		return Position{
			State:      Long,
			EntryPrice: price,
			EntryTime:  g.clock.Now(),
			Quantity:   baseHeld,
		}
	case pos.State == Long && baseHeld < BaseDustThreshold:
		return Position{State: Flat}
	default:
		return pos
	}
}

// Evaluate runs the decision rules in order, first match wins:
// forced dump, holding exits, entry. It never mutates the position.
func (g *Generator) Evaluate(in SignalInput, pos Position) Decision {
	g.mu.RLock()
	params := g.params
	fallbackTP, fallbackSL := g.fallbackTP, g.fallbackSL
	g.mu.RUnlock()

	// Hard risk cap, independent of every other rule.
	if params.MaxInventoryRatio > 0 && in.InventoryRatio >= params.MaxInventoryRatio {
		return Decision{Action: ActionDump, Reason: ReasonDump, TargetPrice: in.Price}
	}

	if pos.State == Long && pos.EntryPrice > 0 {
		pnlPct := (in.Price - pos.EntryPrice) / pos.EntryPrice * 100
		holdSec := g.clock.Now().Sub(pos.EntryTime).Seconds()

		tp := math.Max(minTakeProfitPct, in.BookSpreadBps*spreadCaptureRatio/100)
		sl := math.Max(2*tp, minStopLossPct)
		if in.BookSpreadBps <= 0 {
			// No book this cycle: fall back to the fixed legacy exits.
			if fallbackTP > 0 {
				tp = math.Max(tp, fallbackTP)
			}
			if fallbackSL > 0 {
				sl = math.Max(sl, fallbackSL)
			}
		}

		switch {
		case pnlPct >= tp:
			return Decision{Action: ActionSell, Reason: ReasonTP, TargetPrice: in.Price}
		case pnlPct <= -sl:
			return Decision{Action: ActionSell, Reason: ReasonSL, TargetPrice: in.Price}
		case holdSec >= maxHoldSeconds && pnlPct > cycleExitFloorPct:
			return Decision{Action: ActionSell, Reason: ReasonCycle, TargetPrice: in.Price}
		default:
			return Decision{Action: ActionNone}
		}
	}

	// Flat: all entry gates must pass.
	if in.QuoteFree >= MinQuoteBalance &&
		in.BookSpreadBps <= MaxEntrySpreadBps &&
		market.Momentum(in.Closes) >= MinEntryMomentumPct &&
		in.OFI > MinEntryOFI {
		return Decision{Action: ActionBuy, Reason: ReasonEntry, TargetPrice: in.Price}
	}

	return Decision{Action: ActionNone}
}
