package trader

import (
	"sync"
	"time"

	"quotebot/internal/gateway/exchange"
	"quotebot/internal/strategy"
)

// Stats are the cumulative process-wide counters. Mutated only by the
// execution loop after a confirmed fill.
type Stats struct {
	Trades        int     `json:"trades"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	CumulativePnL float64 `json:"cumulative_pnl"`
}

// CycleInfo captures the diagnostics of the most recent cycle.
type CycleInfo struct {
	Time           time.Time         `json:"time"`
	Price          float64           `json:"price"`
	Decision       strategy.Decision `json:"decision"`
	Quote          strategy.Quote    `json:"quote"`
	Volatility     float64           `json:"volatility"`
	OFI            float64           `json:"ofi"`
	TradeRate      float64           `json:"trade_rate"`
	TradeRateAvg   float64           `json:"trade_rate_avg"`
	InventoryRatio float64           `json:"inventory_ratio"`
	RSI            float64           `json:"rsi"`
}

// Snapshot is a read-only copy of the engine state handed to the report
// timer and the HTTP surface. Observers never see the live struct.
type Snapshot struct {
	Position strategy.Position `json:"position"`
	Stats    Stats             `json:"stats"`
	Last     CycleInfo         `json:"last_cycle"`
	Started  time.Time         `json:"started"`
}

// EngineState owns the position and counters. The execution loop is the only
// writer; everyone else reads snapshots.
type EngineState struct {
	mu       sync.RWMutex
	position strategy.Position
	stats    Stats
	last     CycleInfo
	started  time.Time
}

func NewEngineState(now time.Time) *EngineState {
	return &EngineState{started: now}
}

func (s *EngineState) Position() strategy.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.position
}

func (s *EngineState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Position: s.position,
		Stats:    s.stats,
		Last:     s.last,
		Started:  s.started,
	}
}

// applyReconciled installs the position produced by the reconciliation step.
func (s *EngineState) applyReconciled(pos strategy.Position) {
	s.mu.Lock()
	s.position = pos
	s.mu.Unlock()
}

// commitBuy transitions Flat -> Long after a confirmed entry fill.
func (s *EngineState) commitBuy(fill *exchange.Fill, now time.Time) {
	s.mu.Lock()
	s.position = strategy.Position{
		State:      strategy.Long,
		EntryPrice: fill.Price,
		EntryTime:  now,
		Quantity:   fill.Quantity,
	}
	s.stats.Trades++
	s.mu.Unlock()
}

// commitSell transitions Long -> Flat after a confirmed exit fill and folds
// the realized PnL into the counters.
func (s *EngineState) commitSell(pnl float64) {
	s.mu.Lock()
	s.position = strategy.Position{State: strategy.Flat}
	if pnl >= 0 {
		s.stats.Wins++
	} else {
		s.stats.Losses++
	}
	s.stats.CumulativePnL += pnl
	s.mu.Unlock()
}

func (s *EngineState) setLastCycle(info CycleInfo) {
	s.mu.Lock()
	s.last = info
	s.mu.Unlock()
}
