package trader

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"quotebot/internal/gateway/exchange"
	"quotebot/internal/strategy"
)

func TestCommitBuySellCounters(t *testing.T) {
	now := time.Unix(5000, 0)
	s := NewEngineState(now)

	s.commitBuy(&exchange.Fill{Price: 100, Quantity: 2}, now)
	assert.Equal(t, strategy.Long, s.Position().State)
	assert.Equal(t, 1, s.Snapshot().Stats.Trades)

	s.commitSell(1.5)
	snap := s.Snapshot()
	assert.Equal(t, strategy.Flat, snap.Position.State)
	assert.Equal(t, 1, snap.Stats.Wins)
	assert.Equal(t, 0, snap.Stats.Losses)
	assert.Equal(t, 1.5, snap.Stats.CumulativePnL)

	s.commitBuy(&exchange.Fill{Price: 100, Quantity: 2}, now)
	s.commitSell(-0.5)
	snap = s.Snapshot()
	assert.Equal(t, 1, snap.Stats.Losses)
	assert.Equal(t, 1.0, snap.Stats.CumulativePnL)
}

func TestCommitSellZeroPnLCountsAsWin(t *testing.T) {
	s := NewEngineState(time.Unix(0, 0))
	s.commitSell(0)
	assert.Equal(t, 1, s.Snapshot().Stats.Wins)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewEngineState(time.Unix(0, 0))
	snap := s.Snapshot()
	snap.Stats.Trades = 99
	assert.Equal(t, 0, s.Snapshot().Stats.Trades)
}
