package tradelog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotebot/internal/gateway/exchange"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "trades.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)

	buy := &exchange.Fill{OrderID: 1, ClientOrderID: "qb-a", Price: 50000, Quantity: 0.001, QuoteSpent: 50, Time: time.Unix(100, 0)}
	require.NoError(t, s.RecordBuy("BTCUSDT", "Entry", buy))
	sell := &exchange.Fill{OrderID: 2, ClientOrderID: "qb-b", Price: 50100, Quantity: 0.001, Time: time.Unix(200, 0)}
	require.NoError(t, s.RecordSell("BTCUSDT", "TP", sell, 0.1))

	rows, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// Newest first.
	assert.Equal(t, "SELL", rows[0].Side)
	assert.Equal(t, "TP", rows[0].Reason)
	assert.Equal(t, 0.1, rows[0].PnL)
	assert.Equal(t, "BUY", rows[1].Side)
	assert.Equal(t, 50.0, rows[1].QuoteAmount)
}

func TestRecordNilFill(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.RecordBuy("BTCUSDT", "Entry", nil))
}

func TestPnLSeriesOnlySellsInOrder(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.RecordBuy("BTCUSDT", "Entry", &exchange.Fill{OrderID: 1, Price: 50000, Quantity: 0.001}))
	require.NoError(t, s.RecordSell("BTCUSDT", "TP", &exchange.Fill{OrderID: 2, Price: 50100, Quantity: 0.001}, 0.1))
	require.NoError(t, s.RecordSell("BTCUSDT", "SL", &exchange.Fill{OrderID: 3, Price: 49900, Quantity: 0.001}, -0.2))

	rows, err := s.PnLSeries()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 0.1, rows[0].PnL)
	assert.Equal(t, -0.2, rows[1].PnL)
}
