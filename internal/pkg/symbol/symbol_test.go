package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSlashForm(t *testing.T) {
	s := Parse("btc/usdt")
	assert.Equal(t, "BTC", s.Base)
	assert.Equal(t, "USDT", s.Quote)
	assert.Equal(t, "BTCUSDT", s.Binance())
}

func TestParseConcatenatedForm(t *testing.T) {
	s := Parse("ETHUSDT")
	assert.Equal(t, "ETH", s.Base)
	assert.Equal(t, "USDT", s.Quote)

	s = Parse("SOLBNB")
	assert.Equal(t, "SOL", s.Base)
	assert.Equal(t, "BNB", s.Quote)
}

func TestParseUnknown(t *testing.T) {
	assert.Equal(t, Symbol{}, Parse(""))
	assert.Equal(t, Symbol{}, Parse("USDT"))
	assert.Equal(t, Symbol{}, Parse("XYZABC"))
	assert.Equal(t, "", Symbol{}.Binance())
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("BTC/USDT"))
	assert.True(t, IsValid("BTCUSDT"))
	assert.False(t, IsValid("nonsense"))
}
