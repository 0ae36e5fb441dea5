package exchange

import "time"

// Balance is the free/locked split of one asset.
type Balance struct {
	Free   float64 `json:"free"`
	Locked float64 `json:"locked"`
}

func (b Balance) Total() float64 { return b.Free + b.Locked }

// Balances maps asset symbol to balance. Missing assets read as zero.
type Balances map[string]Balance

func (bs Balances) Asset(name string) Balance {
	if bs == nil {
		return Balance{}
	}
	return bs[name]
}

// Fill is a confirmed execution. Price is the average fill price; when the
// venue only reports partial fills the first partial's price is used as an
// approximation.
type Fill struct {
	OrderID       int64     `json:"order_id"`
	ClientOrderID string    `json:"client_order_id"`
	Quantity      float64   `json:"quantity"`
	Price         float64   `json:"price"`
	QuoteSpent    float64   `json:"quote_spent"`
	Time          time.Time `json:"time"`
	Raw           []byte    `json:"-"`
}
