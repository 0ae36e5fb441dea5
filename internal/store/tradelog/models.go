package tradelog

import (
	"time"

	"gorm.io/datatypes"
)

// TradeModel is one confirmed fill. Raw keeps the venue's order response for
// later inspection.
type TradeModel struct {
	ID            int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID       int64          `gorm:"column:order_id" json:"order_id"`
	ClientOrderID string         `gorm:"column:client_order_id;index" json:"client_order_id"`
	Symbol        string         `gorm:"column:symbol;index" json:"symbol"`
	Side          string         `gorm:"column:side" json:"side"`
	Reason        string         `gorm:"column:reason" json:"reason"`
	Price         float64        `gorm:"column:price" json:"price"`
	Quantity      float64        `gorm:"column:quantity" json:"quantity"`
	QuoteAmount   float64        `gorm:"column:quote_amount" json:"quote_amount"`
	PnL           float64        `gorm:"column:pnl" json:"pnl"`
	Raw           datatypes.JSON `gorm:"column:raw" json:"-"`
	CreatedAt     time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (TradeModel) TableName() string { return "trades" }
