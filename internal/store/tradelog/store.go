// Package tradelog persists confirmed fills in a local SQLite database.
// Writes come only from the execution loop; the HTTP surface reads.
package tradelog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"quotebot/internal/gateway/exchange"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("tradelog: path cannot be empty")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&TradeModel{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// RecordBuy stores a confirmed entry fill.
func (s *Store) RecordBuy(symbol, reason string, fill *exchange.Fill) error {
	return s.record(symbol, "BUY", reason, fill, 0)
}

// RecordSell stores a confirmed exit fill with its realized PnL.
func (s *Store) RecordSell(symbol, reason string, fill *exchange.Fill, pnl float64) error {
	return s.record(symbol, "SELL", reason, fill, pnl)
}

func (s *Store) record(symbol, side, reason string, fill *exchange.Fill, pnl float64) error {
	if fill == nil {
		return fmt.Errorf("tradelog: nil fill")
	}
	row := TradeModel{
		OrderID:       fill.OrderID,
		ClientOrderID: fill.ClientOrderID,
		Symbol:        symbol,
		Side:          side,
		Reason:        reason,
		Price:         fill.Price,
		Quantity:      fill.Quantity,
		QuoteAmount:   fill.QuoteSpent,
		PnL:           pnl,
		Raw:           fill.Raw,
		CreatedAt:     fillTime(fill),
	}
	return s.db.Create(&row).Error
}

// Recent returns the latest trades, newest first.
func (s *Store) Recent(limit int) ([]TradeModel, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []TradeModel
	err := s.db.Order("id DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

// PnLSeries returns the realized PnL of every exit in chronological order,
// for the equity-curve chart.
func (s *Store) PnLSeries() ([]TradeModel, error) {
	var rows []TradeModel
	err := s.db.Where("side = ?", "SELL").Order("id ASC").Find(&rows).Error
	return rows, err
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func fillTime(fill *exchange.Fill) time.Time {
	if !fill.Time.IsZero() {
		return fill.Time
	}
	return time.Now()
}
