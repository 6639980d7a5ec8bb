package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord is the persisted form of an execution.
type TradeRecord struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement"`
	EventID     string          `gorm:"uniqueIndex;size:64"`
	Symbol      string          `gorm:"index;size:32"`
	BuyOrderID  uint64          `gorm:"index"`
	SellOrderID uint64          `gorm:"index"`
	Price       decimal.Decimal `gorm:"type:numeric(20,8)"`
	Quantity    int64
	ExecutedAt  time.Time
	CreatedAt   time.Time
}

func (TradeRecord) TableName() string {
	return "trades"
}
