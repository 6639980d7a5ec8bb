package model

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// AddOrder is the boundary representation of a submission as it
// arrives from a gateway: decimal price and quantity, account and
// symbol attribution, before tick conversion.
type AddOrder struct {
	OrderID      uint64
	Account      string
	Symbol       string
	Side         OrderSide
	Price        decimal.Decimal
	Quantity     decimal.Decimal
	TransactTime time.Time
}

// BookOrder converts the submission to the book's tick representation,
// rejecting off-tick prices and non-integral or out-of-range
// quantities.
func (a *AddOrder) BookOrder(scale PriceScale) (*orderbook.Order, error) {
	ticks, err := scale.ToTicks(a.Price)
	if err != nil {
		return nil, err
	}

	if !a.Quantity.IsInteger() || a.Quantity.Sign() <= 0 || a.Quantity.IntPart() > math.MaxUint32 {
		return nil, ErrInvalidQuantity
	}

	side := orderbook.SELL
	if a.Side == OrderSideBuy {
		side = orderbook.BUY
	}

	return &orderbook.Order{
		ID:        a.OrderID,
		Side:      side,
		Price:     ticks,
		Qty:       uint32(a.Quantity.IntPart()),
		Timestamp: uint64(a.TransactTime.UnixNano()),
	}, nil
}
