package fixgateway

import (
	"time"

	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/quickfix"
	"github.com/shopspring/decimal"
)

// NewOrderSingle carries the fields of an inbound 35=D this gateway
// acts on.
type NewOrderSingle struct {
	SessionID quickfix.SessionID

	ClOrdID      string
	Account      string
	Symbol       string
	Side         enum.Side
	Price        decimal.Decimal
	OrderQty     decimal.Decimal
	TransactTime time.Time
}

// orderState tracks one accepted order for execution reporting.
// Mutated only on the engine's consumer goroutine.
type orderState struct {
	sessionID quickfix.SessionID

	orderID  uint64
	clOrdID  string
	account  string
	symbol   string
	side     enum.Side
	price    decimal.Decimal
	orderQty int64
	cumQty   int64
}
