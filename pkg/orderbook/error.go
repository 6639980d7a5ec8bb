package orderbook

import "errors"

var (
	ErrInvalidQty   = errors.New("order quantity must be positive")
	ErrInvalidPrice = errors.New("invalid order price")
	ErrInvalidSide  = errors.New("invalid order side")
	ErrCorruptBook  = errors.New("order book corrupted")
)
