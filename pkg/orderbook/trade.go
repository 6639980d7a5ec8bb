package orderbook

// Trade is a single match between a resting buy and a resting sell.
type Trade struct {
	BuyOrderID  uint64
	SellOrderID uint64
	Price       int64
	Qty         uint32
}
