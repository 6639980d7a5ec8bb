package store

import (
	"context"
)

type ITrade interface {
	Create(ctx context.Context, record *TradeRecord) (*TradeRecord, error)
	BulkCreate(ctx context.Context, records []*TradeRecord) ([]*TradeRecord, error)
	ListBySymbol(ctx context.Context, symbol string, limit int) ([]*TradeRecord, error)
}
