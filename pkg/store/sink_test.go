package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joripage/matching-engine/pkg/engine/model"
	"github.com/joripage/matching-engine/pkg/orderbook"
)

type fakeTradeRepo struct {
	mu      sync.Mutex
	records []*TradeRecord
	batches int
}

func (f *fakeTradeRepo) Create(ctx context.Context, record *TradeRecord) (*TradeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return record, nil
}

func (f *fakeTradeRepo) BulkCreate(ctx context.Context, records []*TradeRecord) ([]*TradeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, records...)
	f.batches++
	return records, nil
}

func (f *fakeTradeRepo) ListBySymbol(ctx context.Context, symbol string, limit int) ([]*TradeRecord, error) {
	return nil, nil
}

func (f *fakeTradeRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func TestPersistingSinkFlushesOnStop(t *testing.T) {
	repo := &fakeTradeRepo{}
	sink := NewPersistingSink(repo, &PersistingSinkConfig{
		Symbol:        "ABC",
		Scale:         model.PriceScale(2),
		FlushInterval: time.Hour, // only the stop flush
	})
	sink.Start()

	for i := range 5 {
		sink.Accept(orderbook.Trade{BuyOrderID: uint64(i + 1), SellOrderID: 100, Price: 10025, Qty: 1})
	}
	sink.Stop()

	if repo.count() != 5 {
		t.Fatalf("expected 5 persisted trades, got %d", repo.count())
	}

	rec := repo.records[0]
	if rec.Symbol != "ABC" || rec.Quantity != 1 {
		t.Errorf("unexpected record %+v", rec)
	}
	if !rec.Price.Equal(decimal.RequireFromString("100.25")) {
		t.Errorf("expected decimal price 100.25, got %s", rec.Price)
	}
	if rec.EventID == "" {
		t.Error("expected event id")
	}
}

func TestPersistingSinkFlushesWhenFull(t *testing.T) {
	repo := &fakeTradeRepo{}
	sink := NewPersistingSink(repo, &PersistingSinkConfig{
		Symbol:        "ABC",
		Scale:         model.PriceScale(2),
		FlushSize:     10,
		FlushInterval: time.Hour,
	})
	sink.Start()
	defer sink.Stop()

	for i := range 10 {
		sink.Accept(orderbook.Trade{BuyOrderID: uint64(i + 1), SellOrderID: 100, Price: 100, Qty: 1})
	}

	deadline := time.Now().Add(2 * time.Second)
	for repo.count() < 10 {
		if time.Now().After(deadline) {
			t.Fatalf("size-triggered flush never ran, persisted %d", repo.count())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
