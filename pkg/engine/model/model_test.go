package model

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

func TestPriceScaleRoundTrip(t *testing.T) {
	scale := PriceScale(2)

	ticks, err := scale.ToTicks(decimal.RequireFromString("100.25"))
	if err != nil {
		t.Fatal(err)
	}
	if ticks != 10025 {
		t.Errorf("expected 10025 ticks, got %d", ticks)
	}

	back := scale.FromTicks(ticks)
	if !back.Equal(decimal.RequireFromString("100.25")) {
		t.Errorf("round trip gave %s", back)
	}
}

func TestPriceScaleRejectsOffTick(t *testing.T) {
	scale := PriceScale(2)
	_, err := scale.ToTicks(decimal.RequireFromString("100.255"))
	if !errors.Is(err, ErrOffTick) {
		t.Errorf("expected ErrOffTick, got %v", err)
	}
}

func TestBookOrderConversion(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	add := &AddOrder{
		OrderID:      7,
		Symbol:       "ABC",
		Side:         OrderSideBuy,
		Price:        decimal.RequireFromString("100.50"),
		Quantity:     decimal.NewFromInt(25),
		TransactTime: ts,
	}

	order, err := add.BookOrder(PriceScale(2))
	if err != nil {
		t.Fatal(err)
	}
	if order.ID != 7 || order.Side != orderbook.BUY || order.Price != 10050 || order.Qty != 25 {
		t.Errorf("unexpected conversion %+v", order)
	}
	if order.Timestamp != uint64(ts.UnixNano()) {
		t.Errorf("timestamp not preserved: %d", order.Timestamp)
	}
}

func TestBookOrderRejectsBadQuantity(t *testing.T) {
	base := AddOrder{
		OrderID: 1,
		Side:    OrderSideSell,
		Price:   decimal.NewFromInt(100),
	}

	for _, qty := range []string{"0", "-5", "1.5", "5000000000"} {
		add := base
		add.Quantity = decimal.RequireFromString(qty)
		if _, err := add.BookOrder(PriceScale(0)); !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("qty %s: expected ErrInvalidQuantity, got %v", qty, err)
		}
	}
}

func TestTradeReport(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	report := NewTradeReport("ABC", PriceScale(2), orderbook.Trade{
		BuyOrderID:  1,
		SellOrderID: 2,
		Price:       10025,
		Qty:         10,
	}, ts)

	if report.Symbol != "ABC" || report.Quantity != 10 {
		t.Errorf("unexpected report %+v", report)
	}
	if !report.Price.Equal(decimal.RequireFromString("100.25")) {
		t.Errorf("expected price 100.25, got %s", report.Price)
	}
}
