package store

import (
	"context"
	"encoding/json"
	"log"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"

	"github.com/joripage/matching-engine/pkg/engine/model"
)

// Worker consumes trade reports from a JetStream subject and persists
// them. Runs out of process from the engine so a slow database never
// touches matching latency.
type Worker struct {
	trade ITrade
}

func NewWorker(repo IRepo) *Worker {
	return &Worker{
		trade: repo.Trade(),
	}
}

func (w *Worker) StartConsumer(ctx context.Context, js nats.JetStreamContext, subject, durable string) error {
	// Create durable consumer
	cons, err := js.PullSubscribe(subject, durable)
	if err != nil {
		return err
	}

	for {
		msgs, err := cons.Fetch(10)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Println("Fetch error:", err)
			continue
		}

		for _, msg := range msgs {
			var report model.TradeReport
			if err := json.Unmarshal(msg.Data, &report); err != nil {
				log.Println("unmarshal err", err)
				_ = msg.Ack()
				continue
			}
			if err := w.handleReport(msg, &report); err != nil {
				log.Println("handleReport err", err)
				continue
			}
			_ = msg.Ack()
		}
	}
}

func (w *Worker) handleReport(msg *nats.Msg, report *model.TradeReport) error {
	meta, err := msg.Metadata()
	if err != nil {
		return err
	}

	_, err = w.trade.Create(context.Background(), &TradeRecord{
		EventID:     meta.Stream + "-" + strconv.FormatUint(meta.Sequence.Stream, 10),
		Symbol:      report.Symbol,
		BuyOrderID:  report.BuyOrderID,
		SellOrderID: report.SellOrderID,
		Price:       report.Price,
		Quantity:    report.Quantity,
		ExecutedAt:  report.ExecutedAt,
	})
	return err
}
