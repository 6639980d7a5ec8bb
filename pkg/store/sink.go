package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joripage/matching-engine/pkg/engine/model"
	"github.com/joripage/matching-engine/pkg/logging"
	"github.com/joripage/matching-engine/pkg/orderbook"
)

const (
	defaultFlushSize     = 200
	defaultFlushInterval = 100 * time.Millisecond
)

// PersistingSink buffers trades off the matching path and bulk-inserts
// them from its own goroutine. Accept only appends under a mutex, so
// the engine loop never waits on the database.
type PersistingSink struct {
	repo   ITrade
	symbol string
	scale  model.PriceScale
	log    *logging.Logger

	mu  sync.Mutex
	buf []*TradeRecord

	flushSize     int
	flushInterval time.Duration

	kick   chan struct{}
	stopCh chan struct{}
	wg     sync.WaitGroup
}

type PersistingSinkConfig struct {
	Symbol        string
	Scale         model.PriceScale
	FlushSize     int
	FlushInterval time.Duration
	Logger        *logging.Logger
}

func NewPersistingSink(repo ITrade, cfg *PersistingSinkConfig) *PersistingSink {
	if cfg.FlushSize <= 0 {
		cfg.FlushSize = defaultFlushSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
	log := cfg.Logger
	if log == nil {
		log = logging.NewLogger(logging.INFO)
	}

	return &PersistingSink{
		repo:          repo,
		symbol:        cfg.Symbol,
		scale:         cfg.Scale,
		log:           log,
		flushSize:     cfg.FlushSize,
		flushInterval: cfg.FlushInterval,
		kick:          make(chan struct{}, 1),
		stopCh:        make(chan struct{}),
	}
}

// Start launches the flusher goroutine.
func (s *PersistingSink) Start() {
	s.wg.Add(1)
	go s.run()
}

// Accept records the trade for the next flush. Called on the engine's
// consumer goroutine.
func (s *PersistingSink) Accept(trade orderbook.Trade) {
	record := &TradeRecord{
		EventID:     uuid.New().String(),
		Symbol:      s.symbol,
		BuyOrderID:  trade.BuyOrderID,
		SellOrderID: trade.SellOrderID,
		Price:       s.scale.FromTicks(trade.Price),
		Quantity:    int64(trade.Qty),
		ExecutedAt:  time.Now(),
	}

	s.mu.Lock()
	s.buf = append(s.buf, record)
	full := len(s.buf) >= s.flushSize
	s.mu.Unlock()

	if full {
		select {
		case s.kick <- struct{}{}:
		default:
		}
	}
}

// Stop flushes whatever is buffered and waits for the flusher to exit.
func (s *PersistingSink) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *PersistingSink) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.flush()
		case <-s.kick:
			s.flush()
		case <-s.stopCh:
			s.flush()
			return
		}
	}
}

func (s *PersistingSink) flush() {
	s.mu.Lock()
	batch := s.buf
	s.buf = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	if _, err := s.repo.BulkCreate(context.Background(), batch); err != nil {
		s.log.Error(context.Background(), "persist trades fail",
			zap.Int("batch", len(batch)), zap.Error(err))
	}
}
