package fixgateway

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/quickfixgo/enum"
	"go.uber.org/zap"

	"github.com/joripage/matching-engine/pkg/engine"
	"github.com/joripage/matching-engine/pkg/engine/model"
	"github.com/joripage/matching-engine/pkg/logging"
	"github.com/joripage/matching-engine/pkg/orderbook"
)

// Gateway is a FIX 4.4 order entry front end for one engine: inbound
// NewOrderSingle messages become engine submissions, and every trade
// becomes a pair of ExecutionReports back to the submitting sessions.
// Installed as the engine's trade sink (see cmd/fixserver), the gateway
// accounts fills on the consumer goroutine in production order.
// Each report is then sent from its own goroutine, so the order in
// which reports reach a session is not guaranteed.
type Gateway struct {
	cfg    *GatewayConfig
	app    *Application
	engine *engine.Engine
	log    *logging.Logger

	nextOrderID atomic.Uint64
	orders      sync.Map // orderID -> *orderState
}

type GatewayConfig struct {
	ConfigFilepath string
	Symbol         string
	Scale          model.PriceScale
	Logger         *logging.Logger
}

func NewGateway(cfg *GatewayConfig) *Gateway {
	log := cfg.Logger
	if log == nil {
		log = logging.NewLogger(logging.INFO)
	}

	return &Gateway{
		cfg: cfg,
		log: log,
	}
}

// Bind attaches the engine the gateway submits to. Must be called
// before Start.
func (g *Gateway) Bind(e *engine.Engine) {
	g.engine = e
}

func (g *Gateway) Start(ctx context.Context) error {
	app, err := startApp(g.cfg.ConfigFilepath, g)
	if err != nil {
		g.log.Error(ctx, "start fix app fail", zap.Error(err))
		return err
	}
	g.app = app
	return nil
}

func (g *Gateway) Stop() {
	if g.app != nil {
		stopApp(g.app)
	}
}

// AddOrder converts an inbound NewOrderSingle to an engine submission.
// Rejections are reported back on the FIX session.
func (g *Gateway) AddOrder(nos *NewOrderSingle) {
	ctx := context.Background()

	if g.cfg.Symbol != "" && nos.Symbol != g.cfg.Symbol {
		g.log.Warn(ctx, "unknown symbol", zap.String("symbol", nos.Symbol), zap.String("cl_ord_id", nos.ClOrdID))
		sendReject(nos, "unknown symbol")
		return
	}

	side := model.OrderSideSell
	if nos.Side == enum.Side_BUY {
		side = model.OrderSideBuy
	}

	orderID := g.nextOrderID.Add(1)
	add := &model.AddOrder{
		OrderID:      orderID,
		Account:      nos.Account,
		Symbol:       nos.Symbol,
		Side:         side,
		Price:        nos.Price,
		Quantity:     nos.OrderQty,
		TransactTime: nos.TransactTime,
	}

	order, err := add.BookOrder(g.cfg.Scale)
	if err != nil {
		g.log.Warn(ctx, "order conversion fail", zap.String("cl_ord_id", nos.ClOrdID), zap.Error(err))
		sendReject(nos, err.Error())
		return
	}

	state := &orderState{
		sessionID: nos.SessionID,
		orderID:   orderID,
		clOrdID:   nos.ClOrdID,
		account:   nos.Account,
		symbol:    nos.Symbol,
		side:      nos.Side,
		price:     nos.Price,
		orderQty:  int64(order.Qty),
	}
	g.orders.Store(orderID, state)

	if err := g.engine.Submit(order); err != nil {
		g.orders.Delete(orderID)
		g.log.Warn(ctx, "submit fail", zap.Uint64("order_id", orderID), zap.Error(err))
		sendReject(nos, err.Error())
		return
	}

	sendNew(state)
}

// Accept implements engine.TradeSink: each fill produces an
// ExecutionReport per side.
func (g *Gateway) Accept(trade orderbook.Trade) {
	g.reportFill(trade.BuyOrderID, trade)
	g.reportFill(trade.SellOrderID, trade)
}

func (g *Gateway) reportFill(orderID uint64, trade orderbook.Trade) {
	v, ok := g.orders.Load(orderID)
	if !ok {
		g.log.Warn(context.Background(), "fill for unknown order", zap.Uint64("order_id", orderID))
		return
	}
	state := v.(*orderState)
	state.cumQty += int64(trade.Qty)

	fill := fillReport{
		state:     *state,
		lastQty:   int64(trade.Qty),
		lastPrice: g.cfg.Scale.FromTicks(trade.Price),
		filled:    state.cumQty >= state.orderQty,
	}
	if fill.filled {
		g.orders.Delete(orderID)
	}

	// SendToTarget off the consumer goroutine, the session layer does
	// its own sequencing.
	go func() {
		if err := sendFill(fill); err != nil {
			g.log.Error(context.Background(), "send execution report fail",
				zap.Uint64("order_id", fill.state.orderID), zap.Error(err))
		}
	}()
}
