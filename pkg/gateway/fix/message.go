package fixgateway

import (
	"strconv"
	"sync"

	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/field"
	"github.com/quickfixgo/fix44/executionreport"
	"github.com/quickfixgo/quickfix"
	"github.com/shopspring/decimal"
)

// MessagePool recycles quickfix messages across execution reports.
type MessagePool struct {
	pool sync.Pool
}

func NewMessagePool() *MessagePool {
	return &MessagePool{
		pool: sync.Pool{
			New: func() interface{} {
				m := quickfix.NewMessage()
				resetMessage(m)
				return m
			},
		},
	}
}

// Get returns a reset message from the pool
func (mp *MessagePool) Get() *quickfix.Message {
	m := mp.pool.Get().(*quickfix.Message)
	resetMessage(m)
	return m
}

// Put returns the message to the pool
func (mp *MessagePool) Put(m *quickfix.Message) {
	resetMessage(m)
	mp.pool.Put(m)
}

func resetMessage(m *quickfix.Message) {
	m.Header.Init()
	m.Body.Init()
	m.Trailer.Init()
	m.Header.Clear()
	m.Body.Clear()
	m.Trailer.Clear()
}

var execReportPool = NewMessagePool()

// fillReport is one side's view of a single execution.
type fillReport struct {
	state     orderState
	lastQty   int64
	lastPrice decimal.Decimal
	filled    bool
}

func buildFill(fill fillReport) (executionreport.ExecutionReport, *quickfix.Message) {
	msg := execReportPool.Get()
	er := executionreport.FromMessage(msg)

	leaves := fill.state.orderQty - fill.state.cumQty
	if leaves < 0 {
		leaves = 0
	}

	er.SetMsgType(enum.MsgType_EXECUTION_REPORT)
	er.SetOrderID(strconv.FormatUint(fill.state.orderID, 10))
	er.SetExecID(strconv.FormatUint(fill.state.orderID, 10) + "-" + strconv.FormatInt(fill.state.cumQty, 10))
	er.SetClOrdID(fill.state.clOrdID)
	er.SetAccount(fill.state.account)
	er.SetSymbol(fill.state.symbol)
	er.SetSide(fill.state.side)
	er.SetOrderQty(decimal.NewFromInt(fill.state.orderQty), 0)
	er.SetPrice(fill.state.price, 2)
	er.SetCumQty(decimal.NewFromInt(fill.state.cumQty), 0)
	er.SetLeavesQty(decimal.NewFromInt(leaves), 0)
	er.SetLastQty(decimal.NewFromInt(fill.lastQty), 0)
	er.SetLastPx(fill.lastPrice, 2)

	er.SetExecType(enum.ExecType_TRADE)
	if fill.filled {
		er.SetOrdStatus(enum.OrdStatus_FILLED)
	} else {
		er.SetOrdStatus(enum.OrdStatus_PARTIALLY_FILLED)
	}

	return er, msg
}

func sendFill(fill fillReport) error {
	er, msg := buildFill(fill)
	err := quickfix.SendToTarget(er, fill.state.sessionID)
	execReportPool.Put(msg)
	return err
}

func sendNew(state *orderState) {
	msg := execReportPool.Get()
	er := executionreport.FromMessage(msg)

	er.SetMsgType(enum.MsgType_EXECUTION_REPORT)
	er.SetOrderID(strconv.FormatUint(state.orderID, 10))
	er.SetExecID(strconv.FormatUint(state.orderID, 10) + "-new")
	er.SetClOrdID(state.clOrdID)
	er.SetAccount(state.account)
	er.SetSymbol(state.symbol)
	er.SetSide(state.side)
	er.SetOrderQty(decimal.NewFromInt(state.orderQty), 0)
	er.SetPrice(state.price, 2)
	er.SetCumQty(decimal.NewFromInt(0), 0)
	er.SetLeavesQty(decimal.NewFromInt(state.orderQty), 0)
	er.SetExecType(enum.ExecType_NEW)
	er.SetOrdStatus(enum.OrdStatus_NEW)

	go func() {
		_ = quickfix.SendToTarget(er, state.sessionID)
		execReportPool.Put(msg)
	}()
}

// Rejects are rare, so they take the plain construction path instead of
// the pool.
func sendReject(nos *NewOrderSingle, reason string) {
	er := executionreport.New(
		field.NewOrderID("0"),
		field.NewExecID(nos.ClOrdID+"-rejected"),
		field.NewExecType(enum.ExecType_REJECTED),
		field.NewOrdStatus(enum.OrdStatus_REJECTED),
		field.NewSide(nos.Side),
		field.NewLeavesQty(decimal.NewFromInt(0), 0),
		field.NewCumQty(decimal.NewFromInt(0), 0),
		field.NewAvgPx(decimal.NewFromInt(0), 2),
	)
	er.SetClOrdID(nos.ClOrdID)
	er.SetAccount(nos.Account)
	er.SetSymbol(nos.Symbol)
	er.SetOrderQty(nos.OrderQty, 0)
	er.SetText(reason)

	go func() {
		_ = quickfix.SendToTarget(er, nos.SessionID)
	}()
}
