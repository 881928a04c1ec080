package codec

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chadury2021/nautilus-trader-s/errs"
	"github.com/chadury2021/nautilus-trader-s/internal/message"
	"github.com/chadury2021/nautilus-trader-s/internal/order"
)

// Variant type tags written into the envelope.
const (
	typeSubmitOrder       = "SubmitOrder"
	typeSubmitAtomicOrder = "SubmitAtomicOrder"
	typeModifyOrder       = "ModifyOrder"
	typeCancelOrder       = "CancelOrder"
	typeCollateralInquiry = "CollateralInquiry"

	typeOrderSubmitted    = "OrderSubmitted"
	typeOrderAccepted     = "OrderAccepted"
	typeOrderRejected     = "OrderRejected"
	typeOrderWorking      = "OrderWorking"
	typeOrderFilled       = "OrderFilled"
	typeOrderCancelled    = "OrderCancelled"
	typeOrderCancelReject = "OrderCancelReject"
	typeOrderModified     = "OrderModified"
	typeOrderExpired      = "OrderExpired"
	typeAccountState      = "AccountState"

	typeMessageReceived = "MessageReceived"
	typeMessageRejected = "MessageRejected"
	typeDataResponse    = "DataResponse"
)

// envelope is the wire form shared by every message variant. Decimal fields
// travel as strings to stay exact across backends.
type envelope struct {
	Type      string    `msgpack:"type" json:"type"`
	ID        string    `msgpack:"id" json:"id"`
	Timestamp time.Time `msgpack:"timestamp" json:"timestamp"`

	Trader     string `msgpack:"trader,omitempty" json:"trader,omitempty"`
	StrategyID string `msgpack:"strategy_id,omitempty" json:"strategy_id,omitempty"`
	PositionID string `msgpack:"position_id,omitempty" json:"position_id,omitempty"`
	OrderID    string `msgpack:"order_id,omitempty" json:"order_id,omitempty"`
	Reason     string `msgpack:"reason,omitempty" json:"reason,omitempty"`

	Order  *wireOrder  `msgpack:"order,omitempty" json:"order,omitempty"`
	Atomic *wireAtomic `msgpack:"atomic,omitempty" json:"atomic,omitempty"`

	Quantity string `msgpack:"quantity,omitempty" json:"quantity,omitempty"`
	Price    string `msgpack:"price,omitempty" json:"price,omitempty"`

	FillPrice      string `msgpack:"fill_price,omitempty" json:"fill_price,omitempty"`
	FilledQuantity string `msgpack:"filled_quantity,omitempty" json:"filled_quantity,omitempty"`

	Currency        string `msgpack:"currency,omitempty" json:"currency,omitempty"`
	Balance         string `msgpack:"balance,omitempty" json:"balance,omitempty"`
	MarginBalance   string `msgpack:"margin_balance,omitempty" json:"margin_balance,omitempty"`
	MarginAvailable string `msgpack:"margin_available,omitempty" json:"margin_available,omitempty"`

	CorrelationID string `msgpack:"correlation_id,omitempty" json:"correlation_id,omitempty"`
	ReceivedType  string `msgpack:"received_type,omitempty" json:"received_type,omitempty"`
	Data          []byte `msgpack:"data,omitempty" json:"data,omitempty"`
	Encoding      string `msgpack:"encoding,omitempty" json:"encoding,omitempty"`
}

type wireOrder struct {
	ID          string    `msgpack:"id" json:"id"`
	Symbol      string    `msgpack:"symbol" json:"symbol"`
	Side        string    `msgpack:"side" json:"side"`
	Type        string    `msgpack:"type" json:"type"`
	Quantity    string    `msgpack:"quantity" json:"quantity"`
	Price       string    `msgpack:"price" json:"price"`
	TimeInForce string    `msgpack:"time_in_force" json:"time_in_force"`
	InitTime    time.Time `msgpack:"init_time" json:"init_time"`
}

type wireAtomic struct {
	Entry      wireOrder  `msgpack:"entry" json:"entry"`
	StopLoss   wireOrder  `msgpack:"stop_loss" json:"stop_loss"`
	TakeProfit *wireOrder `msgpack:"take_profit,omitempty" json:"take_profit,omitempty"`
}

func codecErr(msg string, cause error) error {
	opts := []errs.Option{errs.WithMessage(msg)}
	if cause != nil {
		opts = append(opts, errs.WithCause(cause))
	}
	return errs.New("codec", errs.CodeCodec, opts...)
}

func newEnvelope(typ string, base message.Base) envelope {
	return envelope{
		Type:      typ,
		ID:        base.ID.String(),
		Timestamp: base.Timestamp.UTC(),
	}
}

func (e envelope) base() (message.Base, error) {
	id, err := uuid.Parse(e.ID)
	if err != nil {
		return message.Base{}, codecErr("malformed message id", err)
	}
	return message.RestoreBase(id, e.Timestamp), nil
}

func (e envelope) correlation() (uuid.UUID, error) {
	id, err := uuid.Parse(e.CorrelationID)
	if err != nil {
		return uuid.Nil, codecErr("malformed correlation id", err)
	}
	return id, nil
}

func encodeDecimal(d decimal.Decimal) string { return d.String() }

func decodeDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, codecErr("malformed decimal", err)
	}
	return d, nil
}

func encodeOrder(o order.Order) wireOrder {
	return wireOrder{
		ID:          o.ID,
		Symbol:      o.Symbol,
		Side:        string(o.Side),
		Type:        string(o.Type),
		Quantity:    encodeDecimal(o.Quantity),
		Price:       encodeDecimal(o.Price),
		TimeInForce: string(o.TimeInForce),
		InitTime:    o.InitTime.UTC(),
	}
}

func decodeOrder(w wireOrder) (order.Order, error) {
	qty, err := decodeDecimal(w.Quantity)
	if err != nil {
		return order.Order{}, err
	}
	price, err := decodeDecimal(w.Price)
	if err != nil {
		return order.Order{}, err
	}
	return order.Order{
		ID:          w.ID,
		Symbol:      w.Symbol,
		Side:        order.Side(w.Side),
		Type:        order.Type(w.Type),
		Quantity:    qty,
		Price:       price,
		TimeInForce: order.TimeInForce(w.TimeInForce),
		InitTime:    w.InitTime.UTC(),
	}, nil
}

func encodeAtomic(a order.AtomicOrder) *wireAtomic {
	w := &wireAtomic{
		Entry:    encodeOrder(a.Entry),
		StopLoss: encodeOrder(a.StopLoss),
	}
	if a.TakeProfit != nil {
		tp := encodeOrder(*a.TakeProfit)
		w.TakeProfit = &tp
	}
	return w
}

func decodeAtomic(w *wireAtomic) (order.AtomicOrder, error) {
	if w == nil {
		return order.AtomicOrder{}, codecErr("missing atomic order payload", nil)
	}
	entry, err := decodeOrder(w.Entry)
	if err != nil {
		return order.AtomicOrder{}, err
	}
	stopLoss, err := decodeOrder(w.StopLoss)
	if err != nil {
		return order.AtomicOrder{}, err
	}
	a := order.AtomicOrder{Entry: entry, StopLoss: stopLoss}
	if w.TakeProfit != nil {
		tp, err := decodeOrder(*w.TakeProfit)
		if err != nil {
			return order.AtomicOrder{}, err
		}
		a.TakeProfit = &tp
	}
	return a, nil
}
