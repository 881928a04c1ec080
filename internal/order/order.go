// Package order defines the order model carried by trading commands and events.
package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chadury2021/nautilus-trader-s/errs"
)

// Side identifies the direction of an order.
type Side string

const (
	// SideBuy marks a buy order.
	SideBuy Side = "BUY"
	// SideSell marks a sell order.
	SideSell Side = "SELL"
)

// Type identifies the execution style of an order.
type Type string

const (
	// TypeMarket executes immediately at the prevailing price.
	TypeMarket Type = "MARKET"
	// TypeLimit rests at the given price until matched.
	TypeLimit Type = "LIMIT"
	// TypeStop arms at the given trigger price.
	TypeStop Type = "STOP"
)

// TimeInForce constrains how long an order stays active.
type TimeInForce string

const (
	// TIFDay keeps the order active for the trading day.
	TIFDay TimeInForce = "DAY"
	// TIFGTC keeps the order active until cancelled.
	TIFGTC TimeInForce = "GTC"
	// TIFIOC fills immediately and cancels the remainder.
	TIFIOC TimeInForce = "IOC"
	// TIFFOC fills completely or cancels entirely.
	TIFFOC TimeInForce = "FOC"
)

// Order describes a single instruction to trade a quantity of a symbol.
// Price is meaningful only for price-bearing types (LIMIT, STOP).
type Order struct {
	ID          string
	Symbol      string
	Side        Side
	Type        Type
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	TimeInForce TimeInForce
	InitTime    time.Time
}

// New validates and constructs an Order.
func New(id, symbol string, side Side, typ Type, quantity, price decimal.Decimal, tif TimeInForce, initTime time.Time) (Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Order{}, errs.New("order", errs.CodeInvalidConfig, errs.WithMessage("order id required"))
	}
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return Order{}, errs.New("order", errs.CodeInvalidConfig, errs.WithMessage("symbol required"))
	}
	switch side {
	case SideBuy, SideSell:
	default:
		return Order{}, errs.New("order", errs.CodeInvalidConfig, errs.WithMessage("unknown side"), errs.WithField("side", string(side)))
	}
	switch typ {
	case TypeMarket, TypeLimit, TypeStop:
	default:
		return Order{}, errs.New("order", errs.CodeInvalidConfig, errs.WithMessage("unknown order type"), errs.WithField("type", string(typ)))
	}
	if !quantity.IsPositive() {
		return Order{}, errs.New("order", errs.CodeInvalidConfig, errs.WithMessage("quantity must be positive"), errs.WithField("quantity", quantity.String()))
	}
	if typ != TypeMarket && !price.IsPositive() {
		return Order{}, errs.New("order", errs.CodeInvalidConfig, errs.WithMessage("price required for price-bearing order type"), errs.WithField("type", string(typ)))
	}
	switch tif {
	case TIFDay, TIFGTC, TIFIOC, TIFFOC:
	default:
		return Order{}, errs.New("order", errs.CodeInvalidConfig, errs.WithMessage("unknown time in force"), errs.WithField("tif", string(tif)))
	}
	return Order{
		ID:          id,
		Symbol:      symbol,
		Side:        side,
		Type:        typ,
		Quantity:    quantity,
		Price:       price,
		TimeInForce: tif,
		InitTime:    initTime.UTC(),
	}, nil
}

// Equal reports field-wise equality between two orders.
func (o Order) Equal(other Order) bool {
	return o.ID == other.ID &&
		o.Symbol == other.Symbol &&
		o.Side == other.Side &&
		o.Type == other.Type &&
		o.Quantity.Equal(other.Quantity) &&
		o.Price.Equal(other.Price) &&
		o.TimeInForce == other.TimeInForce &&
		o.InitTime.Equal(other.InitTime)
}

// AtomicOrder bundles an entry order with its protective exits.
// TakeProfit is optional; Entry and StopLoss are required.
type AtomicOrder struct {
	Entry      Order
	StopLoss   Order
	TakeProfit *Order
}

// NewAtomic validates and constructs an AtomicOrder.
func NewAtomic(entry, stopLoss Order, takeProfit *Order) (AtomicOrder, error) {
	if entry.ID == "" {
		return AtomicOrder{}, errs.New("order", errs.CodeInvalidConfig, errs.WithMessage("entry order required"))
	}
	if stopLoss.ID == "" {
		return AtomicOrder{}, errs.New("order", errs.CodeInvalidConfig, errs.WithMessage("stop-loss order required"))
	}
	if entry.Symbol != stopLoss.Symbol {
		return AtomicOrder{}, errs.New("order", errs.CodeInvalidConfig, errs.WithMessage("entry and stop-loss symbols must match"))
	}
	if takeProfit != nil && takeProfit.Symbol != entry.Symbol {
		return AtomicOrder{}, errs.New("order", errs.CodeInvalidConfig, errs.WithMessage("entry and take-profit symbols must match"))
	}
	return AtomicOrder{Entry: entry, StopLoss: stopLoss, TakeProfit: takeProfit}, nil
}

// Equal reports field-wise equality between two atomic orders.
func (a AtomicOrder) Equal(other AtomicOrder) bool {
	if !a.Entry.Equal(other.Entry) || !a.StopLoss.Equal(other.StopLoss) {
		return false
	}
	if (a.TakeProfit == nil) != (other.TakeProfit == nil) {
		return false
	}
	if a.TakeProfit != nil && !a.TakeProfit.Equal(*other.TakeProfit) {
		return false
	}
	return true
}
