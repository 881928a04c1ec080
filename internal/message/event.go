package message

import "github.com/shopspring/decimal"

// Event is an immutable record of something that already happened; events are
// delivered to zero or more registered consumers. The variant set is closed,
// mirroring the order lifecycle plus account state.
type Event interface {
	Message
	isEvent()
}

// OrderSubmitted records that an order reached the execution service.
type OrderSubmitted struct {
	Base
	Trader  string
	OrderID string
}

// OrderAccepted records that the venue accepted an order for working.
type OrderAccepted struct {
	Base
	Trader  string
	OrderID string
}

// OrderRejected records that the venue refused an order.
type OrderRejected struct {
	Base
	Trader  string
	OrderID string
	Reason  string
}

// OrderWorking records that an order is resting on the book.
type OrderWorking struct {
	Base
	Trader  string
	OrderID string
}

// OrderFilled records a fill against a working order.
type OrderFilled struct {
	Base
	Trader         string
	OrderID        string
	FillPrice      decimal.Decimal
	FilledQuantity decimal.Decimal
}

// OrderCancelled records that an order was removed from the market.
type OrderCancelled struct {
	Base
	Trader  string
	OrderID string
}

// OrderCancelReject records that a cancel or modify request was refused.
type OrderCancelReject struct {
	Base
	Trader  string
	OrderID string
	Reason  string
}

// OrderModified records an amendment to a working order.
type OrderModified struct {
	Base
	Trader           string
	OrderID          string
	ModifiedQuantity decimal.Decimal
	ModifiedPrice    decimal.Decimal
}

// OrderExpired records that an order lapsed by its time in force.
type OrderExpired struct {
	Base
	Trader  string
	OrderID string
}

// AccountState reports account balances, typically in answer to a
// CollateralInquiry command.
type AccountState struct {
	Base
	Trader          string
	Currency        string
	Balance         decimal.Decimal
	MarginBalance   decimal.Decimal
	MarginAvailable decimal.Decimal
}

func (OrderSubmitted) isEvent()    {}
func (OrderAccepted) isEvent()     {}
func (OrderRejected) isEvent()     {}
func (OrderWorking) isEvent()      {}
func (OrderFilled) isEvent()       {}
func (OrderCancelled) isEvent()    {}
func (OrderCancelReject) isEvent() {}
func (OrderModified) isEvent()     {}
func (OrderExpired) isEvent()      {}
func (AccountState) isEvent()      {}
