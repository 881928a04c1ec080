package message

import (
	"github.com/shopspring/decimal"

	"github.com/chadury2021/nautilus-trader-s/internal/order"
)

// Command is an instruction meant to cause exactly one side effect when
// executed; commands are never implicitly retried. The variant set is closed:
// dispatchers type-switch over it exhaustively and treat any other Command
// value as a programming error.
type Command interface {
	Message
	isCommand()
}

// SubmitOrder instructs the execution service to work a single order.
type SubmitOrder struct {
	Base
	Trader     string
	StrategyID string
	PositionID string
	Order      order.Order
}

// SubmitAtomicOrder instructs the execution service to work a bracket of
// entry, stop-loss, and optional take-profit orders as one unit.
type SubmitAtomicOrder struct {
	Base
	Trader     string
	StrategyID string
	PositionID string
	Atomic     order.AtomicOrder
}

// ModifyOrder changes the working quantity and/or price of an open order.
type ModifyOrder struct {
	Base
	Trader           string
	OrderID          string
	ModifiedQuantity decimal.Decimal
	ModifiedPrice    decimal.Decimal
}

// CancelOrder removes an open order from the market.
type CancelOrder struct {
	Base
	Trader  string
	OrderID string
	Reason  string
}

// CollateralInquiry requests the current account state from the execution
// service; the answer arrives as an AccountState event.
type CollateralInquiry struct {
	Base
	Trader string
}

func (SubmitOrder) isCommand()       {}
func (SubmitAtomicOrder) isCommand() {}
func (ModifyOrder) isCommand()       {}
func (CancelOrder) isCommand()       {}
func (CollateralInquiry) isCommand() {}
