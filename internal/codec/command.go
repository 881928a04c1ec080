package codec

import (
	"fmt"

	"github.com/chadury2021/nautilus-trader-s/internal/message"
)

// EncodeCommand serializes a command into a self-describing frame.
func (c *Codec) EncodeCommand(cmd message.Command) ([]byte, error) {
	var env envelope
	switch m := cmd.(type) {
	case message.SubmitOrder:
		env = newEnvelope(typeSubmitOrder, m.Base)
		env.Trader = m.Trader
		env.StrategyID = m.StrategyID
		env.PositionID = m.PositionID
		o := encodeOrder(m.Order)
		env.Order = &o
	case message.SubmitAtomicOrder:
		env = newEnvelope(typeSubmitAtomicOrder, m.Base)
		env.Trader = m.Trader
		env.StrategyID = m.StrategyID
		env.PositionID = m.PositionID
		env.Atomic = encodeAtomic(m.Atomic)
	case message.ModifyOrder:
		env = newEnvelope(typeModifyOrder, m.Base)
		env.Trader = m.Trader
		env.OrderID = m.OrderID
		env.Quantity = encodeDecimal(m.ModifiedQuantity)
		env.Price = encodeDecimal(m.ModifiedPrice)
	case message.CancelOrder:
		env = newEnvelope(typeCancelOrder, m.Base)
		env.Trader = m.Trader
		env.OrderID = m.OrderID
		env.Reason = m.Reason
	case message.CollateralInquiry:
		env = newEnvelope(typeCollateralInquiry, m.Base)
		env.Trader = m.Trader
	default:
		// The command set is closed; an unknown variant is a programming
		// error, not a data problem.
		panic(fmt.Sprintf("codec: unhandled command variant %T", cmd))
	}

	frame, err := c.marshal(env)
	if err != nil {
		return nil, codecErr("encode command", err)
	}
	return frame, nil
}

// DecodeCommand reconstructs a command from a frame.
func (c *Codec) DecodeCommand(frame []byte) (message.Command, error) {
	var env envelope
	if err := c.unmarshal(frame, &env); err != nil {
		return nil, codecErr("decode command frame", err)
	}
	base, err := env.base()
	if err != nil {
		return nil, err
	}

	switch env.Type {
	case typeSubmitOrder:
		if env.Order == nil {
			return nil, codecErr("submit order frame missing order", nil)
		}
		o, err := decodeOrder(*env.Order)
		if err != nil {
			return nil, err
		}
		return message.SubmitOrder{
			Base:       base,
			Trader:     env.Trader,
			StrategyID: env.StrategyID,
			PositionID: env.PositionID,
			Order:      o,
		}, nil
	case typeSubmitAtomicOrder:
		atomic, err := decodeAtomic(env.Atomic)
		if err != nil {
			return nil, err
		}
		return message.SubmitAtomicOrder{
			Base:       base,
			Trader:     env.Trader,
			StrategyID: env.StrategyID,
			PositionID: env.PositionID,
			Atomic:     atomic,
		}, nil
	case typeModifyOrder:
		qty, err := decodeDecimal(env.Quantity)
		if err != nil {
			return nil, err
		}
		price, err := decodeDecimal(env.Price)
		if err != nil {
			return nil, err
		}
		return message.ModifyOrder{
			Base:             base,
			Trader:           env.Trader,
			OrderID:          env.OrderID,
			ModifiedQuantity: qty,
			ModifiedPrice:    price,
		}, nil
	case typeCancelOrder:
		return message.CancelOrder{
			Base:    base,
			Trader:  env.Trader,
			OrderID: env.OrderID,
			Reason:  env.Reason,
		}, nil
	case typeCollateralInquiry:
		return message.CollateralInquiry{Base: base, Trader: env.Trader}, nil
	default:
		return nil, codecErr("unknown command type tag: "+env.Type, nil)
	}
}
