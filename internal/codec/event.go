package codec

import (
	"fmt"

	"github.com/chadury2021/nautilus-trader-s/internal/message"
)

// EncodeEvent serializes an event into a self-describing frame.
func (c *Codec) EncodeEvent(evt message.Event) ([]byte, error) {
	var env envelope
	switch m := evt.(type) {
	case message.OrderSubmitted:
		env = newEnvelope(typeOrderSubmitted, m.Base)
		env.Trader, env.OrderID = m.Trader, m.OrderID
	case message.OrderAccepted:
		env = newEnvelope(typeOrderAccepted, m.Base)
		env.Trader, env.OrderID = m.Trader, m.OrderID
	case message.OrderRejected:
		env = newEnvelope(typeOrderRejected, m.Base)
		env.Trader, env.OrderID, env.Reason = m.Trader, m.OrderID, m.Reason
	case message.OrderWorking:
		env = newEnvelope(typeOrderWorking, m.Base)
		env.Trader, env.OrderID = m.Trader, m.OrderID
	case message.OrderFilled:
		env = newEnvelope(typeOrderFilled, m.Base)
		env.Trader, env.OrderID = m.Trader, m.OrderID
		env.FillPrice = encodeDecimal(m.FillPrice)
		env.FilledQuantity = encodeDecimal(m.FilledQuantity)
	case message.OrderCancelled:
		env = newEnvelope(typeOrderCancelled, m.Base)
		env.Trader, env.OrderID = m.Trader, m.OrderID
	case message.OrderCancelReject:
		env = newEnvelope(typeOrderCancelReject, m.Base)
		env.Trader, env.OrderID, env.Reason = m.Trader, m.OrderID, m.Reason
	case message.OrderModified:
		env = newEnvelope(typeOrderModified, m.Base)
		env.Trader, env.OrderID = m.Trader, m.OrderID
		env.Quantity = encodeDecimal(m.ModifiedQuantity)
		env.Price = encodeDecimal(m.ModifiedPrice)
	case message.OrderExpired:
		env = newEnvelope(typeOrderExpired, m.Base)
		env.Trader, env.OrderID = m.Trader, m.OrderID
	case message.AccountState:
		env = newEnvelope(typeAccountState, m.Base)
		env.Trader = m.Trader
		env.Currency = m.Currency
		env.Balance = encodeDecimal(m.Balance)
		env.MarginBalance = encodeDecimal(m.MarginBalance)
		env.MarginAvailable = encodeDecimal(m.MarginAvailable)
	default:
		panic(fmt.Sprintf("codec: unhandled event variant %T", evt))
	}

	frame, err := c.marshal(env)
	if err != nil {
		return nil, codecErr("encode event", err)
	}
	return frame, nil
}

// DecodeEvent reconstructs an event from a frame.
func (c *Codec) DecodeEvent(frame []byte) (message.Event, error) {
	var env envelope
	if err := c.unmarshal(frame, &env); err != nil {
		return nil, codecErr("decode event frame", err)
	}
	base, err := env.base()
	if err != nil {
		return nil, err
	}

	switch env.Type {
	case typeOrderSubmitted:
		return message.OrderSubmitted{Base: base, Trader: env.Trader, OrderID: env.OrderID}, nil
	case typeOrderAccepted:
		return message.OrderAccepted{Base: base, Trader: env.Trader, OrderID: env.OrderID}, nil
	case typeOrderRejected:
		return message.OrderRejected{Base: base, Trader: env.Trader, OrderID: env.OrderID, Reason: env.Reason}, nil
	case typeOrderWorking:
		return message.OrderWorking{Base: base, Trader: env.Trader, OrderID: env.OrderID}, nil
	case typeOrderFilled:
		fillPrice, err := decodeDecimal(env.FillPrice)
		if err != nil {
			return nil, err
		}
		filledQty, err := decodeDecimal(env.FilledQuantity)
		if err != nil {
			return nil, err
		}
		return message.OrderFilled{
			Base:           base,
			Trader:         env.Trader,
			OrderID:        env.OrderID,
			FillPrice:      fillPrice,
			FilledQuantity: filledQty,
		}, nil
	case typeOrderCancelled:
		return message.OrderCancelled{Base: base, Trader: env.Trader, OrderID: env.OrderID}, nil
	case typeOrderCancelReject:
		return message.OrderCancelReject{Base: base, Trader: env.Trader, OrderID: env.OrderID, Reason: env.Reason}, nil
	case typeOrderModified:
		qty, err := decodeDecimal(env.Quantity)
		if err != nil {
			return nil, err
		}
		price, err := decodeDecimal(env.Price)
		if err != nil {
			return nil, err
		}
		return message.OrderModified{
			Base:             base,
			Trader:           env.Trader,
			OrderID:          env.OrderID,
			ModifiedQuantity: qty,
			ModifiedPrice:    price,
		}, nil
	case typeOrderExpired:
		return message.OrderExpired{Base: base, Trader: env.Trader, OrderID: env.OrderID}, nil
	case typeAccountState:
		balance, err := decodeDecimal(env.Balance)
		if err != nil {
			return nil, err
		}
		marginBalance, err := decodeDecimal(env.MarginBalance)
		if err != nil {
			return nil, err
		}
		marginAvailable, err := decodeDecimal(env.MarginAvailable)
		if err != nil {
			return nil, err
		}
		return message.AccountState{
			Base:            base,
			Trader:          env.Trader,
			Currency:        env.Currency,
			Balance:         balance,
			MarginBalance:   marginBalance,
			MarginAvailable: marginAvailable,
		}, nil
	default:
		return nil, codecErr("unknown event type tag: "+env.Type, nil)
	}
}
