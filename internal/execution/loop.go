package execution

import (
	"context"
	"errors"
	"fmt"

	"github.com/chadury2021/nautilus-trader-s/internal/bus"
	"github.com/chadury2021/nautilus-trader-s/internal/message"
)

// run is the processing loop: the single consumer of the queue. It pulls one
// item at a time and dispatches it, so command execution and event handling
// never overlap.
func (c *Client) run(ctx context.Context) {
	for {
		item, err := c.queue.Pop(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, bus.ErrQueueClosed) {
				c.logger.Printf("processing loop stopped: %v", err)
			}
			return
		}
		switch m := item.(type) {
		case message.Command:
			c.executeOnLoop(ctx, m)
		case message.Event:
			c.forwardEvent(ctx, m)
		default:
			// Only commands and events enter the queue; anything else is a
			// contract violation by the producer.
			panic(fmt.Sprintf("execution: unsupported queue item %T", item))
		}
	}
}

// executeOnLoop dispatches a command to its type-specific handler. The
// command set is closed; an unrecognized variant is a programming error and
// fails loudly.
func (c *Client) executeOnLoop(ctx context.Context, cmd message.Command) {
	switch m := cmd.(type) {
	case message.SubmitOrder:
		c.submitOrder(ctx, m)
	case message.SubmitAtomicOrder:
		c.submitAtomicOrder(ctx, m)
	case message.ModifyOrder:
		c.modifyOrder(ctx, m)
	case message.CancelOrder:
		c.cancelOrder(ctx, m)
	case message.CollateralInquiry:
		c.collateralInquiry(ctx, m)
	default:
		panic(fmt.Sprintf("execution: unhandled command variant %T", cmd))
	}
}

func (c *Client) submitOrder(ctx context.Context, cmd message.SubmitOrder) {
	c.logger.Printf("submit order %s %s %s qty=%s", cmd.Order.ID, cmd.Order.Side, cmd.Order.Symbol, cmd.Order.Quantity)
	c.send(ctx, cmd, "SubmitOrder")
}

func (c *Client) submitAtomicOrder(ctx context.Context, cmd message.SubmitAtomicOrder) {
	c.logger.Printf("submit atomic order entry=%s stop=%s", cmd.Atomic.Entry.ID, cmd.Atomic.StopLoss.ID)
	c.send(ctx, cmd, "SubmitAtomicOrder")
}

func (c *Client) modifyOrder(ctx context.Context, cmd message.ModifyOrder) {
	c.logger.Printf("modify order %s qty=%s price=%s", cmd.OrderID, cmd.ModifiedQuantity, cmd.ModifiedPrice)
	c.send(ctx, cmd, "ModifyOrder")
}

func (c *Client) cancelOrder(ctx context.Context, cmd message.CancelOrder) {
	c.logger.Printf("cancel order %s reason=%q", cmd.OrderID, cmd.Reason)
	c.send(ctx, cmd, "CancelOrder")
}

func (c *Client) collateralInquiry(ctx context.Context, cmd message.CollateralInquiry) {
	c.logger.Printf("collateral inquiry for %s", cmd.Trader)
	c.send(ctx, cmd, "CollateralInquiry")
}

// send serializes the command and transmits it on the request channel,
// recording the pending correlation for the reply path.
func (c *Client) send(ctx context.Context, cmd message.Command, commandType string) {
	frame, err := c.commands.EncodeCommand(cmd)
	if err != nil {
		c.logger.Printf("encode %s %s failed, command dropped: %v", commandType, cmd.MessageID(), err)
		c.metrics.recordDecodeFailure(ctx, "encode_command")
		return
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.logger.Printf("%s %s dropped while throttled: %v", commandType, cmd.MessageID(), err)
			c.metrics.droppedItems.Add(ctx, 1)
			return
		}
	}

	c.pendingMu.Lock()
	c.pending[cmd.MessageID()] = c.clock.TimeNow()
	c.pendingMu.Unlock()

	if err := c.requests.Send(ctx, frame); err != nil {
		c.pendingMu.Lock()
		delete(c.pending, cmd.MessageID())
		c.pendingMu.Unlock()
		c.logger.Printf("send %s %s failed, command dropped: %v", commandType, cmd.MessageID(), err)
		c.metrics.droppedItems.Add(ctx, 1)
		return
	}
	c.metrics.recordCommandSent(ctx, commandType)
}

// forwardEvent delivers the event to every registered strategy exactly once.
// Fan-out runs synchronously on the loop goroutine, preserving total order
// across strategies.
func (c *Client) forwardEvent(ctx context.Context, evt message.Event) {
	if state, ok := evt.(message.AccountState); ok {
		c.account.Update(state.Currency, state.Balance, state.MarginBalance, state.MarginAvailable)
	}

	strategies := c.strategies.Snapshot()
	if len(strategies) == 0 {
		c.logger.Printf("event %s received with no registered strategies", evt.MessageID())
		return
	}
	for _, s := range strategies {
		s.OnEvent(evt)
	}
	c.metrics.recordEventDispatched(ctx, fmt.Sprintf("%T", evt), len(strategies))
}

// onReply is invoked by the request channel worker whenever response bytes
// arrive. Responses are fire-and-forget acknowledgements: they are logged and
// matched against pending correlations but never re-enter the ordered queue.
func (c *Client) onReply(frame []byte) {
	ctx := context.Background()
	rsp, err := c.responses.DecodeResponse(frame)
	if err != nil {
		c.logger.Printf("malformed response frame dropped: %v", err)
		c.metrics.recordDecodeFailure(ctx, "decode_response")
		return
	}

	c.pendingMu.Lock()
	issued, known := c.pending[rsp.Correlation()]
	if known {
		delete(c.pending, rsp.Correlation())
	}
	c.pendingMu.Unlock()

	if !known {
		c.logger.Printf("warning: response %s has unmatched correlation %s", rsp.MessageID(), rsp.Correlation())
		c.metrics.unmatchedResponses.Add(ctx, 1)
		return
	}
	c.logger.Printf("response %T %s correlates %s (round trip %v)",
		rsp, rsp.MessageID(), rsp.Correlation(), c.clock.TimeNow().Sub(issued))
}

// onFrame is invoked by the subscription worker for every delivered event
// frame. Decoded events re-enter the main queue via HandleEvent so that they
// interleave with commands in one total order.
func (c *Client) onFrame(topic string, frame []byte) {
	evt, err := c.events.DecodeEvent(frame)
	if err != nil {
		c.logger.Printf("malformed event frame on %q dropped: %v", topic, err)
		c.metrics.recordDecodeFailure(context.Background(), "decode_event")
		return
	}
	if err := c.HandleEvent(evt); err != nil {
		c.logger.Printf("event %s from %q dropped: %v", evt.MessageID(), topic, err)
	}
}
