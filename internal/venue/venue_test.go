package venue

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chadury2021/nautilus-trader-s/internal/clock"
	"github.com/chadury2021/nautilus-trader-s/internal/codec"
	"github.com/chadury2021/nautilus-trader-s/internal/message"
	"github.com/chadury2021/nautilus-trader-s/internal/order"
)

type recorder struct {
	mu        sync.Mutex
	responses []message.Response
	events    []message.Event
}

func (r *recorder) onReply(c codec.ResponseCodec) func([]byte) {
	return func(frame []byte) {
		rsp, err := c.DecodeResponse(frame)
		if err != nil {
			panic(err)
		}
		r.mu.Lock()
		r.responses = append(r.responses, rsp)
		r.mu.Unlock()
	}
}

func (r *recorder) onFrame(c codec.EventCodec) func(string, []byte) {
	return func(_ string, frame []byte) {
		evt, err := c.DecodeEvent(frame)
		if err != nil {
			panic(err)
		}
		r.mu.Lock()
		r.events = append(r.events, evt)
		r.mu.Unlock()
	}
}

func (r *recorder) snapshot() ([]message.Response, []message.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]message.Response(nil), r.responses...), append([]message.Event(nil), r.events...)
}

func (r *recorder) waitEvents(t *testing.T, n int) []message.Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		_, events := r.snapshot()
		if len(events) >= n {
			return events
		}
		time.Sleep(time.Millisecond)
	}
	_, events := r.snapshot()
	t.Fatalf("timed out waiting for %d events, got %d", n, len(events))
	return events
}

func (r *recorder) waitResponses(t *testing.T, n int) []message.Response {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		responses, _ := r.snapshot()
		if len(responses) >= n {
			return responses
		}
		time.Sleep(time.Millisecond)
	}
	responses, _ := r.snapshot()
	t.Fatalf("timed out waiting for %d responses, got %d", n, len(responses))
	return responses
}

func newTestVenue(t *testing.T) (*Venue, *recorder, *codec.Codec) {
	t.Helper()
	c := codec.NewMsgPack()
	v := New(Config{
		Currency:        "USD",
		Balance:         decimal.NewFromInt(100000),
		MarginBalance:   decimal.NewFromInt(100000),
		MarginAvailable: decimal.NewFromInt(80000),
		FillPrice:       decimal.RequireFromString("1.00053"),
	}, c, c, c, clock.NewLive(), log.New(io.Discard, "", 0))
	t.Cleanup(func() { _ = v.Close(context.Background()) })

	rec := &recorder{}
	if err := v.Open(context.Background(), rec.onReply(c)); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := v.Subscribe(context.Background(), "events", rec.onFrame(c)); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	return v, rec, c
}

func marketOrder(t *testing.T, id string) order.Order {
	t.Helper()
	o, err := order.New(id, "AUDUSD.FXCM", order.SideBuy, order.TypeMarket,
		decimal.NewFromInt(100000), decimal.Decimal{}, order.TIFDay, time.Now())
	if err != nil {
		t.Fatalf("market order: %v", err)
	}
	return o
}

func limitOrder(t *testing.T, id string) order.Order {
	t.Helper()
	o, err := order.New(id, "AUDUSD.FXCM", order.SideBuy, order.TypeLimit,
		decimal.NewFromInt(100000), decimal.RequireFromString("0.99"), order.TIFGTC, time.Now())
	if err != nil {
		t.Fatalf("limit order: %v", err)
	}
	return o
}

func send(t *testing.T, v *Venue, c codec.CommandCodec, cmd message.Command) {
	t.Helper()
	frame, err := c.EncodeCommand(cmd)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := v.Send(context.Background(), frame); err != nil {
		t.Fatalf("send: %v", err)
	}
}

func TestMarketOrderLifecycle(t *testing.T) {
	v, rec, c := newTestVenue(t)

	cmd := message.SubmitOrder{
		Base:       message.NewBase(time.Now()),
		Trader:     "TRADER-001",
		StrategyID: "S1",
		PositionID: "P1",
		Order:      marketOrder(t, "O-1"),
	}
	send(t, v, c, cmd)

	responses := rec.waitResponses(t, 1)
	received, ok := responses[0].(message.MessageReceived)
	if !ok {
		t.Fatalf("expected MessageReceived, got %T", responses[0])
	}
	if received.CorrelationID != cmd.MessageID() {
		t.Fatalf("correlation %s, want %s", received.CorrelationID, cmd.MessageID())
	}

	events := rec.waitEvents(t, 3)
	if _, ok := events[0].(message.OrderSubmitted); !ok {
		t.Fatalf("event 0: expected OrderSubmitted, got %T", events[0])
	}
	if _, ok := events[1].(message.OrderAccepted); !ok {
		t.Fatalf("event 1: expected OrderAccepted, got %T", events[1])
	}
	filled, ok := events[2].(message.OrderFilled)
	if !ok {
		t.Fatalf("event 2: expected OrderFilled, got %T", events[2])
	}
	if filled.OrderID != "O-1" {
		t.Fatalf("filled order id %q", filled.OrderID)
	}
	if !filled.FillPrice.Equal(decimal.RequireFromString("1.00053")) {
		t.Fatalf("fill price %s", filled.FillPrice)
	}
	if !filled.FilledQuantity.Equal(decimal.NewFromInt(100000)) {
		t.Fatalf("filled quantity %s", filled.FilledQuantity)
	}
}

func TestLimitOrderWorksThenModifiesAndCancels(t *testing.T) {
	v, rec, c := newTestVenue(t)

	send(t, v, c, message.SubmitOrder{
		Base:   message.NewBase(time.Now()),
		Trader: "TRADER-001",
		Order:  limitOrder(t, "O-2"),
	})
	events := rec.waitEvents(t, 3)
	if _, ok := events[2].(message.OrderWorking); !ok {
		t.Fatalf("expected OrderWorking, got %T", events[2])
	}

	send(t, v, c, message.ModifyOrder{
		Base:             message.NewBase(time.Now()),
		Trader:           "TRADER-001",
		OrderID:          "O-2",
		ModifiedQuantity: decimal.NewFromInt(50000),
		ModifiedPrice:    decimal.RequireFromString("0.98"),
	})
	events = rec.waitEvents(t, 4)
	modified, ok := events[3].(message.OrderModified)
	if !ok {
		t.Fatalf("expected OrderModified, got %T", events[3])
	}
	if !modified.ModifiedQuantity.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("modified quantity %s", modified.ModifiedQuantity)
	}

	send(t, v, c, message.CancelOrder{
		Base:    message.NewBase(time.Now()),
		Trader:  "TRADER-001",
		OrderID: "O-2",
		Reason:  "test",
	})
	events = rec.waitEvents(t, 5)
	if _, ok := events[4].(message.OrderCancelled); !ok {
		t.Fatalf("expected OrderCancelled, got %T", events[4])
	}

	// The order is no longer working; a second cancel is rejected.
	send(t, v, c, message.CancelOrder{
		Base:    message.NewBase(time.Now()),
		Trader:  "TRADER-001",
		OrderID: "O-2",
		Reason:  "test",
	})
	events = rec.waitEvents(t, 6)
	if _, ok := events[5].(message.OrderCancelReject); !ok {
		t.Fatalf("expected OrderCancelReject, got %T", events[5])
	}
}

func TestModifyUnknownOrderRejected(t *testing.T) {
	v, rec, c := newTestVenue(t)

	send(t, v, c, message.ModifyOrder{
		Base:             message.NewBase(time.Now()),
		Trader:           "TRADER-001",
		OrderID:          "missing",
		ModifiedQuantity: decimal.NewFromInt(1),
		ModifiedPrice:    decimal.NewFromInt(1),
	})
	events := rec.waitEvents(t, 1)
	reject, ok := events[0].(message.OrderCancelReject)
	if !ok {
		t.Fatalf("expected OrderCancelReject, got %T", events[0])
	}
	if reject.OrderID != "missing" {
		t.Fatalf("reject order id %q", reject.OrderID)
	}
}

func TestAtomicOrderAcceptsEntry(t *testing.T) {
	v, rec, c := newTestVenue(t)

	stop, err := order.New("O-SL", "AUDUSD.FXCM", order.SideSell, order.TypeStop,
		decimal.NewFromInt(100000), decimal.RequireFromString("0.95"), order.TIFGTC, time.Now())
	if err != nil {
		t.Fatalf("stop order: %v", err)
	}
	send(t, v, c, message.SubmitAtomicOrder{
		Base:   message.NewBase(time.Now()),
		Trader: "TRADER-001",
		Atomic: order.AtomicOrder{Entry: marketOrder(t, "O-3"), StopLoss: stop},
	})

	events := rec.waitEvents(t, 3)
	filled, ok := events[2].(message.OrderFilled)
	if !ok {
		t.Fatalf("expected OrderFilled, got %T", events[2])
	}
	if filled.OrderID != "O-3" {
		t.Fatalf("filled order id %q", filled.OrderID)
	}
}

func TestCollateralInquiryPublishesAccountState(t *testing.T) {
	v, rec, c := newTestVenue(t)

	send(t, v, c, message.CollateralInquiry{
		Base:   message.NewBase(time.Now()),
		Trader: "TRADER-001",
	})
	events := rec.waitEvents(t, 1)
	state, ok := events[0].(message.AccountState)
	if !ok {
		t.Fatalf("expected AccountState, got %T", events[0])
	}
	if state.Currency != "USD" {
		t.Fatalf("currency %q", state.Currency)
	}
	if !state.Balance.Equal(decimal.NewFromInt(100000)) {
		t.Fatalf("balance %s", state.Balance)
	}
	if !state.MarginAvailable.Equal(decimal.NewFromInt(80000)) {
		t.Fatalf("margin available %s", state.MarginAvailable)
	}
}

func TestUndecodableFrameGetsRejectedResponse(t *testing.T) {
	v, rec, _ := newTestVenue(t)

	if err := v.Send(context.Background(), []byte("garbage")); err != nil {
		t.Fatalf("send: %v", err)
	}
	responses := rec.waitResponses(t, 1)
	if _, ok := responses[0].(message.MessageRejected); !ok {
		t.Fatalf("expected MessageRejected, got %T", responses[0])
	}
}

func TestEveryCommandIsAcknowledged(t *testing.T) {
	v, rec, c := newTestVenue(t)

	cmds := []message.Command{
		message.SubmitOrder{Base: message.NewBase(time.Now()), Trader: "T", Order: limitOrder(t, "O-4")},
		message.CancelOrder{Base: message.NewBase(time.Now()), Trader: "T", OrderID: "O-4", Reason: "done"},
		message.CollateralInquiry{Base: message.NewBase(time.Now()), Trader: "T"},
	}
	for _, cmd := range cmds {
		send(t, v, c, cmd)
	}

	responses := rec.waitResponses(t, len(cmds))
	for i, rsp := range responses {
		received, ok := rsp.(message.MessageReceived)
		if !ok {
			t.Fatalf("response %d: expected MessageReceived, got %T", i, rsp)
		}
		if received.CorrelationID != cmds[i].MessageID() {
			t.Fatalf("response %d correlates to %s, want %s", i, received.CorrelationID, cmds[i].MessageID())
		}
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	v, rec, c := newTestVenue(t)

	if err := v.Unsubscribe(context.Background(), "events"); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	send(t, v, c, message.CollateralInquiry{Base: message.NewBase(time.Now()), Trader: "T"})

	rec.waitResponses(t, 1)
	time.Sleep(20 * time.Millisecond)
	_, events := rec.snapshot()
	if len(events) != 0 {
		t.Fatalf("expected no events after unsubscribe, got %d", len(events))
	}
}

func TestClosedVenueRefusesTraffic(t *testing.T) {
	v, _, c := newTestVenue(t)
	if err := v.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := v.Close(context.Background()); err != nil {
		t.Fatalf("second close: %v", err)
	}

	frame, err := c.EncodeCommand(message.CollateralInquiry{Base: message.NewBase(time.Now()), Trader: "T"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := v.Send(context.Background(), frame); err == nil {
		t.Fatal("expected error sending to closed venue")
	}
	if err := v.Open(context.Background(), func([]byte) {}); err == nil {
		t.Fatal("expected error opening closed venue")
	}
	if err := v.Subscribe(context.Background(), "events", func(string, []byte) {}); err == nil {
		t.Fatal("expected error subscribing to closed venue")
	}
}
